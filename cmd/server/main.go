package main

import (
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"github.com/error-autopsy/backend/internal/auth"
	"github.com/error-autopsy/backend/internal/cache"
	"github.com/error-autopsy/backend/internal/dashboard"
	"github.com/error-autopsy/backend/internal/database"
	"github.com/error-autopsy/backend/internal/middleware"
	"github.com/error-autopsy/backend/internal/telemetry"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found, using process environment")
	}

	// Initialize database
	db, err := database.Connect()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Redis is optional; without it every dashboard is computed per request.
	var dashCache *cache.Cache
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		redisDB := 0
		if v := os.Getenv("REDIS_DB"); v != "" {
			if n, convErr := strconv.Atoi(v); convErr == nil {
				redisDB = n
			}
		}
		dashCache, err = cache.New(addr, os.Getenv("REDIS_PASSWORD"), redisDB)
		if err != nil {
			log.Printf("Redis unavailable, caching disabled: %v", err)
			dashCache = nil
		} else {
			defer dashCache.Close()
		}
	}

	// Initialize handlers
	authHandler := auth.NewHandler(db)
	store := telemetry.NewStore(db)
	telemetryHandler := telemetry.NewHandler(telemetry.NewService(store, dashCache))
	dashboardHandler := dashboard.NewHandler(dashboard.NewService(store, dashCache))

	// Setup router
	r := mux.NewRouter()
	api := r.PathPrefix("/api/v1").Subrouter()

	// Public routes
	api.HandleFunc("/auth/register", authHandler.Register).Methods("POST")
	api.HandleFunc("/auth/login", authHandler.Login).Methods("POST")

	// Protected routes
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.AuthMiddleware)
	protected.HandleFunc("/auth/me", authHandler.GetCurrentUser).Methods("GET")
	telemetryHandler.RegisterRoutes(protected)
	dashboardHandler.RegisterRoutes(protected)

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// CORS
	origins := []string{"*"}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		origins = strings.Split(v, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
	}
	c := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	handler := c.Handler(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on :%s", port)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

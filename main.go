package main

import (
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"
)

// JWT secret from environment variable or fallback
func getJWTSecret() []byte {
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		return []byte(secret)
	}
	return []byte("your_secret_key_please_change_in_production")
}

var jwtSecret = getJWTSecret()

func main() {
	// .env is optional; real deployments set the environment directly
	if err := godotenv.Load(); err == nil {
		jwtSecret = getJWTSecret()
	}

	initDB()

	mux := http.NewServeMux()

	// Core auth & user endpoints
	mux.Handle("/register", registerHandler(db))
	mux.Handle("/login", loginHandler(db))
	mux.Handle("/me", meHandler(db))
	mux.Handle("/me/profile", meProfileHandler(db))
	mux.Handle("/me/choices", meChoicesHandler(db))

	// Discovery & swiping
	mux.Handle("/discover", discoverHandler(db))
	mux.Handle("/swipe", swipeHandler(db))

	// Match read models (batch-loaded card data)
	mux.Handle("/matches", dataLoaderMiddleware(db, matchesHandler(db)))
	mux.Handle("/matches/count", matchCountHandler(db))

	// WebSocket match notifications
	mux.Handle("/ws/notifications", wsNotificationsHandler(db))

	// Health check endpoint for Docker
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Default().Println("Starting bumbEL backend on port " + port + "...")
	http.ListenAndServe(":"+port, withCORS(mux))
}

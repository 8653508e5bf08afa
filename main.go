package main

import (
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"projectboard/handlers"
	"projectboard/utils"
)

func main() {
	// Load environment variables
	if os.Getenv("APP_ENV") != "production" {
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found, continuing..")
		}
	}
	log.Println("environment: ", os.Getenv("APP_ENV"))

	cfg := utils.LoadConfig()

	// Initialize the database connection pool
	dbPool, err := utils.OpenDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer dbPool.Close()

	redisPool := utils.OpenRedisPool(cfg.RedisURL)
	defer redisPool.Close()

	users := &utils.UserStore{DB: dbPool}
	projects := &utils.PgProjectStore{DB: dbPool}
	sessions := &utils.SessionManager{
		Client:         redisPool,
		Cookie:         cfg.Cookie,
		TTL:            cfg.SessionTTL,
		CSRFTokenBytes: cfg.CSRFTokenBytes,
	}
	attempts := &utils.LoginAttempts{
		Store:     &utils.RedisAttemptStore{Client: redisPool, TTL: 2 * cfg.LockoutDuration},
		Threshold: cfg.LockoutThreshold,
		Lockout:   cfg.LockoutDuration,
	}

	// Set up the HTTP server and handlers
	mux := http.NewServeMux()

	// File server for static files
	fileServer := http.FileServer(http.Dir("./ui/static/"))
	mux.Handle("/static/", http.StripPrefix("/static", fileServer))

	// Front controller: every page goes through "/" and the action
	// parameter picks the handler, unknown actions fall back to the
	// login form.
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}

		switch r.URL.Query().Get("action") {
		case "login":
			handlers.LoginPageHandler(w, r, sessions)
		case "authenticate":
			handlers.AuthenticateHandler(w, r, users, sessions, attempts)
		case "logout":
			handlers.LogOutHandler(w, r, sessions)
		case "index", "dashboard", "list":
			handlers.DashboardHandler(w, r, projects, sessions)
		case "create":
			handlers.CreateProjectHandler(w, r, projects, sessions)
		case "edit":
			handlers.EditProjectHandler(w, r, projects, sessions)
		case "delete":
			handlers.DeleteProjectHandler(w, r, projects, sessions)
		default:
			handlers.LoginPageHandler(w, r, sessions)
		}
	})

	// Start the server
	log.Println("Starting server on ", cfg.Addr)
	log.Fatal(http.ListenAndServe(cfg.Addr, mux))
}

package main

import (
	"flag"
	"log"
	"net/http"
	"os"

	"finance-tracker/internal/auth"
	"finance-tracker/internal/handlers"
	"finance-tracker/internal/ledger"
	"finance-tracker/internal/storage"

	"github.com/joho/godotenv"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	port := flag.String("port", envOr("PORT", "8080"), "Port to listen on")
	dbPath := flag.String("db", envOr("DB_PATH", "finance.db"), "Path to database file")
	templateDir := flag.String("templates", "web/templates", "Path to template directory")
	staticDir := flag.String("static", "web/static", "Path to static assets")
	secureCookie := flag.Bool("secure-cookie", os.Getenv("SECURE_COOKIE") == "true", "Set the Secure flag on session cookies")
	flag.Parse()

	db, err := storage.NewDB(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	if err := bootstrapAdmin(db); err != nil {
		log.Fatalf("Failed to bootstrap admin user: %v", err)
	}

	if err := db.CleanExpiredSessions(); err != nil {
		log.Printf("Failed to clean expired sessions: %v", err)
	}

	svc := ledger.NewService(db)
	h := handlers.NewHandlers(db, svc, *templateDir, *secureCookie)
	mux := setupRouter(h, *staticDir)

	log.Printf("Listening on :%s", *port)
	if err := http.ListenAndServe(":"+*port, mux); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

func setupRouter(h *handlers.Handlers, staticDir string) *http.ServeMux {
	mux := http.NewServeMux()

	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))))

	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/dashboard", http.StatusFound)
	})
	mux.HandleFunc("GET /login", h.LoginForm)
	mux.HandleFunc("POST /login", h.Login)
	mux.HandleFunc("POST /logout", h.Logout)

	mux.Handle("GET /dashboard", h.AuthMiddleware(http.HandlerFunc(h.Dashboard)))
	mux.Handle("GET /accounts", h.AuthMiddleware(http.HandlerFunc(h.Accounts)))
	mux.Handle("POST /accounts", h.AuthMiddleware(http.HandlerFunc(h.CreateAccount)))
	mux.Handle("POST /accounts/{id}/toggle", h.AuthMiddleware(http.HandlerFunc(h.ToggleAccountStatus)))
	mux.Handle("GET /transactions", h.AuthMiddleware(http.HandlerFunc(h.Transactions)))
	mux.Handle("POST /transactions", h.AuthMiddleware(http.HandlerFunc(h.RecordTransaction)))
	mux.Handle("GET /reports", h.AuthMiddleware(http.HandlerFunc(h.Reports)))
	mux.Handle("POST /reports", h.AuthMiddleware(http.HandlerFunc(h.GenerateReport)))

	return mux
}

// bootstrapAdmin creates the initial user from ADMIN_USER / ADMIN_PASSWORD
// when the database has no users yet. Later runs leave existing users alone.
func bootstrapAdmin(db *storage.DB) error {
	username := os.Getenv("ADMIN_USER")
	password := os.Getenv("ADMIN_PASSWORD")
	if username == "" || password == "" {
		return nil
	}

	count, err := db.UserCount()
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	email := os.Getenv("ADMIN_EMAIL")
	if email == "" {
		email = username + "@localhost"
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	user, err := db.CreateUser(username, email, hash)
	if err != nil {
		return err
	}
	log.Printf("Created initial user %s (id %d)", user.Name, user.ID)
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

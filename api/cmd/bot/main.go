package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver

	"teacher-bot/api/internal/config"
	"teacher-bot/api/internal/httpserver"
	"teacher-bot/api/internal/line"
	"teacher-bot/api/internal/oracle"
	"teacher-bot/api/internal/oracle/gemini"
	"teacher-bot/api/internal/quiz"
	"teacher-bot/api/internal/store"
)

func main() {
	cfg := config.Load()

	// Prefer platform PORT env var; fallback to cfg.Port; then to 8000
	if p := strings.TrimSpace(os.Getenv("PORT")); p != "" {
		cfg.Port = p
	} else if strings.TrimSpace(cfg.Port) == "" {
		cfg.Port = "8000"
	}

	// --- Postgres ---
	dsn := resolveDSN()
	if dsn == "" {
		log.Fatal("database DSN is empty: set DATABASE_URL or POSTGRES_* env vars")
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		log.Fatalf("sql.Open: %v", err)
	}
	// connection pool tune (single-instance bot, low rps)
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(1 * time.Hour)

	{
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			log.Fatalf("db.Ping: %v", err)
		}
		log.Printf("db connected: %s", safeDSNSummary(dsn))
	}

	users := store.NewUserRepo(db)
	scores := store.NewScoreRepo(db)
	vocab := store.NewVocabRepo(db)
	answers := store.NewAnswerRepo(db)

	// --- Oracle ---
	textOracle := gemini.New(cfg.GeminiAPIKey, oracle.DefaultParams(cfg.GeminiModel))

	// --- Quiz core ---
	sessions := quiz.NewMemoryRepository(cfg.SessionTTL)
	manager := &quiz.Manager{
		Sessions:    sessions,
		Vocab:       vocab,
		Scores:      scores,
		Answers:     answers,
		Grader:      quiz.NewGrader(textOracle),
		MaxAttempts: cfg.MaxAttempts,
		BaseAward:   cfg.BaseAward,
		HintPenalty: cfg.HintPenalty,
		FailPenalty: cfg.FailPenalty,
	}

	// --- LINE ---
	client, err := line.NewClient(cfg.LineChannelToken)
	if err != nil {
		log.Fatal(err)
	}
	router := &line.Router{
		Users:    users,
		Scores:   scores,
		Vocab:    vocab,
		Answers:  answers,
		Quiz:     manager,
		Sessions: sessions,
		Oracle:   textOracle,
	}
	handler := line.NewHandler(cfg.LineChannelSecret, client, router)
	broadcaster := &line.Broadcaster{Users: users, Quiz: manager, Push: client}

	addr := "0.0.0.0:" + cfg.Port
	mux := httpserver.Mux(handler, broadcaster, db, sessions)
	log.Printf("webhook listening on %s/callback", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatal(err)
	}
}

// ---------------- Helpers -----------------

func resolveDSN() string {
	// Prefer DATABASE_URL if provided
	if v := strings.TrimSpace(os.Getenv("DATABASE_URL")); v != "" {
		return v
	}
	// Build DSN from POSTGRES_* / PG* env vars (single-container default)
	user := getenvDefault("POSTGRES_USER", "teacherbot")
	pass := os.Getenv("POSTGRES_PASSWORD")
	host := getenvDefault("PGHOST", "db")
	port := getenvDefault("PGPORT", "5432")
	dbName := getenvDefault("POSTGRES_DB", "teacherbot")

	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(user, pass),
		Host:     net.JoinHostPort(host, port),
		Path:     "/" + dbName,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

func getenvDefault(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func safeDSNSummary(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil {
		return "dsn: parse error"
	}
	user := u.User.Username()
	host := u.Host
	port := ""
	if h, p, err := net.SplitHostPort(u.Host); err == nil {
		host, port = h, p
	}
	dbName := strings.TrimPrefix(u.Path, "/")
	if port == "" {
		return fmt.Sprintf("host=%s db=%s user=%s", host, dbName, user)
	}
	return fmt.Sprintf("host=%s port=%s db=%s user=%s", host, port, dbName, user)
}

package httpserver

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"teacher-bot/api/internal/line"
	"teacher-bot/api/internal/quiz"
)

// Mux assembles the service's HTTP surface: the LINE callback, the broadcast
// trigger for the cron job, and healthz.
func Mux(h *line.Handler, b *line.Broadcaster, db *sql.DB, sessions quiz.SessionRepository) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /callback", h.Callback)

	mux.HandleFunc("GET /broadcast-quiz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Minute)
		defer cancel()

		sent, failed, err := b.Run(ctx)
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		if err != nil {
			log.Printf("broadcast: %v", err)
			w.WriteHeader(http.StatusInternalServerError)
			_ = json.NewEncoder(w).Encode(map[string]any{"status": "error", "detail": err.Error()})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "success", "sent": sent, "failed": failed})
	})

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("db: not ok\n" + err.Error()))
			return
		}
		active, pending := sessions.Counts()
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprintf(w, "ok\nsessions: %d\npending_deletions: %d\n", active, pending)
	})

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("teacher bot is ready"))
	})

	return mux
}

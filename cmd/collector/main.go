// The collector is the local diagnostics sink the diag package talks to:
// it stores console log lines and the latest game snapshot per session in
// a sqlite database, so a crashed or closed session can still be inspected.
package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
	_ "modernc.org/sqlite"

	"github.com/dbltnk/uros-sub000/diag"
)

const schema = `
CREATE TABLE IF NOT EXISTS logs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	session TEXT NOT NULL,
	created_at TEXT NOT NULL,
	line TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS logs_session ON logs (session);
CREATE TABLE IF NOT EXISTS snapshots (
	session TEXT PRIMARY KEY,
	updated_at TEXT NOT NULL,
	body TEXT NOT NULL
);
`

type server struct {
	db *sql.DB
}

func (s *server) clearSession(w http.ResponseWriter, r *http.Request) {
	var payload diag.SessionPayload
	if !decode(w, r, &payload) || !requireSession(w, payload.Session) {
		return
	}
	if _, err := s.db.Exec(`DELETE FROM logs WHERE session = ?`, payload.Session); err != nil {
		fail(w, err)
		return
	}
	if _, err := s.db.Exec(`DELETE FROM snapshots WHERE session = ?`, payload.Session); err != nil {
		fail(w, err)
		return
	}
	log.Info().Str("session", payload.Session).Msg("cleared session")
	w.WriteHeader(http.StatusOK)
}

func (s *server) appendLogs(w http.ResponseWriter, r *http.Request) {
	var payload diag.LogsPayload
	if !decode(w, r, &payload) || !requireSession(w, payload.Session) {
		return
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	tx, err := s.db.Begin()
	if err != nil {
		fail(w, err)
		return
	}
	for _, line := range payload.Lines {
		if _, err := tx.Exec(`INSERT INTO logs (session, created_at, line) VALUES (?, ?, ?)`,
			payload.Session, now, line); err != nil {
			tx.Rollback()
			fail(w, err)
			return
		}
	}
	if err := tx.Commit(); err != nil {
		fail(w, err)
		return
	}
	log.Debug().Str("session", payload.Session).Int("lines", len(payload.Lines)).
		Msg("appended logs")
	w.WriteHeader(http.StatusOK)
}

func (s *server) replaceLatestSnapshot(w http.ResponseWriter, r *http.Request) {
	var payload diag.SnapshotPayload
	if !decode(w, r, &payload) || !requireSession(w, payload.Session) {
		return
	}
	if payload.Snapshot == nil {
		http.Error(w, "missing snapshot", http.StatusBadRequest)
		return
	}
	body, err := json.Marshal(payload.Snapshot)
	if err != nil {
		fail(w, err)
		return
	}
	_, err = s.db.Exec(`INSERT INTO snapshots (session, updated_at, body) VALUES (?, ?, ?)
		ON CONFLICT (session) DO UPDATE SET updated_at = excluded.updated_at, body = excluded.body`,
		payload.Session, time.Now().UTC().Format(time.RFC3339Nano), string(body))
	if err != nil {
		fail(w, err)
		return
	}
	log.Debug().Str("session", payload.Session).Msg("replaced latest snapshot")
	w.WriteHeader(http.StatusOK)
}

func decode(w http.ResponseWriter, r *http.Request, into any) bool {
	if r.Method != http.MethodPost {
		http.Error(w, "POST only", http.StatusMethodNotAllowed)
		return false
	}
	if err := json.NewDecoder(r.Body).Decode(into); err != nil {
		http.Error(w, "bad payload: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func requireSession(w http.ResponseWriter, session string) bool {
	if session == "" {
		http.Error(w, "missing session", http.StatusBadRequest)
		return false
	}
	return true
}

func fail(w http.ResponseWriter, err error) {
	log.Err(err).Msg("collector request failed")
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

func main() {
	fs := pflag.NewFlagSet("collector", pflag.ExitOnError)
	addr := fs.String("addr", ":8087", "listen address")
	dbPath := fs.String("db", "uros-diag.db", "sqlite database path")
	debug := fs.Bool("debug", false, "log at debug level")
	fs.Parse(os.Args[1:])

	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	db, err := sql.Open("sqlite", *dbPath)
	if err != nil {
		log.Fatal().Err(err).Msg("could not open database")
	}
	defer db.Close()
	if _, err := db.Exec(schema); err != nil {
		log.Fatal().Err(err).Msg("could not create schema")
	}

	s := &server{db: db}
	mux := http.NewServeMux()
	mux.HandleFunc(diag.PathClearSession, s.clearSession)
	mux.HandleFunc(diag.PathAppendLogs, s.appendLogs)
	mux.HandleFunc(diag.PathReplaceLatestSnapshot, s.replaceLatestSnapshot)

	srv := &http.Server{Addr: *addr, Handler: mux}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		log.Info().Str("addr", *addr).Str("db", *dbPath).Msg("collector listening")
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if err := group.Wait(); err != nil {
		log.Fatal().Err(err).Msg("collector exited")
	}
	log.Info().Msg("collector shut down")
}

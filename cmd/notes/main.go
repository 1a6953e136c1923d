package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"mdnotes/internal/config"
	"mdnotes/internal/index"
	"mdnotes/internal/render"
	"mdnotes/internal/session"
	"mdnotes/internal/storage/fs"
	"mdnotes/internal/watcher"
	"mdnotes/internal/web"
)

const (
	sweepInterval   = time.Minute
	shutdownTimeout = 10 * time.Second
)

func main() {
	slog.SetDefault(slog.New(newLogHandler(os.Stdout, os.Getenv("NOTES_LOG_LEVEL"), os.Getenv("NOTES_LOG_PRETTY"))))
	if err := run(); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()
	notesDir, err := filepath.Abs(cfg.NotesDir)
	if err != nil {
		return err
	}
	cfg.NotesDir = notesDir

	store, err := fs.NewStore(cfg.NotesDir)
	if err != nil {
		return err
	}
	idx, err := index.Open(cfg.IndexPath())
	if err != nil {
		return err
	}
	defer idx.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	initCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	err = idx.Init(initCtx, cfg.NotesDir)
	cancel()
	if err != nil {
		return err
	}
	if n, err := idx.Count(ctx); err == nil {
		slog.Info("index ready", "notes", n, "path", cfg.IndexPath())
	}

	sessions := session.NewManager(cfg.HistoryDepth, cfg.SessionTTL)
	go sessions.Run(ctx, sweepInterval)

	if cfg.Watch {
		w, err := watcher.New(cfg.NotesDir, idx)
		if err != nil {
			slog.Warn("watcher disabled", "err", err)
		} else {
			go func() {
				if err := w.Run(ctx); err != nil {
					slog.Warn("watcher stopped", "err", err)
				}
			}()
		}
	}

	srv, err := web.NewServer(cfg, store, idx, sessions, render.New(cfg.CodeStyle))
	if err != nil {
		return err
	}
	httpServer := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		slog.Info("listening", "addr", cfg.ListenAddr, "notes", cfg.NotesDir, "auth", cfg.AuthEnabled())
		errc <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

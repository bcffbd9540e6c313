package main

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/kalambet/taxdesk/internal/config"
	"github.com/kalambet/taxdesk/internal/loading"
	"github.com/kalambet/taxdesk/internal/session"
	"github.com/kalambet/taxdesk/internal/storage"
	"github.com/kalambet/taxdesk/internal/taxapi"
	"github.com/kalambet/taxdesk/internal/transport"
)

// app is everything a command needs to talk to the tax API.
type app struct {
	cfg     config.Config
	store   *storage.Store
	tokens  *session.Store
	tracker *loading.Tracker
	nav     *loginNavigator
	api     *taxapi.Client
	closers []io.Closer
}

var newApp = func() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return buildApp(cfg, os.Stderr)
}

func buildApp(cfg config.Config, stderr io.Writer) (*app, error) {
	logger, logCloser := newLogger(cfg.Log, stderr)
	slog.SetDefault(logger)

	store, err := storage.Open(cfg.Storage.DataDir)
	if err != nil {
		return nil, fmt.Errorf("opening storage: %w", err)
	}

	tokens, err := session.Open(store)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("opening session: %w", err)
	}

	tracker := loading.NewTracker()
	tracker.Watch(func(busy bool) {
		logger.Debug("loading", "busy", busy)
	})

	nav := &loginNavigator{w: stderr}
	pipe := transport.New(
		cfg.API.BaseURL,
		&http.Client{Timeout: cfg.API.RequestTimeout()},
		transport.Defaults(tokens, tracker, nav, logger)...,
	)

	a := &app{
		cfg:     cfg,
		store:   store,
		tokens:  tokens,
		tracker: tracker,
		nav:     nav,
		api:     taxapi.New(pipe),
		closers: []io.Closer{store},
	}
	if logCloser != nil {
		a.closers = append(a.closers, logCloser)
	}
	return a, nil
}

func (a *app) Close() error {
	var first error
	for _, c := range a.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// newLogger writes text logs to stderr, or JSON logs to a rotating file when
// log.file is set.
func newLogger(cfg config.LogConfig, stderr io.Writer) (*slog.Logger, io.Closer) {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}
	if cfg.File == "" {
		return slog.New(slog.NewTextHandler(stderr, opts)), nil
	}
	rotator := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    10, // Megabytes
		MaxBackups: 5,
		MaxAge:     30, // Days
		Compress:   true,
	}
	return slog.New(slog.NewJSONHandler(rotator, opts)), rotator
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// loginNavigator stands in for the login redirect: it tells the user to log
// in again, unless the command is already the login entry point.
type loginNavigator struct {
	w       io.Writer
	current string
}

func (n *loginNavigator) Navigate(path string) {
	if path == n.current {
		return
	}
	if path == transport.LoginPath {
		fmt.Fprintln(n.w, colorize(colorYellow, "⚠ Session expired. Run `taxdesk auth login` to sign in again."))
		return
	}
	fmt.Fprintf(n.w, "→ %s\n", path)
}

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"golang.org/x/term"

	"github.com/mmynk/volunteermap/internal/api"
	"github.com/mmynk/volunteermap/internal/commands"
	"github.com/mmynk/volunteermap/internal/config"
	"github.com/mmynk/volunteermap/internal/eventstore"
	"github.com/mmynk/volunteermap/internal/media"
	"github.com/mmynk/volunteermap/internal/metrics"
	"github.com/mmynk/volunteermap/internal/service"
	"github.com/mmynk/volunteermap/internal/session"
	"github.com/mmynk/volunteermap/internal/storage/sqlite"
	"github.com/mmynk/volunteermap/pkg/logging"
)

func main() {
	os.Exit(run())
}

func run() int {
	logger := logging.Setup()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		return 1
	}

	cache, err := sqlite.NewCache(cfg.CachePath)
	if err != nil {
		slog.Error("Failed to open session cache", "path", cfg.CachePath, "error", err)
		return 1
	}
	defer cache.Close()

	m := metrics.Discard()
	sess := session.New(nil, "")
	client, err := api.NewClient(cfg.APIBaseURL, api.Options{
		Timeout: cfg.RequestTimeout,
		Tokens:  sess,
		Metrics: m,
		Logger:  logger,
	})
	if err != nil {
		slog.Error("Failed to create API client", "error", err)
		return 1
	}

	var uploader media.Uploader
	if cfg.Cloudinary.Enabled() {
		u, err := media.NewCloudinaryUploader(cfg.Cloudinary.CloudName, cfg.Cloudinary.APIKey, cfg.Cloudinary.APISecret)
		if err != nil {
			slog.Error("Failed to configure image upload", "error", err)
			return 1
		}
		uploader = u
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	manager := session.NewManager(cache, client, sess, logger)
	if _, err := manager.Restore(ctx, time.Now()); err != nil {
		slog.Warn("Failed to restore session", "error", err)
	}

	store := eventstore.New(client, logger, m)
	app := &commands.App{
		Out:          os.Stdout,
		Err:          os.Stderr,
		In:           os.Stdin,
		Sessions:     manager,
		Store:        store,
		Signups:      service.NewSignupService(client, store, m, logger),
		Events:       service.NewEventService(client, store, uploader, logger),
		Now:          time.Now,
		ReadPassword: terminalPassword(),
		Logger:       logger,
	}
	return app.Run(ctx, os.Args[1:])
}

// terminalPassword returns a no-echo password reader when stdin is a
// terminal, or nil to let the app read a plain line.
func terminalPassword() func() (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return nil
	}
	return func() (string, error) {
		password, err := term.ReadPassword(fd)
		return string(password), err
	}
}

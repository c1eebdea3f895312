package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	memcredstore "github.com/tripdeck/tripsync/internal/adapters/memory/credstore"
	memtripstore "github.com/tripdeck/tripsync/internal/adapters/memory/tripstore"

	"github.com/tripdeck/tripsync/internal/adapters/fileprefs"
	"github.com/tripdeck/tripsync/internal/adapters/httpops"
	postgres "github.com/tripdeck/tripsync/internal/adapters/postgres"
	pgtripstore "github.com/tripdeck/tripsync/internal/adapters/postgres/tripstore"
	"github.com/tripdeck/tripsync/internal/adapters/rtdb"
	"github.com/tripdeck/tripsync/internal/app/session"
	"github.com/tripdeck/tripsync/internal/app/syncer"
	"github.com/tripdeck/tripsync/internal/app/trips"
	"github.com/tripdeck/tripsync/internal/app/view"
	"github.com/tripdeck/tripsync/internal/domain"
	platformclock "github.com/tripdeck/tripsync/internal/platform/clock"
	"github.com/tripdeck/tripsync/internal/platform/config"
	"github.com/tripdeck/tripsync/internal/ports/out/tripstore"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}
	level, err := cfg.SlogLevel()
	if err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		store   tripstore.Store
		cleanup func()
	)
	switch cfg.StorageBackend {
	case "postgres":
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, postgres.PoolOptions{})
		if err != nil {
			log.Error("postgres setup failed", "error", err)
			os.Exit(1)
		}
		cleanup = pool.Close
		if err := postgres.Migrate(ctx, pool); err != nil {
			log.Error("migrations failed", "error", err)
			os.Exit(1)
		}
		store = pgtripstore.NewStore(pool)
	case "rtdb":
		s, err := rtdb.NewStore(ctx, cfg.RTDBURL, cfg.RTDBCredentialsFile)
		if err != nil {
			log.Error("rtdb setup failed", "error", err)
			os.Exit(1)
		}
		store = s
	default:
		store = memtripstore.NewStore()
	}
	if cleanup != nil {
		defer cleanup()
	}

	prefs, err := fileprefs.NewStore(cfg.PrefsFile)
	if err != nil {
		log.Error("prefs setup failed", "error", err)
		os.Exit(1)
	}

	creds := memcredstore.NewStore()
	if cfg.DevUserEmail != "" && cfg.DevUserPassword != "" && cfg.DevUserID != "" {
		if err := creds.Register(cfg.DevUserEmail, cfg.DevUserPassword, domain.UserID(cfg.DevUserID)); err != nil {
			log.Error("dev user seeding failed", "error", err)
			os.Exit(1)
		}
		log.Info("dev user seeded", "email", cfg.DevUserEmail)
	}
	sess := session.NewService(creds, []byte(cfg.SessionSecret), cfg.SessionTTL, log)

	engine := syncer.New(store, log)
	defer engine.Close()

	clk := platformclock.NewSystemClock()
	tracker := view.NewTracker(clk, cfg.CountdownInterval)

	// Identity changes drive the aggregation cycle; snapshot changes drive
	// the countdown tracker. The tracker itself never fetches.
	sess.Subscribe(func(uid domain.UserID) {
		go engine.OnIdentityChanged(context.Background(), uid)
	})
	engine.Subscribe(func() {
		tracker.SetItems(engine.Snapshot().TripItems)
	})

	tripSvc := trips.NewService(store, prefs, engine, log)
	if id, ok := tripSvc.RestoreSelectedTrip(ctx); ok {
		log.Info("restored selected trip", "trip_id", string(id))
	}

	go tracker.Run(ctx)

	srv := &http.Server{
		Addr:              ":" + cfg.OpsPort,
		Handler:           httpops.NewRouter(engine, log),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info("ops server listening", "port", cfg.OpsPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("listen failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

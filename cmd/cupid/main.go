package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"CupidGems/internal/bridge"
	"CupidGems/internal/config"
	"CupidGems/internal/economy"
	"CupidGems/internal/profile"
	"CupidGems/internal/recorder"
	"CupidGems/internal/scheduler"
	"CupidGems/internal/store"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] CupidGems starting...")

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}
	loc, err := cfg.Location()
	if err != nil {
		log.Fatalf("[FATAL] load timezone: %v", err)
	}

	// Init store
	st, err := store.Open(cfg.Store.Kind, cfg.Store.DataDir, cfg.Store.SQLitePath)
	if err != nil {
		log.Fatalf("[FATAL] open %s store: %v", cfg.Store.Kind, err)
	}
	defer st.Close()
	log.Printf("[INFO] store: %s", cfg.Store.Kind)

	// Init recorder
	var rec recorder.Recorder
	switch cfg.History.Kind {
	case "sqlite":
		sr, err := recorder.NewSQLiteRecorder(cfg.History.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
		}
	case "jsonl":
		rec = recorder.NewJSONLRecorder(cfg.History.JournalDir, "economy", loc)
	default:
		rec = recorder.NewNoopRecorder()
	}
	defer rec.Close()

	// Init economy and collaborator documents
	econ := economy.New(st,
		economy.WithLocation(loc),
		economy.WithRecorder(rec),
		economy.WithRewardTable(cfg.Economy.RewardTable),
	)
	book := profile.NewBook(st)
	log.Printf("[INFO] welcome, %s", book.Settings().DisplayName)

	// Init view bridge
	srv := bridge.NewServer(econ, book, bridge.Offers{
		UnlockCost:    cfg.Economy.UnlockCost,
		BoostMinutes:  cfg.Economy.BoostMinutes,
		BoostCost:     cfg.Economy.BoostCost,
		SuperLikeCost: cfg.Economy.SuperLikeCost,
	}, cfg.Bridge.AllowedOrigins...)
	httpSrv := &http.Server{
		Addr:              cfg.Bridge.Listen,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Init scheduler
	sched := scheduler.NewScheduler(econ, srv, rec)
	if err := sched.RegisterAll(cfg.Schedule.TickCron, cfg.Schedule.RolloverCron); err != nil {
		log.Fatalf("[FATAL] register cron tasks: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	go func() {
		log.Printf("[INFO] view bridge listening on %s", cfg.Bridge.Listen)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("[ERROR] view bridge: %v", err)
		}
	}()

	// Optional: publish a snapshot immediately on start
	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, running tick now")
		go sched.Tick()
	}

	log.Println("[INFO] CupidGems is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(ctx); err != nil {
		log.Printf("[WARN] view bridge shutdown: %v", err)
	}
	log.Println("[INFO] CupidGems stopped")
}

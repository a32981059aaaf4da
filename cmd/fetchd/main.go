package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fetchd-io/fetchd/internal/logger"
	"github.com/fetchd-io/fetchd/internal/ratelimiter"
	"github.com/fetchd-io/fetchd/pkg/config"
	"github.com/fetchd-io/fetchd/pkg/fra"
	"github.com/fetchd-io/fetchd/pkg/lsdata"
	"github.com/fetchd-io/fetchd/pkg/timecal"
	"github.com/fetchd-io/fetchd/pkg/timejob"
)

// scanDue logs every directory whose schedule covers the current minute,
// ordered by the per-directory retrieval priority. Dispatches are
// throttled by the limiter.
func scanDue(ctx context.Context, area *fra.Area, limiter *ratelimiter.RateLimiter, now time.Time) {
	due := make([]int, 0, area.NumRecords())
	for i := 0; i < area.NumRecords(); i++ {
		rec, err := area.Record(i)
		if err != nil {
			logger.Error("Failed to read record %d: %v", i, err)
			continue
		}
		if rec.DirAlias == "" || rec.DirStatus == fra.DirStatusDisabled {
			continue
		}
		entries := rec.TimeEntries[:rec.NoOfTimeEntries]
		local := now.In(timecal.Location(rec.Timezone))
		if len(entries) == 0 || timecal.Contains(local, entries) {
			due = append(due, i)
		}
	}

	timejob.SortByPriority(due, func(index int) byte {
		rec, err := area.Record(index)
		if err != nil {
			return 0
		}
		return rec.Priority
	})

	for _, i := range due {
		rec, err := area.Record(i)
		if err != nil {
			continue
		}
		if err := limiter.Wait(ctx); err != nil {
			return
		}
		logger.Debug("Directory %s (id %d) is due, priority %c",
			rec.DirAlias, rec.DirID, rec.Priority)
	}
}

// nextWakeup returns the earliest scheduled time across all active
// directories, or now plus one minute when nothing is scheduled.
func nextWakeup(area *fra.Area, now time.Time) time.Time {
	earliest := now.Add(time.Minute)
	for i := 0; i < area.NumRecords(); i++ {
		rec, err := area.Record(i)
		if err != nil || rec.DirAlias == "" {
			continue
		}
		entries := rec.TimeEntries[:rec.NoOfTimeEntries]
		if len(entries) == 0 {
			continue
		}
		next := timecal.NextArray(now, entries, rec.Timezone)
		if next.Before(earliest) {
			earliest = next
		}
	}
	return earliest
}

func main() {
	configPath := flag.String("config", "", "Path to configuration file")
	logLevel := flag.String("log-level", "", "Log level override (DEBUG, INFO, WARN, ERROR)")
	initRecords := flag.Int("init", 0, "Create a fresh retrieve area with N records and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	level := cfg.Logging.Level
	if *logLevel != "" {
		level = *logLevel
	}
	logger.SetLevel(level)
	if cfg.Logging.Output != "" && cfg.Logging.Output != "stdout" {
		out, err := os.OpenFile(cfg.Logging.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			log.Fatalf("Failed to open log output %s: %v", cfg.Logging.Output, err)
		}
		defer out.Close()
		logger.SetOutput(out)
	}

	fmt.Println("fetchd - File Retrieve Daemon")
	logger.Info("Log level set to: %s", level)
	logger.Info("Work directory: %s", cfg.WorkDir)

	if *initRecords > 0 {
		path := cfg.AreaFilePath()
		if err := fra.Create(path, *initRecords, fra.CurrentVersion); err != nil {
			log.Fatalf("Failed to create retrieve area: %v", err)
		}
		logger.Info("Created retrieve area %s with %d records (version %d)",
			path, *initRecords, fra.CurrentVersion)
		return
	}

	if err := os.MkdirAll(cfg.FifoDir(), 0755); err != nil {
		log.Fatalf("Failed to create fifo directory: %v", err)
	}

	area, err := fra.Open(cfg.AreaFilePath(), cfg.MigrateConfig())
	if err != nil {
		log.Fatalf("Failed to open retrieve area: %v", err)
	}
	defer area.Close()
	logger.Info("Retrieve area %s open: version %d, %d records",
		cfg.AreaFilePath(), area.Header().Version, area.NumRecords())

	var store *lsdata.Store
	store, err = config.CreateLsDataStore(&cfg.LsData)
	if err != nil {
		log.Fatalf("Failed to create lsdata store: %v", err)
	}
	if store != nil {
		defer store.Close()
		logger.Info("Directory listing store: %s", cfg.LsData.Type)
	}

	limiter := ratelimiter.New(cfg.Retrieve.MaxDispatchRate, cfg.Retrieve.DispatchBurst)
	if cfg.Retrieve.MaxDispatchRate > 0 {
		logger.Info("Dispatch rate limited to %d/s (burst %d)",
			cfg.Retrieve.MaxDispatchRate, cfg.Retrieve.DispatchBurst)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("Received signal %v, shutting down", sig)
		cancel()
	}()

	logger.Info("Scheduler started")
	for {
		now := time.Now()
		scanDue(ctx, area, limiter, now)

		wakeup := nextWakeup(area, now)
		timer := time.NewTimer(time.Until(wakeup))
		select {
		case <-ctx.Done():
			timer.Stop()
			if err := area.Sync(); err != nil {
				logger.Error("Failed to sync retrieve area: %v", err)
			}
			logger.Info("Scheduler stopped")
			return
		case <-timer.C:
		}
	}
}

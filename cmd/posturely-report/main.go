// Command posturely-report prints session history and aggregate stats from
// the daemon's database, for a quick look without the HTTP API.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/mobil80solutionsservices-ctrl/Posturely-sub001/internal/config"
	"github.com/mobil80solutionsservices-ctrl/Posturely-sub001/internal/program"
	"github.com/mobil80solutionsservices-ctrl/Posturely-sub001/internal/storage"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	days := flag.Int("days", 30, "how many days of history to report")
	programFilter := flag.String("program", "", "only report one program (lateral_turn, vertical_tilt, breathing_hold)")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	db, err := storage.Open(ctx, cfg.Database)
	if err != nil {
		log.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	end := time.Now()
	start := end.AddDate(0, 0, -*days)

	filter := storage.SessionFilter{Start: start, End: end}
	if *programFilter != "" {
		id, err := program.ParseID(*programFilter)
		if err != nil {
			log.Error("invalid program filter", "error", err)
			os.Exit(1)
		}
		filter.Program = id
	}

	stats, err := db.SessionStats(ctx, start, end)
	if err != nil {
		log.Error("loading stats", "error", err)
		os.Exit(1)
	}

	fmt.Printf("Posturely report, last %d days\n\n", *days)
	fmt.Printf("Sessions:    %d (%d completed)\n", stats.TotalSessions, stats.CompletedSessions)
	fmt.Printf("Repetitions: %d\n", stats.TotalReps)
	fmt.Printf("Held poses:  %s\n", time.Duration(stats.TotalHoldMs)*time.Millisecond)
	fmt.Printf("Corrections: %d (%s spent correcting)\n",
		stats.TotalDeviations, time.Duration(stats.TotalCorrectionMs)*time.Millisecond)
	for _, p := range stats.ByProgram {
		fmt.Printf("  %-15s %d sessions, %d completed\n", p.Program, p.Count, p.Completed)
	}

	rows, err := db.QuerySessions(ctx, filter)
	if err != nil {
		log.Error("loading sessions", "error", err)
		os.Exit(1)
	}

	fmt.Printf("\n%-36s  %-14s  %-16s  %s\n", "SESSION", "PROGRAM", "STARTED", "OUTCOME")
	for _, r := range rows {
		outcome := "abandoned"
		if r.Completed {
			switch r.Program {
			case program.BreathingHold:
				outcome = fmt.Sprintf("completed, %d corrections", r.Deviations)
			default:
				outcome = fmt.Sprintf("completed, %d reps", r.CompletedReps)
			}
		}
		fmt.Printf("%-36s  %-14s  %-16s  %s\n",
			r.ID, r.Program, r.StartedAt.Local().Format("2006-01-02 15:04"), outcome)
	}
}

package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Nehilsa2/linkedin_profile_scraper/browser"
	"github.com/Nehilsa2/linkedin_profile_scraper/config"
	"github.com/Nehilsa2/linkedin_profile_scraper/output"
	"github.com/Nehilsa2/linkedin_profile_scraper/scraper"
)

// Exit codes. A run that finds nothing, or is blocked, still exits 0.
const (
	exitOK    = 0
	exitSetup = 1
	exitWrite = 2
)

func main() {
	config.LoadDotEnv()
	os.Exit(run(os.LookupEnv, nil))
}

// run executes one scrape and returns the process exit code. launch
// overrides the driver named in the config when non-nil.
func run(lookup config.LookupFunc, launch browser.Driver) int {
	cfg, err := config.FromEnv(lookup)
	if err != nil {
		log.Printf("❌ %v", err)
		return exitSetup
	}

	printBanner(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	startedAt := time.Now()

	opts := browser.OptionsFromConfig(cfg)
	opts.Launch = launch

	var res *scraper.Result
	err = browser.With(ctx, opts, func(s browser.Session) error {
		res = scraper.New(cfg).Run(ctx, s)
		return nil
	})
	if err != nil {
		log.Printf("❌ Error: %v", err)
		return exitSetup
	}

	printOutcome(res)

	now := time.Now()
	outPath := output.Filename(cfg.OutputFile, cfg.UseTimestamp, now)
	if err := output.SaveCSV(outPath, res.Records, now); err != nil {
		log.Printf("❌ Could not write %s: %v", outPath, err)
		return exitWrite
	}
	fmt.Printf("💾 Saved %d profiles to %s\n", len(res.Records), outPath)

	if statusPath := output.StatusPath(outPath, cfg.StatusFile); statusPath != "" {
		st := output.Status{
			RunID:      output.NewRunID(),
			Query:      cfg.Query,
			Status:     string(res.Status),
			Records:    len(res.Records),
			Pages:      res.Pages,
			Strategy:   res.Strategy,
			OutputFile: outPath,
			StartedAt:  startedAt,
			FinishedAt: time.Now(),

			PageStrategies: res.PageStrategies,
		}
		if res.Err != nil {
			st.Message = res.Err.Error()
		}
		if err := output.SaveStatus(statusPath, st); err != nil {
			fmt.Printf("⚠️ Could not write run status: %v\n", err)
		} else {
			fmt.Printf("🧾 Run status written to %s\n", statusPath)
		}
	}

	printDone(res)
	return exitOK
}

package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/Nehilsa2/linkedin_profile_scraper/config"
	"github.com/Nehilsa2/linkedin_profile_scraper/scraper"
	"github.com/Nehilsa2/linkedin_profile_scraper/stealth"
)

var (
	heading = color.New(color.FgCyan, color.Bold)
	good    = color.New(color.FgGreen, color.Bold)
	warn    = color.New(color.FgYellow, color.Bold)
	bad     = color.New(color.FgRed, color.Bold)
)

func rule() string {
	return strings.Repeat("=", 50)
}

func printBanner(cfg *config.Config) {
	heading.Println(rule())
	heading.Println("🤖 LinkedIn Profile Scraper")
	heading.Println(rule())
	fmt.Printf("📝 Search Query: %s\n", cfg.Query)
	fmt.Printf("📁 Output File: %s (timestamped: %v)\n", cfg.OutputFile, cfg.UseTimestamp)
	fmt.Printf("🎯 Max Results: %d (max pages: %d)\n", cfg.MaxResults, cfg.MaxPages)
	fmt.Printf("🖥️ Headless mode: %v\n", cfg.Headless)
	heading.Println(rule())
}

func printOutcome(res *scraper.Result) {
	fmt.Println()
	for i, r := range res.Records {
		fmt.Printf("✅ Found: %s\n", r.Title)
		fmt.Printf("   %d. %s\n", i+1, r.Link)
	}
	fmt.Printf("\n📊 Total profiles found: %d (pages loaded: %d)\n", len(res.Records), res.Pages)

	switch {
	case stealth.IsChallenge(res.Err):
		bad.Printf("🛑 Search was blocked by an anti-bot challenge: %v\n", res.Err)
	case res.Status == scraper.StatusFetchFailed:
		warn.Printf("⚠️ Search ended early: %v\n", res.Err)
	case res.Status == scraper.StatusEmpty:
		warn.Println("⚠️ No profiles to save")
	}
}

func printDone(res *scraper.Result) {
	if res.Status == scraper.StatusOK {
		good.Println("\n✅ Scraping completed successfully!")
		return
	}
	warn.Printf("\n🏁 Scraping finished with status %q\n", res.Status)
}

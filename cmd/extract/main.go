package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"equity_research/pkg/core/config"
	"equity_research/pkg/core/consolidate"
	"equity_research/pkg/core/extract"
	"equity_research/pkg/core/market"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, assuming environment variables are set.")
	}

	configPath := flag.String("config", "config/pipeline.yaml", "pipeline config file")
	fetchPrices := flag.Bool("fetch-prices", false, "fetch price history from EODHD instead of reading the raw CSV")
	from := flag.String("from", "2013-01-01", "price history start date (with -fetch-prices)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}

	fmt.Printf("Extraction stage for %s (%s)\n", cfg.Company.Name, cfg.Company.Ticker)

	if *fetchPrices {
		if err := fetchPriceHistory(cfg, *from); err != nil {
			log.Fatalf("Price fetch failed: %v", err)
		}
	}

	runner := &extract.Runner{
		RawAnnualDir:    cfg.Paths.RawAnnualDir,
		RawQuarterlyDir: cfg.Paths.RawQuarterlyDir,
		RawMarketFile:   cfg.Paths.RawMarketFile,
		ProcessedDir:    cfg.Paths.ProcessedDir,
		Ticker:          cfg.Company.Ticker,
		Company:         cfg.Company.Name,
	}
	if err := runner.Run(); err != nil {
		log.Fatalf("Extraction failed: %v", err)
	}

	c := &consolidate.Consolidator{
		ProcessedDir: cfg.Paths.ProcessedDir,
		OutputDir:    cfg.Paths.ConsolidatedDir,
	}
	if _, err := c.Run(); err != nil {
		log.Fatalf("Consolidation failed: %v", err)
	}

	fmt.Println("Extraction stage complete.")
}

// fetchPriceHistory pulls daily bars from EODHD into the raw market file,
// where the normal cleaning path picks them up.
func fetchPriceHistory(cfg config.Config, from string) error {
	apiKey := os.Getenv("EODHD_API_KEY")
	if apiKey == "" {
		return fmt.Errorf("EODHD_API_KEY is not set")
	}

	fromDate, err := time.Parse("2006-01-02", from)
	if err != nil {
		return fmt.Errorf("bad -from date %q: %w", from, err)
	}

	client := market.NewClient(apiKey)
	bars, err := client.FetchPriceHistory(context.Background(),
		cfg.Company.Ticker, cfg.Company.Name, cfg.Company.Exchange,
		fromDate, time.Now())
	if err != nil {
		return err
	}
	if err := extract.WritePriceCSV(cfg.Paths.RawMarketFile, bars); err != nil {
		return err
	}
	fmt.Printf("Fetched %d price bars -> %s\n", len(bars), cfg.Paths.RawMarketFile)
	return nil
}

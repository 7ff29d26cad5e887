package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"equity_research/pkg/core/analysis"
	"equity_research/pkg/core/config"
	"equity_research/pkg/core/pipeline"
	"equity_research/pkg/core/store"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, assuming environment variables are set.")
	}

	configPath := flag.String("config", "config/pipeline.yaml", "pipeline config file")
	save := flag.Bool("save", false, "mirror the finished analysis into Postgres (needs DATABASE_URL)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}

	fmt.Printf("Analysis stage for %s (%s)\n", cfg.Company.Name, cfg.Company.Ticker)

	records, quarters, market, err := pipeline.LoadInputs(cfg)
	if err != nil {
		log.Fatalf("Load inputs failed: %v", err)
	}
	if err := pipeline.ValidateRecords(records, cfg.Validation); err != nil {
		log.Fatalf("Validation failed: %v", err)
	}

	a, err := pipeline.BuildAnalysis(cfg, records, quarters, market)
	if err != nil {
		log.Fatalf("Analysis failed: %v", err)
	}
	if err := analysis.WriteAnalysisCSVs(cfg.Paths.AnalysisDir, a); err != nil {
		log.Fatalf("Write analysis CSVs failed: %v", err)
	}

	if *save {
		if err := store.InitDB(context.Background()); err != nil {
			log.Fatalf("Database init failed: %v", err)
		}
		defer store.Close()
		if err := store.NewAnalysisRepo().Save(context.Background(), a); err != nil {
			log.Fatalf("Save to database failed: %v", err)
		}
		fmt.Printf("Saved analysis for %s to database\n", a.Ticker)
	}

	fmt.Printf("Analysis stage complete: %s (%s, score %d/10)\n",
		a.Decision.Recommendation, a.Decision.Confidence, a.Decision.Score)
}

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"equity_research/pkg/core/config"
	"equity_research/pkg/core/llm"
	"equity_research/pkg/core/pipeline"
	"equity_research/pkg/core/report"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, assuming environment variables are set.")
	}

	configPath := flag.String("config", "config/pipeline.yaml", "pipeline config file")
	narrative := flag.Bool("narrative", false, "generate analyst commentary via Gemini (needs GEMINI_API_KEY)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}

	fmt.Printf("Report stage for %s (%s)\n", cfg.Company.Name, cfg.Company.Ticker)

	records, quarters, market, err := pipeline.LoadInputs(cfg)
	if err != nil {
		log.Fatalf("Load inputs failed: %v", err)
	}
	a, err := pipeline.BuildAnalysis(cfg, records, quarters, market)
	if err != nil {
		log.Fatalf("Analysis failed: %v", err)
	}

	builder := report.NewBuilder(a)
	if *narrative {
		if os.Getenv("GEMINI_API_KEY") == "" {
			log.Fatal("Error: -narrative requires GEMINI_API_KEY.")
		}
		provider, err := llm.NewProvider("gemini")
		if err != nil {
			log.Fatalf("Provider error: %v", err)
		}
		text, err := report.GenerateCommentary(context.Background(), provider, a)
		if err != nil {
			fmt.Printf("Warning: analyst commentary skipped: %v\n", err)
		} else {
			builder.Narrative = text
		}
	}

	mdPath, pdfPath, err := report.Write(cfg.Paths.OutputDir, builder.Build())
	if err != nil {
		log.Fatalf("Report write failed: %v", err)
	}
	fmt.Printf("Report stage complete: %s, %s\n", mdPath, pdfPath)
}

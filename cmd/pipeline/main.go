package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/joho/godotenv"

	"equity_research/pkg/core/config"
	"equity_research/pkg/core/llm"
	"equity_research/pkg/core/pipeline"
	"equity_research/pkg/core/store"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, assuming environment variables are set.")
	}

	configPath := flag.String("config", "config/pipeline.yaml", "pipeline config file")
	save := flag.Bool("save", false, "mirror the finished analysis into Postgres (needs DATABASE_URL)")
	narrative := flag.Bool("narrative", false, "generate analyst commentary via Gemini (needs GEMINI_API_KEY)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}

	ctx := context.Background()
	orch := pipeline.NewOrchestrator(cfg)

	if *save {
		if err := store.InitDB(ctx); err != nil {
			log.Fatalf("Database init failed: %v", err)
		}
		defer store.Close()
		orch.SaveToStore = true
	}

	if *narrative {
		if os.Getenv("GEMINI_API_KEY") == "" {
			log.Fatal("Error: -narrative requires GEMINI_API_KEY.")
		}
		provider, err := llm.NewProvider("gemini")
		if err != nil {
			log.Fatalf("Provider error: %v", err)
		}
		orch.Narrative = provider
	}

	if err := orch.Run(ctx); err != nil {
		log.Fatalf("Pipeline failed: %v", err)
	}
}

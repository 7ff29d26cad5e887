package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"equity_research/pkg/core/analysis"
)

// AnalysisRepo handles storage of finished company analyses.
type AnalysisRepo struct{}

// NewAnalysisRepo creates a new repository instance.
func NewAnalysisRepo() *AnalysisRepo {
	return &AnalysisRepo{}
}

// Save upserts the analysis keyed by ticker.
//
// Schema assumption:
//
//	CREATE TABLE IF NOT EXISTS equity_analysis (
//	  ticker TEXT PRIMARY KEY,
//	  company TEXT,
//	  analysis_json JSONB,
//	  updated_at TIMESTAMPTZ
//	);
func (r *AnalysisRepo) Save(ctx context.Context, a *analysis.CompanyAnalysis) error {
	pool := GetPool()
	if pool == nil {
		return fmt.Errorf("database pool not initialized")
	}

	jsonData, err := encodeJSONB(a)
	if err != nil {
		return fmt.Errorf("failed to marshal analysis: %w", err)
	}

	query := `
		INSERT INTO equity_analysis (ticker, company, analysis_json, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (ticker)
		DO UPDATE SET
			company = EXCLUDED.company,
			analysis_json = EXCLUDED.analysis_json,
			updated_at = EXCLUDED.updated_at;
	`

	if _, err := pool.Exec(ctx, query, a.Ticker, a.Company, jsonData, time.Now()); err != nil {
		return fmt.Errorf("failed to save analysis: %w", err)
	}
	return nil
}

// Load retrieves the stored analysis for a ticker. Metric values persisted
// as null come back as zero, not as the missing sentinel; the stored copy
// is for inspection, the CSVs remain authoritative.
func (r *AnalysisRepo) Load(ctx context.Context, ticker string) (*analysis.CompanyAnalysis, error) {
	pool := GetPool()
	if pool == nil {
		return nil, fmt.Errorf("database pool not initialized")
	}

	query := `SELECT analysis_json FROM equity_analysis WHERE ticker = $1`

	var jsonData []byte
	if err := pool.QueryRow(ctx, query, ticker).Scan(&jsonData); err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("no analysis found for ticker %s", ticker)
		}
		return nil, fmt.Errorf("failed to load analysis: %w", err)
	}

	var a analysis.CompanyAnalysis
	if err := json.Unmarshal(jsonData, &a); err != nil {
		return nil, fmt.Errorf("failed to unmarshal analysis: %w", err)
	}
	return &a, nil
}

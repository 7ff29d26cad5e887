package report

import (
	"context"
	"fmt"
	"strings"

	"equity_research/pkg/core/analysis"
	"equity_research/pkg/core/llm"
	"equity_research/pkg/core/utils"
)

const commentarySystemPrompt = `You are an equity research analyst. You are given ` +
	`computed financial metrics for a company and must write a short, factual ` +
	`commentary. Do not invent figures not present in the input. Respond with JSON: ` +
	`{"summary": "...", "outlook": "...", "risks": ["...", "..."]}`

// commentary is the model's structured reply.
type commentary struct {
	Summary string   `json:"summary"`
	Outlook string   `json:"outlook"`
	Risks   []string `json:"risks"`
}

// GenerateCommentary asks the provider for an analyst commentary over the
// analysis figures and formats the reply as a Markdown section body. Model
// output is recovered through the JSON repair and Hjson fallbacks before
// giving up.
func GenerateCommentary(ctx context.Context, provider llm.Provider, a *analysis.CompanyAnalysis) (string, error) {
	prompt := commentaryPrompt(a)

	raw, err := provider.GenerateResponse(ctx, prompt, commentarySystemPrompt, map[string]interface{}{
		"response_format": "json",
	})
	if err != nil {
		return "", fmt.Errorf("commentary generation failed: %w", err)
	}

	var c commentary
	if _, err := utils.SmartParse(utils.CleanMarkdown(raw), &c); err != nil {
		return "", fmt.Errorf("failed to parse commentary reply: %w", err)
	}
	if c.Summary == "" {
		return "", fmt.Errorf("commentary reply had no summary")
	}

	var sb strings.Builder
	sb.WriteString(c.Summary)
	sb.WriteString("\n")
	if c.Outlook != "" {
		sb.WriteString("\n**Outlook:** ")
		sb.WriteString(c.Outlook)
		sb.WriteString("\n")
	}
	if len(c.Risks) > 0 {
		sb.WriteString("\n**Risks to watch:**\n\n")
		for _, r := range c.Risks {
			fmt.Fprintf(&sb, "- %s\n", r)
		}
	}

	body := sb.String()
	if !utils.ValidateMarkdown(body) {
		return "", fmt.Errorf("commentary did not render as valid markdown")
	}
	return body, nil
}

// commentaryPrompt condenses the analysis into the figures the model may
// reference.
func commentaryPrompt(a *analysis.CompanyAnalysis) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Company: %s (%s)\n", a.Company, a.Ticker)
	fmt.Fprintf(&sb, "Recommendation: %s (score %d, confidence %s)\n",
		a.Decision.Recommendation, a.Decision.Score, a.Decision.Confidence)

	if p, ok := a.LatestProfit(); ok {
		fmt.Fprintf(&sb, "Latest fiscal year %d: revenue %s, gross margin %s, operating margin %s\n",
			p.Year, FormatMoney(p.Revenue), FormatPercent(p.GrossMargin), FormatPercent(p.OperatingMargin))
	}
	if b, ok := a.LatestBalance(); ok {
		fmt.Fprintf(&sb, "Cash %s, current ratio %s\n", FormatMoney(b.Cash), FormatRatio(b.CurrentRatio))
	}
	if a.HaveScenario {
		fmt.Fprintf(&sb, "Probability-weighted 5-year CAGR %s, expected enterprise value %s\n",
			FormatPercent(a.Scenarios.CAGR), FormatMoney(a.Scenarios.Valuation))
	}
	for _, h := range a.Decision.Horizons {
		fmt.Fprintf(&sb, "Horizon %s: %s (%s)\n", h.Period, h.Recommendation, h.Reason)
	}
	return sb.String()
}

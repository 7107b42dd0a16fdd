package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"schoolprofile/internal/agent"
	"schoolprofile/internal/profile"
)

var errCacheMiss = errors.New("no cache entry found")

// summaryCache stores overviews by selection key.
type summaryCache interface {
	LoadSummaryCache(key string, maxAge time.Duration) (string, error)
	SaveSummaryCache(key, school, model, summary string) error
}

// AISummaryService writes a short overview paragraph for a profile.
type AISummaryService struct {
	client   *anthropic.Client
	cache    summaryCache
	model    string
	cacheTTL time.Duration
}

// NewAISummaryService creates the overview service. cache may be nil.
func NewAISummaryService(apiKey, model string, cache summaryCache) (*AISummaryService, error) {
	if apiKey == "" {
		if logger != nil {
			logger.Error("AI summary initialization failed: missing API key")
		}
		return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
	}
	if model == "" {
		model = string(anthropic.ModelClaudeHaiku4_5_20251001)
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))

	if logger != nil {
		logger.Info("AI summary service initialized", "model", model, "cache_ttl_days", 30)
	}

	return &AISummaryService{
		client:   &client,
		cache:    cache,
		model:    model,
		cacheTTL: 30 * 24 * time.Hour,
	}, nil
}

// Overview returns the cached overview for the profile's selection, or asks
// Claude for one.
func (s *AISummaryService) Overview(ctx context.Context, p *profile.Profile) (string, error) {
	key := summaryKey(p, s.model)

	if s.cache != nil {
		if text, err := s.cache.LoadSummaryCache(key, s.cacheTTL); err == nil {
			summaryRequests.WithLabelValues("cache").Inc()
			return text, nil
		} else if !errors.Is(err, errCacheMiss) && logger != nil {
			logger.Warn("Failed to read AI summary cache", "error", err)
		}
	}

	prompt, err := overviewPrompt(p)
	if err != nil {
		return "", err
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(s.model),
		MaxTokens: 1000,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}

	message, err := s.client.Messages.New(ctx, params)
	if err != nil {
		summaryRequests.WithLabelValues("error").Inc()
		if logger != nil {
			logger.Error("Claude API call failed for profile overview", "error", err, "school", p.Selection.School)
		}
		return "", fmt.Errorf("Claude API error: %w", err)
	}

	var text strings.Builder
	for _, block := range message.Content {
		if textBlock, ok := block.AsAny().(anthropic.TextBlock); ok {
			text.WriteString(textBlock.Text)
		}
	}
	if text.Len() == 0 {
		summaryRequests.WithLabelValues("error").Inc()
		return "", fmt.Errorf("no text response from Claude")
	}
	summaryRequests.WithLabelValues("model").Inc()

	overview := strings.TrimSpace(text.String())
	if s.cache != nil {
		if err := s.cache.SaveSummaryCache(key, p.Selection.School, s.model, overview); err != nil && logger != nil {
			logger.Warn("Failed to cache AI summary", "error", err)
		}
	}
	return overview, nil
}

// summaryKey identifies a selection and model.
func summaryKey(p *profile.Profile, model string) string {
	sel, _ := json.Marshal(p.Selection)
	sum := sha256.Sum256(append(sel, []byte("|"+model)...))
	return hex.EncodeToString(sum[:])
}

// overviewPrompt hands the model the profile's values and narratives.
func overviewPrompt(p *profile.Profile) (string, error) {
	data, err := json.MarshalIndent(agent.Summarize(p), "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode profile: %w", err)
	}
	return fmt.Sprintf(`You are writing for parents reading an Atlanta Public Schools school profile.

Below is the profile of %s as JSON: chart values by name (schools, the district and the state), the year each chart shows, advisories, and the descriptive text under each chart. Percentages are fractions (0.82 means 82%%). "missing" means the school did not report a value.

%s

Write one paragraph of four to six sentences that summarizes where the school stands against the district and state. Use only the numbers above. Mention missing data only if it matters. Return plain text with no markdown.`, p.Title, data), nil
}

// initOverviewer wires the overview service to the DuckDB cache.
func initOverviewer(svc *ProfileService, model string) (*AISummaryService, error) {
	var cache summaryCache
	if svc != nil && svc.db != nil {
		cache = svc.db
	}
	return NewAISummaryService(os.Getenv("ANTHROPIC_API_KEY"), model, cache)
}

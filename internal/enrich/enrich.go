// Package enrich turns raw journal input into structured metadata with a
// language model. Callers normally go through Safe, which never fails and
// substitutes fixed fallbacks when the model is unreachable.
package enrich

import (
	"context"
	"errors"
	"time"

	"github.com/losebird/lifelog-ai/internal/models"
)

// ErrDisabled is returned by Noop for every call.
var ErrDisabled = errors.New("ai enrichment is disabled")

// Analysis is the structured metadata extracted from a piece of text.
type Analysis struct {
	Tags        []string
	ActionItems []models.TaskDetails
	Emotion     models.Emotion
}

type LinkAnalysis struct {
	Title   string
	Summary string
	Tags    []string
}

// ScanAnalysis is the OCR text of a scanned document plus its analysis.
type ScanAnalysis struct {
	OCRText string
	Analysis
}

// FileAnalysis summarizes an uploaded document.
type FileAnalysis struct {
	SummaryPoints []string
	Analysis
}

// Image is one page of a scanned document.
type Image struct {
	Data     []byte
	MIMEType string
}

// Enricher is the AI gateway.
type Enricher interface {
	Analyze(ctx context.Context, text string) (Analysis, error)
	AnalyzeLink(ctx context.Context, url string) (LinkAnalysis, error)
	AnalyzeScan(ctx context.Context, pages []Image) (ScanAnalysis, error)
	AnalyzeFile(ctx context.Context, text string) (FileAnalysis, error)
	GenerateSuggestions(ctx context.Context, records []models.Record) ([]models.ProactiveSuggestion, error)
	Search(ctx context.Context, query string, records []models.Record) ([]string, error)
	SearchSuggestions(ctx context.Context, records []models.Record) ([]string, error)
	InsightReport(ctx context.Context, template models.InsightTemplate, records []models.Record) (string, error)
}

// Noop is the Enricher used when AI is disabled or no API key is set.
type Noop struct{}

func (Noop) Analyze(context.Context, string) (Analysis, error) {
	return Analysis{}, ErrDisabled
}

func (Noop) AnalyzeLink(context.Context, string) (LinkAnalysis, error) {
	return LinkAnalysis{}, ErrDisabled
}

func (Noop) AnalyzeScan(context.Context, []Image) (ScanAnalysis, error) {
	return ScanAnalysis{}, ErrDisabled
}

func (Noop) AnalyzeFile(context.Context, string) (FileAnalysis, error) {
	return FileAnalysis{}, ErrDisabled
}

func (Noop) GenerateSuggestions(context.Context, []models.Record) ([]models.ProactiveSuggestion, error) {
	return nil, ErrDisabled
}

func (Noop) Search(context.Context, string, []models.Record) ([]string, error) {
	return nil, ErrDisabled
}

func (Noop) SearchSuggestions(context.Context, []models.Record) ([]string, error) {
	return nil, ErrDisabled
}

func (Noop) InsightReport(context.Context, models.InsightTemplate, []models.Record) (string, error) {
	return "", ErrDisabled
}

// Config configures an OpenAIClient.
type Config struct {
	BaseURL    string
	APIKey     string
	Model      string
	Timeout    time.Duration
	MaxRetries int
	// Now is the reference clock for relative due dates.
	Now func() time.Time
}

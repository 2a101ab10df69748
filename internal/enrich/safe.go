package enrich

import (
	"context"
	"errors"

	"github.com/losebird/lifelog-ai/internal/logger"
	"github.com/losebird/lifelog-ai/internal/models"
)

// Fallback texts used when the model cannot answer.
const (
	FallbackLinkSummary = "Could not generate summary."
	NoSummary           = "No summary available."
	FallbackOCRText     = "图片分析失败。请检查图片或稍后再试。"
	FallbackFileSummary = "An error occurred during AI analysis."
	FailedReport        = "生成洞察报告时出错。"
	EmptyReport         = "AI未能生成报告，请重试。"
	NoRecordsReport     = "没有找到相关记录以生成报告。"
)

// Safe wraps an Enricher so that no call fails. Errors are logged and
// replaced with neutral fallback values; successful results are normalized
// to the tag, emotion and priority limits. The error results are always nil.
type Safe struct {
	inner Enricher
}

// NewSafe wraps inner. A nil inner behaves like Noop.
func NewSafe(inner Enricher) *Safe {
	if inner == nil {
		inner = Noop{}
	}
	return &Safe{inner: inner}
}

// Enabled reports whether a real model sits behind s.
func (s *Safe) Enabled() bool {
	_, noop := s.inner.(Noop)
	return !noop
}

func warn(op string, err error) {
	if errors.Is(err, ErrDisabled) {
		logger.Debug("Enrichment disabled, using fallback", "op", op)
		return
	}
	logger.Warn("Enrichment failed, using fallback", "op", op, "error", err)
}

func fallbackAnalysis() Analysis {
	return Analysis{Tags: []string{}, ActionItems: []models.TaskDetails{}, Emotion: models.EmotionNeutral}
}

func (s *Safe) Analyze(ctx context.Context, text string) (Analysis, error) {
	a, err := s.inner.Analyze(ctx, text)
	if err != nil {
		warn("analyze", err)
		return fallbackAnalysis(), nil
	}
	return normalizeAnalysis(a), nil
}

func (s *Safe) AnalyzeLink(ctx context.Context, url string) (LinkAnalysis, error) {
	l, err := s.inner.AnalyzeLink(ctx, url)
	if err != nil {
		warn("analyze link", err)
		return LinkAnalysis{Title: url, Summary: FallbackLinkSummary, Tags: []string{}}, nil
	}
	if l.Title == "" {
		l.Title = url
	}
	if l.Summary == "" {
		l.Summary = NoSummary
	}
	l.Tags = normalizeTags(l.Tags)
	return l, nil
}

func (s *Safe) AnalyzeScan(ctx context.Context, pages []Image) (ScanAnalysis, error) {
	a, err := s.inner.AnalyzeScan(ctx, pages)
	if err != nil {
		warn("analyze scan", err)
		return ScanAnalysis{OCRText: FallbackOCRText, Analysis: fallbackAnalysis()}, nil
	}
	a.Analysis = normalizeAnalysis(a.Analysis)
	return a, nil
}

func (s *Safe) AnalyzeFile(ctx context.Context, text string) (FileAnalysis, error) {
	a, err := s.inner.AnalyzeFile(ctx, text)
	if err != nil {
		warn("analyze file", err)
		return FileAnalysis{SummaryPoints: []string{FallbackFileSummary}, Analysis: fallbackAnalysis()}, nil
	}
	if a.SummaryPoints == nil {
		a.SummaryPoints = []string{}
	}
	a.Analysis = normalizeAnalysis(a.Analysis)
	return a, nil
}

func (s *Safe) GenerateSuggestions(ctx context.Context, records []models.Record) ([]models.ProactiveSuggestion, error) {
	out, err := s.inner.GenerateSuggestions(ctx, records)
	if err != nil {
		warn("suggestions", err)
		return []models.ProactiveSuggestion{}, nil
	}
	if out == nil {
		out = []models.ProactiveSuggestion{}
	}
	return out, nil
}

func (s *Safe) Search(ctx context.Context, query string, records []models.Record) ([]string, error) {
	ids, err := s.inner.Search(ctx, query, records)
	if err != nil {
		warn("search", err)
		return []string{}, nil
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

func (s *Safe) SearchSuggestions(ctx context.Context, records []models.Record) ([]string, error) {
	out, err := s.inner.SearchSuggestions(ctx, records)
	if err != nil {
		warn("search suggestions", err)
		return []string{}, nil
	}
	if out == nil {
		out = []string{}
	}
	return out, nil
}

func (s *Safe) InsightReport(ctx context.Context, template models.InsightTemplate, records []models.Record) (string, error) {
	report, err := s.inner.InsightReport(ctx, template, records)
	if err != nil {
		warn("insight report", err)
		return FailedReport, nil
	}
	if report == "" {
		return EmptyReport, nil
	}
	return report, nil
}

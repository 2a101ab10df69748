// Package capture builds journal records from raw input. Each builder runs
// the input through the enrichment gateway and always yields a savable
// record: enrichment failures degrade to fallback metadata, never to a lost
// entry.
package capture

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/losebird/lifelog-ai/internal/constants"
	"github.com/losebird/lifelog-ai/internal/enrich"
	"github.com/losebird/lifelog-ai/internal/errors"
	"github.com/losebird/lifelog-ai/internal/logger"
	"github.com/losebird/lifelog-ai/internal/models"
)

// MetaFetcher reads page metadata for a link.
type MetaFetcher func(ctx context.Context, url string) (enrich.LinkMeta, error)

// Builder turns raw input into records.
type Builder struct {
	enricher  enrich.Enricher
	fetchMeta MetaFetcher
	now       func() time.Time
	newID     func() string
}

// New wraps e in enrich.Safe unless it already is one. Page metadata is
// fetched over HTTP with a short timeout.
func New(e enrich.Enricher) *Builder {
	safe, ok := e.(*enrich.Safe)
	if !ok {
		safe = enrich.NewSafe(e)
	}
	client := &http.Client{Timeout: constants.LinkFetchTimeout}
	return &Builder{
		enricher: safe,
		fetchMeta: func(ctx context.Context, u string) (enrich.LinkMeta, error) {
			return enrich.FetchLinkMeta(ctx, client, u)
		},
		now:   time.Now,
		newID: models.NewID,
	}
}

// WithMetaFetcher replaces the page metadata fetcher. A nil f disables it.
func (b *Builder) WithMetaFetcher(f MetaFetcher) *Builder {
	b.fetchMeta = f
	return b
}

// WithClock replaces the clock and id source.
func (b *Builder) WithClock(now func() time.Time, newID func() string) *Builder {
	if now != nil {
		b.now = now
	}
	if newID != nil {
		b.newID = newID
	}
	return b
}

func (b *Builder) base(typ models.RecordType, content string) models.Record {
	return models.Record{
		ID:          b.newID(),
		Type:        typ,
		Content:     content,
		Timestamp:   b.now().UTC(),
		Tags:        []string{},
		ActionItems: []models.ActionItem{},
	}
}

// items turns extracted tasks into action items owned by recordID.
func (b *Builder) items(recordID string, tasks []models.TaskDetails) []models.ActionItem {
	out := make([]models.ActionItem, 0, len(tasks))
	for _, d := range tasks {
		priority := d.Priority
		if !priority.Valid() {
			priority = models.PriorityMedium
		}
		out = append(out, models.ActionItem{
			ID:         b.newID(),
			RecordID:   recordID,
			Task:       d.Task,
			DueDate:    d.DueDate,
			Priority:   priority,
			Project:    d.Project,
			Status:     models.StatusTodo,
			Subtasks:   []models.Subtask{},
			Reminder:   models.ReminderNone,
			Recurrence: models.RecurrenceNone,
		})
	}
	return out
}

func (b *Builder) apply(r *models.Record, a enrich.Analysis) {
	r.Tags = models.MergeTags(r.Tags, a.Tags)
	r.ActionItems = append(r.ActionItems, b.items(r.ID, a.ActionItems)...)
	if r.Emotion == "" {
		r.Emotion = a.Emotion
	}
}

// Text builds a text record. A valid emotion overrides the detected one.
func (b *Builder) Text(ctx context.Context, content string, emotion models.Emotion) (models.Record, error) {
	if strings.TrimSpace(content) == "" {
		return models.Record{}, errors.Invalid("content", "must not be empty")
	}
	r := b.base(models.RecordText, content)
	if emotion.Valid() {
		r.Emotion = emotion
	}
	a, _ := b.enricher.Analyze(ctx, content)
	b.apply(&r, a)
	return r, nil
}

// Voice builds a record from a transcript and the location of its audio.
func (b *Builder) Voice(ctx context.Context, transcript, audioURL string) (models.Record, error) {
	if strings.TrimSpace(transcript) == "" {
		return models.Record{}, errors.Invalid("transcript", "must not be empty")
	}
	r := b.base(models.RecordVoice, transcript)
	r.AudioURL = audioURL
	a, _ := b.enricher.Analyze(ctx, transcript)
	b.apply(&r, a)
	return r, nil
}

// Link builds a link record. Title and summary come from the page's own
// metadata when it is reachable and from the model otherwise. Notes, when
// given, become the content and are analyzed like a text record.
func (b *Builder) Link(ctx context.Context, rawURL, notes string) (models.Record, error) {
	rawURL = strings.TrimSpace(rawURL)
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return models.Record{}, errors.Invalid("url", "must be an http or https URL")
	}

	r := b.base(models.RecordLink, notes)
	preview, _ := b.enricher.AnalyzeLink(ctx, rawURL)
	details := models.LinkDetails{URL: rawURL, Title: preview.Title, Summary: preview.Summary}

	if b.fetchMeta != nil {
		meta, err := b.fetchMeta(ctx, rawURL)
		if err != nil {
			logger.Debug("Link metadata unavailable", "url", rawURL, "error", err)
		} else {
			if meta.Title != "" {
				details.Title = meta.Title
			}
			if meta.Description != "" && (details.Summary == enrich.FallbackLinkSummary || details.Summary == enrich.NoSummary) {
				details.Summary = meta.Description
			}
		}
	}
	r.LinkDetails = &details
	r.Tags = models.MergeTags(preview.Tags)

	if strings.TrimSpace(notes) != "" {
		a, _ := b.enricher.Analyze(ctx, notes)
		b.apply(&r, a)
	}
	return r, nil
}

// Scan builds a record from document photos. content replaces the OCR text
// as the visible content when non-empty; the OCR text is always kept as the
// searchable full text.
func (b *Builder) Scan(ctx context.Context, pages []enrich.Image, imageURL, content string) (models.Record, error) {
	if len(pages) == 0 {
		return models.Record{}, errors.Invalid("scan", "at least one page is required")
	}
	a, _ := b.enricher.AnalyzeScan(ctx, pages)
	if strings.TrimSpace(content) == "" {
		content = a.OCRText
	}
	r := b.base(models.RecordScan, content)
	r.ScanDetails = &models.ScanDetails{ImageURL: imageURL}
	r.FullText = a.OCRText
	b.apply(&r, a.Analysis)
	return r, nil
}

// File builds a record from an uploaded document. Text documents are
// summarized; images go through OCR. Other types are rejected.
func (b *Builder) File(ctx context.Context, name, mimeType string, data []byte) (models.Record, error) {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	if strings.TrimSpace(name) == "" {
		return models.Record{}, errors.Invalid("file name", "must not be empty")
	}

	var (
		content  string
		fullText string
		analysis enrich.Analysis
	)
	switch {
	case strings.HasPrefix(mimeType, "text/"), mimeType == "application/json":
		fullText = string(data)
		fa, _ := b.enricher.AnalyzeFile(ctx, fullText)
		points := make([]string, len(fa.SummaryPoints))
		for i, p := range fa.SummaryPoints {
			points[i] = "• " + p
		}
		content = strings.Join(points, "\n")
		analysis = fa.Analysis
	case strings.HasPrefix(mimeType, "image/"):
		sa, _ := b.enricher.AnalyzeScan(ctx, []enrich.Image{{Data: data, MIMEType: mimeType}})
		content = sa.OCRText
		fullText = sa.OCRText
		analysis = sa.Analysis
	default:
		return models.Record{}, errors.Invalid("file type", "unsupported type "+mimeType)
	}

	if strings.TrimSpace(content) == "" {
		content = name
	}
	r := b.base(models.RecordFile, content)
	r.FileDetails = &models.FileDetails{Name: name, Type: mimeType}
	r.FullText = fullText
	b.apply(&r, analysis)
	return r, nil
}

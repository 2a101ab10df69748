package enrich

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"time"

	openaigo "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/losebird/lifelog-ai/internal/constants"
	"github.com/losebird/lifelog-ai/internal/logger"
	"github.com/losebird/lifelog-ai/internal/models"
)

const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "gpt-4o-mini"
)

// OpenAIClient talks to any OpenAI-compatible chat completions endpoint.
// Rate-limited calls are retried by the client with exponential backoff.
type OpenAIClient struct {
	client openaigo.Client
	model  string
	now    func() time.Time
	newID  func() string
}

// NewOpenAIClient builds a client from cfg. An API key is required.
func NewOpenAIClient(cfg Config, httpClient *http.Client) (*OpenAIClient, error) {
	key := strings.TrimSpace(cfg.APIKey)
	if key == "" {
		return nil, fmt.Errorf("ai config incomplete: api key is required")
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = constants.AITimeout
	}
	retries := cfg.MaxRetries
	if retries <= 0 {
		retries = constants.AIMaxRetries
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &OpenAIClient{
		client: openaigo.NewClient(
			option.WithBaseURL(baseURL),
			option.WithAPIKey(key),
			option.WithHTTPClient(httpClient),
			option.WithMaxRetries(retries),
			option.WithRequestTimeout(timeout),
		),
		model: model,
		now:   now,
		newID: models.NewID,
	}, nil
}

func (c *OpenAIClient) complete(ctx context.Context, system string, user openaigo.ChatCompletionMessageParamUnion) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openaigo.ChatCompletionNewParams{
		Model: openaigo.ChatModel(c.model),
		Messages: []openaigo.ChatCompletionMessageParamUnion{
			openaigo.SystemMessage(system),
			user,
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to call chat completion: %w", err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", fmt.Errorf("failed to call chat completion: empty choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

const analysisRules = `Rules:
1. Tags: at most 3 keyword tags for the main themes. Each tag is 4 characters or less.
2. Action items: every task, reminder or to-do item. Each has "task", and optionally
   "dueDate" (ISO 8601), "priority" ("high", "medium" or "low", default "medium") and "project".
   Resolve relative dates ("tomorrow", "next Friday", "end of the month") against the current
   date. A date without a time means 09:00 local time. Omit dueDate when no date is mentioned.
3. Emotion: one emoji from 😊 😢 😠 😮 🤔 😐 for the overall tone, 😐 when unclear.
Return ONLY a JSON object, no markdown and no prose.`

func (c *OpenAIClient) Analyze(ctx context.Context, text string) (Analysis, error) {
	system := "You analyze a user's journal entry and extract structured data.\n" +
		"The current date and time is " + c.now().Format(time.RFC3339) + ".\n" + analysisRules +
		"\nShape: {\"tags\": [], \"actionItems\": [], \"emotion\": \"😐\"}"
	reply, err := c.complete(ctx, system, openaigo.UserMessage(text))
	if err != nil {
		return Analysis{}, err
	}
	res, err := parseObject(reply)
	if err != nil {
		return Analysis{}, err
	}
	return parseAnalysis(res), nil
}

func (c *OpenAIClient) AnalyzeLink(ctx context.Context, url string) (LinkAnalysis, error) {
	system := `You summarize web pages. Given a URL, infer the page content and return a concise title,
a 2-3 sentence summary and at most 3 tags of 4 characters or less.
Return ONLY a JSON object: {"title": "", "summary": "", "tags": []}`
	reply, err := c.complete(ctx, system, openaigo.UserMessage(url))
	if err != nil {
		return LinkAnalysis{}, err
	}
	res, err := parseObject(reply)
	if err != nil {
		return LinkAnalysis{}, err
	}
	return parseLink(res, url), nil
}

func (c *OpenAIClient) AnalyzeScan(ctx context.Context, pages []Image) (ScanAnalysis, error) {
	if len(pages) == 0 {
		return ScanAnalysis{}, fmt.Errorf("failed to analyze scan: no pages")
	}
	system := "The attached images are the pages of one document, in order.\n" +
		"Extract all text with OCR and combine it into \"ocrText\" (empty string when there is none).\n" +
		"Base everything else only on the extracted text.\n" + analysisRules +
		"\nShape: {\"ocrText\": \"\", \"tags\": [], \"actionItems\": [], \"emotion\": \"😐\"}"

	parts := make([]openaigo.ChatCompletionContentPartUnionParam, 0, 1+len(pages))
	parts = append(parts, openaigo.TextContentPart("Analyze this document."))
	for _, p := range pages {
		mime := strings.TrimSpace(p.MIMEType)
		if mime == "" {
			mime = "image/png"
		}
		parts = append(parts, openaigo.ImageContentPart(openaigo.ChatCompletionContentPartImageImageURLParam{
			URL: "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(p.Data),
		}))
	}

	reply, err := c.complete(ctx, system, openaigo.UserMessage(parts))
	if err != nil {
		return ScanAnalysis{}, err
	}
	res, err := parseObject(reply)
	if err != nil {
		return ScanAnalysis{}, err
	}
	return ScanAnalysis{
		OCRText:  strings.TrimSpace(res.Get("ocrText").String()),
		Analysis: parseAnalysis(res),
	}, nil
}

func (c *OpenAIClient) AnalyzeFile(ctx context.Context, text string) (FileAnalysis, error) {
	system := "You analyze document content. Write 3-5 concise bullet points in \"summaryPoints\".\n" +
		analysisRules +
		"\nShape: {\"summaryPoints\": [], \"tags\": [], \"actionItems\": [], \"emotion\": \"😐\"}"
	reply, err := c.complete(ctx, system, openaigo.UserMessage(text))
	if err != nil {
		return FileAnalysis{}, err
	}
	res, err := parseObject(reply)
	if err != nil {
		return FileAnalysis{}, err
	}
	return FileAnalysis{
		SummaryPoints: stringList(res.Get("summaryPoints")),
		Analysis:      parseAnalysis(res),
	}, nil
}

// GenerateSuggestions looks for patterns across records. Fewer than
// SuggestionMinRecords records yield no suggestions without calling the model.
func (c *OpenAIClient) GenerateSuggestions(ctx context.Context, records []models.Record) ([]models.ProactiveSuggestion, error) {
	if len(records) < constants.SuggestionMinRecords {
		return []models.ProactiveSuggestion{}, nil
	}
	var b strings.Builder
	for _, r := range records {
		fmt.Fprintf(&b, "ID: %s | Date: %s | Emotion: %s | Tags: %s | Content: %s\n",
			r.ID, r.Timestamp.UTC().Format(constants.DateFormat), r.Emotion, strings.Join(r.Tags, ", "), truncate(r.Content, 200))
	}
	system := `You are a proactive life coach reading a user's recent journal entries.
Find 1-2 correlations between activities, emotions and topics.
A positive coping mechanism becomes a "habit_suggestion"; a recurring theme or unresolved issue
becomes a "pattern_insight". Each suggestion has "type", "title", "description" and
"relatedRecordIds" (the supporting record IDs). A habit_suggestion also has "actionLabel" and
"habitData" {"name", "icon", "color"} where icon is one of RunIcon, BookIcon, BedIcon,
MeditateIcon, ForkKnifeIcon and color is one of orange, red, amber, green, sky, indigo, purple, pink.
Return ONLY a JSON object {"suggestions": []}; the array is empty when no strong pattern exists.`

	reply, err := c.complete(ctx, system, openaigo.UserMessage(b.String()))
	if err != nil {
		return nil, err
	}
	res, err := parseObject(reply)
	if err != nil {
		return nil, err
	}
	out := parseSuggestions(res, c.newID)
	logger.Debug("Parsed suggestions", "count", len(out))
	return out, nil
}

// Search ranks records by semantic relevance to query and returns their ids,
// most relevant first.
func (c *OpenAIClient) Search(ctx context.Context, query string, records []models.Record) ([]string, error) {
	if len(records) == 0 || strings.TrimSpace(query) == "" {
		return []string{}, nil
	}
	var b strings.Builder
	for i, r := range records {
		if i > 0 {
			b.WriteString("---\n")
		}
		content := r.FullText
		if content == "" {
			content = r.Content
		}
		fmt.Fprintf(&b, "ID: %s\nType: %s\nTimestamp: %s\nTags: %s\nContent: %s\n",
			r.ID, r.Type, r.Timestamp.UTC().Format(time.RFC3339), strings.Join(r.Tags, ", "), content)
	}
	system := `You are a semantic search engine over a personal journal. Pick the records most relevant
to the query, considering content, tags and type.
Return ONLY a JSON object {"relevantRecordIds": []} ordered from most to least relevant.`

	reply, err := c.complete(ctx, system, openaigo.UserMessage("Search query: "+query+"\n\nRecords:\n"+b.String()))
	if err != nil {
		return nil, err
	}
	res, err := parseObject(reply)
	if err != nil {
		return nil, err
	}
	known := make(map[string]bool, len(records))
	for _, r := range records {
		known[r.ID] = true
	}
	ids := []string{}
	for _, id := range stringList(res.Get("relevantRecordIds")) {
		if known[id] {
			ids = append(ids, id)
			delete(known, id)
		}
	}
	return ids, nil
}

func (c *OpenAIClient) SearchSuggestions(ctx context.Context, records []models.Record) ([]string, error) {
	if len(records) == 0 {
		return []string{}, nil
	}
	var b strings.Builder
	for _, r := range records[:min(len(records), constants.SuggestionWindow)] {
		fmt.Fprintf(&b, "- Type: %s, Timestamp: %s, Tags: [%s], Content: %s\n",
			r.Type, r.Timestamp.UTC().Format(time.RFC3339), strings.Join(r.Tags, ", "), truncate(r.Content, 100))
	}
	system := `You help a user rediscover their own journal. From the recent entries, propose 4 to 6
specific, personal search suggestions phrased as questions or short topics, for example
"What were my main goals last month?" or "List unresolved action items".
Return ONLY a JSON object {"suggestions": []}.`

	reply, err := c.complete(ctx, system, openaigo.UserMessage(b.String()))
	if err != nil {
		return nil, err
	}
	res, err := parseObject(reply)
	if err != nil {
		return nil, err
	}
	return stringList(res.Get("suggestions")), nil
}

// InsightReport answers the template's questions from records as Markdown.
func (c *OpenAIClient) InsightReport(ctx context.Context, template models.InsightTemplate, records []models.Record) (string, error) {
	if len(records) == 0 {
		return NoRecordsReport, nil
	}
	var q strings.Builder
	for i, question := range template.Questions {
		fmt.Fprintf(&q, "%d. %s\n", i+1, question)
	}
	var b strings.Builder
	for _, r := range records {
		emotion := string(r.Emotion)
		if emotion == "" {
			emotion = "N/A"
		}
		fmt.Fprintf(&b, "---\nDate: %s\nEmotion: %s\nTags: %s\nContent: %s\n",
			r.Timestamp.Local().Format(constants.DateFormat+" "+constants.TimeFormat), emotion, strings.Join(r.Tags, ", "), r.Content)
	}
	system := `You are a reflection assistant. Answer each template question from the journal records,
synthesizing across entries. Write Markdown with one heading per question.`
	user := "Template: " + template.Name + "\nQuestions:\n" + q.String() + "\nJournal records:\n" + b.String()

	reply, err := c.complete(ctx, system, openaigo.UserMessage(user))
	if err != nil {
		return "", err
	}
	if reply == "" {
		return EmptyReport, nil
	}
	return reply, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

package enrich

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/tidwall/gjson"

	"github.com/losebird/lifelog-ai/internal/constants"
	"github.com/losebird/lifelog-ai/internal/models"
	"github.com/losebird/lifelog-ai/internal/ring"
)

// habitIcons are the icons a suggested habit may use.
var habitIcons = []string{"RunIcon", "BookIcon", "BedIcon", "MeditateIcon", "ForkKnifeIcon"}

// extractJSON strips markdown fences and surrounding prose from a model reply.
func extractJSON(s string) string {
	raw := strings.TrimSpace(s)
	if strings.HasPrefix(raw, "```") {
		rest := strings.TrimPrefix(raw, "```")
		if i := strings.Index(rest, "\n"); i >= 0 {
			rest = rest[i+1:]
		}
		if j := strings.LastIndex(rest, "```"); j >= 0 {
			rest = rest[:j]
		}
		raw = strings.TrimSpace(rest)
	}
	if strings.HasPrefix(raw, "{") || strings.HasPrefix(raw, "[") {
		return raw
	}
	if i := strings.Index(raw, "{"); i >= 0 {
		if j := strings.LastIndex(raw, "}"); j > i {
			return raw[i : j+1]
		}
	}
	return raw
}

func parseObject(reply string) (gjson.Result, error) {
	raw := extractJSON(reply)
	if raw == "" {
		return gjson.Result{}, fmt.Errorf("failed to parse reply: empty response")
	}
	if !gjson.Valid(raw) {
		return gjson.Result{}, fmt.Errorf("failed to parse reply: invalid json")
	}
	res := gjson.Parse(raw)
	if !res.IsObject() {
		return gjson.Result{}, fmt.Errorf("failed to parse reply: expected an object")
	}
	return res, nil
}

func stringList(res gjson.Result) []string {
	out := []string{}
	for _, v := range res.Array() {
		if s := strings.TrimSpace(v.String()); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func parseAnalysis(res gjson.Result) Analysis {
	a := Analysis{
		Tags:        stringList(res.Get("tags")),
		ActionItems: []models.TaskDetails{},
		Emotion:     models.Emotion(strings.TrimSpace(res.Get("emotion").String())),
	}
	for _, item := range res.Get("actionItems").Array() {
		task := strings.TrimSpace(item.Get("task").String())
		if task == "" {
			continue
		}
		a.ActionItems = append(a.ActionItems, models.TaskDetails{
			Task:     task,
			DueDate:  parseDueDate(item.Get("dueDate").String()),
			Priority: models.Priority(strings.ToLower(strings.TrimSpace(item.Get("priority").String()))),
			Project:  strings.TrimSpace(item.Get("project").String()),
		})
	}
	return a
}

func parseDueDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", constants.DateFormat} {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return &t
		}
	}
	return nil
}

func parseLink(res gjson.Result, url string) LinkAnalysis {
	l := LinkAnalysis{
		Title:   strings.TrimSpace(res.Get("title").String()),
		Summary: strings.TrimSpace(res.Get("summary").String()),
		Tags:    stringList(res.Get("tags")),
	}
	if l.Title == "" {
		l.Title = url
	}
	if l.Summary == "" {
		l.Summary = NoSummary
	}
	return l
}

func parseSuggestions(res gjson.Result, newID func() string) []models.ProactiveSuggestion {
	out := []models.ProactiveSuggestion{}
	for _, s := range res.Get("suggestions").Array() {
		title := strings.TrimSpace(s.Get("title").String())
		if title == "" {
			continue
		}
		typ := models.SuggestionType(s.Get("type").String())
		if typ != models.SuggestionHabit {
			typ = models.SuggestionPattern
		}
		sug := models.ProactiveSuggestion{
			ID:               newID(),
			Type:             typ,
			Title:            title,
			Description:      strings.TrimSpace(s.Get("description").String()),
			RelatedRecordIDs: stringList(s.Get("relatedRecordIds")),
		}
		label := strings.TrimSpace(s.Get("actionLabel").String())
		habit := s.Get("habitData")
		if label != "" && habit.IsObject() {
			sug.Action = &models.SuggestionAction{
				Label: label,
				Habit: models.SuggestedHabit{
					Name:  strings.TrimSpace(habit.Get("name").String()),
					Icon:  suggestedIcon(habit.Get("icon").String()),
					Color: suggestedColor(habit.Get("color").String()),
				},
			}
		}
		out = append(out, sug)
	}
	return out
}

func suggestedIcon(s string) string {
	for _, icon := range habitIcons {
		if s == icon {
			return s
		}
	}
	return habitIcons[0]
}

func suggestedColor(s string) string {
	if ring.Known(s) {
		return s
	}
	return ring.DefaultColor
}

// normalizeTags keeps at most MaxTags tags, each cut to MaxTagRunes runes.
func normalizeTags(tags []string) []string {
	out := make([]string, 0, constants.MaxTags)
	for _, t := range models.MergeTags(tags) {
		if utf8.RuneCountInString(t) > constants.MaxTagRunes {
			t = string([]rune(t)[:constants.MaxTagRunes])
		}
		out = models.MergeTags(out, []string{t})
		if len(out) == constants.MaxTags {
			break
		}
	}
	return out
}

func normalizeEmotion(e models.Emotion) models.Emotion {
	if e.Valid() {
		return e
	}
	return models.EmotionNeutral
}

func normalizeAnalysis(a Analysis) Analysis {
	a.Tags = normalizeTags(a.Tags)
	a.Emotion = normalizeEmotion(a.Emotion)
	items := make([]models.TaskDetails, 0, len(a.ActionItems))
	for _, d := range a.ActionItems {
		if strings.TrimSpace(d.Task) == "" {
			continue
		}
		if !d.Priority.Valid() {
			d.Priority = models.PriorityMedium
		}
		items = append(items, d)
	}
	a.ActionItems = items
	return a
}

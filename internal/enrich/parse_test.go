package enrich

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/losebird/lifelog-ai/internal/models"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"fenced", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"prose around", "Sure! Here it is: {\"a\":1} Hope that helps.", `{"a":1}`},
		{"whitespace", "  \n{\"a\":1}\n ", `{"a":1}`},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractJSON(tt.in))
		})
	}
}

func TestParseObjectRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "not json", `["a"]`, `{"a":`} {
		_, err := parseObject(in)
		assert.Error(t, err, "input %q", in)
	}
}

func TestParseAnalysis(t *testing.T) {
	res, err := parseObject(`{
		"tags": ["work", " ", "plan"],
		"actionItems": [
			{"task": "Send report", "dueDate": "2024-05-11T09:00:00Z", "priority": "HIGH", "project": "Q2"},
			{"task": "  "},
			{"task": "Call Bob", "dueDate": "sometime"}
		],
		"emotion": "😊"
	}`)
	require.NoError(t, err)

	a := parseAnalysis(res)
	assert.Equal(t, []string{"work", "plan"}, a.Tags)
	assert.Equal(t, models.EmotionHappy, a.Emotion)
	require.Len(t, a.ActionItems, 2)

	assert.Equal(t, "Send report", a.ActionItems[0].Task)
	assert.Equal(t, models.PriorityHigh, a.ActionItems[0].Priority)
	assert.Equal(t, "Q2", a.ActionItems[0].Project)
	require.NotNil(t, a.ActionItems[0].DueDate)
	assert.Equal(t, 2024, a.ActionItems[0].DueDate.UTC().Year())

	assert.Nil(t, a.ActionItems[1].DueDate, "unparseable due dates are dropped")
}

func TestNormalizeAnalysis(t *testing.T) {
	a := normalizeAnalysis(Analysis{
		Tags:    []string{"health", "健康生活", "run", "run", "sleep", "extra"},
		Emotion: "🤖",
		ActionItems: []models.TaskDetails{
			{Task: "a", Priority: "urgent"},
			{Task: "b", Priority: models.PriorityLow},
			{Task: ""},
		},
	})

	assert.Equal(t, []string{"heal", "健康生活", "run"}, a.Tags)
	assert.Equal(t, models.EmotionNeutral, a.Emotion)
	require.Len(t, a.ActionItems, 2)
	assert.Equal(t, models.PriorityMedium, a.ActionItems[0].Priority)
	assert.Equal(t, models.PriorityLow, a.ActionItems[1].Priority)
}

func TestParseSuggestions(t *testing.T) {
	res, err := parseObject(`{"suggestions": [
		{"type": "habit_suggestion", "title": "Music helps", "description": "d", "relatedRecordIds": ["r1", "r2"],
		 "actionLabel": "Start habit", "habitData": {"name": "Listen", "icon": "BookIcon", "color": "sky"}},
		{"type": "habit_suggestion", "title": "No data", "description": "d", "relatedRecordIds": [], "actionLabel": "Go"},
		{"type": "weird", "title": "Mondays", "description": "d", "habitData": {"name": "x", "icon": "Nope", "color": "teal"}},
		{"type": "pattern_insight", "title": ""}
	]}`)
	require.NoError(t, err)

	n := 0
	got := parseSuggestions(res, func() string { n++; return fmt.Sprintf("s%d", n) })
	require.Len(t, got, 3)

	assert.Equal(t, []string{"s1", "s2", "s3"}, []string{got[0].ID, got[1].ID, got[2].ID})
	require.NotNil(t, got[0].Action)
	assert.Equal(t, "Start habit", got[0].Action.Label)
	assert.Equal(t, models.SuggestedHabit{Name: "Listen", Icon: "BookIcon", Color: "sky"}, got[0].Action.Habit)
	assert.Equal(t, []string{"r1", "r2"}, got[0].RelatedRecordIDs)

	assert.Nil(t, got[1].Action, "an action needs both a label and habit data")
	assert.Nil(t, got[2].Action)
	assert.Equal(t, models.SuggestionPattern, got[2].Type)
}

func TestSuggestedHabitFallbacks(t *testing.T) {
	assert.Equal(t, "RunIcon", suggestedIcon("Nope"))
	assert.Equal(t, "BedIcon", suggestedIcon("BedIcon"))
	assert.Equal(t, "orange", suggestedColor("teal"))
	assert.Equal(t, "pink", suggestedColor("pink"))
}

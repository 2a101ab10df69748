package models

import (
	"bytes"
	"math"
	"strconv"
	"time"

	"github.com/goccy/go-json"
)

type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
)

func (f Frequency) Valid() bool {
	return f == FrequencyDaily || f == FrequencyWeekly || f == FrequencyMonthly
}

type GoalType string

const (
	GoalCheckmark GoalType = "checkmark"
	GoalNumber    GoalType = "number"
	GoalNote      GoalType = "note"
)

func (g GoalType) Valid() bool {
	return g == GoalCheckmark || g == GoalNumber || g == GoalNote
}

type Goal struct {
	Type   GoalType `json:"type"`
	Target float64  `json:"target,omitempty"`
	Unit   string   `json:"unit,omitempty"`
}

// Habit is a recurring goal definition. CreatedAt is immutable.
type Habit struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Icon              string    `json:"icon"`
	Color             string    `json:"color"`
	Frequency         Frequency `json:"frequency"`
	FrequencyCount    int       `json:"frequency_count"`
	Goal              Goal      `json:"goal"`
	ReminderTime      string    `json:"reminder_time,omitempty"` // HH:MM format
	MotivationalQuote string    `json:"motivational_quote,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

// HabitLog is one day's progress toward a Habit. (HabitID, Date) is the
// natural key; a log with Completed=false is never stored.
type HabitLog struct {
	ID        string    `json:"id"`
	HabitID   string    `json:"habit_id"`
	Date      string    `json:"date"` // YYYY-MM-DD format
	Completed bool      `json:"completed"`
	Value     *LogValue `json:"value,omitempty"`
}

// Key returns the natural key of the log.
func (l HabitLog) Key() LogKey {
	return LogKey{HabitID: l.HabitID, Date: l.Date}
}

// LogKey is the composite (habit, date) key of a HabitLog.
type LogKey struct {
	HabitID string
	Date    string
}

// LogValue holds either a number (number goals) or free text (note goals).
type LogValue struct {
	Number *float64
	Text   string
}

func NumberValue(v float64) *LogValue {
	return &LogValue{Number: &v}
}

func TextValue(s string) *LogValue {
	return &LogValue{Text: s}
}

// Float reports the numeric reading of the value. Text is never a number,
// even when it looks like one.
func (v *LogValue) Float() (float64, bool) {
	if v == nil || v.Number == nil {
		return 0, false
	}
	if math.IsNaN(*v.Number) || math.IsInf(*v.Number, 0) {
		return 0, false
	}
	return *v.Number, true
}

func (v *LogValue) String() string {
	if v == nil {
		return ""
	}
	if v.Number != nil {
		return strconv.FormatFloat(*v.Number, 'f', -1, 64)
	}
	return v.Text
}

func (v LogValue) MarshalJSON() ([]byte, error) {
	if v.Number != nil {
		return json.Marshal(*v.Number)
	}
	return json.Marshal(v.Text)
}

func (v *LogValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		v.Number = nil
		return json.Unmarshal(data, &v.Text)
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	v.Number = &f
	v.Text = ""
	return nil
}

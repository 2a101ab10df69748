package models

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

type RecordType string

const (
	RecordText  RecordType = "text"
	RecordVoice RecordType = "voice"
	RecordLink  RecordType = "link"
	RecordScan  RecordType = "scan"
	RecordFile  RecordType = "file"
)

// Emotion is one of a fixed set of six symbols.
type Emotion string

const (
	EmotionHappy     Emotion = "😊"
	EmotionSad       Emotion = "😢"
	EmotionAngry     Emotion = "😠"
	EmotionSurprised Emotion = "😮"
	EmotionThinking  Emotion = "🤔"
	EmotionNeutral   Emotion = "😐"
)

// Emotions lists every valid Emotion.
var Emotions = []Emotion{
	EmotionHappy, EmotionSad, EmotionAngry, EmotionSurprised, EmotionThinking, EmotionNeutral,
}

func (e Emotion) Valid() bool {
	return slices.Contains(Emotions, e)
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) Valid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

type ActionStatus string

const (
	StatusTodo       ActionStatus = "todo"
	StatusInProgress ActionStatus = "inprogress"
	StatusDone       ActionStatus = "done"
)

func (s ActionStatus) Valid() bool {
	return s == StatusTodo || s == StatusInProgress || s == StatusDone
}

type Reminder string

const (
	ReminderNone Reminder = "none"
	Reminder5m   Reminder = "5m"
	Reminder15m  Reminder = "15m"
	Reminder1h   Reminder = "1h"
	Reminder1d   Reminder = "1d"
)

func (r Reminder) Valid() bool {
	switch r {
	case ReminderNone, Reminder5m, Reminder15m, Reminder1h, Reminder1d:
		return true
	}
	return false
}

type Recurrence string

const (
	RecurrenceNone    Recurrence = "none"
	RecurrenceDaily   Recurrence = "daily"
	RecurrenceWeekly  Recurrence = "weekly"
	RecurrenceMonthly Recurrence = "monthly"
)

func (r Recurrence) Valid() bool {
	switch r {
	case RecurrenceNone, RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly:
		return true
	}
	return false
}

type Subtask struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// ActionItem is a task owned by a Record. RecordID is a back-reference only.
type ActionItem struct {
	ID         string       `json:"id"`
	RecordID   string       `json:"record_id"`
	Task       string       `json:"task"`
	DueDate    *time.Time   `json:"due_date,omitempty"`
	Priority   Priority     `json:"priority"`
	Project    string       `json:"project,omitempty"`
	Status     ActionStatus `json:"status"`
	Subtasks   []Subtask    `json:"subtasks"`
	Reminder   Reminder     `json:"reminder,omitempty"`
	Recurrence Recurrence   `json:"recurrence,omitempty"`
}

// ApplySubtaskRule keeps Status consistent with subtask completion: all done
// forces StatusDone, any open subtask on a done item reopens it.
func (a *ActionItem) ApplySubtaskRule() {
	if len(a.Subtasks) == 0 {
		return
	}
	all := true
	for _, s := range a.Subtasks {
		if !s.Completed {
			all = false
			break
		}
	}
	switch {
	case all:
		a.Status = StatusDone
	case a.Status == StatusDone:
		a.Status = StatusInProgress
	}
}

// TaskDetails is the input for a standalone todo.
type TaskDetails struct {
	Task       string
	DueDate    *time.Time
	Priority   Priority
	Project    string
	Reminder   Reminder
	Recurrence Recurrence
	Subtasks   []string
}

type LinkDetails struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Summary string `json:"summary"`
}

type ScanDetails struct {
	ImageURL string `json:"image_url"`
}

type FileDetails struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Record is one journal entry. Timestamp is immutable after creation and is
// the global sort key, newest first.
type Record struct {
	ID          string       `json:"id"`
	Type        RecordType   `json:"type"`
	Content     string       `json:"content"`
	Timestamp   time.Time    `json:"timestamp"`
	Tags        []string     `json:"tags"`
	ActionItems []ActionItem `json:"action_items"`
	Emotion     Emotion      `json:"emotion,omitempty"`
	AudioURL    string       `json:"audio_url,omitempty"`
	LinkDetails *LinkDetails `json:"link_details,omitempty"`
	ScanDetails *ScanDetails `json:"scan_details,omitempty"`
	FileDetails *FileDetails `json:"file_details,omitempty"`
	FullText    string       `json:"full_text,omitempty"`
	// Synthetic marks a record created only to back a standalone todo.
	Synthetic bool `json:"synthetic,omitempty"`
}

// Clone returns a deep copy so callers cannot alias store-owned slices.
func (r Record) Clone() Record {
	c := r
	c.Tags = slices.Clone(r.Tags)
	if r.ActionItems != nil {
		c.ActionItems = make([]ActionItem, len(r.ActionItems))
		for i, a := range r.ActionItems {
			c.ActionItems[i] = a.Clone()
		}
	}
	if r.LinkDetails != nil {
		ld := *r.LinkDetails
		c.LinkDetails = &ld
	}
	if r.ScanDetails != nil {
		sd := *r.ScanDetails
		c.ScanDetails = &sd
	}
	if r.FileDetails != nil {
		fd := *r.FileDetails
		c.FileDetails = &fd
	}
	return c
}

func (a ActionItem) Clone() ActionItem {
	c := a
	c.Subtasks = slices.Clone(a.Subtasks)
	if a.DueDate != nil {
		d := *a.DueDate
		c.DueDate = &d
	}
	return c
}

// FindActionItem returns the index of the item with id, or -1.
func (r *Record) FindActionItem(id string) int {
	return slices.IndexFunc(r.ActionItems, func(a ActionItem) bool { return a.ID == id })
}

// MergeTags unions tag lists, trimming blanks and dropping duplicates while
// keeping first-seen order.
func MergeTags(lists ...[]string) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, list := range lists {
		for _, t := range list {
			t = strings.TrimSpace(t)
			if t == "" {
				continue
			}
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	return out
}

// NewID mints an opaque unique identifier.
func NewID() string {
	return uuid.New().String()
}

package models

import (
	"fmt"
	"strconv"
	"time"
)

// Record sources. Each domain entity type projects under its own source.
const (
	SourceTask         = "task"
	SourceNote         = "note"
	SourceBookmark     = "bookmark"
	SourceTimer        = "timer"
	SourceFinance      = "finance"
	SourceSubscription = "subscription"
)

// KindLink is the display kind used for bookmarks.
const KindLink = "link"

// Projector is implemented by every entity that participates in search.
type Projector interface {
	Record() RecordInput
}

// Task is a to-do item.
type Task struct {
	ID       int64
	Title    string
	Priority string
	Status   string
	Notes    string
	DueDate  *time.Time
}

// TaskMetadata is the structured part of a task record.
type TaskMetadata struct {
	DueDate *time.Time `json:"dueDate"`
	Status  string     `json:"status"`
	Notes   string     `json:"notes,omitempty"`
}

// Record projects the task.
func (t Task) Record() RecordInput {
	return RecordInput{
		Kind:     SourceTask,
		Source:   SourceTask,
		SourceID: strconv.FormatInt(t.ID, 10),
		Title:    t.Title,
		Content:  StringPtr(t.Priority),
		Metadata: TaskMetadata{DueDate: t.DueDate, Status: t.Status, Notes: t.Notes},
	}
}

// Note is a markdown note. Its content may mention other records as [[Title]].
type Note struct {
	ID      string
	Title   string
	Content string
}

// Record projects the note.
func (n Note) Record() RecordInput {
	return RecordInput{
		Kind:     SourceNote,
		Source:   SourceNote,
		SourceID: n.ID,
		Title:    n.Title,
		Content:  StringPtr(n.Content),
	}
}

// Bookmark is a saved URL.
type Bookmark struct {
	ID       int64
	Title    string
	URL      string
	Category string
}

// BookmarkMetadata is the structured part of a bookmark record.
type BookmarkMetadata struct {
	Category *string `json:"category"`
}

// Record projects the bookmark.
func (b Bookmark) Record() RecordInput {
	return RecordInput{
		Kind:     KindLink,
		Source:   SourceBookmark,
		SourceID: strconv.FormatInt(b.ID, 10),
		Title:    b.Title,
		URL:      StringPtr(b.URL),
		Category: StringPtr(b.Category),
		Metadata: BookmarkMetadata{Category: StringPtr(b.Category)},
	}
}

// Timer is a countdown.
type Timer struct {
	ID              int64
	Label           string
	DurationMinutes int
}

// Record projects the timer.
func (t Timer) Record() RecordInput {
	content := fmt.Sprintf("%d minutes", t.DurationMinutes)
	return RecordInput{
		Kind:     SourceTimer,
		Source:   SourceTimer,
		SourceID: strconv.FormatInt(t.ID, 10),
		Title:    t.Label,
		Content:  &content,
	}
}

// FinanceEntry is an income or expense line.
type FinanceEntry struct {
	ID         int64
	Kind       string // "income" or "expense"
	Category   string
	Amount     string
	Note       string
	OccurredOn string
}

// FinanceMetadata is the structured part of a finance record.
type FinanceMetadata struct {
	Amount     string `json:"amount"`
	OccurredOn string `json:"occurredOn"`
}

// Record projects the finance entry.
func (f FinanceEntry) Record() RecordInput {
	return RecordInput{
		Kind:     SourceFinance,
		Source:   SourceFinance,
		SourceID: strconv.FormatInt(f.ID, 10),
		Title:    f.Kind + " " + f.Category,
		Content:  StringPtr(f.Note),
		Metadata: FinanceMetadata{Amount: f.Amount, OccurredOn: f.OccurredOn},
	}
}

// Subscription is a recurring payment.
type Subscription struct {
	ID           int64
	Name         string
	Amount       float64
	RenewalDate  string
	CardName     string
	ReminderDays int
	Cadence      string
	Note         string
}

// SubscriptionMetadata is the structured part of a subscription record.
type SubscriptionMetadata struct {
	Amount       float64 `json:"amount"`
	RenewalDate  string  `json:"renewalDate"`
	CardName     string  `json:"cardName"`
	ReminderDays int     `json:"reminderDays"`
}

// Record projects the subscription.
func (s Subscription) Record() RecordInput {
	return RecordInput{
		Kind:     SourceSubscription,
		Source:   SourceSubscription,
		SourceID: strconv.FormatInt(s.ID, 10),
		Title:    s.Name,
		Content:  StringPtr(s.Note),
		Category: StringPtr(s.Cadence),
		Metadata: SubscriptionMetadata{
			Amount:       s.Amount,
			RenewalDate:  s.RenewalDate,
			CardName:     s.CardName,
			ReminderDays: s.ReminderDays,
		},
	}
}

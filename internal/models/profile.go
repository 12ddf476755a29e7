package models

import (
	"time"

	"github.com/google/uuid"
)

// DateLayout is the calendar-day format used for streak bookkeeping.
const DateLayout = "2006-01-02"

// ActivityLog is the streak state carried on a user profile.
// LastEntryDate is empty when the user has never recorded an activity.
type ActivityLog struct {
	CurrentStreak int    `json:"current_streak"`
	LongestStreak int    `json:"longest_streak"`
	LastEntryDate string `json:"last_entry_date,omitempty"`
}

type Profile struct {
	UserID       string `json:"user_id"`
	TotalEntries int    `json:"total_entries"`
	ActivityLog
	UpdatedAt time.Time `json:"updated_at"`
}

const (
	EntryKindJournal = "journal"
	EntryKindMood    = "mood"
)

type JournalEntry struct {
	ID        uuid.UUID `json:"id"`
	UserID    string    `json:"user_id"`
	Kind      string    `json:"kind"`
	Title     string    `json:"title,omitempty"`
	Content   string    `json:"content"`
	Mood      string    `json:"mood,omitempty"`
	Reference string    `json:"reference,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func ValidEntryKind(kind string) bool {
	return kind == EntryKindJournal || kind == EntryKindMood
}

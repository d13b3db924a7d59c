package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ProcessingStatus tracks whether an entry's content has been processed
// since its last edit.
type ProcessingStatus string

const (
	StatusPending   ProcessingStatus = "pending"
	StatusProcessed ProcessingStatus = "processed"
	StatusFailed    ProcessingStatus = "failed"
)

// Entry represents a journal entry. IDs are assigned client-side so that
// creation is idempotent across retries. UpdatedAt is the sole
// conflict-resolution field for sync merges and is therefore managed
// explicitly rather than by GORM.
type Entry struct {
	ID               uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	Content          string           `gorm:"type:text" json:"content"`
	WordCount        int              `json:"word_count"`
	ProcessingStatus ProcessingStatus `gorm:"default:pending" json:"processing_status"`
	CreatedAt        time.Time        `gorm:"autoCreateTime:false" json:"created_at"`
	UpdatedAt        time.Time        `gorm:"autoUpdateTime:false" json:"updated_at"`

	// Relationships
	Links []Link `gorm:"foreignKey:EntryID" json:"links,omitempty"`
}

// NewEntry creates an entry with a fresh ID and timestamps.
func NewEntry(content string) *Entry {
	now := time.Now().UTC()
	return &Entry{
		ID:               uuid.New(),
		Content:          content,
		WordCount:        CountWords(content),
		ProcessingStatus: StatusPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// SetContent applies an edit: content and word count are replaced,
// UpdatedAt advances, and a processed entry drops back to pending.
// UpdatedAt never moves backwards across successful saves.
func (e *Entry) SetContent(content string, now time.Time) {
	e.Content = content
	e.WordCount = CountWords(content)
	if now.After(e.UpdatedAt) {
		e.UpdatedAt = now
	}
	if e.ProcessingStatus == StatusProcessed {
		e.ProcessingStatus = StatusPending
	}
}

// CountWords counts whitespace-separated words.
func CountWords(content string) int {
	return len(strings.Fields(content))
}

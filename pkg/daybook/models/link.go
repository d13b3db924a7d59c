package models

import (
	"time"

	"github.com/google/uuid"
)

// Link is the explicit join entity for one Entry-Tag association. An
// explicit row (rather than a GORM many2many table) lets the reconciler
// diff old and new link sets deterministically. At most one Link may
// exist per (Entry, Tag) pair; the cache's pair re-check enforces that
// rather than a storage constraint.
type Link struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	EntryID   uuid.UUID `gorm:"type:uuid;not null;index" json:"entry_id"`
	TagID     uuid.UUID `gorm:"type:uuid;not null;index" json:"tag_id"`
	CreatedAt time.Time `gorm:"autoCreateTime:false" json:"created_at"`
}

// NewLink creates a link between an entry and a tag.
func NewLink(entryID, tagID uuid.UUID) *Link {
	return &Link{
		ID:        uuid.New(),
		EntryID:   entryID,
		TagID:     tagID,
		CreatedAt: time.Now().UTC(),
	}
}

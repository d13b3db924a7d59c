package models

import (
	"fmt"
	"hash/fnv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Tag represents a label derived from in-text markers. Names are unique
// case-insensitively; the reconciler enforces that, not the schema, so
// there is deliberately no unique index on Name.
type Tag struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"index;not null" json:"name"`
	Color     string    `json:"color"`
	CreatedAt time.Time `gorm:"autoCreateTime:false" json:"created_at"`
}

// NewTag creates a tag with a fresh ID and a color derived from the
// name. The color is stable for the lifetime of the tag.
func NewTag(name string) *Tag {
	return &Tag{
		ID:        uuid.New(),
		Name:      name,
		Color:     ColorFor(name),
		CreatedAt: time.Now().UTC(),
	}
}

var tagPalette = []string{
	"#e06c75", "#d19a66", "#e5c07b", "#98c379",
	"#56b6c2", "#61afef", "#c678dd", "#be5046",
}

// ColorFor derives a palette color from the case-folded tag name, so
// "Work" and "work" would land on the same color.
func ColorFor(name string) string {
	h := fnv.New32a()
	fmt.Fprint(h, strings.ToLower(name))
	return tagPalette[h.Sum32()%uint32(len(tagPalette))]
}

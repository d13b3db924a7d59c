package models

import (
	"time"

	"github.com/google/uuid"
)

// Query records one search invocation. ExecutionTime and ResultCount
// are filled in after remote results return; everything else is
// immutable after creation.
type Query struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	QueryText     string    `gorm:"not null" json:"query_text"`
	ExecutionTime float64   `json:"execution_time"`
	ResultCount   int       `json:"result_count"`
	CreatedAt     time.Time `gorm:"autoCreateTime:false" json:"created_at"`

	// Relationships
	Results []QueryResult `gorm:"foreignKey:QueryID" json:"results,omitempty"`
}

// NewQuery creates a query record for a search invocation.
func NewQuery(text string) *Query {
	return &Query{
		ID:        uuid.New(),
		QueryText: text,
		CreatedAt: time.Now().UTC(),
	}
}

// QueryResult is one hit of a search, linked to the matching local
// entry. Results are ordered by ascending Rank.
type QueryResult struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	QueryID           uuid.UUID `gorm:"type:uuid;not null;index" json:"query_id"`
	EntryID           uuid.UUID `gorm:"type:uuid;not null;index" json:"entry_id"`
	RelevanceScore    float64   `json:"relevance_score"`
	SnippetText       string    `json:"snippet_text"`
	SnippetStartIndex int       `json:"snippet_start_index"`
	SnippetEndIndex   int       `json:"snippet_end_index"`
	ContextBefore     string    `json:"context_before,omitempty"`
	ContextAfter      string    `json:"context_after,omitempty"`
	Rank              int       `json:"rank"`
	CreatedAt         time.Time `gorm:"autoCreateTime:false" json:"created_at"`
}

// NewQueryResult creates a result row owned by the given query.
func NewQueryResult(queryID, entryID uuid.UUID, rank int) *QueryResult {
	return &QueryResult{
		ID:        uuid.New(),
		QueryID:   queryID,
		EntryID:   entryID,
		Rank:      rank,
		CreatedAt: time.Now().UTC(),
	}
}

package remote

import (
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/mikepea/daybook/pkg/daybook/models"
)

// TimeLayout is the fixed wire format for timestamps: microsecond
// precision, always.
const TimeLayout = "2006-01-02T15:04:05.000000Z07:00"

// Timestamp wraps time.Time with the service's fixed JSON encoding.
type Timestamp struct {
	time.Time
}

// NewTimestamp converts a local time to its wire representation,
// truncated to microseconds in UTC.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{t.UTC().Truncate(time.Microsecond)}
}

func (ts Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(ts.UTC().Format(TimeLayout))), nil
}

func (ts *Timestamp) UnmarshalJSON(b []byte) error {
	s, err := strconv.Unquote(string(b))
	if err != nil {
		return err
	}
	t, err := time.Parse(TimeLayout, s)
	if err != nil {
		return err
	}
	ts.Time = t
	return nil
}

// LogPayload is the wire shape of one journal entry, tags included.
type LogPayload struct {
	ID               uuid.UUID    `json:"id"`
	Content          string       `json:"content"`
	CreatedAt        Timestamp    `json:"created_at"`
	UpdatedAt        Timestamp    `json:"updated_at"`
	WordCount        int          `json:"word_count"`
	ProcessingStatus string       `json:"processing_status"`
	Tags             []TagPayload `json:"tags"`
}

// TagPayload is the wire shape of one tag.
type TagPayload struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	CreatedAt Timestamp `json:"created_at"`
}

// SearchRequest is the body of POST /search.
type SearchRequest struct {
	Query string `json:"query"`
}

// SearchResult is one hit in a search response.
type SearchResult struct {
	LogID             uuid.UUID `json:"log_id"`
	SnippetText       string    `json:"snippet_text"`
	SnippetStartIndex int       `json:"snippet_start_index"`
	SnippetEndIndex   int       `json:"snippet_end_index"`
	ContextBefore     string    `json:"context_before,omitempty"`
	ContextAfter      string    `json:"context_after,omitempty"`
	RelevanceScore    float64   `json:"relevance_score"`
	Rank              int       `json:"rank"`
}

// SearchResponse is the body returned by POST /search.
type SearchResponse struct {
	Query         string         `json:"query"`
	ExecutionTime float64        `json:"execution_time"`
	Results       []SearchResult `json:"results"`
}

// LogFromEntry builds the wire payload for an entry and the tags
// currently linked to it.
func LogFromEntry(e *models.Entry, tags []*models.Tag) *LogPayload {
	p := &LogPayload{
		ID:               e.ID,
		Content:          e.Content,
		CreatedAt:        NewTimestamp(e.CreatedAt),
		UpdatedAt:        NewTimestamp(e.UpdatedAt),
		WordCount:        e.WordCount,
		ProcessingStatus: string(e.ProcessingStatus),
		Tags:             make([]TagPayload, 0, len(tags)),
	}
	for _, t := range tags {
		p.Tags = append(p.Tags, TagFromModel(t))
	}
	return p
}

// Entry converts the payload back to a local model.
func (p *LogPayload) Entry() *models.Entry {
	return &models.Entry{
		ID:               p.ID,
		Content:          p.Content,
		WordCount:        p.WordCount,
		ProcessingStatus: models.ProcessingStatus(p.ProcessingStatus),
		CreatedAt:        p.CreatedAt.Time,
		UpdatedAt:        p.UpdatedAt.Time,
	}
}

// TagNames returns the names carried on the payload's tags.
func (p *LogPayload) TagNames() []string {
	names := make([]string, 0, len(p.Tags))
	for _, t := range p.Tags {
		names = append(names, t.Name)
	}
	return names
}

// TagFromModel builds the wire payload for a tag.
func TagFromModel(t *models.Tag) TagPayload {
	return TagPayload{
		ID:        t.ID,
		Name:      t.Name,
		Color:     t.Color,
		CreatedAt: NewTimestamp(t.CreatedAt),
	}
}

// Tag converts the payload back to a local model.
func (p TagPayload) Tag() *models.Tag {
	return &models.Tag{
		ID:        p.ID,
		Name:      p.Name,
		Color:     p.Color,
		CreatedAt: p.CreatedAt.Time,
	}
}

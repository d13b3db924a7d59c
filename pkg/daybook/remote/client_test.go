package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mikepea/daybook/pkg/daybook/models"
)

func TestTimestampWireFormat(t *testing.T) {
	ts := NewTimestamp(time.Date(2025, 3, 14, 9, 26, 53, 589793238, time.UTC))

	b, err := json.Marshal(ts)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	want := `"2025-03-14T09:26:53.589793Z"`
	if string(b) != want {
		t.Errorf("Marshal = %s, want %s", b, want)
	}

	var back Timestamp
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if !back.Equal(ts.Time) {
		t.Errorf("Round trip changed the instant: %v vs %v", back.Time, ts.Time)
	}
}

func TestCreateLogWireShape(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	var received map[string]any
	r.POST("/logs", func(c *gin.Context) {
		if ct := c.GetHeader("Content-Type"); ct != "application/json" {
			t.Errorf("Expected JSON content type, got %q", ct)
		}
		if auth := c.GetHeader("Authorization"); auth != "Bearer test-token" {
			t.Errorf("Expected bearer token, got %q", auth)
		}
		if err := c.ShouldBindJSON(&received); err != nil {
			t.Fatalf("Bad request body: %v", err)
		}
		c.JSON(http.StatusCreated, received)
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	client := NewClient(srv.URL)
	client.SetAuthToken("test-token")

	entry := models.NewEntry("Met with #Alice")
	tag := models.NewTag("Alice")
	stored, err := client.CreateLog(context.Background(), LogFromEntry(entry, []*models.Tag{tag}))
	if err != nil {
		t.Fatalf("CreateLog failed: %v", err)
	}
	if stored.ID != entry.ID {
		t.Errorf("Expected echoed id %s, got %s", entry.ID, stored.ID)
	}

	for _, key := range []string{"id", "content", "created_at", "updated_at", "word_count", "processing_status", "tags"} {
		if _, ok := received[key]; !ok {
			t.Errorf("Expected payload key %q on the wire", key)
		}
	}
	tags, ok := received["tags"].([]any)
	if !ok || len(tags) != 1 {
		t.Fatalf("Expected one wire tag, got %v", received["tags"])
	}
	wireTag := tags[0].(map[string]any)
	if wireTag["name"] != "Alice" {
		t.Errorf("Expected tag name Alice, got %v", wireTag["name"])
	}
}

func TestUpdateLogAcceptsEmptyBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.PUT("/logs/:id", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	client := NewClient(srv.URL)
	entry := models.NewEntry("edited")
	if err := client.UpdateLog(context.Background(), LogFromEntry(entry, nil)); err != nil {
		t.Fatalf("UpdateLog failed: %v", err)
	}
}

func TestNonTwoHundredIsUniformError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/logs", func(c *gin.Context) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "down"})
	})
	r.POST("/search", func(c *gin.Context) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad"})
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	client := NewClient(srv.URL)

	_, err := client.ListLogs(context.Background())
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("Expected StatusError, got %v", err)
	}
	if statusErr.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("Expected 503 recorded, got %d", statusErr.StatusCode)
	}

	// A 4xx comes back as the same error type, no differentiation.
	_, err = client.Search(context.Background(), "anything")
	if !errors.As(err, &statusErr) {
		t.Fatalf("Expected StatusError for 4xx, got %v", err)
	}
}

func TestSearchRoundTrip(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	logID := uuid.New()
	r.POST("/search", func(c *gin.Context) {
		var req SearchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			t.Fatalf("Bad search request: %v", err)
		}
		if req.Query != "alice" {
			t.Errorf("Expected query alice, got %q", req.Query)
		}
		c.JSON(http.StatusOK, SearchResponse{
			Query:         req.Query,
			ExecutionTime: 0.042,
			Results: []SearchResult{
				{
					LogID:           logID,
					SnippetText:     "Met with Alice",
					SnippetEndIndex: 14,
					RelevanceScore:  0.9,
					Rank:            0,
				},
			},
		})
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	client := NewClient(srv.URL)
	resp, err := client.Search(context.Background(), "alice")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(resp.Results) != 1 || resp.Results[0].LogID != logID {
		t.Errorf("Unexpected search results: %+v", resp.Results)
	}
	if resp.ExecutionTime != 0.042 {
		t.Errorf("Expected execution time 0.042, got %f", resp.ExecutionTime)
	}
}

func TestTransportFailureSurfaces(t *testing.T) {
	client := NewClient("http://127.0.0.1:1") // nothing listens here

	if _, err := client.ListLogs(context.Background()); err == nil {
		t.Error("Expected a transport error")
	}
}

func TestBypassDefaults(t *testing.T) {
	b := NewBypass()
	ctx := context.Background()

	logs, err := b.ListLogs(ctx)
	if err != nil || len(logs) != 0 {
		t.Errorf("Expected empty log list, got %v, %v", logs, err)
	}
	tags, err := b.ListTags(ctx)
	if err != nil || len(tags) != 0 {
		t.Errorf("Expected empty tag list, got %v, %v", tags, err)
	}

	entry := models.NewEntry("offline note")
	stored, err := b.CreateLog(ctx, LogFromEntry(entry, nil))
	if err != nil || stored.ID != entry.ID {
		t.Errorf("Expected echoed payload, got %v, %v", stored, err)
	}
	if err := b.UpdateLog(ctx, stored); err != nil {
		t.Errorf("Expected update to no-op, got %v", err)
	}
	if err := b.DeleteLog(ctx, entry.ID); err != nil {
		t.Errorf("Expected delete to no-op, got %v", err)
	}

	resp, err := b.Search(ctx, "anything")
	if err != nil || len(resp.Results) != 0 {
		t.Errorf("Expected empty search response, got %v, %v", resp, err)
	}
}

func TestLogPayloadModelRoundTrip(t *testing.T) {
	entry := models.NewEntry(`\#literal and #real`)
	entry.ProcessingStatus = models.StatusProcessed

	p := LogFromEntry(entry, nil)
	back := p.Entry()

	if back.ID != entry.ID || back.Content != entry.Content {
		t.Error("Expected identity fields to survive the wire conversion")
	}
	if back.ProcessingStatus != models.StatusProcessed {
		t.Errorf("Expected status processed, got %s", back.ProcessingStatus)
	}
	if !strings.Contains(back.Content, `\#literal`) {
		t.Error("Expected escape sequences to pass through the wire untouched")
	}
}

package integration

import (
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mikepea/daybook/pkg/daybook/auth"
	"github.com/mikepea/daybook/pkg/daybook/remote"
)

// journalService is an in-memory stand-in for the remote journal
// service, exposing the same wire contract the real one does.
type journalService struct {
	mu     sync.Mutex
	secret []byte
	logs   map[uuid.UUID]*remote.LogPayload
	tags   map[uuid.UUID]remote.TagPayload
}

func newJournalService(secret []byte) *journalService {
	return &journalService{
		secret: secret,
		logs:   make(map[uuid.UUID]*remote.LogPayload),
		tags:   make(map[uuid.UUID]remote.TagPayload),
	}
}

// router registers the full API surface on a fresh Gin engine.
func (s *journalService) router() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(s.requireToken)

	r.POST("/logs", s.createLog)
	r.PUT("/logs/:id", s.updateLog)
	r.DELETE("/logs/:id", s.deleteLog)
	r.GET("/logs", s.listLogs)
	r.POST("/tags", s.createTag)
	r.GET("/tags", s.listTags)
	r.POST("/search", s.search)
	return r
}

func (s *journalService) requireToken(c *gin.Context) {
	if len(s.secret) == 0 {
		c.Next()
		return
	}
	token, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
		return
	}
	if _, err := auth.ValidateToken(s.secret, token); err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}
	c.Next()
}

func (s *journalService) createLog(c *gin.Context) {
	var payload remote.LogPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.mu.Lock()
	s.logs[payload.ID] = &payload
	s.registerTags(payload.Tags)
	s.mu.Unlock()

	c.JSON(http.StatusCreated, payload)
}

func (s *journalService) updateLog(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var payload remote.LogPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.logs[id]; !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "log not found"})
		return
	}
	s.logs[id] = &payload
	s.registerTags(payload.Tags)
	c.JSON(http.StatusOK, payload)
}

func (s *journalService) deleteLog(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.logs[id]; !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "log not found"})
		return
	}
	delete(s.logs, id)
	c.Status(http.StatusNoContent)
}

func (s *journalService) listLogs(c *gin.Context) {
	s.mu.Lock()
	out := make([]*remote.LogPayload, 0, len(s.logs))
	for _, l := range s.logs {
		out = append(out, l)
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt.Time) })
	c.JSON(http.StatusOK, out)
}

func (s *journalService) createTag(c *gin.Context) {
	var payload remote.TagPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.mu.Lock()
	s.tags[payload.ID] = payload
	s.mu.Unlock()

	c.JSON(http.StatusCreated, payload)
}

func (s *journalService) listTags(c *gin.Context) {
	s.mu.Lock()
	out := make([]remote.TagPayload, 0, len(s.tags))
	for _, t := range s.tags {
		out = append(out, t)
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	c.JSON(http.StatusOK, out)
}

// search is a naive case-insensitive substring match over log content,
// newest first.
func (s *journalService) search(c *gin.Context) {
	var req remote.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	started := time.Now()

	s.mu.Lock()
	var matched []*remote.LogPayload
	needle := strings.ToLower(req.Query)
	for _, l := range s.logs {
		if strings.Contains(strings.ToLower(l.Content), needle) {
			matched = append(matched, l)
		}
	}
	s.mu.Unlock()

	sort.Slice(matched, func(i, j int) bool { return matched[j].CreatedAt.Before(matched[i].CreatedAt.Time) })

	resp := remote.SearchResponse{Query: req.Query, Results: []remote.SearchResult{}}
	for rank, l := range matched {
		start := strings.Index(strings.ToLower(l.Content), needle)
		resp.Results = append(resp.Results, remote.SearchResult{
			LogID:             l.ID,
			SnippetText:       l.Content,
			SnippetStartIndex: start,
			SnippetEndIndex:   start + len(needle),
			RelevanceScore:    1.0 / float64(rank+1),
			Rank:              rank,
		})
	}
	resp.ExecutionTime = time.Since(started).Seconds()
	c.JSON(http.StatusOK, resp)
}

// registerTags upserts the tags carried on a log payload. Caller holds
// the lock.
func (s *journalService) registerTags(tags []remote.TagPayload) {
	for _, t := range tags {
		s.tags[t.ID] = t
	}
}

func (s *journalService) logCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.logs)
}

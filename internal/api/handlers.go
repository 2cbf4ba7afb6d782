package api

import (
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/abdulachik/postgen/internal/corpus"
	"github.com/abdulachik/postgen/internal/generator"
	"github.com/abdulachik/postgen/internal/post"
)

// Handler handles HTTP requests for the post generator.
type Handler struct {
	live      *corpus.Live
	generator *generator.Generator
	health    *Health
}

// NewHandler creates a new API handler. A nil health gets a fresh tracker.
func NewHandler(live *corpus.Live, gen *generator.Generator, health *Health) *Handler {
	if health == nil {
		health = NewHealth()
	}
	return &Handler{live: live, generator: gen, health: health}
}

// Health returns the tracker the handler reports on.
func (h *Handler) Health() *Health { return h.health }

// HealthCheck reports the corpus size and the state of each component.
func (h *Handler) HealthCheck(c *gin.Context) {
	status, code := "healthy", http.StatusOK
	if !h.health.Healthy() {
		status, code = "degraded", http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"status":     status,
		"timestamp":  time.Now().Format(time.RFC3339),
		"posts":      h.live.Index().Len(),
		"components": h.health.Snapshot(),
	})
}

// ListTags returns the sorted distinct tags of the corpus.
func (h *Handler) ListTags(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tags": h.live.Index().UniqueTags()})
}

type categoryResponse struct {
	Name string   `json:"name"`
	Tags []string `json:"tags"`
}

// ListCategories returns the non-empty tag categories in rule order.
func (h *Handler) ListCategories(c *gin.Context) {
	idx := h.live.Index()
	grouped := idx.TagCategories()

	out := []categoryResponse{}
	for _, name := range idx.CategoryNames() {
		if tags, ok := grouped[name]; ok {
			out = append(out, categoryResponse{Name: name, Tags: tags})
		}
	}
	c.JSON(http.StatusOK, gin.H{"categories": out})
}

// ListOptions returns the accepted values for a generation request.
func (h *Handler) ListOptions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"lengths":   post.Lengths,
		"languages": post.Languages,
		"tones":     post.Tones,
	})
}

// ListExamples returns the corpus posts matching the length, language and
// tag query parameters.
func (h *Handler) ListExamples(c *gin.Context) {
	length, ok := post.ParseLength(c.Query("length"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown length " + strconv.Quote(c.Query("length"))})
		return
	}
	language := post.Language(c.Query("language"))
	if !slices.Contains(post.Languages, language) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown language " + strconv.Quote(c.Query("language"))})
		return
	}

	limit := generator.DefaultExampleLimit
	if s := c.Query("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit " + strconv.Quote(s)})
			return
		}
		limit = n
	}

	examples := h.live.FilteredPosts(length, language, c.Query("tag"), limit)
	c.JSON(http.StatusOK, gin.H{"examples": examples})
}

type generateRequest struct {
	post.Request
	Variants int `json:"variants"`
}

// GeneratePosts generates one or more posts. LLM failures do not fail the
// request: the affected variants carry the fallback message and the llm
// component is marked unhealthy.
func (h *Handler) GeneratePosts(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	n := max(1, min(req.Variants, generator.MaxVariants))

	posts := make([]string, 0, n)
	failed := 0
	for range n {
		if ctx.Err() != nil && len(posts) > 0 {
			break
		}
		content, err := h.generator.TryGenerate(ctx, req.Request)
		if err != nil {
			if errors.Is(err, ctx.Err()) {
				slog.InfoContext(ctx, "generation cancelled by client")
			} else {
				slog.ErrorContext(ctx, "post generation failed", "tag", req.Tag, "error", err)
				h.health.Record(ComponentLLM, err, "")
			}
			failed++
			posts = append(posts, generator.FallbackMessage)
			continue
		}
		h.health.Record(ComponentLLM, nil, "last generation succeeded")
		posts = append(posts, content)
	}

	c.JSON(http.StatusOK, gin.H{
		"posts":   posts,
		"failed":  failed,
		"request": req.Request,
	})
}

// OnReload returns a corpus reload callback that records the outcome.
func (h *Handler) OnReload() func(*corpus.Index, error) {
	return func(idx *corpus.Index, err error) {
		if err != nil {
			h.health.Record(ComponentCorpus, err, "")
			return
		}
		h.health.Record(ComponentCorpus, nil, strconv.Itoa(idx.Len())+" posts loaded")
	}
}

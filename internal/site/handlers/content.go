package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/riefer02/astro-wordpress-starter/internal/session"
	"github.com/riefer02/astro-wordpress-starter/internal/wordpress"
	apperrors "github.com/riefer02/astro-wordpress-starter/pkg/errors"
	"github.com/riefer02/astro-wordpress-starter/pkg/logger"
)

// contentGateway is the slice of the content client the handlers use.
type contentGateway interface {
	Posts(ctx context.Context, q wordpress.Query) ([]wordpress.Post, error)
	PostBySlug(ctx context.Context, slug string) (*wordpress.Post, error)
	PageBySlug(ctx context.Context, slug string) (*wordpress.Page, error)
	SearchPosts(ctx context.Context, term string, q wordpress.Query) ([]wordpress.Post, error)
}

// ContentHandler serves the read-only content endpoints. Content fetch
// failures degrade to an error payload instead of a blank 500 page.
type ContentHandler struct {
	content contentGateway
	log     logger.Logger
}

// NewContentHandler creates the content handler.
func NewContentHandler(content contentGateway, log logger.Logger) *ContentHandler {
	return &ContentHandler{content: content, log: log}
}

// contentError maps a gateway failure to an HTTP response.
func (h *ContentHandler) contentError(c *gin.Context, err error) {
	h.log.Error("content fetch failed", logger.Component("content"), logger.Error(err))

	status := http.StatusBadGateway
	code := "content_unavailable"
	if apiErr, ok := apperrors.AsAPIError(err); ok {
		code = apiErr.Code
		if apiErr.Status >= 400 && apiErr.Status < 500 {
			status = apiErr.Status
		}
	}
	c.JSON(status, gin.H{"error": code, "message": "Content is temporarily unavailable"})
}

// queryFromRequest builds a content query from list query parameters.
func queryFromRequest(c *gin.Context) wordpress.Query {
	q := wordpress.Query{}
	if v, err := strconv.Atoi(c.Query("page")); err == nil && v > 0 {
		q.Page = v
	}
	if v, err := strconv.Atoi(c.Query("per_page")); err == nil && v > 0 {
		q.PerPage = v
	}
	return q
}

// ListPosts returns the post listing. A search query parameter switches
// to a content search with the same pagination.
// GET /posts
func (h *ContentHandler) ListPosts(c *gin.Context) {
	var (
		posts []wordpress.Post
		err   error
	)
	if term := strings.TrimSpace(c.Query("search")); term != "" {
		posts, err = h.content.SearchPosts(c.Request.Context(), term, queryFromRequest(c))
	} else {
		posts, err = h.content.Posts(c.Request.Context(), queryFromRequest(c))
	}
	if err != nil {
		h.contentError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": posts, "count": len(posts)})
}

// GetPost returns a single post by slug.
// GET /posts/:slug
func (h *ContentHandler) GetPost(c *gin.Context) {
	slug := strings.TrimSpace(c.Param("slug"))
	post, err := h.content.PostBySlug(c.Request.Context(), slug)
	if err != nil {
		h.contentError(c, err)
		return
	}
	if post == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "message": "Post not found"})
		return
	}
	c.JSON(http.StatusOK, post)
}

// StaticPage serves a fixed WordPress page, such as /about or /contact.
func (h *ContentHandler) StaticPage(slug string) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, err := h.content.PageBySlug(c.Request.Context(), slug)
		if err != nil {
			h.contentError(c, err)
			return
		}
		if page == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "message": "Page not found"})
			return
		}
		c.JSON(http.StatusOK, page)
	}
}

// Me returns the session state for the current request. The session
// middleware has already resolved it, so this never calls upstream.
// GET /profile
func Me(c *gin.Context) {
	state := session.FromContext(c)
	c.JSON(http.StatusOK, gin.H{
		"authenticated": state.IsAuthenticated,
		"user":          state.User,
		"error":         state.Error,
	})
}

// Health reports liveness.
// GET /healthz
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

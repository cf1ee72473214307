package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/riefer02/astro-wordpress-starter/internal/wordpress"
	apperrors "github.com/riefer02/astro-wordpress-starter/pkg/errors"
	"github.com/riefer02/astro-wordpress-starter/pkg/logger"
)

type fakeContent struct {
	posts     []wordpress.Post
	post      *wordpress.Post
	page      *wordpress.Page
	err       error
	lastQuery wordpress.Query
	lastSlug  string
	lastTerm  string
}

func (f *fakeContent) Posts(_ context.Context, q wordpress.Query) ([]wordpress.Post, error) {
	f.lastQuery = q
	return f.posts, f.err
}

func (f *fakeContent) PostBySlug(_ context.Context, slug string) (*wordpress.Post, error) {
	f.lastSlug = slug
	return f.post, f.err
}

func (f *fakeContent) PageBySlug(_ context.Context, slug string) (*wordpress.Page, error) {
	f.lastSlug = slug
	return f.page, f.err
}

func (f *fakeContent) SearchPosts(_ context.Context, term string, q wordpress.Query) ([]wordpress.Post, error) {
	f.lastTerm = term
	f.lastQuery = q
	return f.posts, f.err
}

func newContentRig(fc *fakeContent) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewContentHandler(fc, logger.Nop())
	engine := gin.New()
	engine.GET("/posts", h.ListPosts)
	engine.GET("/posts/:slug", h.GetPost)
	engine.GET("/about", h.StaticPage("about"))
	engine.GET("/profile", Me)
	engine.GET("/healthz", Health)
	return engine
}

func get(engine *gin.Engine, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestListPostsPropagatesPagination(t *testing.T) {
	fc := &fakeContent{posts: []wordpress.Post{{ID: 1}, {ID: 2}}}
	engine := newContentRig(fc)

	rec := get(engine, "/posts?page=3&per_page=5")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if fc.lastQuery.Page != 3 || fc.lastQuery.PerPage != 5 {
		t.Errorf("query = %+v", fc.lastQuery)
	}
	var payload struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Count != 2 {
		t.Errorf("count = %d, want 2", payload.Count)
	}
}

func TestGetPostNotFound(t *testing.T) {
	engine := newContentRig(&fakeContent{})

	rec := get(engine, "/posts/missing-slug")

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestGetPostFound(t *testing.T) {
	fc := &fakeContent{post: &wordpress.Post{ID: 9, Slug: "hello-world"}}
	engine := newContentRig(fc)

	rec := get(engine, "/posts/hello-world")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if fc.lastSlug != "hello-world" {
		t.Errorf("slug = %q", fc.lastSlug)
	}
}

func TestListPostsSearchMode(t *testing.T) {
	fc := &fakeContent{}
	engine := newContentRig(fc)

	rec := get(engine, "/posts?search=gophers&page=2")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if fc.lastTerm != "gophers" {
		t.Errorf("term = %q, want gophers", fc.lastTerm)
	}
	if fc.lastQuery.Page != 2 {
		t.Errorf("page = %d, want 2", fc.lastQuery.Page)
	}
}

func TestStaticPage(t *testing.T) {
	fc := &fakeContent{page: &wordpress.Page{ID: 3, Slug: "about"}}
	engine := newContentRig(fc)

	rec := get(engine, "/about")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if fc.lastSlug != "about" {
		t.Errorf("slug = %q, want about", fc.lastSlug)
	}
}

func TestContentErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{
			"transport failure",
			apperrors.NewAPIError(apperrors.KindTransport, "content_unavailable", "dial refused", 0),
			http.StatusBadGateway,
		},
		{
			"upstream client error",
			apperrors.NewAPIError(apperrors.KindProtocol, "rest_forbidden", "forbidden", http.StatusForbidden),
			http.StatusForbidden,
		},
		{
			"upstream server error",
			apperrors.NewAPIError(apperrors.KindProtocol, "internal_error", "boom", http.StatusInternalServerError),
			http.StatusBadGateway,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			engine := newContentRig(&fakeContent{err: tc.err})

			rec := get(engine, "/posts")

			if rec.Code != tc.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tc.wantStatus)
			}
		})
	}
}

func TestMeReportsAnonymousState(t *testing.T) {
	engine := newContentRig(&fakeContent{})

	rec := get(engine, "/profile")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var payload struct {
		Authenticated bool `json:"authenticated"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Authenticated {
		t.Error("anonymous request reported as authenticated")
	}
}

func TestHealth(t *testing.T) {
	engine := newContentRig(&fakeContent{})

	rec := get(engine, "/healthz")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

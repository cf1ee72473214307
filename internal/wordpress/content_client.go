package wordpress

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/riefer02/astro-wordpress-starter/internal/cache"
	apperrors "github.com/riefer02/astro-wordpress-starter/pkg/errors"
)

const (
	codeFetchFailed = "fetch_error"

	// defaultEmbed is always requested so list/detail views get their
	// related media and author in one round trip.
	defaultEmbed = "wp:featuredmedia,author"
)

// Query holds the supported /wp/v2 list parameters. Zero values are
// omitted from the request.
type Query struct {
	Page       int
	PerPage    int
	Search     string
	OrderBy    string
	Order      string
	Offset     int
	Slug       string
	Status     string
	Author     int
	Include    []int
	Exclude    []int
	Categories []int
	Tags       []int
	Before     string
	After      string
	Embed      string
}

// values serializes the query. Array values are comma-joined; url.Values
// encoding is key-sorted, which keeps cache keys deterministic.
func (q Query) values() url.Values {
	v := url.Values{}
	set := func(key, val string) {
		if val != "" {
			v.Set(key, val)
		}
	}
	setInt := func(key string, n int) {
		if n != 0 {
			v.Set(key, strconv.Itoa(n))
		}
	}
	setInts := func(key string, ns []int) {
		if len(ns) == 0 {
			return
		}
		parts := make([]string, len(ns))
		for i, n := range ns {
			parts[i] = strconv.Itoa(n)
		}
		v.Set(key, strings.Join(parts, ","))
	}

	setInt("page", q.Page)
	setInt("per_page", q.PerPage)
	set("search", q.Search)
	set("orderby", q.OrderBy)
	set("order", q.Order)
	setInt("offset", q.Offset)
	set("slug", q.Slug)
	set("status", q.Status)
	setInt("author", q.Author)
	setInts("include", q.Include)
	setInts("exclude", q.Exclude)
	setInts("categories", q.Categories)
	setInts("tags", q.Tags)
	set("before", q.Before)
	set("after", q.After)

	embed := q.Embed
	if embed == "" {
		embed = defaultEmbed
	}
	v.Set("_embed", embed)

	return v
}

// ContentClient fetches /wp/v2 resources with a bounded time-window cache.
// Failed fetches are never cached.
type ContentClient struct {
	base
	cache *cache.Cache
}

// NewContentClient creates a content gateway client. cacheTTL bounds how
// long responses are reused.
func NewContentClient(baseURL string, timeout, cacheTTL time.Duration) *ContentClient {
	return NewContentClientWithClock(baseURL, timeout, cacheTTL, time.Now)
}

// NewContentClientWithClock is NewContentClient with an injected clock for
// tests.
func NewContentClientWithClock(baseURL string, timeout, cacheTTL time.Duration, now func() time.Time) *ContentClient {
	return &ContentClient{
		base:  newBase(baseURL, timeout),
		cache: cache.NewWithClock(cacheTTL, now),
	}
}

func (c *ContentClient) endpointURL(endpoint string, q Query) string {
	return c.baseURL + "/wp/v2/" + endpoint + "?" + q.values().Encode()
}

func cacheKey(endpoint string, q Query) string {
	return endpoint + "?" + q.values().Encode()
}

// Posts fetches posts with filtering and pagination.
func (c *ContentClient) Posts(ctx context.Context, q Query) ([]Post, error) {
	key := cacheKey("posts", q)
	if cached, ok := c.cache.Get(key); ok {
		return cached.([]Post), nil
	}

	var posts []Post
	err := c.do(ctx, http.MethodGet, c.endpointURL("posts", q), "", nil, &posts,
		codeFetchFailed, "Failed to fetch posts")
	if err != nil {
		return nil, err
	}

	c.cache.Set(key, posts)
	return posts, nil
}

// PostBySlug fetches a single post, or nil when no post has the slug.
func (c *ContentClient) PostBySlug(ctx context.Context, slug string) (*Post, error) {
	posts, err := c.Posts(ctx, Query{Slug: slug})
	if err != nil {
		return nil, err
	}
	if len(posts) == 0 {
		return nil, nil
	}
	return &posts[0], nil
}

// PostByID fetches a single post by id. A provider 404 yields (nil, nil).
func (c *ContentClient) PostByID(ctx context.Context, id int) (*Post, error) {
	endpoint := "posts/" + strconv.Itoa(id)
	key := cacheKey(endpoint, Query{})
	if cached, ok := c.cache.Get(key); ok {
		post := cached.(Post)
		return &post, nil
	}

	var post Post
	err := c.do(ctx, http.MethodGet, c.endpointURL(endpoint, Query{}), "", nil, &post,
		codeFetchFailed, "Failed to fetch post")
	if err != nil {
		if apiErr, ok := apperrors.AsAPIError(err); ok && apiErr.Status == http.StatusNotFound {
			return nil, nil
		}
		return nil, err
	}

	c.cache.Set(key, post)
	return &post, nil
}

// Pages fetches pages with filtering and pagination.
func (c *ContentClient) Pages(ctx context.Context, q Query) ([]Page, error) {
	key := cacheKey("pages", q)
	if cached, ok := c.cache.Get(key); ok {
		return cached.([]Page), nil
	}

	var pages []Page
	err := c.do(ctx, http.MethodGet, c.endpointURL("pages", q), "", nil, &pages,
		codeFetchFailed, "Failed to fetch pages")
	if err != nil {
		return nil, err
	}

	c.cache.Set(key, pages)
	return pages, nil
}

// PageBySlug fetches a single page, or nil when no page has the slug.
func (c *ContentClient) PageBySlug(ctx context.Context, slug string) (*Page, error) {
	pages, err := c.Pages(ctx, Query{Slug: slug})
	if err != nil {
		return nil, err
	}
	if len(pages) == 0 {
		return nil, nil
	}
	return &pages[0], nil
}

// CustomPosts fetches a custom post type collection as raw JSON objects.
func (c *ContentClient) CustomPosts(ctx context.Context, postType string, q Query) ([]map[string]interface{}, error) {
	key := cacheKey(postType, q)
	if cached, ok := c.cache.Get(key); ok {
		return cached.([]map[string]interface{}), nil
	}

	var items []map[string]interface{}
	err := c.do(ctx, http.MethodGet, c.endpointURL(postType, q), "", nil, &items,
		codeFetchFailed, "Failed to fetch "+postType)
	if err != nil {
		return nil, err
	}

	c.cache.Set(key, items)
	return items, nil
}

// SearchPosts searches across post content.
func (c *ContentClient) SearchPosts(ctx context.Context, query string, q Query) ([]Post, error) {
	q.Search = query
	return c.Posts(ctx, q)
}

// PostsByCategory fetches posts in a category.
func (c *ContentClient) PostsByCategory(ctx context.Context, categoryID int, q Query) ([]Post, error) {
	q.Categories = []int{categoryID}
	return c.Posts(ctx, q)
}

// PostsByTag fetches posts carrying a tag.
func (c *ContentClient) PostsByTag(ctx context.Context, tagID int, q Query) ([]Post, error) {
	q.Tags = []int{tagID}
	return c.Posts(ctx, q)
}

// PostsByAuthor fetches posts by an author.
func (c *ContentClient) PostsByAuthor(ctx context.Context, authorID int, q Query) ([]Post, error) {
	q.Author = authorID
	return c.Posts(ctx, q)
}

// ClearCache drops all cached entries. Useful in development.
func (c *ContentClient) ClearCache() {
	c.cache.Reset()
}

// Package feed fetches entity headlines from a JSON news-search
// endpoint, with an optional store-backed cache in front of the
// network.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/html"

	"github.com/newslens/comention/pkg/comention"
	"github.com/newslens/comention/pkg/comention/store"
)

// DefaultLimit caps a search when neither the request nor the client
// sets one.
const DefaultLimit = 50

// Item represents one entry from the news search endpoint. The same
// shape is used for JSONL snapshots.
type Item struct {
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	Source      string    `json:"source"`
	PublishedAt time.Time `json:"published_at"`
}

// Options configures a Client.
type Options struct {
	BaseURL    string
	Limit      int           // default per-query article limit
	HTTPClient *http.Client  // defaults to http.DefaultClient
	Store      store.Store   // optional article cache
	MaxAge     time.Duration // cache entries older than this are refetched
	Logger     *logrus.Entry
}

// Client queries the news search endpoint for articles about an entity.
// It implements comention.ArticleProvider.
type Client struct {
	baseURL string
	limit   int
	httpc   *http.Client
	store   store.Store
	maxAge  time.Duration
	log     *logrus.Entry
}

// NewClient creates a feed client.
func NewClient(opts Options) *Client {
	httpc := opts.HTTPClient
	if httpc == nil {
		httpc = http.DefaultClient
	}
	log := opts.Logger
	if log == nil {
		log = logrus.NewEntry(logrus.New())
	}
	return &Client{
		baseURL: strings.TrimSuffix(opts.BaseURL, "/"),
		limit:   opts.Limit,
		httpc:   httpc,
		store:   opts.Store,
		maxAge:  opts.MaxAge,
		log:     log.WithField("component", "feed"),
	}
}

// Articles returns recent articles about the requested entity, served
// from the cache when fresh and fetched from the endpoint otherwise.
func (c *Client) Articles(ctx context.Context, req comention.ArticleRequest) ([]comention.Article, error) {
	key := store.EntityKey(req.Kind.String(), req.ID)

	if c.store != nil {
		cached, found, err := c.store.GetArticles(ctx, req.Sport, key, c.maxAge)
		if err != nil {
			return nil, err
		}
		if found {
			c.log.WithFields(logrus.Fields{
				"entity":   req.Name,
				"articles": len(cached),
			}).Debug("Serving articles from cache")
			return fromStoreArticles(cached), nil
		}
	}

	items, err := c.search(ctx, req.Name, req.Limit)
	if err != nil {
		return nil, err
	}
	articles := fromItems(items)

	if c.store != nil {
		if err := c.store.PutArticles(ctx, req.Sport, key, toStoreArticles(articles), time.Now()); err != nil {
			c.log.WithError(err).Warn("Failed to cache articles")
		}
	}

	return articles, nil
}

func (c *Client) search(ctx context.Context, name string, limit int) ([]Item, error) {
	if limit <= 0 {
		limit = c.limit
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	endpoint := c.baseURL + "/search?q=" + url.QueryEscape(name) + "&limit=" + strconv.Itoa(limit)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpc.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("news search: HTTP %d", resp.StatusCode)
	}

	var decoded struct {
		Articles []Item `json:"articles"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, err
	}
	return decoded.Articles, nil
}

// LoadFromJSONL loads articles from a JSONL snapshot file. Malformed
// lines are skipped with a warning; an empty result is an error.
func LoadFromJSONL(path string) ([]comention.Article, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file %s: %w", path, err)
	}

	var items []Item
	lines := strings.Split(string(data), "\n")

	for i, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		var item Item
		if err := json.Unmarshal([]byte(line), &item); err != nil {
			logrus.WithFields(logrus.Fields{
				"path": path,
				"line": i + 1,
			}).WithError(err).Warn("Skipping malformed JSONL line")
			continue
		}
		items = append(items, item)
	}

	if len(items) == 0 {
		return nil, fmt.Errorf("no valid items found in %s", path)
	}

	return fromItems(items), nil
}

func fromItems(items []Item) []comention.Article {
	articles := make([]comention.Article, 0, len(items))
	for _, it := range items {
		if it.Title == "" {
			continue
		}
		articles = append(articles, comention.Article{
			Title:       stripHTML(it.Title),
			Link:        it.URL,
			PublishedAt: it.PublishedAt,
			Source:      it.Source,
		})
	}
	return articles
}

func fromStoreArticles(in []store.Article) []comention.Article {
	out := make([]comention.Article, len(in))
	for i, a := range in {
		out[i] = comention.Article{
			Title:       a.Title,
			Link:        a.URL,
			PublishedAt: a.PublishedAt,
			Source:      a.Source,
		}
	}
	return out
}

func toStoreArticles(in []comention.Article) []store.Article {
	out := make([]store.Article, len(in))
	for i, a := range in {
		out[i] = store.Article{
			URL:         a.Link,
			Title:       a.Title,
			Source:      a.Source,
			PublishedAt: a.PublishedAt,
		}
	}
	return out
}

func stripHTML(s string) string {
	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		// Fallback to string if parsing fails
		return s
	}

	var buf strings.Builder
	var extractText func(*html.Node)
	extractText = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extractText(c)
		}
	}
	extractText(doc)

	return strings.TrimSpace(buf.String())
}

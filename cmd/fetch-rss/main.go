package main

import (
	"encoding/json"
	"encoding/xml"
	"flag"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/newslens/comention/internal/feed"
)

// rssFeed is the subset of RSS 2.0 this tool reads
type rssFeed struct {
	XMLName xml.Name   `xml:"rss"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title string    `xml:"title"`
	Items []rssItem `xml:"item"`
}

type rssItem struct {
	Title   string `xml:"title"`
	Link    string `xml:"link"`
	PubDate string `xml:"pubDate"`
}

func main() {
	var (
		feedURL = flag.String("feed", "", "RSS feed URL (required)")
		limit   = flag.Int("limit", 0, "Max articles to keep (0 keeps everything)")
		out     = flag.String("out", "testdata/news/articles.jsonl", "Output JSONL path")
	)
	flag.Parse()

	if *feedURL == "" {
		log.Fatal("--feed required")
	}

	log.Printf("Fetching RSS feed %s...", *feedURL)

	resp, err := http.Get(*feedURL)
	if err != nil {
		log.Fatal("Failed to fetch:", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Fatalf("HTTP error: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Fatal("Failed to read response:", err)
	}

	var parsed rssFeed
	if err := xml.Unmarshal(body, &parsed); err != nil {
		log.Fatal("Failed to parse XML:", err)
	}

	items := parsed.Channel.Items
	if *limit > 0 && len(items) > *limit {
		items = items[:*limit]
	}

	log.Printf("Received %d items from %q", len(items), parsed.Channel.Title)

	// Create output directory
	if err := os.MkdirAll(filepath.Dir(*out), 0755); err != nil {
		log.Fatal("Failed to create output directory:", err)
	}

	outFile, err := os.Create(*out)
	if err != nil {
		log.Fatal("Failed to create output file:", err)
	}
	defer outFile.Close()

	encoder := json.NewEncoder(outFile)
	saved := 0

	for _, item := range items {
		title := cleanText(item.Title)
		if title == "" || item.Link == "" {
			continue
		}

		article := feed.Item{
			URL:         item.Link,
			Title:       title,
			Source:      parsed.Channel.Title,
			PublishedAt: parsePubDate(item.PubDate),
		}

		if err := encoder.Encode(article); err != nil {
			log.Printf("Failed to encode article %s: %v", item.Link, err)
			continue
		}

		saved++
		if saved%25 == 0 {
			log.Printf("Processed %d/%d items...", saved, len(items))
		}
	}

	log.Printf("✓ Saved %d articles to %s", saved, *out)
}

// parsePubDate tries the date layouts RSS feeds use in the wild.
func parsePubDate(s string) time.Time {
	for _, layout := range []string{time.RFC1123Z, time.RFC1123, time.RFC822Z, time.RFC822} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Now()
}

func cleanText(s string) string {
	return strings.TrimSpace(strings.Join(strings.Fields(s), " "))
}

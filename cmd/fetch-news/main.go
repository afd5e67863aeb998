package main

import (
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/newslens/comention/internal/feed"
)

func main() {
	var (
		base  = flag.String("base", "", "News search base URL (required)")
		query = flag.String("q", "", "Search query, usually an entity name (required)")
		limit = flag.Int("limit", feed.DefaultLimit, "Max articles to request")
		out   = flag.String("out", "testdata/news/articles.jsonl", "Output JSONL path")
	)
	flag.Parse()

	if *base == "" {
		log.Fatal("--base required")
	}
	if *query == "" {
		log.Fatal("--q required")
	}

	endpoint := strings.TrimSuffix(*base, "/") + "/search?q=" + url.QueryEscape(*query) + "&limit=" + strconv.Itoa(*limit)

	log.Printf("Fetching articles for %q...", *query)

	resp, err := http.Get(endpoint)
	if err != nil {
		log.Fatal("Failed to query feed:", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Fatalf("Feed returned HTTP %d", resp.StatusCode)
	}

	var decoded struct {
		Articles []feed.Item `json:"articles"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		log.Fatal("Failed to decode feed response:", err)
	}

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
	for _, item := range decoded.Articles {
		// Articles without a title can never match anything
		if item.Title == "" {
			continue
		}
		if err := encoder.Encode(item); err != nil {
			log.Printf("Failed to encode article %s: %v", item.URL, err)
			continue
		}
		saved++
	}

	log.Printf("✓ Saved %d articles to %s", saved, *out)
}

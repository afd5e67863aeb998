package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/sirupsen/logrus"

	"github.com/newslens/comention/internal/catalog"
	"github.com/newslens/comention/internal/feed"
	"github.com/newslens/comention/pkg/comention"
	"github.com/newslens/comention/pkg/comention/config"
	"github.com/newslens/comention/pkg/comention/store"
	"github.com/newslens/comention/pkg/comention/store/sqlite"
)

// fileProvider serves a fixed article snapshot instead of the live feed.
type fileProvider struct {
	articles []comention.Article
}

func (p *fileProvider) Articles(ctx context.Context, req comention.ArticleRequest) ([]comention.Article, error) {
	return p.articles, nil
}

func main() {
	var (
		configPath = flag.String("config", "", "Sports registry YAML (required)")
		sport      = flag.String("sport", "", "Sport id from the registry (required)")
		entityID   = flag.String("entity", "", "Entity id to search around (required)")
		kindName   = flag.String("kind", "", "Entity kind: player or team (required)")
		dbPath     = flag.String("db", "", "SQLite store path (defaults to store_path from the config)")
		articlesIn = flag.String("articles", "", "JSONL article snapshot instead of the live feed")
		limit      = flag.Int("limit", 0, "Max articles to fetch (sport feed default when 0)")
		topK       = flag.Int("topk", 0, "Truncate the ranking (0 keeps everything)")
		verbose    = flag.Bool("verbose", false, "Enable debug logging")
	)
	flag.Parse()

	if *configPath == "" {
		log.Fatal("--config required")
	}
	if *sport == "" {
		log.Fatal("--sport required")
	}
	if *entityID == "" {
		log.Fatal("--entity required")
	}
	if *kindName == "" {
		log.Fatal("--kind required")
	}

	kind, err := comention.ParseKind(*kindName)
	if err != nil {
		log.Fatal("Invalid kind:", err)
	}

	ctx := context.Background()

	// Load configuration components
	loader := config.Loader{ConfigPath: *configPath}
	components, err := loader.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	sportCfg, ok := components.Config.Sport(*sport)
	if !ok {
		log.Fatalf("Sport %q not registered in %s", *sport, *configPath)
	}

	logger := logrus.New()
	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	}
	logEntry := logrus.NewEntry(logger)

	// Open the store when a path is configured; runs work without one.
	var st store.Store
	path := *dbPath
	if path == "" {
		path = components.Config.StorePath
	}
	if path != "" {
		st, err = sqlite.OpenSQLite(ctx, path)
		if err != nil {
			log.Fatal("Failed to open database:", err)
		}
	}

	var articles comention.ArticleProvider
	if *articlesIn != "" {
		loaded, err := feed.LoadFromJSONL(*articlesIn)
		if err != nil {
			log.Fatal("Failed to load articles:", err)
		}
		log.Printf("Loaded %d articles from %s", len(loaded), *articlesIn)
		articles = &fileProvider{articles: loaded}
	} else {
		if sportCfg.Feed.BaseURL == "" {
			log.Fatalf("Sport %q has no feed endpoint; use --articles", *sport)
		}
		maxAge, err := components.Config.Cache.MaxAge()
		if err != nil {
			log.Fatal("Invalid cache configuration:", err)
		}
		articles = feed.NewClient(feed.Options{
			BaseURL: sportCfg.Feed.BaseURL,
			Limit:   sportCfg.Feed.Limit,
			Store:   st,
			MaxAge:  maxAge,
			Logger:  logEntry,
		})
	}

	eng := comention.New(comention.Options{
		Catalog:  catalog.NewProvider(components, st, logEntry),
		Articles: articles,
		Store:    st,
		Logger:   logEntry,
	})
	defer eng.Close()

	res, err := eng.CoMentions(ctx, comention.Request{
		Sport:    *sport,
		EntityID: *entityID,
		Kind:     kind,
		Limit:    *limit,
		TopK:     *topK,
	})
	if err != nil {
		log.Fatal("Co-mention run failed:", err)
	}

	fmt.Printf("Co-mentions around %s (%s), %d articles scanned, run %s\n\n",
		res.Entity.Name, res.Entity.Kind, res.Articles, res.RunID)

	if len(res.Mentions) == 0 {
		fmt.Println("No co-mentions found.")
		return
	}

	fmt.Printf("%4s  %5s  %-6s  %s\n", "RANK", "COUNT", "KIND", "NAME")
	for i, m := range res.Mentions {
		fmt.Printf("%4d  %5d  %-6s  %s\n", i+1, m.Count, m.Entity.Kind, m.Entity.Name)
	}
}

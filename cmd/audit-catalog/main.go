package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"

	"github.com/sirupsen/logrus"

	"github.com/newslens/comention/internal/catalog"
	"github.com/newslens/comention/pkg/comention/analytics"
	"github.com/newslens/comention/pkg/comention/config"
)

type sportReport struct {
	Sport          string          `json:"sport"`
	Entities       int             `json:"entities"`
	Teams          int             `json:"teams"`
	Players        int             `json:"players"`
	NeverMatchable []entityJSON    `json:"never_matchable,omitempty"`
	WeakIneligible []entityJSON    `json:"weak_ineligible,omitempty"`
	SharedSurnames []collisionJSON `json:"shared_surnames,omitempty"`
	DanglingTeams  []danglingJSON  `json:"dangling_teams,omitempty"`
}

type entityJSON struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type collisionJSON struct {
	Token   string       `json:"token"`
	Players []entityJSON `json:"players"`
}

type danglingJSON struct {
	Player entityJSON `json:"player"`
	Team   string     `json:"team"`
}

func main() {
	var (
		configPath = flag.String("config", "", "Sports registry YAML (required)")
		sport      = flag.String("sport", "", "Audit a single sport (default: every registered sport)")
	)
	flag.Parse()

	if *configPath == "" {
		log.Fatal("--config required")
	}

	ctx := context.Background()

	loader := config.Loader{ConfigPath: *configPath}
	components, err := loader.Load()
	if err != nil {
		log.Fatalf("load configs: %v", err)
	}

	provider := catalog.NewProvider(components, nil, logrus.NewEntry(logrus.New()))

	var sports []string
	if *sport != "" {
		sports = []string{*sport}
	} else {
		for _, s := range components.Config.Sports {
			sports = append(sports, s.ID)
		}
	}

	reports := make([]sportReport, 0, len(sports))
	for _, id := range sports {
		entities, err := provider.Entities(ctx, id)
		if err != nil {
			log.Fatalf("load catalog %s: %v", id, err)
		}
		reports = append(reports, toReport(id, analytics.Analyze(entities)))
	}

	out, err := json.MarshalIndent(reports, "", "  ")
	if err != nil {
		log.Fatalf("marshal report: %v", err)
	}
	fmt.Println(string(out))
}

func toReport(sport string, rep analytics.Report) sportReport {
	out := sportReport{
		Sport:          sport,
		Entities:       rep.Entities,
		Teams:          rep.Teams,
		Players:        rep.Players,
		NeverMatchable: toEntityJSON(rep.NeverMatchable),
		WeakIneligible: toEntityJSON(rep.WeakIneligible),
	}
	for _, col := range rep.SharedSurnames {
		out.SharedSurnames = append(out.SharedSurnames, collisionJSON{
			Token:   col.Token,
			Players: toEntityJSON(col.Players),
		})
	}
	for _, gap := range rep.DanglingTeams {
		out.DanglingTeams = append(out.DanglingTeams, danglingJSON{
			Player: entityJSON{ID: gap.Player.ID, Name: gap.Player.Name},
			Team:   gap.Team,
		})
	}
	return out
}

func toEntityJSON(refs []analytics.EntityRef) []entityJSON {
	out := make([]entityJSON, 0, len(refs))
	for _, ref := range refs {
		out = append(out, entityJSON{ID: ref.ID, Name: ref.Name})
	}
	return out
}

// Package maintenance expires cached articles and old run records from a
// store. It runs on whatever schedule the caller picks; nothing in the
// engine depends on it.
package maintenance

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/newslens/comention/pkg/comention/store"
)

// Cleaner prunes store records past their retention windows. A zero
// retention disables that prune, so a Cleaner configured with only
// ArticleRetention leaves the run log alone.
type Cleaner struct {
	Store            store.Store
	ArticleRetention time.Duration
	RunRetention     time.Duration
	Logger           *logrus.Entry
}

// Result summarizes one cleaning pass. Prune failures are counted, not
// fatal, so one bad table does not stop the other from being cleaned.
type Result struct {
	ArticlesPruned int64
	RunsPruned     int64
	Errors         int
}

// Clean removes every cached article set and run older than its retention
// window, measured from the current time.
func (c *Cleaner) Clean(ctx context.Context) (Result, error) {
	var res Result
	if c.Store == nil {
		return res, errors.New("cleaner: invalid configuration")
	}

	log := c.Logger
	if log == nil {
		log = logrus.NewEntry(logrus.New())
	}
	log = log.WithField("component", "maintenance")

	now := time.Now().UTC()

	if c.ArticleRetention > 0 {
		n, err := c.Store.PruneArticles(ctx, now.Add(-c.ArticleRetention))
		if err != nil {
			res.Errors++
			log.WithError(err).Warn("Failed to prune cached articles")
		} else {
			res.ArticlesPruned = n
		}
	}

	if c.RunRetention > 0 {
		n, err := c.Store.PruneRuns(ctx, now.Add(-c.RunRetention))
		if err != nil {
			res.Errors++
			log.WithError(err).Warn("Failed to prune runs")
		} else {
			res.RunsPruned = n
		}
	}

	log.WithFields(logrus.Fields{
		"articles": res.ArticlesPruned,
		"runs":     res.RunsPruned,
		"errors":   res.Errors,
	}).Debug("Cleaning pass finished")

	return res, nil
}

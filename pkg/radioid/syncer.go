// Package radioid keeps the radio id table current from a radioid.net style
// CSV export.
package radioid

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/dbehnke/dvmhost-go/pkg/database"
	"github.com/dbehnke/dvmhost-go/pkg/logger"
	"github.com/dbehnke/dvmhost-go/pkg/lookup"
)

const (
	// RadioIDURL is the public radioid.net user export
	RadioIDURL = "https://radioid.net/static/user.csv"
	// DefaultInterval is how often to sync when none is configured
	DefaultInterval = 24 * time.Hour
)

// Store persists downloaded radios so a restart without network still has
// them.
type Store interface {
	UpsertBatch(radios []database.Radio, batchSize int) error
	Count() (int64, error)
}

// Syncer handles syncing the radio id table
type Syncer struct {
	url      string
	interval time.Duration
	table    *lookup.RadioIDTable
	store    Store
	logger   *logger.Logger
	client   *http.Client
}

// NewSyncer creates a syncer that downloads url into table and, when store
// is not nil, into the database.
func NewSyncer(url string, interval time.Duration, table *lookup.RadioIDTable, store Store, log *logger.Logger) *Syncer {
	if url == "" {
		url = RadioIDURL
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Syncer{
		url:      url,
		interval: interval,
		table:    table,
		store:    store,
		logger:   log.WithComponent("radioid"),
		client: &http.Client{
			Timeout: 5 * time.Minute, // Large file, need generous timeout
		},
	}
}

// Start syncs at once and then every interval until ctx is cancelled.
func (s *Syncer) Start(ctx context.Context) error {
	s.logger.Info("Starting radio id sync", logger.String("url", s.url))
	if err := s.Sync(ctx); err != nil {
		s.logger.Error("Failed to sync radio ids on startup", logger.Error(err))
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Radio id syncer stopped")
			return ctx.Err()
		case <-ticker.C:
			if err := s.Sync(ctx); err != nil {
				s.logger.Error("Failed to sync radio ids", logger.Error(err))
			}
		}
	}
}

// Sync downloads and loads the export once. The table is left untouched
// when the download or parse fails.
func (s *Syncer) Sync(ctx context.Context) error {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download radio ids: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			s.logger.Warn("Failed to close response body", logger.Error(err))
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	radios, err := lookup.ParseRadioCSV(resp.Body, s.logger)
	if err != nil {
		return fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(radios) == 0 {
		return fmt.Errorf("download from %s held no radio ids", s.url)
	}

	s.table.Replace(radios)

	if s.store != nil {
		if err := s.store.UpsertBatch(radios, lookup.BatchSize); err != nil {
			return fmt.Errorf("failed to save radios: %w", err)
		}
		count, _ := s.store.Count()
		s.logger.Debug("Radio table stored", logger.Int64("rows", count))
	}

	s.logger.Info("Radio id sync complete",
		logger.Int("radios", len(radios)),
		logger.Duration("duration", time.Since(start)))
	return nil
}

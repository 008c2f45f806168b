package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Load brings the catalog up at startup: a live fetch first, then the
// persisted snapshot if the feed is unreachable.
func (c *Catalog) Load(ctx context.Context) error {
	err := c.Refresh(ctx)
	if err == nil {
		return nil
	}
	if c.store == nil {
		return err
	}

	slog.Warn("feed unavailable, falling back to stored snapshot", "error", err)

	snap, loadErr := c.store.LoadLatest(ctx)
	if loadErr != nil {
		return errors.Join(err, fmt.Errorf("loading stored snapshot: %w", loadErr))
	}
	if snap == nil {
		return fmt.Errorf("no stored snapshot: %w", err)
	}
	if err := c.Install(snap); err != nil {
		return fmt.Errorf("installing stored snapshot: %w", err)
	}

	slog.Info("catalog loaded from stored snapshot",
		"units", len(snap.Units),
		"digest", snap.Digest,
		"fetchedAt", snap.FetchedAt.Format(time.RFC3339))
	return nil
}

// Refresh fetches the feed and swaps in the new view. On any error the
// previous view stays in place.
func (c *Catalog) Refresh(ctx context.Context) error {
	snap, err := c.fetcher.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("fetching feed: %w", err)
	}

	prev := c.Digest()
	if err := c.Install(snap); err != nil {
		return err
	}
	if snap.Digest != prev {
		slog.Info("catalog refreshed", "units", len(snap.Units), "tiers", len(snap.Tiers), "digest", snap.Digest)
	}

	if c.store == nil {
		return nil
	}

	stored, err := c.store.LatestDigest(ctx)
	if err != nil {
		// Новый снапшот уже установлен, ошибка БД не фатальна
		slog.Error("reading stored snapshot digest", "error", err)
		return nil
	}
	if stored == snap.Digest {
		return nil
	}
	if err := c.store.Save(ctx, snap); err != nil {
		slog.Error("persisting snapshot", "digest", snap.Digest, "error", err)
		return nil
	}
	slog.Debug("snapshot persisted", "digest", snap.Digest)
	return nil
}

// Run refreshes periodically until ctx is canceled.
func (c *Catalog) Run(ctx context.Context) error {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	slog.Info("catalog refresher started", "interval", c.interval)

	for {
		select {
		case <-ctx.Done():
			slog.Info("catalog refresher stopping")
			return ctx.Err()

		case <-ticker.C:
			if err := c.Refresh(ctx); err != nil {
				slog.Error("catalog refresh failed, keeping previous snapshot", "error", err)
			}
		}
	}
}

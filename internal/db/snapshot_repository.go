package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/unitstats/internal/feed"
	"github.com/udisondev/unitstats/internal/model"
	"github.com/udisondev/unitstats/internal/stat"
)

// SnapshotRepository keeps the last good feed snapshot so the service can
// start when the feed is unreachable. Only the newest snapshot is retained.
type SnapshotRepository struct {
	db *pgxpool.Pool
}

// NewSnapshotRepository creates a new SnapshotRepository.
func NewSnapshotRepository(db *pgxpool.Pool) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// LatestDigest returns the digest of the stored snapshot, or "" if none.
func (r *SnapshotRepository) LatestDigest(ctx context.Context) (string, error) {
	var digest string
	err := r.db.QueryRow(ctx,
		`SELECT digest FROM feed_snapshots ORDER BY id DESC LIMIT 1`,
	).Scan(&digest)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("querying latest snapshot digest: %w", err)
	}
	return digest, nil
}

// Save replaces the stored snapshot with snap in a single transaction.
func (r *SnapshotRepository) Save(ctx context.Context, snap *feed.Snapshot) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			slog.Error("snapshot rollback failed", "digest", snap.Digest, "error", err)
		}
	}()

	if err := r.SaveTx(ctx, tx, snap); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing snapshot: %w", err)
	}
	return nil
}

// SaveTx writes snap within an existing transaction (full replace).
func (r *SnapshotRepository) SaveTx(ctx context.Context, tx pgx.Tx, snap *feed.Snapshot) error {
	if _, err := tx.Exec(ctx, `DELETE FROM feed_snapshots`); err != nil {
		return fmt.Errorf("deleting previous snapshots: %w", err)
	}

	var id int64
	err := tx.QueryRow(ctx,
		`INSERT INTO feed_snapshots (digest, fetched_at, has_mods) VALUES ($1, $2, $3) RETURNING id`,
		snap.Digest, snap.FetchedAt, snap.Mods != nil,
	).Scan(&id)
	if err != nil {
		return fmt.Errorf("inserting snapshot %s: %w", snap.Digest, err)
	}

	for i, u := range snap.Units {
		stats, err := json.Marshal(u.Base)
		if err != nil {
			return fmt.Errorf("encoding stats of unit %q: %w", u.Label, err)
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO snapshot_units (snapshot_id, position, label, class, rarity, stats)
			 VALUES ($1, $2, $3, $4, $5, $6::jsonb)`,
			id, i, u.Label, u.Class, u.RarityText(), string(stats),
		); err != nil {
			return fmt.Errorf("inserting unit %q: %w", u.Label, err)
		}
	}

	for i, m := range snap.Mods {
		effects, err := json.Marshal(m.Effects)
		if err != nil {
			return fmt.Errorf("encoding effects of mod %s: %w", m.ID, err)
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO snapshot_mods (snapshot_id, position, mod_id, label, rarity, effects)
			 VALUES ($1, $2, $3, $4, $5, $6::jsonb)`,
			id, i, m.ID, m.Label, m.Rarity.String(), string(effects),
		); err != nil {
			return fmt.Errorf("inserting mod %s: %w", m.ID, err)
		}
	}

	for i, t := range snap.Tiers {
		if _, err := tx.Exec(ctx,
			`INSERT INTO snapshot_tiers (snapshot_id, position, label, tier, note) VALUES ($1, $2, $3, $4, $5)`,
			id, i, t.Label, t.Tier, t.Note,
		); err != nil {
			return fmt.Errorf("inserting tier entry %q: %w", t.Label, err)
		}
	}

	return nil
}

// LoadLatest reads the stored snapshot.
// Returns nil, nil if nothing has been stored yet.
func (r *SnapshotRepository) LoadLatest(ctx context.Context) (*feed.Snapshot, error) {
	var (
		id        int64
		snap      feed.Snapshot
		fetchedAt time.Time
		hasMods   bool
	)
	err := r.db.QueryRow(ctx,
		`SELECT id, digest, fetched_at, has_mods FROM feed_snapshots ORDER BY id DESC LIMIT 1`,
	).Scan(&id, &snap.Digest, &fetchedAt, &hasMods)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying latest snapshot: %w", err)
	}
	snap.FetchedAt = fetchedAt

	if snap.Units, err = r.loadUnits(ctx, id); err != nil {
		return nil, err
	}
	if hasMods {
		if snap.Mods, err = r.loadMods(ctx, id); err != nil {
			return nil, err
		}
	}
	if snap.Tiers, err = r.loadTiers(ctx, id); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (r *SnapshotRepository) loadUnits(ctx context.Context, id int64) ([]model.Unit, error) {
	rows, err := r.db.Query(ctx,
		`SELECT label, class, rarity, stats FROM snapshot_units WHERE snapshot_id = $1 ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("querying snapshot units: %w", err)
	}
	defer rows.Close()

	var units []model.Unit
	for rows.Next() {
		var (
			label, class, rarity string
			raw                  []byte
		)
		if err := rows.Scan(&label, &class, &rarity, &raw); err != nil {
			return nil, fmt.Errorf("scanning unit row: %w", err)
		}
		var base stat.Bag
		if err := json.Unmarshal(raw, &base); err != nil {
			return nil, fmt.Errorf("decoding stats of unit %q: %w", label, err)
		}
		units = append(units, model.UnitFromSheet(label, class, rarity, base))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating unit rows: %w", err)
	}
	return units, nil
}

func (r *SnapshotRepository) loadMods(ctx context.Context, id int64) ([]model.Mod, error) {
	rows, err := r.db.Query(ctx,
		`SELECT mod_id, label, rarity, effects FROM snapshot_mods WHERE snapshot_id = $1 ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("querying snapshot mods: %w", err)
	}
	defer rows.Close()

	mods := make([]model.Mod, 0)
	for rows.Next() {
		var (
			m      model.Mod
			rarity string
			raw    []byte
		)
		if err := rows.Scan(&m.ID, &m.Label, &rarity, &raw); err != nil {
			return nil, fmt.Errorf("scanning mod row: %w", err)
		}
		m.Rarity = model.ParseRarity(rarity)
		if err := json.Unmarshal(raw, &m.Effects); err != nil {
			return nil, fmt.Errorf("decoding effects of mod %s: %w", m.ID, err)
		}
		mods = append(mods, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating mod rows: %w", err)
	}
	return mods, nil
}

func (r *SnapshotRepository) loadTiers(ctx context.Context, id int64) ([]model.TierEntry, error) {
	rows, err := r.db.Query(ctx,
		`SELECT label, tier, note FROM snapshot_tiers WHERE snapshot_id = $1 ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("querying snapshot tiers: %w", err)
	}
	defer rows.Close()

	var tiers []model.TierEntry
	for rows.Next() {
		var t model.TierEntry
		if err := rows.Scan(&t.Label, &t.Tier, &t.Note); err != nil {
			return nil, fmt.Errorf("scanning tier row: %w", err)
		}
		tiers = append(tiers, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tier rows: %w", err)
	}
	return tiers, nil
}

// Package catalog holds the read-only, in-memory view of the feed: units,
// mods and tier list. A refresh builds a new view and swaps it in atomically,
// so readers never see a half-loaded catalog.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/udisondev/unitstats/internal/data"
	"github.com/udisondev/unitstats/internal/feed"
	"github.com/udisondev/unitstats/internal/model"
)

var (
	ErrNotLoaded    = errors.New("catalog not loaded")
	ErrUnitNotFound = errors.New("unit not found")
	ErrModNotFound  = errors.New("mod not found")
)

// Fetcher downloads one consistent feed snapshot.
type Fetcher interface {
	Fetch(ctx context.Context) (*feed.Snapshot, error)
}

// Store persists the last good snapshot.
type Store interface {
	LatestDigest(ctx context.Context) (string, error)
	Save(ctx context.Context, snap *feed.Snapshot) error
	LoadLatest(ctx context.Context) (*feed.Snapshot, error)
}

// view is an immutable catalog generation.
type view struct {
	units     []model.Unit
	byLabel   map[string]int // lowercased label → index
	mods      *data.ModCatalog
	tiers     []model.TierEntry
	digest    string
	fetchedAt time.Time
}

// Catalog serves lookups from the current view. Safe for concurrent use.
type Catalog struct {
	fetcher  Fetcher
	store    Store // nil when persistence is disabled
	builtin  *data.ModCatalog
	interval time.Duration

	current atomic.Pointer[view]
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithStore enables snapshot persistence and startup fallback.
func WithStore(s Store) Option {
	return func(c *Catalog) { c.store = s }
}

// WithBuiltinMods sets the mods used when the feed publishes no mods sheet.
func WithBuiltinMods(m *data.ModCatalog) Option {
	return func(c *Catalog) {
		if m != nil {
			c.builtin = m
		}
	}
}

// WithRefreshInterval sets the Run loop period. Non-positive values are ignored.
func WithRefreshInterval(d time.Duration) Option {
	return func(c *Catalog) {
		if d > 0 {
			c.interval = d
		}
	}
}

// New creates an empty catalog. Call Load or Refresh before serving.
func New(f Fetcher, opts ...Option) *Catalog {
	c := &Catalog{
		fetcher:  f,
		builtin:  data.DefaultModCatalog(),
		interval: 15 * time.Minute,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Loaded reports whether a view is available.
func (c *Catalog) Loaded() bool {
	return c.current.Load() != nil
}

// Digest returns the digest of the current view, or "" before the first load.
func (c *Catalog) Digest() string {
	if v := c.current.Load(); v != nil {
		return v.digest
	}
	return ""
}

// FetchedAt returns when the current view was fetched.
func (c *Catalog) FetchedAt() time.Time {
	if v := c.current.Load(); v != nil {
		return v.fetchedAt
	}
	return time.Time{}
}

// Units returns all units in feed order. The slice is a copy.
func (c *Catalog) Units() ([]model.Unit, error) {
	v := c.current.Load()
	if v == nil {
		return nil, ErrNotLoaded
	}
	out := make([]model.Unit, len(v.units))
	copy(out, v.units)
	return out, nil
}

// Unit looks a unit up by label, case-insensitively.
func (c *Catalog) Unit(label string) (model.Unit, error) {
	v := c.current.Load()
	if v == nil {
		return model.Unit{}, ErrNotLoaded
	}
	i, ok := v.byLabel[model.Fold(strings.TrimSpace(label))]
	if !ok {
		return model.Unit{}, fmt.Errorf("%w: %s", ErrUnitNotFound, label)
	}
	return v.units[i], nil
}

// Mods returns the selectable mods in catalog order.
func (c *Catalog) Mods() ([]model.Mod, error) {
	v := c.current.Load()
	if v == nil {
		return nil, ErrNotLoaded
	}
	return v.mods.All(), nil
}

// ModsByRarity groups the selectable mods by tier.
func (c *Catalog) ModsByRarity() (map[model.Rarity][]model.Mod, error) {
	v := c.current.Load()
	if v == nil {
		return nil, ErrNotLoaded
	}
	return v.mods.ByRarity(), nil
}

// Mod looks a mod up by id.
func (c *Catalog) Mod(id string) (model.Mod, error) {
	v := c.current.Load()
	if v == nil {
		return model.Mod{}, ErrNotLoaded
	}
	m, ok := v.mods.Get(id)
	if !ok {
		return model.Mod{}, fmt.Errorf("%w: %s", ErrModNotFound, id)
	}
	return m, nil
}

// ModsByID resolves ids in order. Any unknown id fails the whole lookup.
func (c *Catalog) ModsByID(ids []string) ([]model.Mod, error) {
	v := c.current.Load()
	if v == nil {
		return nil, ErrNotLoaded
	}
	mods := make([]model.Mod, 0, len(ids))
	for _, id := range ids {
		m, ok := v.mods.Get(id)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrModNotFound, id)
		}
		mods = append(mods, m)
	}
	return mods, nil
}

// Tiers returns the tier list in feed order.
func (c *Catalog) Tiers() ([]model.TierEntry, error) {
	v := c.current.Load()
	if v == nil {
		return nil, ErrNotLoaded
	}
	out := make([]model.TierEntry, len(v.tiers))
	copy(out, v.tiers)
	return out, nil
}

// Install validates snap and makes it the current view.
func (c *Catalog) Install(snap *feed.Snapshot) error {
	v, err := c.build(snap)
	if err != nil {
		return err
	}
	c.current.Store(v)
	return nil
}

func (c *Catalog) build(snap *feed.Snapshot) (*view, error) {
	if snap == nil {
		return nil, fmt.Errorf("empty snapshot")
	}

	v := &view{
		units:     snap.Units,
		byLabel:   make(map[string]int, len(snap.Units)),
		mods:      c.builtin,
		tiers:     snap.Tiers,
		digest:    snap.Digest,
		fetchedAt: snap.FetchedAt,
	}
	for i, u := range snap.Units {
		key := model.Fold(strings.TrimSpace(u.Label))
		if _, dup := v.byLabel[key]; dup {
			slog.Warn("duplicate unit label in feed, keeping first", "label", u.Label)
			continue
		}
		v.byLabel[key] = i
	}

	if snap.Mods != nil {
		mods, err := data.NewModCatalog(snap.Mods)
		if err != nil {
			return nil, fmt.Errorf("building mod catalog from feed: %w", err)
		}
		v.mods = mods
	}
	return v, nil
}

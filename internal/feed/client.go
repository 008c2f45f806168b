// Package feed fetches unit, mod and tier-list records from the published
// spreadsheet exports and converts cell text into typed values.
package feed

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/sync/errgroup"

	"github.com/udisondev/unitstats/internal/model"
)

// maxSheetSize caps a single sheet. A larger sheet is rejected, never truncated.
const maxSheetSize = 16 << 20

// ErrSheetTooLarge is returned for a sheet over maxSheetSize bytes.
var ErrSheetTooLarge = errors.New("feed: sheet exceeds size limit")

// Sources lists where each sheet is published. An empty ModsURL or TiersURL
// means the sheet is not published; an empty UnitsURL is an error.
// A source without an http(s) scheme is read from the local filesystem.
type Sources struct {
	UnitsURL string
	ModsURL  string
	TiersURL string
}

// Snapshot is one consistent read of all sheets.
type Snapshot struct {
	Units []model.Unit
	// Mods is nil when no mods sheet is published.
	Mods      []model.Mod
	Tiers     []model.TierEntry
	Digest    string
	FetchedAt time.Time
}

// Client downloads and parses the feed.
type Client struct {
	src  Sources
	http *http.Client
}

// NewClient creates a feed client with the given per-request timeout.
func NewClient(src Sources, timeout time.Duration) *Client {
	return &Client{
		src:  src,
		http: &http.Client{Timeout: timeout},
	}
}

// Fetch downloads all sheets concurrently and parses them.
func (c *Client) Fetch(ctx context.Context) (*Snapshot, error) {
	if c.src.UnitsURL == "" {
		return nil, fmt.Errorf("feed: units source is not configured")
	}

	var unitsRaw, modsRaw, tiersRaw []byte
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		unitsRaw, err = c.get(gctx, c.src.UnitsURL)
		return err
	})
	if c.src.ModsURL != "" {
		g.Go(func() (err error) {
			modsRaw, err = c.get(gctx, c.src.ModsURL)
			return err
		})
	}
	if c.src.TiersURL != "" {
		g.Go(func() (err error) {
			tiersRaw, err = c.get(gctx, c.src.TiersURL)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	snap, err := Parse(unitsRaw, modsRaw, tiersRaw)
	if err != nil {
		return nil, err
	}

	slog.Debug("feed fetched",
		"units", len(snap.Units),
		"mods", len(snap.Mods),
		"tiers", len(snap.Tiers),
		"digest", snap.Digest)
	return snap, nil
}

// Parse builds a Snapshot from raw sheet bytes. Nil mods or tiers input
// means the sheet is not published.
func Parse(unitsRaw, modsRaw, tiersRaw []byte) (*Snapshot, error) {
	units, err := ParseUnits(bytes.NewReader(unitsRaw))
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{
		Units:     units,
		Digest:    Digest(unitsRaw, modsRaw, tiersRaw),
		FetchedAt: time.Now(),
	}

	if modsRaw != nil {
		if snap.Mods, err = ParseMods(bytes.NewReader(modsRaw)); err != nil {
			return nil, err
		}
	}
	if tiersRaw != nil {
		if snap.Tiers, err = ParseTiers(bytes.NewReader(tiersRaw)); err != nil {
			return nil, err
		}
	}
	return snap, nil
}

// Digest returns a hex BLAKE2b-256 digest over the raw sheets. Equal digests
// mean the feed content did not change.
func Digest(sheets ...[]byte) string {
	h, _ := blake2b.New256(nil)
	for _, s := range sheets {
		h.Write(s)
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

func (c *Client) get(ctx context.Context, src string) ([]byte, error) {
	if !strings.HasPrefix(src, "http://") && !strings.HasPrefix(src, "https://") {
		f, err := os.Open(strings.TrimPrefix(src, "file://"))
		if err != nil {
			return nil, fmt.Errorf("reading sheet %s: %w", src, err)
		}
		defer f.Close()
		return readSheet(f, src)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", src, err)
	}
	req.Header.Set("Accept", "text/csv")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", src, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: unexpected status %d", src, resp.StatusCode)
	}

	return readSheet(resp.Body, src)
}

// readSheet reads one byte past the limit so an oversize sheet is detected
// instead of being cut mid-row.
func readSheet(r io.Reader, src string) ([]byte, error) {
	b, err := io.ReadAll(io.LimitReader(r, maxSheetSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", src, err)
	}
	if len(b) > maxSheetSize {
		return nil, fmt.Errorf("reading %s: %w (%d bytes)", src, ErrSheetTooLarge, maxSheetSize)
	}
	return b, nil
}

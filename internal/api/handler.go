// Package api exposes the catalog and the stat engine over HTTP/JSON.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/udisondev/unitstats/internal/catalog"
	"github.com/udisondev/unitstats/internal/model"
	"github.com/udisondev/unitstats/internal/render"
	"github.com/udisondev/unitstats/internal/stat"
)

// Catalog is the read side of catalog.Catalog used by the handlers.
type Catalog interface {
	Loaded() bool
	Units() ([]model.Unit, error)
	Unit(label string) (model.Unit, error)
	ModsByRarity() (map[model.Rarity][]model.Mod, error)
	ModsByID(ids []string) ([]model.Mod, error)
	Tiers() ([]model.TierEntry, error)
}

// Engine computes stats.
type Engine interface {
	ClampLevel(level int) int
	ActiveMods(mods []model.Mod) []model.Mod
	ComputeStats(u model.Unit, level int, mods []model.Mod) stat.Bag
}

// Handler serves the stat API.
type Handler struct {
	catalog Catalog
	engine  Engine
}

// NewHandler creates a Handler.
func NewHandler(c Catalog, e Engine) *Handler {
	return &Handler{catalog: c, engine: e}
}

// Routes returns a mux with all endpoints registered.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", h.Health)
	mux.HandleFunc("GET /units", h.ListUnits)
	mux.HandleFunc("GET /units/{label}", h.GetUnit)
	mux.HandleFunc("GET /mods", h.ListMods)
	mux.HandleFunc("GET /tiers", h.ListTiers)
	return mux
}

type unitRow struct {
	Label  string       `json:"label"`
	Class  string       `json:"class"`
	Rarity model.Rarity `json:"rarity"`
	Stats  stat.Bag     `json:"stats"`
}

type unitStats struct {
	Label     string        `json:"label"`
	Level     int           `json:"level"`
	Mods      []string      `json:"mods"`
	Stats     stat.Bag      `json:"stats"`
	Formatted []render.Cell `json:"formatted"`
}

type modGroup struct {
	Rarity model.Rarity `json:"rarity"`
	Mods   []model.Mod  `json:"mods"`
}

// Health reports liveness and whether the catalog is loaded.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if !h.catalog.Loaded() {
		http.Error(w, "catalog not loaded", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// ListUnits returns the base unit table, filtered by q and sorted by sort.
func (h *Handler) ListUnits(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	desc := false
	if v := q.Get("desc"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			http.Error(w, "invalid desc", http.StatusBadRequest)
			return
		}
		desc = b
	}

	column := stat.Name(q.Get("sort"))
	if column != "" && !stat.IsColumn(column) {
		http.Error(w, "unknown sort column", http.StatusBadRequest)
		return
	}

	units, err := h.catalog.Units()
	if err != nil {
		writeError(w, err)
		return
	}

	units = render.Filter(units, q.Get("q"))
	if column != "" {
		units = render.Sort(units, column, desc)
	}

	rows := make([]unitRow, 0, len(units))
	for _, u := range units {
		rows = append(rows, unitRow{Label: u.Label, Class: u.Class, Rarity: u.Rarity, Stats: u.Base})
	}
	writeJSON(w, rows)
}

// GetUnit computes a unit's stats at ?level= with ?mods=id1,id2 applied.
func (h *Handler) GetUnit(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	level := 1
	if v := q.Get("level"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			http.Error(w, "invalid level", http.StatusBadRequest)
			return
		}
		level = n
	}

	u, err := h.catalog.Unit(r.PathValue("label"))
	if err != nil {
		writeError(w, err)
		return
	}

	mods, err := h.catalog.ModsByID(splitIDs(q.Get("mods")))
	if err != nil {
		writeError(w, err)
		return
	}

	bag := h.engine.ComputeStats(u, level, mods)

	active := h.engine.ActiveMods(mods)
	ids := make([]string, 0, len(active))
	for _, m := range active {
		ids = append(ids, m.ID)
	}

	writeJSON(w, unitStats{
		Label:     u.Label,
		Level:     h.engine.ClampLevel(level),
		Mods:      ids,
		Stats:     bag,
		Formatted: render.FormatBag(bag),
	})
}

// ListMods returns the mod catalog grouped by rarity, lowest tier first.
// Empty tiers are omitted.
func (h *Handler) ListMods(w http.ResponseWriter, r *http.Request) {
	byRarity, err := h.catalog.ModsByRarity()
	if err != nil {
		writeError(w, err)
		return
	}

	groups := make([]modGroup, 0, len(byRarity))
	for _, rarity := range model.Rarities {
		if mods := byRarity[rarity]; len(mods) > 0 {
			groups = append(groups, modGroup{Rarity: rarity, Mods: mods})
		}
	}
	writeJSON(w, groups)
}

// ListTiers returns the community tier list.
func (h *Handler) ListTiers(w http.ResponseWriter, r *http.Request) {
	tiers, err := h.catalog.Tiers()
	if err != nil {
		writeError(w, err)
		return
	}
	if tiers == nil {
		tiers = []model.TierEntry{}
	}
	writeJSON(w, tiers)
}

func splitIDs(s string) []string {
	var ids []string
	for id := range strings.SplitSeq(s, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding response", "error", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, catalog.ErrNotLoaded):
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
	case errors.Is(err, catalog.ErrUnitNotFound), errors.Is(err, catalog.ErrModNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		slog.Error("request failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

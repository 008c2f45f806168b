package feed

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/udisondev/unitstats/internal/model"
	"github.com/udisondev/unitstats/internal/stat"
)

// ErrBadHeader is returned when a sheet lacks a required column.
var ErrBadHeader = errors.New("missing required column")

// ErrSplitMod is returned when rows of one mod are not consecutive.
var ErrSplitMod = errors.New("mod rows are not consecutive")

// ParseCell converts a numeric sheet cell into a Value.
// Blank, "N/A", "-" and "None" are Unavailable. A trailing "%" divides by 100.
// Thousands separators are stripped. Anything else that fails to parse is
// reported as an error together with Unavailable.
func ParseCell(s string) (stat.Value, error) {
	s = strings.TrimSpace(s)
	if isBlank(s) {
		return stat.Unavailable, nil
	}

	percent := strings.HasSuffix(s, "%")
	s = strings.TrimSuffix(s, "%")
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return stat.Unavailable, fmt.Errorf("parsing number %q: %w", s, err)
	}
	if percent {
		f /= 100
	}
	return stat.Number(f), nil
}

// ParseTextCell converts a text sheet cell. Blank markers are Unavailable.
func ParseTextCell(s string) stat.Value {
	s = strings.TrimSpace(s)
	if isBlank(s) {
		return stat.Unavailable
	}
	return stat.Text(s)
}

func isBlank(s string) bool {
	switch strings.ToLower(s) {
	case "", "n/a", "na", "-", "none":
		return true
	}
	return false
}

func newReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	return cr
}

// headerIndex maps lower-cased header names to column positions.
func headerIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, dup := idx[h]; !dup {
			idx[h] = i
		}
	}
	return idx
}

func requireColumns(idx map[string]int, names ...string) error {
	for _, n := range names {
		if _, ok := idx[strings.ToLower(n)]; !ok {
			return fmt.Errorf("%w: %s", ErrBadHeader, n)
		}
	}
	return nil
}

func cell(row []string, idx map[string]int, name string) string {
	i, ok := idx[strings.ToLower(name)]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

// ParseUnits reads the units sheet. The header names the stat columns; Label,
// Class and Rarity are required. Every unit gets exactly the known stat
// columns present in the header, so all bags of one sheet share a key set.
// Rows with an empty Label are skipped.
func ParseUnits(r io.Reader) ([]model.Unit, error) {
	cr := newReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading units header: %w", err)
	}
	idx := headerIndex(header)
	if err := requireColumns(idx, string(stat.Label), string(stat.Class), string(stat.Rarity)); err != nil {
		return nil, fmt.Errorf("units sheet: %w", err)
	}

	var columns []stat.Name
	for _, c := range stat.Columns {
		if c == stat.Label || c == stat.Class || c == stat.Rarity {
			continue
		}
		if _, ok := idx[strings.ToLower(string(c))]; ok {
			columns = append(columns, c)
		}
	}

	var units []model.Unit
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading units row %d: %w", line, err)
		}

		label := strings.TrimSpace(cell(row, idx, string(stat.Label)))
		if label == "" {
			continue
		}

		values := make(map[stat.Name]stat.Value, len(columns))
		for _, c := range columns {
			raw := cell(row, idx, string(c))
			if stat.IsText(c) {
				values[c] = ParseTextCell(raw)
				continue
			}
			v, err := ParseCell(raw)
			if err != nil {
				slog.Warn("unparsable unit cell, treating as unavailable",
					"unit", label, "column", c, "line", line, "error", err)
			}
			values[c] = v
		}

		units = append(units, model.UnitFromSheet(
			label,
			strings.TrimSpace(cell(row, idx, string(stat.Class))),
			cell(row, idx, string(stat.Rarity)),
			stat.NewBag(values),
		))
	}
	return units, nil
}

// ParseMods reads the mods sheet: ID, Label, Rarity, Stat, Amount, Chance.
// Each row is one effect; consecutive rows sharing an ID form one mod with
// effects in row order. Blank or unparsable Amount/Chance cells are absent.
func ParseMods(r io.Reader) ([]model.Mod, error) {
	cr := newReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading mods header: %w", err)
	}
	idx := headerIndex(header)
	if err := requireColumns(idx, "ID", "Rarity", "Stat"); err != nil {
		return nil, fmt.Errorf("mods sheet: %w", err)
	}

	var mods []model.Mod
	seen := make(map[string]bool)
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading mods row %d: %w", line, err)
		}

		id := strings.TrimSpace(cell(row, idx, "ID"))
		if id == "" {
			continue
		}

		if n := len(mods); n == 0 || mods[n-1].ID != id {
			if seen[id] {
				return nil, fmt.Errorf("mods row %d: %w: %s", line, ErrSplitMod, id)
			}
			seen[id] = true
			label := strings.TrimSpace(cell(row, idx, "Label"))
			if label == "" {
				label = id
			}
			mods = append(mods, model.Mod{
				ID:     id,
				Label:  label,
				Rarity: model.ParseRarity(cell(row, idx, "Rarity")),
			})
		}

		s := strings.TrimSpace(cell(row, idx, "Stat"))
		if s == "" {
			continue
		}
		m := &mods[len(mods)-1]
		m.Effects = append(m.Effects, model.Effect{
			Stat:   stat.Name(s),
			Amount: optionalNumber(cell(row, idx, "Amount"), id, line),
			Chance: optionalNumber(cell(row, idx, "Chance"), id, line),
		})
	}
	return mods, nil
}

func optionalNumber(raw, modID string, line int) *float64 {
	v, err := ParseCell(raw)
	if err != nil {
		slog.Warn("unparsable mod cell, ignoring", "mod", modID, "line", line, "error", err)
		return nil
	}
	f, ok := v.Float()
	if !ok {
		return nil
	}
	return &f
}

// ParseTiers reads the tier list sheet: Label, Tier and optional Note.
func ParseTiers(r io.Reader) ([]model.TierEntry, error) {
	cr := newReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading tiers header: %w", err)
	}
	idx := headerIndex(header)
	if err := requireColumns(idx, "Label", "Tier"); err != nil {
		return nil, fmt.Errorf("tiers sheet: %w", err)
	}

	var tiers []model.TierEntry
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading tiers row %d: %w", line, err)
		}
		label := strings.TrimSpace(cell(row, idx, "Label"))
		if label == "" {
			continue
		}
		tiers = append(tiers, model.TierEntry{
			Label: label,
			Tier:  strings.TrimSpace(cell(row, idx, "Tier")),
			Note:  strings.TrimSpace(cell(row, idx, "Note")),
		})
	}
	return tiers, nil
}

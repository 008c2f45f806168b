// Package render turns stat bags into display text and provides the search
// and sort used by the unit table.
package render

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"text/tabwriter"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/udisondev/unitstats/internal/stat"
)

// NotAvailable is shown for Unavailable values.
const NotAvailable = "N/A"

type style uint8

const (
	styleDefault style = iota
	styleInteger
	stylePercent     // fraction → "12.5%"
	stylePoints      // already in percentage points → "20%"
	styleMultiplier  // "x1.50"
	styleTwoDecimals // "0.85"
)

var styles = map[stat.Name]style{
	stat.HP:                    styleInteger,
	stat.Damage:                styleInteger,
	stat.HPOffset:              styleInteger,
	stat.CritChance:            stylePercent,
	stat.EvadeChance:           stylePercent,
	stat.Accuracy:              stylePercent,
	stat.AttackEffectLifesteal: stylePoints,
	stat.CritDamage:            styleMultiplier,
	stat.Cooldown:              styleTwoDecimals,
	stat.Distance:              styleTwoDecimals,
	stat.Knockback:             styleTwoDecimals,
	stat.ShadowStepDistance:    styleTwoDecimals,
	stat.ShadowStepCooldown:    styleTwoDecimals,
}

// printer groups thousands in integer columns ("1,200").
var printer = message.NewPrinter(language.English)

// Format renders a single stat value for display.
func Format(n stat.Name, v stat.Value) string {
	if s, ok := v.Str(); ok {
		return s
	}
	f, ok := v.Float()
	if !ok {
		return NotAvailable
	}

	switch styles[n] {
	case styleInteger:
		return printer.Sprintf("%d", int64(math.Round(f)))
	case stylePercent:
		return strconv.FormatFloat(f*100, 'f', 1, 64) + "%"
	case stylePoints:
		return strconv.FormatFloat(f, 'f', -1, 64) + "%"
	case styleMultiplier:
		return "x" + strconv.FormatFloat(f, 'f', 2, 64)
	case styleTwoDecimals:
		return strconv.FormatFloat(f, 'f', 2, 64)
	default:
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
}

// Cell is one formatted stat.
type Cell struct {
	Stat  stat.Name `json:"stat"`
	Value string    `json:"value"`
}

// FormatBag formats every key of b in display order.
func FormatBag(b stat.Bag) []Cell {
	keys := b.Keys()
	cells := make([]Cell, 0, len(keys))
	for _, k := range keys {
		cells = append(cells, Cell{Stat: k, Value: Format(k, b.Value(k))})
	}
	return cells
}

// WriteTable prints b as a two-column aligned table.
func WriteTable(w io.Writer, b stat.Bag) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, c := range FormatBag(b) {
		if _, err := fmt.Fprintf(tw, "%s\t%s\n", c.Stat, c.Value); err != nil {
			return fmt.Errorf("writing table row: %w", err)
		}
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("flushing table: %w", err)
	}
	return nil
}

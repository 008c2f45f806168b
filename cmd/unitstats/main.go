// Command unitstats prints a unit's effective stats at a level with mods.
//
//	unitstats -unit Knight -level 10 -mods lucky_charm,ember_core
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/udisondev/unitstats/internal/catalog"
	"github.com/udisondev/unitstats/internal/config"
	"github.com/udisondev/unitstats/internal/data"
	"github.com/udisondev/unitstats/internal/engine"
	"github.com/udisondev/unitstats/internal/feed"
	"github.com/udisondev/unitstats/internal/render"
)

func main() {
	cfgPath := flag.String("config", config.Path(), "path to config file")
	unit := flag.String("unit", "", "unit label (required)")
	level := flag.Int("level", 1, "unit level")
	mods := flag.String("mods", "", "comma-separated mod ids")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	if *unit == "" {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(context.Background(), *cfgPath, *unit, *level, *mods); err != nil {
		fmt.Fprintln(os.Stderr, "unitstats:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfgPath, label string, level int, modList string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	table, err := data.LoadModifierTable(cfg.Data.ModifierTable)
	if err != nil {
		return err
	}
	builtinMods, err := data.LoadModCatalog(cfg.Data.ModCatalog)
	if err != nil {
		return err
	}
	policy, err := engine.ParseRarityPolicy(cfg.Engine.RarityPolicy)
	if err != nil {
		return err
	}
	eng := engine.New(table, engine.WithMaxLevel(cfg.Engine.MaxLevel), engine.WithRarityPolicy(policy))

	client := feed.NewClient(feed.Sources{
		UnitsURL: cfg.Feed.UnitsURL,
		ModsURL:  cfg.Feed.ModsURL,
		TiersURL: cfg.Feed.TiersURL,
	}, cfg.Feed.Timeout)

	cat := catalog.New(client, catalog.WithBuiltinMods(builtinMods))
	if err := cat.Refresh(ctx); err != nil {
		return err
	}

	u, err := cat.Unit(label)
	if err != nil {
		return err
	}

	var ids []string
	for id := range strings.SplitSeq(modList, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	selected, err := cat.ModsByID(ids)
	if err != nil {
		return err
	}

	bag := eng.ComputeStats(u, level, selected)

	fmt.Printf("%s, level %d\n\n", u.Label, eng.ClampLevel(level))
	return render.WriteTable(os.Stdout, bag)
}

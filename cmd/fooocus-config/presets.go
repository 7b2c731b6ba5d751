// ABOUTME: presets subcommands: list, show, search, filter, base-models, favorite, use, delete
// ABOUTME: Also imports and exports Fooocus preset JSON files

package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/2389/fooocus-config/internal/catalog"
	"github.com/2389/fooocus-config/internal/fooocus"
	"github.com/2389/fooocus-config/internal/store"
)

func (a *app) cmdPresets(ctx context.Context, args []string) error {
	subcmd, args := subcommand(args)

	switch subcmd {
	case "list", "ls":
		return a.cmdPresetsList(ctx, args)
	case "show", "get":
		return a.cmdPresetsShow(ctx, args)
	case "search":
		return a.cmdPresetsSearch(ctx, args)
	case "filter":
		return a.cmdPresetsFilter(ctx, args)
	case "base-models":
		return a.cmdPresetsBaseModels(ctx, args)
	case "favorite", "fav":
		return a.cmdPresetsFavorite(ctx, args)
	case "use":
		return a.cmdPresetsUse(ctx, args)
	case "delete", "rm", "remove":
		return a.cmdPresetsDelete(ctx, args)
	case "import":
		return a.cmdPresetsImport(ctx, args)
	case "export":
		return a.cmdPresetsExport(ctx, args)
	default:
		return fmt.Errorf("unknown presets subcommand: %s (use list, show, search, filter, base-models, favorite, use, delete, import, export)", subcmd)
	}
}

// positional parses flags and requires exactly n positional arguments.
func (a *app) positional(name, usage string, args []string, n int) ([]string, error) {
	fs := a.flagSet(name)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != n {
		return nil, fmt.Errorf("usage: %s", usage)
	}
	return fs.Args(), nil
}

func (a *app) getPreset(ctx context.Context, id string) (*store.Preset, error) {
	p, err := a.store.GetPreset(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("preset %s: %w", id, err)
	}
	return p, err
}

func (a *app) cmdPresetsList(ctx context.Context, args []string) error {
	if _, err := a.positional("presets list", "presets list", args, 0); err != nil {
		return err
	}
	presets, err := a.store.ListPresets(ctx)
	if err != nil {
		return err
	}
	return a.printPresets("Presets", presets)
}

func (a *app) cmdPresetsShow(ctx context.Context, args []string) error {
	pos, err := a.positional("presets show", "presets show <id>", args, 1)
	if err != nil {
		return err
	}
	p, err := a.getPreset(ctx, pos[0])
	if err != nil {
		return err
	}
	if a.json {
		return a.writeJSON(p)
	}

	a.heading(p.Name)
	w := newTable(a.out)
	fmt.Fprintf(w, "  ID\t%s\n", p.ID)
	fmt.Fprintf(w, "  Description\t%s\n", orDash(p.Description))
	fmt.Fprintf(w, "  Tags\t%s\n", joinOrDash(p.Tags))
	fmt.Fprintf(w, "  Favorite\t%t\n", p.IsFavorite)
	fmt.Fprintf(w, "  Uses\t%d\n", p.UseCount)
	fmt.Fprintf(w, "  Base model\t%s\n", orDash(p.Model.BaseModel))
	fmt.Fprintf(w, "  Refiner\t%s (switch %.2f)\n", orDash(p.Model.RefinerModel), p.Model.RefinerSwitch)
	for _, l := range p.Model.LoRAs {
		fmt.Fprintf(w, "  LoRA\t%s (%s) x %.2f\n", l.Name, l.ModelName, l.Weight)
	}
	fmt.Fprintf(w, "  Sampler\t%s / %s\n", p.Sampling.Sampler, p.Sampling.Scheduler)
	fmt.Fprintf(w, "  Performance\t%s, %d steps\n", p.Sampling.Performance, p.Sampling.Steps)
	fmt.Fprintf(w, "  CFG / sharpness\t%.1f / %.1f\n", p.Sampling.CFGScale, p.Sampling.SampleSharpness)
	fmt.Fprintf(w, "  Positive\t%s\n", orDash(p.Prompt.Positive))
	fmt.Fprintf(w, "  Negative\t%s\n", orDash(p.Prompt.Negative))
	fmt.Fprintf(w, "  Styles\t%s\n", joinOrDash(p.Prompt.Styles))
	fmt.Fprintf(w, "  Image\t%s x %d\n", p.Image.AspectRatio, p.Image.ImageCount)
	fmt.Fprintf(w, "  Created\t%s\n", formatTime(p.CreatedAt))
	fmt.Fprintf(w, "  Updated\t%s\n", formatTime(p.UpdatedAt))
	w.Flush()
	fmt.Fprintln(a.out)
	return nil
}

func (a *app) cmdPresetsSearch(ctx context.Context, args []string) error {
	pos, err := a.positional("presets search", "presets search <text>", args, 1)
	if err != nil {
		return err
	}
	presets, err := a.catalog.SearchPresets(ctx, pos[0])
	if err != nil {
		return err
	}
	return a.printPresets(fmt.Sprintf("Presets matching %q", pos[0]), presets)
}

func (a *app) cmdPresetsFilter(ctx context.Context, args []string) error {
	fs := a.flagSet("presets filter")
	search := fs.StringP("search", "s", "", "Case-insensitive text in name, description or tags")
	tags := fs.StringSliceP("tag", "t", nil, "Tag to match (repeatable, any-of)")
	favorite := fs.Bool("favorite", false, "Only favorites (--favorite=false for non-favorites)")
	baseModel := fs.StringP("base-model", "b", "", "Substring of the base model name")
	sortBy := fs.String("sort", catalog.SortByUpdatedAt, "Sort key: name, createdAt, updatedAt, useCount")
	order := fs.String("order", catalog.OrderDesc, "Sort order: asc or desc")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 0 {
		return fmt.Errorf("usage: presets filter [--search s] [--tag t] [--favorite] [--base-model m] [--sort key] [--order asc|desc]")
	}

	filter := catalog.PresetFilter{
		Search:    *search,
		Tags:      *tags,
		BaseModel: *baseModel,
		SortBy:    *sortBy,
		SortOrder: *order,
	}
	if fs.Changed("favorite") {
		filter.IsFavorite = favorite
	}

	presets, err := a.catalog.FilterPresets(ctx, filter)
	if err != nil {
		return err
	}
	return a.printPresets("Presets", presets)
}

func (a *app) cmdPresetsBaseModels(ctx context.Context, args []string) error {
	if _, err := a.positional("presets base-models", "presets base-models", args, 0); err != nil {
		return err
	}
	names, err := a.catalog.BaseModels(ctx)
	if err != nil {
		return err
	}
	if a.json {
		return a.writeJSON(names)
	}

	a.heading("Base models in use")
	if len(names) == 0 {
		fmt.Fprintln(a.out, "  (none)")
	}
	for _, name := range names {
		fmt.Fprintf(a.out, "  %s\n", name)
	}
	fmt.Fprintln(a.out)
	return nil
}

func (a *app) cmdPresetsFavorite(ctx context.Context, args []string) error {
	pos, err := a.positional("presets favorite", "presets favorite <id>", args, 1)
	if err != nil {
		return err
	}
	if err := a.store.ToggleFavorite(ctx, pos[0]); err != nil {
		return err
	}
	p, err := a.getPreset(ctx, pos[0])
	if err != nil {
		return err
	}
	if a.json {
		return a.writeJSON(p)
	}
	state := "removed from"
	if p.IsFavorite {
		state = "added to"
	}
	fmt.Fprintf(a.out, "%s %s favorites\n", p.Name, state)
	return nil
}

func (a *app) cmdPresetsUse(ctx context.Context, args []string) error {
	pos, err := a.positional("presets use", "presets use <id>", args, 1)
	if err != nil {
		return err
	}
	if err := a.store.IncrementUseCount(ctx, pos[0]); err != nil {
		return err
	}
	p, err := a.getPreset(ctx, pos[0])
	if err != nil {
		return err
	}
	if a.json {
		return a.writeJSON(p)
	}
	fmt.Fprintf(a.out, "%s used %d time(s)\n", p.Name, p.UseCount)
	return nil
}

func (a *app) cmdPresetsDelete(ctx context.Context, args []string) error {
	pos, err := a.positional("presets delete", "presets delete <id>", args, 1)
	if err != nil {
		return err
	}
	if err := a.store.DeletePreset(ctx, pos[0]); err != nil {
		return err
	}
	if !a.json {
		fmt.Fprintf(a.out, "Deleted preset %s\n", pos[0])
	}
	return nil
}

func (a *app) cmdPresetsImport(ctx context.Context, args []string) error {
	fs := a.flagSet("presets import")
	name := fs.StringP("name", "n", "", "Preset name (default: file name)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: presets import <file> [--name name]")
	}

	imported, err := fooocus.ReadFile(fs.Arg(0), *name)
	if err != nil {
		return err
	}
	created, err := a.store.CreatePreset(ctx, imported)
	if err != nil {
		return fmt.Errorf("saving imported preset: %w", err)
	}
	a.logger.Debug("imported preset", "file", fs.Arg(0), "id", created.ID)

	if a.json {
		return a.writeJSON(created)
	}
	fmt.Fprintf(a.out, "Imported %s as %s\n", created.Name, created.ID)
	return nil
}

func (a *app) cmdPresetsExport(ctx context.Context, args []string) error {
	pos, err := a.positional("presets export", "presets export <id> <file>", args, 2)
	if err != nil {
		return err
	}
	p, err := a.getPreset(ctx, pos[0])
	if err != nil {
		return err
	}
	if err := fooocus.WriteFile(pos[1], p); err != nil {
		return err
	}
	if !a.json {
		fmt.Fprintf(a.out, "Exported %s to %s\n", p.Name, pos[1])
	}
	return nil
}

func (a *app) printPresets(title string, presets []*store.Preset) error {
	if a.json {
		return a.writeJSON(presets)
	}

	a.heading(title)
	if len(presets) == 0 {
		fmt.Fprintln(a.out, "  (no presets)")
		fmt.Fprintln(a.out)
		return nil
	}

	w := newTable(a.out)
	fmt.Fprintln(w, "  ID\tNAME\tFAV\tUSES\tBASE MODEL\tTAGS\tUPDATED")
	fmt.Fprintln(w, "  --\t----\t---\t----\t----------\t----\t-------")
	for _, p := range presets {
		fav := ""
		if p.IsFavorite {
			fav = "*"
		}
		fmt.Fprintf(w, "  %s\t%s\t%s\t%d\t%s\t%s\t%s\n",
			p.ID,
			truncate(p.Name, 32),
			fav,
			p.UseCount,
			truncate(orDash(p.Model.BaseModel), 32),
			truncate(joinOrDash(p.Tags), 32),
			formatTime(p.UpdatedAt),
		)
	}
	w.Flush()
	fmt.Fprintln(a.out)
	return nil
}

// ABOUTME: models subcommands: list, show, search, filter, add, usage, delete
// ABOUTME: Deletion goes through the catalog so referenced models are protected

package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/2389/fooocus-config/internal/catalog"
	"github.com/2389/fooocus-config/internal/store"
)

var modelTypes = []string{
	store.ModelTypeCheckpoint,
	store.ModelTypeLoRA,
	store.ModelTypeRefiner,
	store.ModelTypeEmbedding,
}

func (a *app) cmdModels(ctx context.Context, args []string) error {
	subcmd, args := subcommand(args)

	switch subcmd {
	case "list", "ls":
		return a.cmdModelsList(ctx, args)
	case "show", "get":
		return a.cmdModelsShow(ctx, args)
	case "search":
		return a.cmdModelsSearch(ctx, args)
	case "filter":
		return a.cmdModelsFilter(ctx, args)
	case "add", "create":
		return a.cmdModelsAdd(ctx, args)
	case "usage":
		return a.cmdModelsUsage(ctx, args)
	case "delete", "rm", "remove":
		return a.cmdModelsDelete(ctx, args)
	default:
		return fmt.Errorf("unknown models subcommand: %s (use list, show, search, filter, add, usage, delete)", subcmd)
	}
}

func (a *app) cmdModelsList(ctx context.Context, args []string) error {
	fs := a.flagSet("models list")
	modelType := fs.StringP("type", "t", "", "Only models of this type (Checkpoint, LoRA, Refiner, Embedding)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 0 {
		return fmt.Errorf("usage: models list [--type T]")
	}

	var (
		models []*store.Model
		err    error
	)
	if *modelType != "" {
		models, err = a.store.ListModelsByType(ctx, *modelType)
	} else {
		models, err = a.store.ListModels(ctx)
	}
	if err != nil {
		return err
	}
	return a.printModels("Models", models)
}

func (a *app) cmdModelsShow(ctx context.Context, args []string) error {
	pos, err := a.positional("models show", "models show <id>", args, 1)
	if err != nil {
		return err
	}
	m, err := a.store.GetModel(ctx, pos[0])
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("model %s: %w", pos[0], err)
	}
	if err != nil {
		return err
	}
	if a.json {
		return a.writeJSON(m)
	}

	a.heading(m.Name)
	w := newTable(a.out)
	fmt.Fprintf(w, "  ID\t%s\n", m.ID)
	fmt.Fprintf(w, "  Type\t%s\n", m.Type)
	fmt.Fprintf(w, "  File\t%s\n", orDash(m.FileName))
	fmt.Fprintf(w, "  Path\t%s\n", orDash(m.Path))
	fmt.Fprintf(w, "  Description\t%s\n", orDash(m.Description))
	fmt.Fprintf(w, "  Scope\t%s\n", joinOrDash(m.Scope))
	fmt.Fprintf(w, "  Tags\t%s\n", joinOrDash(m.Tags))
	fmt.Fprintf(w, "  Created\t%s\n", formatTime(m.CreatedAt))
	fmt.Fprintf(w, "  Updated\t%s\n", formatTime(m.UpdatedAt))
	w.Flush()
	fmt.Fprintln(a.out)
	return nil
}

func (a *app) cmdModelsSearch(ctx context.Context, args []string) error {
	pos, err := a.positional("models search", "models search <text>", args, 1)
	if err != nil {
		return err
	}
	models, err := a.catalog.SearchModels(ctx, pos[0])
	if err != nil {
		return err
	}
	return a.printModels(fmt.Sprintf("Models matching %q", pos[0]), models)
}

func (a *app) cmdModelsFilter(ctx context.Context, args []string) error {
	fs := a.flagSet("models filter")
	search := fs.StringP("search", "s", "", "Case-insensitive text in name, description, scope or tags")
	modelType := fs.StringP("type", "t", "", "Only models of this type")
	tags := fs.StringSlice("tag", nil, "Tag or scope label to match (repeatable, any-of)")
	sortBy := fs.String("sort", catalog.SortByUpdatedAt, "Sort key: name, createdAt, updatedAt")
	order := fs.String("order", catalog.OrderDesc, "Sort order: asc or desc")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 0 {
		return fmt.Errorf("usage: models filter [--search s] [--type T] [--tag t] [--sort key] [--order asc|desc]")
	}
	if *modelType != "" && !validModelType(*modelType) {
		return fmt.Errorf("unknown model type %q (use %v)", *modelType, modelTypes)
	}

	models, err := a.catalog.FilterModels(ctx, catalog.ModelFilter{
		Search:    *search,
		Type:      *modelType,
		Tags:      *tags,
		SortBy:    *sortBy,
		SortOrder: *order,
	})
	if err != nil {
		return err
	}
	return a.printModels("Models", models)
}

func (a *app) cmdModelsAdd(ctx context.Context, args []string) error {
	fs := a.flagSet("models add")
	name := fs.StringP("name", "n", "", "Display name (required)")
	fileName := fs.StringP("file", "f", "", "File name, e.g. juggernautXL_v8.safetensors")
	modelType := fs.StringP("type", "t", "", "Checkpoint, LoRA, Refiner or Embedding (required)")
	description := fs.StringP("description", "d", "", "Free-form description")
	scope := fs.StringSlice("scope", nil, "Applicable scope labels (repeatable)")
	path := fs.String("path", "", "Location on disk")
	tags := fs.StringSlice("tag", nil, "Tag labels (repeatable)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *name == "" || *modelType == "" || fs.NArg() != 0 {
		return fmt.Errorf("usage: models add --name <name> --type <type> [--file f] [--description d] [--scope s] [--path p] [--tag t]")
	}
	if !validModelType(*modelType) {
		return fmt.Errorf("unknown model type %q (use %v)", *modelType, modelTypes)
	}

	created, err := a.store.CreateModel(ctx, &store.Model{
		Name:        *name,
		FileName:    *fileName,
		Type:        *modelType,
		Description: *description,
		Scope:       *scope,
		Path:        *path,
		Tags:        *tags,
	})
	if err != nil {
		return err
	}

	if a.json {
		return a.writeJSON(created)
	}
	fmt.Fprintf(a.out, "Added %s model %s as %s\n", created.Type, created.Name, created.ID)
	return nil
}

func (a *app) cmdModelsUsage(ctx context.Context, args []string) error {
	pos, err := a.positional("models usage", "models usage <id>", args, 1)
	if err != nil {
		return err
	}
	usage, err := a.catalog.CheckModelUsage(ctx, pos[0])
	if err != nil {
		return err
	}
	if a.json {
		return a.writeJSON(usage)
	}
	a.printModelUsage(pos[0], usage)
	return nil
}

func (a *app) cmdModelsDelete(ctx context.Context, args []string) error {
	fs := a.flagSet("models delete")
	force := fs.BoolP("force", "f", false, "Delete even if presets reference the model")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: models delete <id> [--force]")
	}
	id := fs.Arg(0)

	usage, err := a.catalog.DeleteModel(ctx, id, *force)
	if errors.Is(err, catalog.ErrModelInUse) && !a.json {
		a.printModelUsage(id, usage)
		return fmt.Errorf("%w; rerun with --force to delete anyway", err)
	}
	if err != nil {
		return err
	}
	if a.json {
		return a.writeJSON(usage)
	}
	fmt.Fprintf(a.out, "Deleted model %s\n", id)
	if usage.IsUsed {
		fmt.Fprintf(a.out, "%d preset(s) still reference it: %s\n", usage.UsageCount, joinOrDash(usage.PresetNames))
	}
	return nil
}

func (a *app) printModelUsage(id string, usage *store.ModelUsage) {
	if !usage.IsUsed {
		fmt.Fprintf(a.out, "Model %s is not used by any preset\n", id)
		return
	}
	fmt.Fprintf(a.out, "Model %s is used by %d preset(s):\n", id, usage.UsageCount)
	for _, name := range usage.PresetNames {
		fmt.Fprintf(a.out, "  - %s\n", name)
	}
}

func (a *app) printModels(title string, models []*store.Model) error {
	if a.json {
		return a.writeJSON(models)
	}

	a.heading(title)
	if len(models) == 0 {
		fmt.Fprintln(a.out, "  (no models)")
		fmt.Fprintln(a.out)
		return nil
	}

	w := newTable(a.out)
	fmt.Fprintln(w, "  ID\tNAME\tTYPE\tFILE\tSCOPE\tUPDATED")
	fmt.Fprintln(w, "  --\t----\t----\t----\t-----\t-------")
	for _, m := range models {
		fmt.Fprintf(w, "  %s\t%s\t%s\t%s\t%s\t%s\n",
			m.ID,
			truncate(m.Name, 32),
			m.Type,
			truncate(orDash(m.FileName), 40),
			truncate(joinOrDash(m.Scope), 24),
			formatTime(m.UpdatedAt),
		)
	}
	w.Flush()
	fmt.Fprintln(a.out)
	return nil
}

func validModelType(t string) bool {
	for _, mt := range modelTypes {
		if t == mt {
			return true
		}
	}
	return false
}

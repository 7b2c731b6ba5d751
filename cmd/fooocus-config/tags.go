// ABOUTME: tags subcommands: list with preset counts, create, delete

package main

import (
	"context"
	"fmt"
)

func (a *app) cmdTags(ctx context.Context, args []string) error {
	subcmd, args := subcommand(args)

	switch subcmd {
	case "list", "ls":
		return a.cmdTagsList(ctx, args)
	case "create", "add":
		return a.cmdTagsCreate(ctx, args)
	case "delete", "rm", "remove":
		return a.cmdTagsDelete(ctx, args)
	default:
		return fmt.Errorf("unknown tags subcommand: %s (use list, create, delete)", subcmd)
	}
}

func (a *app) cmdTagsList(ctx context.Context, args []string) error {
	if _, err := a.positional("tags list", "tags list", args, 0); err != nil {
		return err
	}
	tags, err := a.store.ListTags(ctx)
	if err != nil {
		return err
	}
	if a.json {
		return a.writeJSON(tags)
	}

	a.heading("Tags")
	if len(tags) == 0 {
		fmt.Fprintln(a.out, "  (no tags)")
		fmt.Fprintln(a.out)
		return nil
	}

	w := newTable(a.out)
	fmt.Fprintln(w, "  ID\tNAME\tCOLOR\tPRESETS")
	fmt.Fprintln(w, "  --\t----\t-----\t-------")
	for _, t := range tags {
		fmt.Fprintf(w, "  %s\t%s\t%s\t%d\n", t.ID, t.Name, t.Color, t.Count)
	}
	w.Flush()
	fmt.Fprintln(a.out)
	return nil
}

func (a *app) cmdTagsCreate(ctx context.Context, args []string) error {
	fs := a.flagSet("tags create")
	color := fs.String("color", "", "Display color (default #6366f1)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: tags create <name> [--color #rrggbb]")
	}

	tag, err := a.store.CreateTag(ctx, fs.Arg(0), *color)
	if err != nil {
		return err
	}
	if a.json {
		return a.writeJSON(tag)
	}
	fmt.Fprintf(a.out, "Created tag %s (%s) as %s\n", tag.Name, tag.Color, tag.ID)
	return nil
}

func (a *app) cmdTagsDelete(ctx context.Context, args []string) error {
	pos, err := a.positional("tags delete", "tags delete <id>", args, 1)
	if err != nil {
		return err
	}
	if err := a.store.DeleteTag(ctx, pos[0]); err != nil {
		return err
	}
	if !a.json {
		fmt.Fprintf(a.out, "Deleted tag %s\n", pos[0])
	}
	return nil
}

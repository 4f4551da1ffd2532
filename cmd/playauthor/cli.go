package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/nebrenner/basketball-play-author/internal/framegraph"
	"github.com/nebrenner/basketball-play-author/internal/model/convert"
	"github.com/nebrenner/basketball-play-author/internal/storage"

	"github.com/spf13/pflag"
)

var (
	errMissingID = errors.New("no play id provided")
	errNoPaths   = errors.New("storage backend does not keep arrow paths")
)

// runCLI runs the subcommand named by args[0]. No subcommand starts the
// interactive session.
func (a *app) runCLI(ctx context.Context, args []string, flags *pflag.FlagSet) error {
	if len(args) == 0 {
		if script, _ := flags.GetString("script"); script != "" {
			return a.runScriptFile(ctx, script)
		}
		return a.runSession(ctx, os.Stdin, os.Stdout, true)
	}

	switch strings.ToLower(args[0]) {
	case "repl":
		return a.runSession(ctx, os.Stdin, os.Stdout, true)
	case "run":
		if len(args) < 2 {
			return errors.New("no script file provided")
		}
		return a.runScriptFile(ctx, args[1])
	case "list":
		return a.printList(ctx, os.Stdout)
	case "labels":
		return a.withPlay(ctx, args[1:], a.printLabels)
	case "order":
		return a.withPlay(ctx, args[1:], a.printOrder)
	case "tree":
		return a.withPlay(ctx, args[1:], a.printTree)
	case "export":
		return a.withPlay(ctx, args[1:], a.exportPlay)
	case "paths":
		if len(args) < 2 {
			return errMissingID
		}
		return a.printPaths(ctx, os.Stdout, args[1])
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

// withPlay loads each id in turn and runs fn on it.
func (a *app) withPlay(ctx context.Context, ids []string, fn func(io.Writer) error) error {
	if len(ids) == 0 {
		return errMissingID
	}
	for _, id := range ids {
		if err := a.store.LoadPlay(ctx, id); err != nil {
			return fmt.Errorf("error loading play %s: %w", id, err)
		}
		if err := fn(os.Stdout); err != nil {
			return err
		}
	}
	return nil
}

func (a *app) printList(ctx context.Context, w io.Writer) error {
	plays, err := a.store.ListPlays(ctx)
	if err != nil {
		return fmt.Errorf("error listing plays: %w", err)
	}
	if len(plays) == 0 {
		fmt.Fprintln(w, "No saved plays.")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCOURT\tFRAMES\tUPDATED")
	for _, p := range plays {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", p.ID, p.Name, p.CourtType, p.FrameCount, p.UpdatedAt.Local().Format(time.DateTime))
	}
	return tw.Flush()
}

func (a *app) printLabels(w io.Writer) error {
	p := a.store.Play()
	fmt.Fprintf(w, "%s\n", p.Meta.Name)
	for _, f := range p.Frames {
		title, _ := a.store.StepTitle(f.ID)
		fmt.Fprintf(w, "  %s\t%s\n", f.ID, title)
	}
	return nil
}

func (a *app) printOrder(w io.Writer) error {
	labels := a.store.Labels()
	order := a.store.PlaybackOrder()
	parts := make([]string, 0, len(order))
	for _, id := range order {
		parts = append(parts, labels[id])
	}
	fmt.Fprintf(w, "%s: %s\n", a.store.Play().Meta.Name, strings.Join(parts, " > "))
	return nil
}

func (a *app) printTree(w io.Writer) error {
	fmt.Fprintln(w, a.store.Play().Meta.Name)
	framegraph.Walk(a.store.Tree(), func(n *framegraph.Node, depth int) {
		title, _ := a.store.StepTitle(n.Frame.ID)
		line := strings.Repeat("  ", depth+1) + title
		if opts := a.store.BranchOptions(n.Frame.ID); len(opts) > 1 {
			line += fmt.Sprintf(" (%d options)", len(opts))
		}
		fmt.Fprintln(w, line)
	})
	return nil
}

func (a *app) exportPlay(w io.Writer) error {
	path, err := a.store.ExportPlay()
	if err != nil {
		return fmt.Errorf("error exporting play: %w", err)
	}
	fmt.Fprintln(w, "Wrote play to", path)
	return nil
}

// printPaths lists the arrow paths stored alongside a saved play.
func (a *app) printPaths(ctx context.Context, w io.Writer, id string) error {
	ps, ok := a.backend.(storage.PathStore)
	if !ok {
		return errNoPaths
	}
	paths, err := ps.ArrowPaths(ctx, id)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FRAME\tARROW\tKIND\tFROM\tTO\tLENGTH\tPOINTS")
	for _, p := range paths {
		pts := make([]string, 0, 3)
		for _, pt := range convert.ArrowPathPoints(p) {
			pts = append(pts, fmt.Sprintf("%g,%g", pt.X, pt.Y))
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%.1f\t%s\n",
			p.FrameID, p.ArrowID, p.Kind, p.FromTokenID, p.ToTokenID, p.Length, strings.Join(pts, " "))
	}
	return tw.Flush()
}

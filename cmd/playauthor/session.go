package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/nebrenner/basketball-play-author/internal/dispatcher"
	"github.com/nebrenner/basketball-play-author/internal/logging"
	"github.com/nebrenner/basketball-play-author/internal/util"
)

const prompt = "play> "

// runScriptFile runs every line of path as an editor command and stops at
// the first failure.
func (a *app) runScriptFile(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("error opening script: %w", err)
	}
	defer func() { _ = f.Close() }()
	return a.runSession(ctx, f, os.Stdout, false)
}

// runSession reads commands line by line and prints each result as JSON.
// Interactive sessions report errors and keep going; scripts stop.
// Blank lines and lines starting with # are skipped. The dispatcher is
// closed when the session ends.
func (a *app) runSession(ctx context.Context, in io.Reader, out io.Writer, interactive bool) error {
	scanner := bufio.NewScanner(in)
	lineNo := 0
	for {
		if interactive {
			fmt.Fprint(out, prompt)
		}
		if !scanner.Scan() {
			break
		}
		lineNo++

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		switch strings.ToLower(line) {
		case "quit", "exit":
			return a.finish(ctx)
		case "help":
			a.printHelp(out)
			continue
		}

		lineCtx := ctx
		if !interactive {
			lineCtx = logging.WithAttrs(ctx, slog.Int("line", lineNo))
		}
		res, err := a.dispatchLine(lineCtx, line)
		if err != nil {
			if !interactive {
				return fmt.Errorf("line %d: %s: %w", lineNo, line, err)
			}
			fmt.Fprintln(out, "error:", err)
			continue
		}
		printResult(out, res)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading commands: %w", err)
	}
	return a.finish(ctx)
}

func (a *app) dispatchLine(ctx context.Context, line string) (any, error) {
	args := util.SplitArgs(line)
	command := strings.ToUpper(args[0])
	if !strings.HasPrefix(command, ":") {
		command = ":" + command
	}
	if !strings.HasSuffix(command, ":") {
		command += ":"
	}
	return a.dispatcher.Dispatch(dispatcher.NewEvent(ctx, command, args[1:]...))
}

// finish closes the dispatcher, which lets a queued :PLAYBACK:PLAY: run to
// the end so the last steps of a script are not cut off. Cancelling ctx
// pauses playback instead.
func (a *app) finish(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		a.dispatcher.Close()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		a.store.PauseAnimation()
		<-done
		return ctx.Err()
	}
}

func (a *app) printHelp(w io.Writer) {
	fmt.Fprintln(w, "Commands (the leading and trailing colons are optional):")
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, c := range a.dispatcher.Commands() {
		fmt.Fprintf(tw, "  %s\t%s\n", c, a.dispatcher.Usage(c))
	}
	fmt.Fprintln(tw, "  quit\t")
	_ = tw.Flush()
}

func printResult(w io.Writer, res any) {
	switch v := res.(type) {
	case nil:
		fmt.Fprintln(w, "ok")
	case string:
		fmt.Fprintln(w, v)
	default:
		raw, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			fmt.Fprintf(w, "%v\n", v)
			return
		}
		fmt.Fprintln(w, string(raw))
	}
}

package cli

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"

	"github.com/rileyhilliard/watchdog/internal/capture"
	"github.com/rileyhilliard/watchdog/internal/config"
	"github.com/rileyhilliard/watchdog/internal/ui"
	"github.com/rileyhilliard/watchdog/internal/util"
)

// capturesDir resolves the capture directory from config.
func capturesDir() (string, error) {
	cfg, _, err := config.LoadOrDefault(Config())
	if err != nil {
		return "", err
	}
	return config.ExpandPath(cfg.Capture.Dir), nil
}

// capturesCommand lists recordings made with --record, newest first.
func capturesCommand(out io.Writer) error {
	dir, err := capturesDir()
	if err != nil {
		return err
	}

	files, err := capture.List(dir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Fprintln(out, ui.MutedStyle().Render("No captures in "+dir+". Record one with 'watchdog run --record'."))
		return nil
	}

	columns := []ui.TableColumn{
		{Title: "Capture", Width: 40},
		{Title: "Source", Width: 16},
		{Title: "Size", Width: 9},
		{Title: "Recorded", Width: 16},
	}
	rows := make([][]string, 0, len(files))
	var total int64
	for _, f := range files {
		rows = append(rows, []string{f.Name, f.Source, humanize.Bytes(uint64(f.Size)), humanize.Time(f.ModTime)})
		total += f.Size
	}

	fmt.Fprintln(out, ui.RenderSimpleTable(columns, rows))
	fmt.Fprintln(out, ui.MutedStyle().Render(fmt.Sprintf("%d capture%s, %s in %s",
		len(files), util.Pluralize(len(files), "", "s"), humanize.Bytes(uint64(total)), dir)))
	fmt.Fprintln(out, ui.MutedStyle().Render("Replay one with: watchdog run --replay <file>"))
	return nil
}

// capturesCleanCommand applies the retention settings, or removes every
// recording when all is set.
func capturesCleanCommand(out io.Writer, all bool) error {
	cfg, _, err := config.LoadOrDefault(Config())
	if err != nil {
		return err
	}
	dir := config.ExpandPath(cfg.Capture.Dir)

	before, err := capture.List(dir)
	if err != nil {
		return err
	}

	if all {
		if _, err := capture.CleanAll(dir); err != nil {
			return err
		}
	} else if err := capture.Cleanup(cfg.Capture); err != nil {
		return err
	}

	after, err := capture.List(dir)
	if err != nil {
		return err
	}

	removed := len(before) - len(after)
	fmt.Fprintf(out, "%s Removed %d capture%s, %d left\n",
		ui.SymbolSuccess, removed, util.Pluralize(removed, "", "s"), len(after))
	return nil
}

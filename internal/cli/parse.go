package cli

import (
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/rileyhilliard/watchdog/internal/alert"
	"github.com/rileyhilliard/watchdog/internal/config"
	"github.com/rileyhilliard/watchdog/internal/errors"
	"github.com/rileyhilliard/watchdog/internal/sensor"
	"github.com/rileyhilliard/watchdog/internal/series"
	"github.com/rileyhilliard/watchdog/internal/transport"
	"github.com/rileyhilliard/watchdog/internal/ui"
)

// ParseOptions holds options for the parse command.
type ParseOptions struct {
	ShowAll bool // Also list unrecognized lines
	Summary bool // Print the per-metric table at the end
}

// parseStats counts what a parse run saw.
type parseStats struct {
	lines        int
	readings     int
	parseErrors  int
	unrecognized int
	outOfRange   map[sensor.Metric]int
}

// openInput opens a file argument, or stdin for "-" or no argument.
func openInput(args []string) (io.ReadCloser, string, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.NopCloser(os.Stdin), "stdin", nil
	}
	f, err := os.Open(args[0])
	if err != nil {
		return nil, "", errors.WrapWithCode(err, errors.ErrConfig,
			"Can't open "+args[0],
			"Check the path, or pipe the capture in with 'watchdog parse -'")
	}
	return f, args[0], nil
}

// parseCommand runs every line of in through the configured parser and
// prints what was recognized. Alerts are never evaluated or sent.
func parseCommand(out io.Writer, in io.Reader, opts ParseOptions) error {
	cfg, _, err := config.LoadOrDefault(Config())
	if err != nil {
		return err
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}
	parserOpts, err := cfg.ParserOptions()
	if err != nil {
		return err
	}
	rules, err := cfg.Rules()
	if err != nil {
		return err
	}

	parser := sensor.NewParser(parserOpts)
	metrics, _ := cfg.EnabledMetrics()
	store := series.NewStore(config.MaxBufferCapacity, metrics...)
	stats := parseStats{outOfRange: make(map[sensor.Metric]int)}
	ruleFor := make(map[sensor.Metric]alert.Rule, len(rules))
	for _, r := range rules {
		ruleFor[r.Metric] = r
	}

	handle := func(line string) {
		stats.lines++
		results := parser.ParseLine(line, time.Now())
		if len(results) == 0 {
			stats.unrecognized++
			if opts.ShowAll {
				fmt.Fprintf(out, "%5d  %s\n", stats.lines, ui.MutedStyle().Render("· "+line))
			}
			return
		}
		for _, res := range results {
			if !res.OK() {
				stats.parseErrors++
				fmt.Fprintf(out, "%5d  %s %s\n", stats.lines, ui.ErrorStyle().Render(ui.SymbolFail), errors.Short(res.Err))
				continue
			}
			stats.readings++
			store.Append(res.Metric, res.Reading.Value)
			mark := ui.SuccessStyle().Render(ui.SymbolSuccess)
			if r, ok := ruleFor[res.Metric]; ok && r.Triggered(res.Reading.Value) {
				stats.outOfRange[res.Metric]++
				mark = ui.WarningStyle().Render(ui.SymbolAlert)
			}
			fmt.Fprintf(out, "%5d  %s %s\n", stats.lines, mark, res.Reading)
		}
	}

	var buf transport.LineBuffer
	chunk := make([]byte, 4096)
	for {
		n, readErr := in.Read(chunk)
		if n > 0 {
			_, _ = buf.Write(chunk[:n])
			for _, line := range buf.Lines() {
				handle(line)
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return errors.WrapWithCode(readErr, errors.ErrTransport, "Failed reading input", "")
		}
	}
	// A final line without a newline still counts.
	_, _ = buf.Write([]byte{'\n'})
	for _, line := range buf.Lines() {
		handle(line)
	}

	if opts.Summary {
		fmt.Fprintln(out)
		if table := summaryTable(metrics, store, ruleFor, stats); table != "" {
			fmt.Fprintln(out, table)
		}
		fmt.Fprintf(out, "%d lines, %d readings, %d parse errors, %d unrecognized\n",
			stats.lines, stats.readings, stats.parseErrors, stats.unrecognized)
	}
	return nil
}

func summaryTable(metrics []sensor.Metric, store *series.Store, rules map[sensor.Metric]alert.Rule, stats parseStats) string {
	columns := []ui.TableColumn{
		{Title: "Metric", Width: 12},
		{Title: "Readings", Width: 9},
		{Title: "Min", Width: 9},
		{Title: "Avg", Width: 9},
		{Title: "Max", Width: 9},
		{Title: "Safe range", Width: 16},
		{Title: "Outside", Width: 8},
	}

	var rows [][]string
	for _, m := range metrics {
		st := store.Stats(m)
		if st.Count == 0 {
			continue
		}
		label := "[no limit]"
		if r, ok := rules[m]; ok {
			label = r.RangeLabel()
		}
		rows = append(rows, []string{
			m.Title(),
			strconv.Itoa(st.Count),
			m.FormatValue(st.Min),
			m.FormatValue(roundTenth(st.Avg)),
			m.FormatValue(st.Max),
			label,
			strconv.Itoa(stats.outOfRange[m]),
		})
	}
	return ui.RenderSimpleTable(columns, rows)
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}

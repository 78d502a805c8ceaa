package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/abelbrown/minifeed/internal/config"
	"github.com/abelbrown/minifeed/internal/otel"
)

var (
	eventsTail   int
	eventsFollow bool
	eventsKind   string
	eventsLevel  string
	eventsComp   string
	eventsReq    string
	eventsJSON   bool
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Show the structured event journal",
	RunE:  runEvents,
}

func init() {
	f := eventsCmd.Flags()
	f.IntVar(&eventsTail, "tail", 50, "Number of recent lines to show")
	f.BoolVarP(&eventsFollow, "follow", "f", false, "Follow mode (like tail -f)")
	f.StringVar(&eventsKind, "kind", "", "Filter by event kind prefix (e.g. 'fetch')")
	f.StringVar(&eventsLevel, "level", "", "Minimum level: debug, info, warn, error")
	f.StringVar(&eventsComp, "comp", "", "Filter by component name")
	f.StringVar(&eventsReq, "req", "", "Filter by request ID")
	f.BoolVar(&eventsJSON, "json", false, "Output raw JSON lines")
}

// eventFilter selects journal lines.
type eventFilter struct {
	kind  string
	level string
	comp  string
	req   string
}

// levelRank returns a numeric rank for filtering (higher = more severe).
func levelRank(level otel.Level) int {
	switch level {
	case otel.LevelInfo:
		return 1
	case otel.LevelWarn:
		return 2
	case otel.LevelError:
		return 3
	default:
		return 0
	}
}

func (f eventFilter) match(ev otel.Event) bool {
	if f.kind != "" && !strings.HasPrefix(string(ev.Kind), f.kind) {
		return false
	}
	if f.level != "" && levelRank(ev.Level) < levelRank(otel.Level(f.level)) {
		return false
	}
	if f.comp != "" && ev.Comp != f.comp {
		return false
	}
	if f.req != "" && ev.ReqID != f.req {
		return false
	}
	return true
}

var (
	faint    = color.New(color.Faint).SprintFunc()
	kindCol  = color.New(color.FgCyan).SprintFunc()
	warnCol  = color.New(color.FgYellow).SprintFunc()
	errorCol = color.New(color.FgRed, color.Bold).SprintFunc()
)

// formatEvent renders one event as a single human-readable line.
func formatEvent(ev otel.Event) string {
	lvl := strings.ToUpper(string(ev.Level))
	if lvl == "" {
		lvl = "?"
	}
	switch ev.Level {
	case otel.LevelWarn:
		lvl = warnCol(fmt.Sprintf("%-5s", lvl))
	case otel.LevelError:
		lvl = errorCol(fmt.Sprintf("%-5s", lvl))
	default:
		lvl = fmt.Sprintf("%-5s", lvl)
	}

	parts := []string{
		faint(ev.Time.Format("15:04:05.000")),
		lvl,
		fmt.Sprintf("[%-7s]", ev.Comp),
		kindCol(fmt.Sprintf("%-16s", ev.Kind)),
	}
	if ev.Msg != "" {
		parts = append(parts, "- "+ev.Msg)
	}
	if ev.Scope != "" {
		parts = append(parts, "scope="+ev.Scope)
	}
	if ev.Mode != "" {
		parts = append(parts, "mode="+ev.Mode)
	}
	if ev.DurMs > 0 {
		parts = append(parts, fmt.Sprintf("(%.*fms)", durPrecision(ev.DurMs), ev.DurMs))
	}
	if ev.Count > 0 {
		parts = append(parts, fmt.Sprintf("n=%d", ev.Count))
	}
	if ev.ReqID != "" {
		rid := ev.ReqID
		if len(rid) > 8 {
			rid = rid[:8]
		}
		parts = append(parts, faint("req="+rid))
	}
	if ev.Err != "" {
		parts = append(parts, errorCol("err="+ev.Err))
	}
	return strings.Join(parts, " ")
}

func durPrecision(ms float64) int {
	if ms >= 100 {
		return 0
	}
	if ms >= 1 {
		return 1
	}
	return 2
}

type parsedLine struct {
	ev  otel.Event
	raw []byte
}

// readTailLines reads r to the end and returns the last n lines matching
// the filter. Unparseable lines are skipped.
func readTailLines(r io.Reader, n int, f eventFilter) []parsedLine {
	scanner := bufio.NewScanner(r)
	// Allow large lines (some events carry big Extra maps)
	scanner.Buffer(make([]byte, 0, 64*1024), 256*1024)

	var ring []parsedLine
	for scanner.Scan() {
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var ev otel.Event
		if n <= 0 || json.Unmarshal(raw, &ev) != nil || !f.match(ev) {
			continue
		}
		line := parsedLine{ev: ev, raw: append([]byte(nil), raw...)}
		if len(ring) < n {
			ring = append(ring, line)
		} else {
			copy(ring, ring[1:])
			ring[n-1] = line
		}
	}
	return ring
}

func trimLine(b []byte) []byte {
	for len(b) > 0 && (b[len(b)-1] == '\n' || b[len(b)-1] == '\r') {
		b = b[:len(b)-1]
	}
	return b
}

func runEvents(cmd *cobra.Command, args []string) error {
	path := config.EventsPath()
	file, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "  Event log not found at %s\n", path)
		fmt.Fprintf(os.Stderr, "  Run minifeed first to generate events.\n")
		return err
	}
	defer file.Close()

	filter := eventFilter{kind: eventsKind, level: eventsLevel, comp: eventsComp, req: eventsReq}
	out := cmd.OutOrStdout()
	show := func(ev otel.Event, raw []byte) {
		if eventsJSON {
			fmt.Fprintln(out, string(raw))
			return
		}
		fmt.Fprintln(out, formatEvent(ev))
	}

	for _, l := range readTailLines(file, eventsTail, filter) {
		show(l.ev, l.raw)
	}
	if !eventsFollow {
		return nil
	}

	// Follow mode: the scanner left the offset at EOF; poll for new lines.
	reader := bufio.NewReader(file)
	ctx := cmd.Context()
	var partial []byte
	for {
		chunk, err := reader.ReadBytes('\n')
		partial = append(partial, chunk...)
		if err != nil {
			if err != io.EOF {
				return err
			}
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(100 * time.Millisecond):
			}
			continue
		}
		line := trimLine(partial)
		partial = nil
		if len(line) == 0 {
			continue
		}
		var ev otel.Event
		if json.Unmarshal(line, &ev) != nil || !filter.match(ev) {
			continue
		}
		show(ev, line)
	}
}

package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/abelbrown/ragaweb/internal/config"
)

// eventRecord mirrors otel.Event for JSON decoding.
type eventRecord struct {
	Time       time.Time      `json:"t"`
	Level      string         `json:"level"`
	Kind       string         `json:"kind"`
	Comp       string         `json:"comp"`
	SessionID  string         `json:"session_id"`
	RequestID  string         `json:"rid"`
	DurMs      float64        `json:"dur_ms"`
	Count      int            `json:"count"`
	Collection string         `json:"collection"`
	Route      string         `json:"route"`
	Err        string         `json:"err"`
	Msg        string         `json:"msg"`
	Extra      map[string]any `json:"extra"`
}

// levelRank returns a numeric rank for filtering (higher = more severe).
func levelRank(level string) int {
	switch level {
	case "info":
		return 1
	case "warn":
		return 2
	case "error":
		return 3
	default:
		return 0
	}
}

// eventFilter selects events by the viewer's flags.
type eventFilter struct {
	kind       string
	minLevel   string
	comp       string
	rid        string
	collection string
}

func (f eventFilter) match(ev eventRecord) bool {
	if f.kind != "" && !strings.HasPrefix(ev.Kind, f.kind) {
		return false
	}
	if f.minLevel != "" && levelRank(ev.Level) < levelRank(f.minLevel) {
		return false
	}
	if f.comp != "" && ev.Comp != f.comp {
		return false
	}
	if f.rid != "" && !strings.HasPrefix(ev.RequestID, f.rid) {
		return false
	}
	if f.collection != "" && ev.Collection != f.collection {
		return false
	}
	return true
}

func (c *cli) runEvents(args []string) error {
	fs := c.flags("events", "[flags]")
	tail := fs.Int("tail", 50, "Number of recent lines to show")
	follow := fs.Bool("f", false, "Follow mode (like tail -f)")
	var filter eventFilter
	fs.StringVar(&filter.kind, "kind", "", "Filter by event kind prefix (e.g. 'backend.query')")
	fs.StringVar(&filter.minLevel, "level", "", "Minimum level: debug, info, warn, error")
	fs.StringVar(&filter.comp, "comp", "", "Filter by component name")
	fs.StringVar(&filter.rid, "rid", "", "Filter by request ID prefix")
	fs.StringVar(&filter.collection, "collection", "", "Filter by collection name or document id")
	rawJSON := fs.Bool("json", false, "Output raw JSON lines")
	if err := parse(fs, args, 0); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logPath := cfg.EventLogPath()

	f, err := os.Open(logPath)
	if err != nil {
		return fmt.Errorf("event log not found at %s (run ragaweb or any rag command first): %w", logPath, err)
	}
	defer f.Close()

	format := func(ev eventRecord, raw []byte) string {
		if *rawJSON {
			return string(raw)
		}
		return formatEvent(ev)
	}

	for _, l := range readTailLines(f, *tail, filter.match) {
		fmt.Fprintln(c.out, format(l.ev, l.raw))
	}
	if !*follow {
		return nil
	}

	// Poll for new lines until interrupted
	reader := bufio.NewReader(f)
	for {
		line, err := reader.ReadBytes('\n')
		if err != nil {
			if err != io.EOF {
				return err
			}
			select {
			case <-c.ctx.Done():
				return nil
			case <-time.After(100 * time.Millisecond):
			}
			continue
		}
		line = trimLine(line)
		if len(line) == 0 {
			continue
		}
		var ev eventRecord
		if json.Unmarshal(line, &ev) != nil {
			continue
		}
		if filter.match(ev) {
			fmt.Fprintln(c.out, format(ev, line))
		}
	}
}

// formatEvent renders one event as a single human-readable line.
func formatEvent(ev eventRecord) string {
	ts := ev.Time.Format("15:04:05.000")
	lvl := strings.ToUpper(ev.Level)
	if lvl == "" {
		lvl = "?"
	}

	parts := []string{fmt.Sprintf("%s %-5s [%-10s] %-26s", ts, lvl, ev.Comp, ev.Kind)}

	if ev.Msg != "" {
		parts = append(parts, "- "+ev.Msg)
	}
	if ev.DurMs > 0 {
		parts = append(parts, fmt.Sprintf("(%.*fms)", durPrecision(ev.DurMs), ev.DurMs))
	}
	if ev.Count > 0 {
		parts = append(parts, fmt.Sprintf("n=%d", ev.Count))
	}
	if ev.Collection != "" {
		parts = append(parts, "col="+ev.Collection)
	}
	if ev.Route != "" {
		parts = append(parts, "route="+ev.Route)
	}
	if ev.RequestID != "" {
		parts = append(parts, "rid="+truncateID(ev.RequestID))
	}
	if ev.Err != "" {
		parts = append(parts, "err="+ev.Err)
	}

	return strings.Join(parts, " ")
}

type parsedLine struct {
	ev  eventRecord
	raw []byte
}

// readTailLines reads the file and returns the last n lines matching the filter.
func readTailLines(r io.Reader, n int, match func(eventRecord) bool) []parsedLine {
	if n <= 0 {
		return nil
	}
	scanner := bufio.NewScanner(r)
	// Allow large lines (some events may have big Extra maps)
	scanner.Buffer(make([]byte, 0, 64*1024), 256*1024)

	ring := make([]parsedLine, 0, n)
	for scanner.Scan() {
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var ev eventRecord
		if json.Unmarshal(raw, &ev) != nil {
			continue
		}
		if !match(ev) {
			continue
		}
		// Make a copy of raw since scanner reuses the buffer
		rawCopy := make([]byte, len(raw))
		copy(rawCopy, raw)

		if len(ring) < n {
			ring = append(ring, parsedLine{ev: ev, raw: rawCopy})
		} else {
			copy(ring, ring[1:])
			ring[n-1] = parsedLine{ev: ev, raw: rawCopy}
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

func durPrecision(ms float64) int {
	if ms >= 100 {
		return 0
	}
	if ms >= 1 {
		return 1
	}
	return 2
}

func truncateID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

package harness

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/erkkaervice/philosophers/internal/ir"
)

// ParseLog reads "<elapsed_ms> <actor_id> <message>" lines. Blank lines are
// skipped. Events are numbered by their position in the log, starting at 1.
func ParseLog(r io.Reader) ([]ir.Event, error) {
	var events []ir.Event

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		ev, err := ir.ParseLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		ev.Seq = int64(len(events) + 1)
		events = append(events, ev)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	if events == nil {
		events = []ir.Event{}
	}
	return events, nil
}

// Package receipt issues and validates the human-facing receipt numbers
// attached to payments: RCP-YYYY-NNN, sequential and unique per year.
package receipt

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
)

var pattern = regexp.MustCompile(`^RCP-(\d{4})-(\d{3})$`)

// Valid reports whether s matches the RCP-YYYY-NNN format.
func Valid(s string) bool {
	return pattern.MatchString(s)
}

// parse splits a receipt number into year and sequence. Unlike Valid it
// tolerates sequences wider than three digits (RCP-2026-1000), which the
// issuer produces past 999.
func parse(s string) (year, seq int, ok bool) {
	rest, found := strings.CutPrefix(s, "RCP-")
	if !found {
		return 0, 0, false
	}
	y, n, found := strings.Cut(rest, "-")
	if !found || len(y) != 4 {
		return 0, 0, false
	}
	year, err := strconv.Atoi(y)
	if err != nil {
		return 0, 0, false
	}
	seq, err = strconv.Atoi(n)
	if err != nil || seq < 0 {
		return 0, 0, false
	}
	return year, seq, true
}

// Next returns the successor of last within year. An empty, foreign-year
// or unparseable last restarts the sequence at 001. Sequences past 999
// widen naturally (RCP-2026-1000).
func Next(last string, year int) string {
	y, seq, ok := parse(last)
	if !ok || y != year {
		seq = 0
	}
	return fmt.Sprintf("RCP-%04d-%03d", year, seq+1)
}

// Issuer hands out receipt numbers, one monotone sequence per year.
// Safe for concurrent use.
type Issuer struct {
	mu   sync.Mutex
	year int
	last string
}

func NewIssuer() *Issuer {
	return &Issuer{}
}

// Seed advances the issuer past an already-issued number so restarts and
// manually entered receipts do not get reused. Numbers from earlier years
// or in a foreign format are ignored.
func (i *Issuer) Seed(issued string) {
	year, seq, ok := parse(issued)
	if !ok {
		return
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	_, cur, _ := parse(i.last)
	if year > i.year || (year == i.year && seq > cur) {
		i.year, i.last = year, issued
	}
}

// Issue returns the next number for the given year. Moving to a later
// year resets the sequence; requests for earlier years keep the current
// one so issued numbers stay unique.
func (i *Issuer) Issue(year int) string {
	i.mu.Lock()
	defer i.mu.Unlock()
	if year > i.year {
		i.year, i.last = year, ""
	}
	i.last = Next(i.last, i.year)
	return i.last
}

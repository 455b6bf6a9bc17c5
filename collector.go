package tex2chtml

import (
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
)

// FragmentError describes one fragment the engine could not typeset.
type FragmentError struct {
	Source  string // TeX source of the fragment
	Message string // engine message
	Display bool   // display-mode fragment
}

// Error returns the record line: "TeX error: <message> in <source>".
func (e FragmentError) Error() string {
	return "TeX error: " + strings.TrimSpace(e.Message) + " in " + e.Source
}

// ErrorCollector accumulates fragment error records in encounter order.
// It is safe for concurrent use, though engines call it sequentially.
type ErrorCollector struct {
	mu      sync.Mutex
	records []string
}

// Handle records e. Pass it as the ErrorHandler of a Typeset call.
func (c *ErrorCollector) Handle(e FragmentError) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = append(c.records, e.Error())
}

// Records returns a copy of the collected records.
func (c *ErrorCollector) Records() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.records) == 0 {
		return nil
	}
	out := make([]string, len(c.records))
	copy(out, c.records)
	return out
}

// Len returns the number of collected records.
func (c *ErrorCollector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.records)
}

// Err returns nil when nothing was collected, otherwise an error wrapping
// ErrTeX.
func (c *ErrorCollector) Err() error {
	n := c.Len()
	if n == 0 {
		return nil
	}
	return errors.Wrapf(ErrTeX, "%d fragment(s) failed", n)
}

package tpccsql

import (
	"context"
	"strconv"
	"time"
)

// StatementTimeout returns the statement_timeout value, in milliseconds, that
// matches the time left on ctx. ok is false when ctx has no deadline.
func StatementTimeout(ctx context.Context) (value string, ok bool) {
	deadline, ok := ctx.Deadline()
	if !ok {
		return "", false
	}
	ms := time.Until(deadline).Milliseconds()
	if ms < 1 {
		ms = 1
	}
	return strconv.FormatInt(ms, 10), true
}

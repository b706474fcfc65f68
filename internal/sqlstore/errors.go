package sqlstore

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"net"

	"github.com/lib/pq"

	"github.com/matheusmosca/tpcc-bench/internal/tpcc"
	"github.com/matheusmosca/tpcc-bench/internal/tpccsql"
)

// classify wraps a database/sql error in a *tpcc.TxError when it falls into
// one of the failure kinds callers act on. Other errors are wrapped with op only.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if kind := kindOf(err); kind != nil {
		return &tpcc.TxError{Op: op, Kind: kind, Err: err}
	}
	return fmt.Errorf("%s: %w", op, err)
}

func kindOf(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return tpccsql.KindForSQLState(string(pqErr.Code))
	}

	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return tpcc.ErrTimeout
	case errors.As(err, &netErr) && netErr.Timeout():
		return tpcc.ErrTimeout
	case errors.Is(err, driver.ErrBadConn),
		errors.Is(err, sql.ErrConnDone),
		errors.As(err, &netErr),
		errors.Is(err, io.EOF),
		errors.Is(err, io.ErrUnexpectedEOF):
		return tpcc.ErrConnection
	default:
		return nil
	}
}

func notFoundOr(err error, op string, notFound func() error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return notFound()
	}
	return classify(op, err)
}

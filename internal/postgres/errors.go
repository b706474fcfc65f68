package postgres

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/matheusmosca/tpcc-bench/internal/tpcc"
	"github.com/matheusmosca/tpcc-bench/internal/tpccsql"
)

// classify wraps a pgx error in a *tpcc.TxError when it falls into one of the
// failure kinds callers act on. Other errors are wrapped with op only.
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
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return tpccsql.KindForSQLState(pgErr.Code)
	}

	var connectErr *pgconn.ConnectError
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded), pgconn.Timeout(err):
		return tpcc.ErrTimeout
	case errors.As(err, &connectErr),
		errors.As(err, &netErr),
		errors.Is(err, io.EOF),
		errors.Is(err, io.ErrUnexpectedEOF):
		return tpcc.ErrConnection
	default:
		return nil
	}
}

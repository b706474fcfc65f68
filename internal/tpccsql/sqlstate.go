package tpccsql

import (
	"strings"

	"github.com/matheusmosca/tpcc-bench/internal/tpcc"
)

const (
	sqlStateQueryCanceled = "57014"
	classDataException    = "22"
	classIntegrity        = "23"
	classConnection       = "08"
	classAdminShutdown    = "57P"
)

// KindForSQLState maps a PostgreSQL SQLSTATE to a tpcc failure sentinel.
// Data exceptions (numeric overflow, bad text width) count as constraint
// violations: retrying the same input can never succeed. It returns nil for
// codes that have no dedicated kind.
func KindForSQLState(code string) error {
	switch {
	case strings.HasPrefix(code, classIntegrity), strings.HasPrefix(code, classDataException):
		return tpcc.ErrConstraintViolation
	case code == sqlStateQueryCanceled:
		return tpcc.ErrTimeout
	case strings.HasPrefix(code, classConnection), strings.HasPrefix(code, classAdminShutdown):
		return tpcc.ErrConnection
	default:
		return nil
	}
}

package tpccsql

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/matheusmosca/tpcc-bench/internal/tpcc"
)

func TestKindForSQLState(t *testing.T) {
	tests := []struct {
		code string
		want error
	}{
		{"23505", tpcc.ErrConstraintViolation}, // unique_violation
		{"23503", tpcc.ErrConstraintViolation}, // foreign_key_violation
		{"22003", tpcc.ErrConstraintViolation}, // numeric_value_out_of_range
		{"22001", tpcc.ErrConstraintViolation}, // string_data_right_truncation
		{"57014", tpcc.ErrTimeout},
		{"08006", tpcc.ErrConnection},
		{"57P01", tpcc.ErrConnection}, // admin_shutdown
		{"40001", nil},
		{"42P01", nil},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, KindForSQLState(tt.code))
		})
	}
}

package tpcc

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotFoundError(t *testing.T) {
	err := fmt.Errorf("order line 3: %w", NotFound(EntityItem, "i_id=%d", 999))

	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrTimeout)

	var nf *NotFoundError
	assert.True(t, errors.As(err, &nf))
	assert.Equal(t, EntityItem, nf.Entity)
	assert.Equal(t, "i_id=999", nf.Key)
	assert.Equal(t, "order line 3: item not found (i_id=999)", err.Error())
}

func TestTxError_MatchesKindAndCause(t *testing.T) {
	err := &TxError{Op: "insert order", Kind: ErrConstraintViolation, Err: context.Canceled}

	assert.ErrorIs(t, err, ErrConstraintViolation)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, "committed", Outcome(nil))
	assert.Equal(t, "not_found", Outcome(NotFound(EntityStock, "x")))
	assert.Equal(t, "invalid_input", Outcome(invalidInput("bad")))
	assert.Equal(t, "constraint_violation", Outcome(&TxError{Kind: ErrConstraintViolation, Err: errors.New("dup")}))
	assert.Equal(t, "timeout", Outcome(&TxError{Kind: ErrTimeout, Err: context.DeadlineExceeded}))
	assert.Equal(t, "connection_failure", Outcome(fmt.Errorf("begin: %w", &TxError{Kind: ErrConnection, Err: errors.New("eof")})))
	assert.Equal(t, "error", Outcome(errors.New("boom")))
}

func TestDeadline(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 0)
	defer cancel()
	<-ctx.Done()

	err := deadline(ctx, errors.New("conn busy"))
	assert.ErrorIs(t, err, ErrTimeout)

	assert.NoError(t, deadline(ctx, nil))
	plain := errors.New("plain")
	assert.Equal(t, plain, deadline(context.Background(), plain))
}

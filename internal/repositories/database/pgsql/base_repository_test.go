package pgsql

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
)

type stubTx struct {
	pgx.Tx
	rollbackErr error
}

func (s stubTx) Rollback(ctx context.Context) error {
	return s.rollbackErr
}

func TestRollbackAfterCommitIsQuiet(t *testing.T) {
	r := BaseRepository{}

	err := r.Rollback(context.Background(), stubTx{rollbackErr: pgx.ErrTxClosed})

	assert.NoError(t, err)
}

func TestRollbackSurfacesRealFailures(t *testing.T) {
	r := BaseRepository{}
	cause := errors.New("connection reset")

	err := r.Rollback(context.Background(), stubTx{rollbackErr: cause})

	assert.Error(t, err)
	assert.ErrorIs(t, err, cause)
}

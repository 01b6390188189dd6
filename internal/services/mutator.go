package services

import (
	"context"
	"fmt"

	"backoffice/internal/repositories"
)

// Transactor runs a mutation and its audit capture as one atomic unit.
type Transactor interface {
	Mutate(ctx context.Context, fn MutateFunc) error
}

// MutateFunc performs the actual writes on q and returns the lifecycle
// changes to record. Returning an error rolls back both the writes and any
// audit rows.
type MutateFunc func(ctx context.Context, q repositories.Querier) ([]Change, error)

// Mutator is the transactional mutate-and-record helper: it opens a
// transaction, runs the mutation, records every returned change on the same
// transaction, then commits. There is no code path where a mutation commits
// without its audit rows, nor where audit rows commit without the mutation.
type Mutator struct {
	db       repositories.DB
	recorder *AuditRecorder
}

func NewMutator(db repositories.DB, recorder *AuditRecorder) *Mutator {
	return &Mutator{db: db, recorder: recorder}
}

func (m *Mutator) Mutate(ctx context.Context, fn MutateFunc) error {
	tx, err := m.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	changes, err := fn(ctx, tx)
	if err != nil {
		return err
	}

	for _, ch := range changes {
		if err := m.recorder.Record(ctx, tx, ch); err != nil {
			return fmt.Errorf("failed to record audit entry: %w", err)
		}
	}

	return tx.Commit(ctx)
}

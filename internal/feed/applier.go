package feed

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// TxStarter opens transactions; *pgxpool.Pool satisfies it.
type TxStarter interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// StockReleaser returns units to stock.
type StockReleaser interface {
	Release(ctx context.Context, tx pgx.Tx, id string, quantity int) error
}

// Result summarises an applied feed.
type Result struct {
	Entries int
	Units   int
}

// Applier adds feed quantities to product stock.
type Applier struct {
	db     TxStarter
	stock  StockReleaser
	logger zerolog.Logger
}

// NewApplier creates an applier.
func NewApplier(db TxStarter, stock StockReleaser, logger zerolog.Logger) *Applier {
	return &Applier{
		db:     db,
		stock:  stock,
		logger: logger.With().Str("component", "restock").Logger(),
	}
}

// Apply restocks every entry in one transaction. An unknown product or any
// other failure rolls back the whole feed.
func (a *Applier) Apply(ctx context.Context, entries []Entry) (result Result, err error) {
	if len(entries) == 0 {
		return Result{}, nil
	}

	tx, err := a.db.Begin(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("failed to begin restock: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				a.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	for i, e := range entries {
		if err = a.stock.Release(ctx, tx, e.ProductID, e.Quantity); err != nil {
			a.logger.Error().
				Err(err).
				Int("entry", i+1).
				Str("product_id", e.ProductID).
				Msg("restock aborted")
			return Result{}, fmt.Errorf("restock entry %d (%s): %w", i+1, e.ProductID, err)
		}
		result.Entries++
		result.Units += e.Quantity
	}

	if err = tx.Commit(ctx); err != nil {
		return Result{}, fmt.Errorf("failed to commit restock: %w", err)
	}

	a.logger.Info().
		Int("entries", result.Entries).
		Int("units", result.Units).
		Msg("restock applied")

	return result, nil
}

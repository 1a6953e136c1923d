package index

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/mattn/go-sqlite3"
)

func isSQLiteBusy(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.Code == sqlite3.ErrBusy || se.Code == sqlite3.ErrLocked
	}
	return false
}

func retryDelay(attempt int) time.Duration {
	delay := time.Duration(attempt+1) * 40 * time.Millisecond
	if delay > 300*time.Millisecond {
		delay = 300 * time.Millisecond
	}
	return delay
}

// withTx runs fn in a transaction, retrying while the database is busy until
// lockTimeout has passed.
func (i *Index) withTx(ctx context.Context, name string, fn func(tx *sql.Tx) error) error {
	start := time.Now()
	for attempt := 0; ; attempt++ {
		err := i.runTx(ctx, fn)
		if err == nil || !isSQLiteBusy(err) {
			slog.Debug("sql tx done", "op", name, "duration_ms", time.Since(start).Milliseconds(), "attempts", attempt+1, "err", err)
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if time.Since(start) >= i.lockTimeout {
			slog.Warn("sql tx busy", "op", name, "attempts", attempt+1, "err", err)
			return err
		}
		time.Sleep(retryDelay(attempt))
	}
}

func (i *Index) runTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := i.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

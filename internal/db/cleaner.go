package db

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"
)

// StartSessionCleaner deletes sessions older than ttl every interval until
// ctx is done. Clients holding a deleted token get 401 on their next request.
func StartSessionCleaner(
	ctx context.Context,
	db *sql.DB,
	interval time.Duration,
	ttl time.Duration,
	log *zap.Logger,
) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				cutoff := time.Now().Add(-ttl)
				res, err := db.ExecContext(ctx, `DELETE FROM sessions WHERE created_at < $1`, cutoff)
				if err != nil {
					log.Error("failed to delete expired sessions", zap.Error(err))
					continue
				}
				if rows, _ := res.RowsAffected(); rows > 0 {
					log.Info("deleted expired sessions", zap.Int64("removed", rows))
				}
			}
		}
	}()
}

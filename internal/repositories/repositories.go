// package repositories provides persistence layer implementations for the lookup cache.
//
// Each repository implements models.Repository[T] for a specific entity type.
package repositories

import (
	"database/sql"
	"fmt"

	"github.com/desertthunder/songview/internal/shared"
)

// rowScanner is the subset shared by [sql.Row] and [sql.Rows].
type rowScanner interface {
	Scan(dest ...any) error
}

// expectOne checks that a write touched exactly one row.
func expectOne(result sql.Result, what, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s %s", shared.ErrRecordNotFound, what, id)
	}
	return nil
}

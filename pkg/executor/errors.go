package executor

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// SecurityError is a hard failure: missing or malformed tenant id, or a
// search term key outside the table's allow-list. Execution fails
// closed before any data-store contact. Callers must never treat it as
// a recoverable per-capability failure.
type SecurityError struct {
	Reason string
}

func (e *SecurityError) Error() string {
	return "security violation: " + e.Reason
}

// IsSecurityError reports whether err is (or wraps) a SecurityError.
func IsSecurityError(err error) bool {
	var securityErr *SecurityError
	return errors.As(err, &securityErr)
}

// Postgres error codes the executor rewrites into operator-readable
// messages.
const (
	pgUndefinedTable  = "42P01"
	pgUndefinedColumn = "42703"
)

// classifyExecutionError wraps a data-layer failure with capability and
// table context. Missing-relation and missing-column failures get
// rewritten to name the table; everything else surfaces verbatim.
func classifyExecutionError(err error, capability, table string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUndefinedTable:
			return fmt.Errorf("capability %q: backing table %q does not exist: %w", capability, table, err)
		case pgUndefinedColumn:
			return fmt.Errorf("capability %q: a requested column does not exist on table %q: %w", capability, table, err)
		}
	}
	return fmt.Errorf("capability %q (table %q): %w", capability, table, err)
}

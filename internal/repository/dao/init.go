package dao

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// Tables lists every table owned by the DAOs, children first.
var Tables = []string{
	"expenses",
	"expense_types",
	"pure_exchanges",
	"skin_tests",
	"tokens",
	"entries",
	"users",
}

func pgError(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr, true
	}

	return nil, false
}

func isUniqueViolation(err error, constraint string) bool {
	pgErr, ok := pgError(err)

	return ok && pgErr.Code == pgerrcode.UniqueViolation && pgErr.ConstraintName == constraint
}

func isForeignKeyViolation(err error) bool {
	pgErr, ok := pgError(err)

	return ok && pgErr.Code == pgerrcode.ForeignKeyViolation
}

package postgres

import (
	"errors"

	"admissions/internal/core"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

// duplicateMessages maps unique index names to caller-facing messages.
var duplicateMessages = map[string]string{
	"applications_kind_email_key":  "An application with this email already exists",
	"applications_kind_mobile_key": "An application with this mobile number already exists",
	"users_email_key":              "User already exists",
}

// translate converts driver errors into core errors.
func translate(op string, err error, notFound string) error {
	if err == nil {
		return nil
	}
	var ce *core.Error
	if errors.As(err, &ce) {
		return err
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return core.NotFound(op, notFound)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		msg, ok := duplicateMessages[pgErr.ConstraintName]
		if !ok {
			msg = "record already exists"
		}
		return &core.Error{Kind: core.KindDuplicate, Op: op, Message: msg, Err: err}
	}
	return core.Internal(op, err)
}

package wish

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"wishboard/internal/domain"

	"github.com/lib/pq"
)

const (
	codeUniqueViolation      = "23505"
	codeForeignKeyViolation  = "23503"
	codeCheckViolation       = "23514"
	codeInvalidText          = "22P02"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
)

// MapError converts driver errors into domain sentinels, keeping the original
// error in the chain.
func MapError(err error, entity, id string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", entity, id, domain.ErrNotFound)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case codeUniqueViolation:
			return fmt.Errorf("%s %s: %w: %v", entity, id, domain.ErrAlreadyExists, pqErr.Message)
		case codeForeignKeyViolation, codeInvalidText:
			return fmt.Errorf("%s %s: %w", entity, id, domain.ErrNotFound)
		case codeCheckViolation:
			return fmt.Errorf("%s %s: %w: %s", entity, id, domain.ErrValidation, pqErr.Constraint)
		case codeSerializationFailure, codeDeadlockDetected:
			return fmt.Errorf("%s %s: %w: %v", entity, id, domain.ErrConflict, pqErr.Message)
		}
	}

	return fmt.Errorf("%s %s: %w", entity, id, err)
}

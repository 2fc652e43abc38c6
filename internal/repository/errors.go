package repository

import (
	"errors"

	"github.com/lib/pq"

	appErrors "github.com/noah-isme/sma-adp-api/pkg/errors"
)

// translateUniqueViolation maps a Postgres unique-constraint violation
// (SQLSTATE 23505) to the kernel's 400-status ErrDuplicateKey; any other
// error passes through wrapped with msg for context.
func translateUniqueViolation(err error, msg string) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return appErrors.Clone(appErrors.ErrDuplicateKey, msg)
	}
	return err
}

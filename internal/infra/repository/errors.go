package repository

import (
	"storefront/internal/infra/db"
	repo "storefront/internal/repository"
)

// gormのエラーをrepositoryのエラーにそろえる
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case db.IsNotFound(err):
		return repo.ErrNotFound
	case db.IsUniqueViolation(err):
		return repo.ErrConflict
	default:
		return err
	}
}

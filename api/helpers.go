package api

import (
	"errors"

	"github.com/xraph/forge"

	"github.com/xraph/facet"
)

// mapError maps domain errors to Forge HTTP errors.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if isNotFound(err) {
		return forge.NotFound(err.Error())
	}
	if errors.Is(err, facet.ErrFieldLocked) || errors.Is(err, facet.ErrValueNotAllowed) {
		return forge.Forbidden(err.Error())
	}
	if errors.Is(err, facet.ErrDefaultTagImmutable) {
		return forge.Forbidden(err.Error())
	}
	if isInvalid(err) {
		return forge.BadRequest(err.Error())
	}
	return err
}

func isNotFound(err error) bool {
	return errors.Is(err, facet.ErrUserNotFound) ||
		errors.Is(err, facet.ErrScopeNotFound) ||
		errors.Is(err, facet.ErrClauseNotFound) ||
		errors.Is(err, facet.ErrTagNotFound)
}

func isInvalid(err error) bool {
	return errors.Is(err, facet.ErrInvalidClause) ||
		errors.Is(err, facet.ErrInvalidUser) ||
		errors.Is(err, facet.ErrConflictingFieldPolicy) ||
		errors.Is(err, facet.ErrDuplicateRequiredFilter) ||
		errors.Is(err, facet.ErrInvalidTag) ||
		errors.Is(err, facet.ErrDuplicateTag) ||
		errors.Is(err, facet.ErrUserExists)
}

func defaultLimit(limit int) int {
	if limit <= 0 {
		return 50
	}
	if limit > 1000 {
		return 1000
	}
	return limit
}

package facet

import (
	"errors"

	"github.com/xraph/facet/clause"
	"github.com/xraph/facet/scope"
	"github.com/xraph/facet/store"
	"github.com/xraph/facet/tag"
)

var (
	// ErrUserNotFound is returned when a user cannot be found.
	ErrUserNotFound = errors.New("facet: user not found")

	// ErrUserExists is returned when creating a user whose id is taken.
	ErrUserExists = store.ErrConflict

	// ErrScopeNotFound is returned when an API caller names a scope the
	// user does not own. Engine-level mutators treat this as a no-op instead.
	ErrScopeNotFound = errors.New("facet: scope not found")

	// ErrClauseNotFound is returned by the API when a clause id is unknown.
	ErrClauseNotFound = errors.New("facet: clause not found")

	// ErrInvalidClause is returned when a clause is malformed.
	ErrInvalidClause = clause.ErrInvalid

	// ErrFieldLocked is returned when a clause targets a field the scope locks.
	ErrFieldLocked = errors.New("facet: field is locked by scope")

	// ErrValueNotAllowed is returned when a clause names a value outside the
	// scope's allow-list for that field.
	ErrValueNotAllowed = errors.New("facet: value not allowed in scope")

	// ErrInvalidUser is returned when a user or one of its scopes is malformed.
	ErrInvalidUser = scope.ErrInvalid

	// ErrConflictingFieldPolicy is returned when a scope both locks and
	// restricts the same field.
	ErrConflictingFieldPolicy = scope.ErrConflictingPolicy

	// ErrDuplicateRequiredFilter is returned when a scope locks a field twice.
	ErrDuplicateRequiredFilter = scope.ErrDuplicateRequired

	// ErrInvalidTag is returned when a tag has an empty label or no values.
	ErrInvalidTag = tag.ErrInvalid

	// ErrDuplicateTag is returned when a tag key already exists.
	ErrDuplicateTag = tag.ErrDuplicate

	// ErrTagNotFound is returned when a tag key is unknown.
	ErrTagNotFound = tag.ErrNotFound

	// ErrDefaultTagImmutable is returned when updating or deleting a default tag.
	ErrDefaultTagImmutable = tag.ErrDefaultImmutable
)

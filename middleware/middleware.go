// Package middleware provides HTTP middleware guarding Facet's per-user routes.
package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"slices"

	"github.com/xraph/forge"

	"github.com/xraph/facet"
)

// ErrAccessDenied is returned when the caller may not act on the target user.
var ErrAccessDenied = errors.New("facet: access denied")

// UserParam is the route parameter naming the target user.
const UserParam = "userId"

// RequireUser rejects requests whose :userId is not in the user directory.
func RequireUser(eng *facet.Engine) forge.Middleware {
	return func(next forge.Handler) forge.Handler {
		return func(ctx forge.Context) error {
			if _, err := eng.GetUser(ctx.Context(), ctx.Param(UserParam)); err != nil {
				if errors.Is(err, facet.ErrUserNotFound) {
					return errorResponse(ctx, http.StatusNotFound, "user not found")
				}
				return err
			}
			return next(ctx)
		}
	}
}

// RequireSelf lets the authenticated caller act only on their own filters.
// Callers whose directory role is one of overrideRoles may act on anyone.
func RequireSelf(eng *facet.Engine, overrideRoles ...string) forge.Middleware {
	return func(next forge.Handler) forge.Handler {
		return func(ctx forge.Context) error {
			principal := forge.UserIDFromContext(ctx.Context())
			err := Authorize(ctx.Context(), eng, principal, ctx.Param(UserParam), overrideRoles...)
			if err != nil {
				if errors.Is(err, ErrAccessDenied) {
					return errorResponse(ctx, http.StatusForbidden, "access denied")
				}
				return err
			}
			return next(ctx)
		}
	}
}

// Authorize decides whether principal may act on target's filters.
func Authorize(ctx context.Context, eng *facet.Engine, principal, target string, overrideRoles ...string) error {
	if principal == "" {
		return ErrAccessDenied
	}
	if principal == target {
		return nil
	}
	if len(overrideRoles) == 0 {
		return ErrAccessDenied
	}
	u, err := eng.GetUser(ctx, principal)
	if errors.Is(err, facet.ErrUserNotFound) {
		return ErrAccessDenied
	}
	if err != nil {
		return err
	}
	if slices.Contains(overrideRoles, u.Role) {
		return nil
	}
	return ErrAccessDenied
}

func errorResponse(ctx forge.Context, status int, msg string) error {
	ctx.SetHeader("Content-Type", "application/json")
	ctx.Response().WriteHeader(status)
	return json.NewEncoder(ctx.Response()).Encode(map[string]string{"error": msg})
}

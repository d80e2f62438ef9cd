package middleware

import (
	"context"
	"errors"
	"testing"

	"github.com/xraph/facet"
	"github.com/xraph/facet/record"
	"github.com/xraph/facet/scope"
	"github.com/xraph/facet/store/memory"
)

func newEngine(t *testing.T) *facet.Engine {
	t.Helper()
	eng, err := facet.NewEngine(
		facet.WithStore(memory.New()),
		facet.WithDataset(record.Static(nil)),
	)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	for _, u := range []*scope.User{
		{ID: "alice", Role: "admin", Scopes: []scope.Scope{{ID: "all", Name: "All"}}},
		{ID: "bob", Role: "employee", Scopes: []scope.Scope{{ID: "own", Name: "Own"}}},
	} {
		if err := eng.CreateUser(ctx, u); err != nil {
			t.Fatal(err)
		}
	}
	return eng
}

func TestAuthorize(t *testing.T) {
	eng := newEngine(t)
	ctx := context.Background()

	tests := []struct {
		name      string
		principal string
		target    string
		roles     []string
		allowed   bool
	}{
		{"anonymous", "", "bob", nil, false},
		{"self", "bob", "bob", nil, true},
		{"other without override", "alice", "bob", nil, false},
		{"admin override", "alice", "bob", []string{"admin"}, true},
		{"role not in override", "bob", "alice", []string{"admin"}, false},
		{"unknown principal", "carol", "bob", []string{"admin"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Authorize(ctx, eng, tt.principal, tt.target, tt.roles...)
			if tt.allowed && err != nil {
				t.Fatalf("expected allowed, got %v", err)
			}
			if !tt.allowed && !errors.Is(err, ErrAccessDenied) {
				t.Fatalf("expected ErrAccessDenied, got %v", err)
			}
		})
	}
}

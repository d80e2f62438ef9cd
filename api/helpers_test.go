package api

import (
	"errors"
	"fmt"
	"testing"

	"github.com/xraph/facet"
)

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		err      error
		notFound bool
		invalid  bool
	}{
		{fmt.Errorf("%w: u1", facet.ErrUserNotFound), true, false},
		{facet.ErrScopeNotFound, true, false},
		{facet.ErrTagNotFound, true, false},
		{fmt.Errorf("%w: bad", facet.ErrInvalidClause), false, true},
		{facet.ErrDuplicateTag, false, true},
		{facet.ErrUserExists, false, true},
		{facet.ErrFieldLocked, false, false},
		{errors.New("boom"), false, false},
	}
	for _, tt := range tests {
		if got := isNotFound(tt.err); got != tt.notFound {
			t.Errorf("isNotFound(%v) = %v", tt.err, got)
		}
		if got := isInvalid(tt.err); got != tt.invalid {
			t.Errorf("isInvalid(%v) = %v", tt.err, got)
		}
	}
}

func TestMapErrorPassesThroughUnknown(t *testing.T) {
	if mapError(nil) != nil {
		t.Fatal("nil should stay nil")
	}
	boom := errors.New("boom")
	if !errors.Is(mapError(boom), boom) {
		t.Fatal("unknown errors should pass through unchanged")
	}
}

func TestDefaultLimit(t *testing.T) {
	for in, want := range map[int]int{0: 50, -1: 50, 10: 10, 5000: 1000} {
		if got := defaultLimit(in); got != want {
			t.Errorf("defaultLimit(%d) = %d, want %d", in, got, want)
		}
	}
}

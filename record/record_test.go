package record

import (
	"context"
	"errors"
	"testing"
)

func TestLabels(t *testing.T) {
	tests := []struct {
		got, want string
	}{
		{StatusPending.Label(), "Pending"},
		{StatusCancelled.Label(), "Cancelled"},
		{Status("on_hold").Label(), "on_hold"},
		{EmploymentPartTime.Label(), "Part-time"},
		{EmploymentType("intern").Label(), "intern"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("label = %q, want %q", tt.got, tt.want)
		}
	}
}

func TestProviders(t *testing.T) {
	ctx := context.Background()
	s := Static{{ID: "a"}, {ID: "b"}}
	got, err := s.Records(ctx)
	if err != nil || len(got) != 2 || got[1].ID != "b" {
		t.Fatalf("Static.Records = %v, %v", got, err)
	}

	boom := errors.New("boom")
	f := ProviderFunc(func(context.Context) ([]*Record, error) { return nil, boom })
	if _, err := f.Records(ctx); !errors.Is(err, boom) {
		t.Fatalf("ProviderFunc error = %v", err)
	}
}

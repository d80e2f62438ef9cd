// Package fixture loads users, tags and absence records from YAML. It backs
// the CLI and the extension's file-based dataset.
package fixture

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/xraph/facet/record"
	"github.com/xraph/facet/scope"
	"github.com/xraph/facet/store"
	"github.com/xraph/facet/tag"
)

//go:embed sample.yaml
var sample []byte

// File is one fixture document.
type File struct {
	Tenant  string           `yaml:"tenant"`
	Tags    []*tag.Tag       `yaml:"tags"`
	Users   []*scope.User    `yaml:"users"`
	Records []*record.Record `yaml:"records"`
}

// Sample returns the built-in demo fixture.
func Sample() *File {
	f, err := Parse(sample)
	if err != nil {
		panic("fixture: sample: " + err.Error())
	}
	return f
}

// Load reads and parses a fixture file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from the operator
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return f, nil
}

// Parse decodes a fixture document. Unknown keys are rejected and every
// user and tag is validated.
func Parse(data []byte) (*File, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, err
	}
	if err := f.validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

func (f *File) validate() error {
	seen := make(map[string]struct{}, len(f.Records))
	for i, r := range f.Records {
		if r.ID == "" {
			return fmt.Errorf("record %d: id is required", i)
		}
		if _, dup := seen[r.ID]; dup {
			return fmt.Errorf("record %s: duplicate id", r.ID)
		}
		seen[r.ID] = struct{}{}
	}
	for _, u := range f.Users {
		u.TenantID = f.Tenant
		if err := u.Validate(); err != nil {
			return err
		}
	}
	for _, t := range f.Tags {
		t.IsDefault = false
		if err := tag.Validate(t); err != nil {
			return err
		}
	}
	return nil
}

// Provider returns the records as a static dataset.
func (f *File) Provider() record.Provider { return record.Static(f.Records) }

// User returns the fixture user with the given id.
func (f *File) User(userID string) (*scope.User, bool) {
	for _, u := range f.Users {
		if u.ID == userID {
			return u, true
		}
	}
	return nil, false
}

// Seed writes the fixture's users and tags into s. Users that already
// exist are updated in place.
func (f *File) Seed(ctx context.Context, s store.Store) error {
	for _, u := range f.Users {
		err := s.CreateUser(ctx, u.Clone())
		if errors.Is(err, store.ErrConflict) {
			err = s.UpdateUser(ctx, u.Clone())
		}
		if err != nil {
			return fmt.Errorf("seed user %s: %w", u.ID, err)
		}
	}
	if len(f.Tags) > 0 {
		if err := s.SaveTags(ctx, f.Tenant, f.Tags); err != nil {
			return fmt.Errorf("seed tags: %w", err)
		}
	}
	return nil
}

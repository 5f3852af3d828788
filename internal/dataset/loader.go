// Bookreco - Concurrent Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookreco

package dataset

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/tomtom215/bookreco/internal/recommend"
	"github.com/tomtom215/bookreco/internal/validation"
)

// ErrUnsupportedFormat is returned for files that are not JSON or YAML.
var ErrUnsupportedFormat = errors.New("unsupported dataset format")

// Dataset is a catalog plus the ratings made against it.
type Dataset struct {
	Books   []recommend.Book   `json:"books" yaml:"books" validate:"dive"`
	Ratings []recommend.Rating `json:"ratings" yaml:"ratings" validate:"dive"`

	// Users optionally fixes the batch population and its order.
	Users []string `json:"users,omitempty" yaml:"users,omitempty" validate:"dive,required"`
}

// Load reads and validates the dataset at path. The format is chosen by
// extension: .json, .yaml or .yml.
func Load(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}

	ds, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("dataset %s: %w", path, err)
	}
	return ds, nil
}

// Parse decodes data in the format named by ext and validates it.
func Parse(data []byte, ext string) (*Dataset, error) {
	var ds Dataset

	switch strings.ToLower(ext) {
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&ds); err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		// An empty document decodes to the zero dataset.
		if err := dec.Decode(&ds); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	if err := validation.ValidateStruct(&ds); err != nil {
		return nil, fmt.Errorf("invalid dataset: %w", err)
	}
	return &ds, nil
}

// UserIDs returns Users when set, otherwise each rating user once in
// first-seen order.
func (d *Dataset) UserIDs() []string {
	if len(d.Users) > 0 {
		out := make([]string, len(d.Users))
		copy(out, d.Users)
		return out
	}

	seen := make(map[string]struct{})
	var out []string
	for _, r := range d.Ratings {
		if _, ok := seen[r.UserID]; ok {
			continue
		}
		seen[r.UserID] = struct{}{}
		out = append(out, r.UserID)
	}
	return out
}

// Request builds a batch request over the whole dataset for users
// (UserIDs() when empty).
func (d *Dataset) Request(users []string, k int) recommend.BatchRequest {
	if len(users) == 0 {
		users = d.UserIDs()
	}
	return recommend.BatchRequest{
		UserIDs:  users,
		Ratings:  d.Ratings,
		Catalog:  d.Books,
		K:        k,
		Snapshot: recommend.NewSnapshot(d.Ratings, d.Books),
	}
}

// Bookreco - Concurrent Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookreco

package dataset

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tomtom215/bookreco/internal/validation"
)

const yamlDataset = `
books:
  - id: "1"
    title: Dune
    author: Frank Herbert
    genre: Sci-Fi
    year: 1965
    rating: 4.5
  - id: "2"
    title: The Hobbit
    author: J.R.R. Tolkien
    genre: Fantasy
    year: 1937
    rating: 4.8
ratings:
  - user_id: u2
    book_id: "1"
    value: 4
  - user_id: u1
    book_id: "2"
    value: 5
  - user_id: u2
    book_id: "2"
    value: 3
`

const jsonDataset = `{
  "books": [{"id": "1", "title": "Dune", "author": "Frank Herbert", "genre": "Sci-Fi", "year": 1965, "rating": 4.5}],
  "ratings": [{"user_id": "u1", "book_id": "1", "value": 5}],
  "users": ["u1", "u9"]
}`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoad_YAML(t *testing.T) {
	for _, name := range []string{"data.yaml", "data.yml"} {
		t.Run(name, func(t *testing.T) {
			ds, err := Load(writeFile(t, name, yamlDataset))
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if len(ds.Books) != 2 || len(ds.Ratings) != 3 {
				t.Errorf("books/ratings = %d/%d, want 2/3", len(ds.Books), len(ds.Ratings))
			}
			if ds.Books[1].Author != "J.R.R. Tolkien" || ds.Books[1].Year != 1937 {
				t.Errorf("book = %+v", ds.Books[1])
			}
		})
	}
}

func TestLoad_JSON(t *testing.T) {
	ds, err := Load(writeFile(t, "data.json", jsonDataset))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if ds.Books[0].Rating != 4.5 || ds.Ratings[0].Value != 5 {
		t.Errorf("dataset = %+v", ds)
	}
	got := ds.UserIDs()
	if len(got) != 2 || got[0] != "u1" || got[1] != "u9" {
		t.Errorf("UserIDs() = %v, want explicit users", got)
	}
}

func TestDataset_UserIDs(t *testing.T) {
	ds, err := Load(writeFile(t, "data.yaml", yamlDataset))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	got := ds.UserIDs()
	if len(got) != 2 || got[0] != "u2" || got[1] != "u1" {
		t.Errorf("UserIDs() = %v, want [u2 u1]", got)
	}

	req := ds.Request(nil, 3)
	if len(req.UserIDs) != 2 || req.K != 3 || req.Snapshot == nil {
		t.Errorf("Request() = %+v", req)
	}
	if req = ds.Request([]string{"u1"}, 0); len(req.UserIDs) != 1 {
		t.Errorf("Request(u1).UserIDs = %v", req.UserIDs)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		field   string
	}{
		{
			name:    "rating value out of range",
			file:    "bad.yaml",
			content: "ratings:\n  - user_id: u1\n    book_id: \"1\"\n    value: 9\n",
			field:   "Ratings[0].Value",
		},
		{
			name:    "missing book id",
			file:    "bad.json",
			content: `{"books": [{"id": "1", "rating": 4}, {"title": "x", "rating": 4}]}`,
			field:   "Books[1].ID",
		},
		{
			name:    "catalog rating above 5",
			file:    "bad.json",
			content: `{"books": [{"id": "1", "rating": 5.5}]}`,
			field:   "Books[0].Rating",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.file, tt.content))
			if err == nil {
				t.Fatal("Load() = nil error")
			}

			var verr *validation.Error
			if !errors.As(err, &verr) {
				t.Fatalf("error %v is not a validation error", err)
			}
			found := false
			for _, f := range verr.Fields() {
				if f.Field() == tt.field {
					found = true
				}
			}
			if !found {
				t.Errorf("fields %v do not include %s", verr.Error(), tt.field)
			}
		})
	}
}

func TestLoad_DecodeFailures(t *testing.T) {
	t.Run("unsupported extension", func(t *testing.T) {
		_, err := Load(writeFile(t, "data.csv", "id,title"))
		if !errors.Is(err, ErrUnsupportedFormat) {
			t.Errorf("error = %v, want ErrUnsupportedFormat", err)
		}
	})

	t.Run("malformed json", func(t *testing.T) {
		_, err := Load(writeFile(t, "data.json", "{"))
		if err == nil || !strings.Contains(err.Error(), "decode json") {
			t.Errorf("error = %v, want decode failure", err)
		}
	})

	t.Run("unknown yaml field", func(t *testing.T) {
		_, err := Load(writeFile(t, "data.yaml", "bookz: []\n"))
		if err == nil || !strings.Contains(err.Error(), "decode yaml") {
			t.Errorf("error = %v, want decode failure", err)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := Load(filepath.Join(t.TempDir(), "none.json")); !errors.Is(err, os.ErrNotExist) {
			t.Errorf("error = %v, want ErrNotExist", err)
		}
	})

	t.Run("empty yaml", func(t *testing.T) {
		ds, err := Load(writeFile(t, "empty.yaml", ""))
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if len(ds.UserIDs()) != 0 {
			t.Errorf("UserIDs() = %v, want none", ds.UserIDs())
		}
	})
}

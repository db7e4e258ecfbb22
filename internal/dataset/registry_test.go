package dataset

import (
	"errors"
	"testing"

	"github.com/corpusfind/corpusfind/internal/config"
)

// TestRegistryBuiltins tests that the built-in datasets resolve.
func TestRegistryBuiltins(t *testing.T) {
	t.Parallel()

	r, err := NewRegistry(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	d, ok := r.Lookup("europarl-v10")
	if !ok {
		t.Fatal("expected europarl-v10 to be registered")
	}
	if d.RootURL != "https://www.statmt.org/europarl/v10/" {
		t.Errorf("unexpected root URL: %q", d.RootURL)
	}
	if d.Pattern != "*.tsv.gz" {
		t.Errorf("unexpected pattern: %q", d.Pattern)
	}

	if _, ok := r.Lookup("no-such-dataset"); ok {
		t.Error("expected unknown id to miss")
	}
}

// TestRegistryExtras tests profile-declared datasets, including shadowing.
func TestRegistryExtras(t *testing.T) {
	t.Parallel()

	extras := map[string]config.DatasetProfile{
		"my-corpus": {
			URL:         "https://mirror.example.org/corpora/",
			Pattern:     "*.txt.gz",
			Description: "private mirror",
		},
		"europarl-v10": {
			URL:     "https://mirror.example.org/europarl/v10/",
			Pattern: "*.tsv.gz",
			Depth:   1,
		},
	}

	r, err := NewRegistry(extras)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	d, ok := r.Lookup("my-corpus")
	if !ok {
		t.Fatal("expected my-corpus to be registered")
	}
	if d.Depth != config.DefaultMaxDepth {
		t.Errorf("expected default depth %d, got %d", config.DefaultMaxDepth, d.Depth)
	}

	d, _ = r.Lookup("europarl-v10")
	if d.RootURL != "https://mirror.example.org/europarl/v10/" {
		t.Errorf("expected extra to shadow builtin, got %q", d.RootURL)
	}
}

// TestRegistryValidation tests that bad definitions fail construction.
func TestRegistryValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		extras map[string]config.DatasetProfile
	}{
		{"relative url", map[string]config.DatasetProfile{"bad": {URL: "corpora/"}}},
		{"ftp url", map[string]config.DatasetProfile{"bad": {URL: "ftp://example.org/"}}},
		{"depth out of range", map[string]config.DatasetProfile{"bad": {URL: "https://example.org/", Depth: 11}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := NewRegistry(tt.extras)
			if err == nil {
				t.Fatal("expected construction to fail")
			}
			var ce *config.ConfigError
			if !errors.As(err, &ce) {
				t.Errorf("expected *ConfigError, got %T", err)
			}
		})
	}
}

// TestRegistryListSorted tests stable, sorted listing.
func TestRegistryListSorted(t *testing.T) {
	t.Parallel()

	r, err := NewRegistry(nil)
	if err != nil {
		t.Fatal(err)
	}

	list := r.List()
	if len(list) == 0 {
		t.Fatal("expected built-in datasets")
	}
	for i := 1; i < len(list); i++ {
		if list[i-1].ID >= list[i].ID {
			t.Errorf("expected sorted IDs, got %q before %q", list[i-1].ID, list[i].ID)
		}
	}
}

package dataset

import (
	"net/url"
	"sort"

	"github.com/corpusfind/corpusfind/internal/config"
)

// Dataset describes one crawlable corpus collection.
type Dataset struct {
	// ID is the identifier users pass to --dataset.
	ID string

	// Description is a one-line summary shown by the datasets command.
	Description string

	// RootURL is the directory-listing URL the walk starts from.
	RootURL string

	// Pattern is the default glob for this dataset's corpus files.
	Pattern string

	// Depth is the default crawl depth.
	Depth int
}

// builtins are the datasets corpusfind knows out of the box. All are
// plain Apache-style listings on statmt.org.
var builtins = []Dataset{
	{
		ID:          "europarl-v10",
		Description: "Europarl v10 parallel corpus (TSV)",
		RootURL:     "https://www.statmt.org/europarl/v10/",
		Pattern:     "*.tsv.gz",
		Depth:       1,
	},
	{
		ID:          "europarl-v7",
		Description: "Europarl v7 release archives",
		RootURL:     "https://www.statmt.org/europarl/",
		Pattern:     "*.tgz",
		Depth:       1,
	},
	{
		ID:          "news-commentary-v18",
		Description: "News Commentary v18.1 training data",
		RootURL:     "https://data.statmt.org/news-commentary/v18.1/",
		Pattern:     "*.tsv.gz",
		Depth:       2,
	},
	{
		ID:          "wikititles-v3",
		Description: "WikiTitles v3 parallel titles",
		RootURL:     "https://data.statmt.org/wikititles/v3/",
		Pattern:     "*.tsv.gz",
		Depth:       1,
	},
	{
		ID:          "news-crawl",
		Description: "Monolingual news crawl by year",
		RootURL:     "https://data.statmt.org/news-crawl/",
		Pattern:     "*.gz",
		Depth:       2,
	},
}

// Registry resolves dataset identifiers to crawl settings.
type Registry struct {
	datasets map[string]Dataset
}

// NewRegistry builds a registry from the built-in datasets plus any extra
// datasets declared in the profile file. Every entry is validated here:
// the root URL must be absolute http(s) and the depth within the walkable
// range. Extra datasets may shadow built-ins of the same ID.
func NewRegistry(extras map[string]config.DatasetProfile) (*Registry, error) {
	r := &Registry{datasets: make(map[string]Dataset, len(builtins)+len(extras))}

	for _, d := range builtins {
		if err := validate(d); err != nil {
			return nil, err
		}
		r.datasets[d.ID] = d
	}

	for id, p := range extras {
		d := Dataset{
			ID:          id,
			Description: p.Description,
			RootURL:     p.URL,
			Pattern:     p.Pattern,
			Depth:       p.Depth,
		}
		if d.Depth == 0 {
			d.Depth = config.DefaultMaxDepth
		}
		if err := validate(d); err != nil {
			return nil, err
		}
		r.datasets[id] = d
	}

	return r, nil
}

// validate checks one dataset definition.
func validate(d Dataset) error {
	if d.ID == "" {
		return &config.ConfigError{Field: "dataset", Reason: "dataset id must not be empty"}
	}
	u, err := url.Parse(d.RootURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return &config.ConfigError{Field: "dataset." + d.ID, Reason: "url must be absolute http or https"}
	}
	if d.Depth < config.MinMaxDepth || d.Depth > config.MaxMaxDepth {
		return &config.ConfigError{Field: "dataset." + d.ID, Reason: "depth must be between 1 and 10"}
	}
	return nil
}

// Lookup returns the dataset for id.
func (r *Registry) Lookup(id string) (Dataset, bool) {
	d, ok := r.datasets[id]
	return d, ok
}

// List returns all datasets sorted by ID.
func (r *Registry) List() []Dataset {
	out := make([]Dataset, 0, len(r.datasets))
	for _, d := range r.datasets {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultProfileFile is the default profile file name.
const DefaultProfileFile = ".corpusfind"

// ErrProfileNotFound is returned when the profile file does not exist.
// Callers should treat it as fatal only when the path was given
// explicitly by the user.
var ErrProfileNotFound = errors.New("profile file not found")

// ServerProfile holds per-server crawl settings. Host names are matched
// case-insensitively against the root URL's host.
type ServerProfile struct {
	// Pattern is the default glob for this server, used when the user
	// gives none on the command line.
	Pattern string `yaml:"pattern,omitempty"`

	// Depth overrides the default crawl depth for this server. Zero means
	// use the global default.
	Depth int `yaml:"depth,omitempty"`
}

// DatasetProfile declares a user-defined dataset for the registry.
type DatasetProfile struct {
	// URL is the dataset's root listing URL.
	URL string `yaml:"url"`

	// Pattern is the dataset's default glob.
	Pattern string `yaml:"pattern,omitempty"`

	// Depth is the dataset's default crawl depth. Zero means the global
	// default.
	Depth int `yaml:"depth,omitempty"`

	// Description is a one-line description shown by the datasets command.
	Description string `yaml:"description,omitempty"`
}

// File represents the structure of the .corpusfind profile file.
type File struct {
	// Servers maps host names to server profiles.
	Servers map[string]ServerProfile `yaml:"servers,omitempty"`

	// Defaults is applied to every server unless overridden.
	Defaults ServerProfile `yaml:"defaults,omitempty"`

	// Datasets declares extra datasets merged into the built-in registry.
	Datasets map[string]DatasetProfile `yaml:"datasets,omitempty"`
}

// ServerProfile returns the profile for a host, merged over the defaults.
func (f *File) ServerProfile(host string) ServerProfile {
	result := f.Defaults
	if p, ok := f.Servers[host]; ok {
		if p.Pattern != "" {
			result.Pattern = p.Pattern
		}
		if p.Depth != 0 {
			result.Depth = p.Depth
		}
	}
	return result
}

// LoadProfileFile loads server and dataset profiles from a YAML file.
// A missing file yields ErrProfileNotFound.
func LoadProfileFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided profile path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}

	if f.Servers == nil {
		f.Servers = make(map[string]ServerProfile)
	}
	if f.Datasets == nil {
		f.Datasets = make(map[string]DatasetProfile)
	}

	return &f, nil
}

// FindProfileFile searches for the profile file:
//  1. the explicit path, when given
//  2. .corpusfind in the current directory
//  3. .corpusfind in the user's home directory
//
// It returns an empty string when nothing is found.
func FindProfileFile(explicit string) string {
	if explicit != "" {
		if _, err := os.Stat(explicit); err == nil {
			return explicit
		}
		return ""
	}

	if cwd, err := os.Getwd(); err == nil {
		p := filepath.Join(cwd, DefaultProfileFile)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		p := filepath.Join(home, DefaultProfileFile)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}

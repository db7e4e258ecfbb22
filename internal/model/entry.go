package model

// Kind classifies a directory-listing entry as a file or a directory.
type Kind string

// Entry kinds. The kind is derived from the resolved URL: entries whose URL
// ends in "/" are directories, everything else is a file.
const (
	KindFile      Kind = "file"
	KindDirectory Kind = "directory"
)

// Entry represents one file-system object discovered in an Apache-style
// directory listing.
//
// Entries are value objects: the parser creates them once and nothing
// mutates them afterwards. Size and LastModified are kept as the display
// strings the server rendered (e.g. "1.2M", "2020-01-27 15:34") rather
// than parsed values, because the downloader and reporters only ever show
// them to humans.
type Entry struct {
	// URL is the absolute URL of the entry. Relative hrefs are resolved
	// against the owning directory's URL during parsing. Empty when the
	// source row had no anchor.
	URL string `json:"url"`

	// Name is the anchor text of the entry. Directory names keep their
	// trailing "/" exactly as the server presented them, so the trailing
	// slash round-trips through filtering and display.
	Name string `json:"name"`

	// Kind is KindFile or KindDirectory.
	Kind Kind `json:"kind"`

	// Size is the size column as a display string. "-" or empty for
	// directories.
	Size string `json:"size,omitempty"`

	// LastModified is the last-modified column as a display string.
	LastModified string `json:"last_modified,omitempty"`

	// Description is the description column, usually empty.
	Description string `json:"description,omitempty"`
}

// IsDir reports whether the entry is a directory.
func (e Entry) IsDir() bool {
	return e.Kind == KindDirectory
}

// Package listing parses Apache-style directory-listing pages into entries.
//
// # Listing format
//
// Apache's fancy-index pages render one table whose rows are, in order:
// three header rows (column titles and a horizontal rule) followed by one
// listing row per file-system object and a trailing horizontal-rule footer
// row. The parser slices exactly that window — all table rows minus the
// first three and the last one — and treats it as the defining structural
// assumption of the format. Handling other listing layouts is explicitly
// out of scope.
//
// Each listing row carries an icon cell followed by name, last-modified,
// size, and description cells. The anchor in the name cell supplies the
// entry name and link target; relative targets are resolved against the
// owning directory's URL. An entry whose resolved URL ends in "/" is a
// directory, everything else is a file.
//
// Design decision: We parse with goquery rather than walking x/net/html
// nodes by hand because the row window is defined by CSS-selector slicing
// ("table tr" minus headers and footer), which goquery expresses directly.
package listing

package mediatypes

import (
	"path/filepath"
	"sort"
	"strings"
)

// EntryType is the kind of a catalog or listing entry as it appears on the wire.
type EntryType string

const (
	// EntryTypeDirectory represents a directory.
	EntryTypeDirectory EntryType = "directory"
	// EntryTypeFile represents a recognized video file.
	EntryTypeFile EntryType = "file"
)

// ThumbnailExtension is appended to a video's relative path to form its
// thumbnail path.
const ThumbnailExtension = ".jpg"

// defaultVideoExtensions is the single allow-list shared by thumbnail
// generation, directory listings and the catalog.
var defaultVideoExtensions = []string{".mp4", ".mkv", ".webm", ".mov", ".avi", ".m4v"}

// MimeTypes maps file extensions to their MIME types.
var MimeTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",

	".mp4":  "video/mp4",
	".mkv":  "video/x-matroska",
	".avi":  "video/x-msvideo",
	".mov":  "video/quicktime",
	".webm": "video/webm",
	".m4v":  "video/x-m4v",
}

// ExtensionSet is a set of lowercase extensions including the leading dot.
type ExtensionSet map[string]bool

// DefaultVideoExtensions returns a fresh copy of the built-in video allow-list.
func DefaultVideoExtensions() ExtensionSet {
	set := make(ExtensionSet, len(defaultVideoExtensions))
	for _, ext := range defaultVideoExtensions {
		set[ext] = true
	}
	return set
}

// ParseExtensions parses a comma or space separated list such as
// "mp4, .MKV webm". Entries are lowercased and given a leading dot.
// An empty or blank list yields the default set.
func ParseExtensions(list string) ExtensionSet {
	fields := strings.FieldsFunc(list, func(r rune) bool {
		return r == ',' || r == ' ' || r == ';'
	})

	set := make(ExtensionSet, len(fields))
	for _, f := range fields {
		ext := strings.ToLower(strings.TrimSpace(f))
		if ext == "" || ext == "." {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		set[ext] = true
	}

	if len(set) == 0 {
		return DefaultVideoExtensions()
	}
	return set
}

// Match reports whether name carries one of the extensions in the set.
// The comparison is case-insensitive.
func (s ExtensionSet) Match(name string) bool {
	return s[strings.ToLower(filepath.Ext(name))]
}

// Sorted returns the extensions in lexical order.
func (s ExtensionSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for ext := range s {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

// String renders the set for logs and the config dump.
func (s ExtensionSet) String() string {
	return strings.Join(s.Sorted(), " ")
}

// IsHidden reports whether a directory entry name follows the dot-file
// convention.
func IsHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

// GetMimeType returns the MIME type for a given file extension.
// The extension should be lowercase and include the leading dot (e.g., ".mp4").
// Returns "application/octet-stream" if the extension is not recognized.
func GetMimeType(ext string) string {
	if mime, ok := MimeTypes[ext]; ok {
		return mime
	}
	return "application/octet-stream"
}

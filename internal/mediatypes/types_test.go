package mediatypes

import (
	"testing"
)

func TestDefaultVideoExtensions(t *testing.T) {
	exts := DefaultVideoExtensions()

	for _, ext := range []string{".mp4", ".mkv", ".webm", ".mov", ".avi", ".m4v"} {
		if !exts[ext] {
			t.Errorf("Expected %s in default allow-list", ext)
		}
	}

	if len(exts) != 6 {
		t.Errorf("Expected 6 default extensions, got %d (%s)", len(exts), exts)
	}
}

func TestDefaultVideoExtensionsIsACopy(t *testing.T) {
	a := DefaultVideoExtensions()
	a[".wmv"] = true

	if DefaultVideoExtensions()[".wmv"] {
		t.Error("Mutating a returned set should not change the defaults")
	}
}

func TestExtensionSetMatch(t *testing.T) {
	exts := DefaultVideoExtensions()

	tests := []struct {
		name string
		file string
		want bool
	}{
		{"MP4", "clip.mp4", true},
		{"Uppercase", "CLIP.MKV", true},
		{"Mixed case", "Trip.WebM", true},
		{"M4V", "old.m4v", true},
		{"Nested dots", "a.b.c.mov", true},
		{"Image", "poster.jpg", false},
		{"No extension", "README", false},
		{"Dotfile only", ".mp4", true},
		{"Suffix without dot", "mp4", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exts.Match(tt.file); got != tt.want {
				t.Errorf("Match(%q) = %v, want %v", tt.file, got, tt.want)
			}
		})
	}
}

func TestParseExtensions(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"Comma separated", "mp4,mkv", ".mkv .mp4"},
		{"Leading dots and case", ".MP4, .Mov", ".mov .mp4"},
		{"Spaces", "webm avi", ".avi .webm"},
		{"Duplicates collapse", "mp4,MP4,.mp4", ".mp4"},
		{"Empty falls back to defaults", "", ".avi .m4v .mkv .mov .mp4 .webm"},
		{"Only separators falls back", " , ; ", ".avi .m4v .mkv .mov .mp4 .webm"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseExtensions(tt.input).String(); got != tt.want {
				t.Errorf("ParseExtensions(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestIsHidden(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{".git", true},
		{".thumbs", true},
		{"video.mp4", false},
		{"a.hidden", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsHidden(tt.name); got != tt.want {
				t.Errorf("IsHidden(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestGetMimeType(t *testing.T) {
	tests := []struct {
		name string
		ext  string
		want string
	}{
		{"JPEG thumbnail", ".jpg", "image/jpeg"},
		{"MP4", ".mp4", "video/mp4"},
		{"MKV", ".mkv", "video/x-matroska"},
		{"WebM", ".webm", "video/webm"},
		{"Unknown", ".xyz", "application/octet-stream"},
		{"Empty", "", "application/octet-stream"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetMimeType(tt.ext); got != tt.want {
				t.Errorf("GetMimeType(%q) = %q, want %q", tt.ext, got, tt.want)
			}
		})
	}
}

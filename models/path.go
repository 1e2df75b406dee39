package models

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Path is an absolute filesystem path plus a captured mtime/size pair.
// Two Paths with the same absolute string but different captured times
// are different *versions* of the same file; equality uses only the
// string (see spec §3). Paths are values, freely copied.
type Path struct {
	abs   string
	mtime time.Time
	size  int64
}

// NewPath resolves p to an absolute path without touching the filesystem.
// The mtime/size fields stay zero; StatPath and Refreshed capture them.
func NewPath(p string) Path {
	abs, err := filepath.Abs(p)
	if err != nil {
		abs = p
	}
	return Path{abs: abs}
}

// StatPath resolves p to an absolute path and captures its current
// mtime/size from disk. A missing file yields a Path with a zero mtime.
func StatPath(p string) Path {
	path := NewPath(p)
	if info, err := os.Stat(path.abs); err == nil {
		path.mtime = info.ModTime()
		path.size = info.Size()
	}
	return path
}

// String returns the absolute path string.
func (p Path) String() string {
	return p.abs
}

// Mtime returns the mtime captured at construction time.
func (p Path) Mtime() time.Time {
	return p.mtime
}

// Size returns the size captured at construction time.
func (p Path) Size() int64 {
	return p.size
}

// Exists reports whether the path existed at capture time.
func (p Path) Exists() bool {
	return !p.mtime.IsZero() || p.size != 0
}

// Equal compares two Paths by their absolute string only, per spec §3 —
// deliberately ignoring mtime/size so stale and fresh versions of the
// same file are still "the same path" for map keys and set membership.
func (p Path) Equal(other Path) bool {
	return p.abs == other.abs
}

// Stale reports whether the on-disk mtime differs from the mtime this
// Path captured, i.e. invariant I3 has been violated for this version.
func (p Path) Stale() bool {
	info, err := os.Stat(p.abs)
	if err != nil {
		// Missing from disk counts as stale: the caller must re-parse
		// (and will find it gone) rather than trust old parsed data.
		return true
	}
	return !info.ModTime().Equal(p.mtime) || info.Size() != p.size
}

// Refreshed returns a new Path with mtime/size re-captured from disk.
func (p Path) Refreshed() Path {
	return StatPath(p.abs)
}

// Dir returns the absolute directory containing this path.
func (p Path) Dir() string {
	return filepath.Dir(p.abs)
}

// Ext returns the lower-cased file extension including the leading dot.
func (p Path) Ext() string {
	return strings.ToLower(filepath.Ext(p.abs))
}

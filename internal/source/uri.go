package source

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// Scheme selects the engine that serves a URI
type Scheme string

const (
	FileScheme  Scheme = "file"
	S3Scheme    Scheme = "s3"
	HTTPScheme  Scheme = "http"
	HTTPSScheme Scheme = "https"
)

func knownScheme(s Scheme) bool {
	switch s {
	case FileScheme, S3Scheme, HTTPScheme, HTTPSScheme:
		return true
	}
	return false
}

// URI locates a data or metadata file
type URI url.URL

// ParseURI parses location. Locations without a known scheme are local
// paths; a leading ~ expands to the home directory and relative paths are
// made absolute.
func ParseURI(location string) (*URI, error) {
	if location == "" {
		return nil, ErrEmptyLocation
	}
	u, err := url.Parse(location)
	if err == nil && knownScheme(Scheme(u.Scheme)) {
		if u.Scheme == string(FileScheme) && u.Host == "~" {
			return parseBarePath("~" + u.Path)
		}
		return (*URI)(u), nil
	}
	return parseBarePath(location)
}

func parseBarePath(path string) (*URI, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(home, path[1:])
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	return &URI{Scheme: string(FileScheme), Path: filepath.ToSlash(abs)}, nil
}

func (u URI) String() string {
	return (*url.URL)(&u).String()
}

// Scheme returns the scheme of u
func (u *URI) Scheme() Scheme {
	return Scheme(u.URL().Scheme)
}

// URL returns u as a *url.URL
func (u *URI) URL() *url.URL {
	return (*url.URL)(u)
}

// Filepath returns the local path of a file URI
func (u *URI) Filepath() string {
	return filepath.FromSlash(u.Path)
}

// Join appends path elements to u
func (u *URI) Join(elem ...string) *URI {
	out := *u
	parts := append([]string{strings.TrimSuffix(out.Path, "/")}, elem...)
	out.Path = strings.Join(parts, "/")
	return &out
}

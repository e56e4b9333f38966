package domain

import "net/url"

// SourceKind tags the variant held by an AudioSource.
type SourceKind int

const (
	// SourceLocal is a file name resolved against the configured audio directory.
	SourceLocal SourceKind = iota + 1
	// SourceRemote is an absolute URL.
	SourceRemote
)

func (k SourceKind) String() string {
	switch k {
	case SourceLocal:
		return "local"
	case SourceRemote:
		return "remote"
	default:
		return "unknown"
	}
}

// AudioSource is either a local file name or a remote URL.
// The zero value is not a valid source.
type AudioSource struct {
	kind     SourceKind
	fileName string
	url      *url.URL
}

// LocalSource returns a source that refers to a bundled audio file.
func LocalSource(fileName string) AudioSource {
	return AudioSource{kind: SourceLocal, fileName: fileName}
}

// RemoteSource returns a source that refers to a URL.
func RemoteSource(u *url.URL) AudioSource {
	return AudioSource{kind: SourceRemote, url: u}
}

// Kind returns which variant the source holds.
func (s AudioSource) Kind() SourceKind {
	return s.kind
}

// FileName returns the local file name, or "" for remote sources.
func (s AudioSource) FileName() string {
	return s.fileName
}

// URL returns the remote URL, or nil for local sources.
func (s AudioSource) URL() *url.URL {
	return s.url
}

// IsZero reports whether the source was never set.
func (s AudioSource) IsZero() bool {
	return s.kind == 0
}

func (s AudioSource) String() string {
	switch s.kind {
	case SourceLocal:
		return s.fileName
	case SourceRemote:
		if s.url == nil {
			return ""
		}
		return s.url.String()
	default:
		return ""
	}
}

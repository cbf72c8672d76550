package domain

import "time"

// Dependency is a declared edge target of a source item.
type Dependency struct {
	Target NodeID
	Kind   EdgeKind
}

// SourceItem is one raw input enumerated by the source walker.
type SourceItem struct {
	ID      NodeID
	Kind    NodeKind
	Path    string
	Content []byte
	Config  map[string]string
	Deps    []Dependency
	Size    int64
	ModTime time.Time
}

// FingerprintRecord is the persisted self fingerprint of a source file, used to
// skip rehashing files a change set reports as untouched.
type FingerprintRecord struct {
	Node    NodeID
	Path    string
	Size    int64
	ModTime time.Time
	Self    Fingerprint
}

// SearchDocument is the notification sent to the search indexer after a
// document job succeeds or a document disappears.
type SearchDocument struct {
	ID      NodeID `json:"id"`
	URL     string `json:"url"`
	Title   string `json:"title,omitempty"`
	Summary string `json:"summary,omitempty"`
	Content string `json:"content,omitempty"`
	// Checksum is the combined fingerprint of the build that produced the document.
	Checksum string `json:"checksum,omitempty"`
	Deleted  bool   `json:"deleted"`
}

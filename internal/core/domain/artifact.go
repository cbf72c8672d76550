package domain

import (
	"maps"
	"time"
)

// Well-known artifact metadata keys.
const (
	MetaHashedPath = "hashed_path"
	MetaOutputPath = "output_path"
	MetaSummary    = "summary"
	MetaWordCount  = "word_count"
	MetaCharCount  = "char_count"
	MetaTitle      = "title"
	MetaDraft      = "draft"
	MetaURL        = "url"
	// MetaRedirectTo marks a document published as a redirect to another URL.
	MetaRedirectTo = "redirect_to"
	// MetaText is the plain text of a rendered document, fed to the search index.
	MetaText = "text"
)

// Artifact is the serialized result of building one node. It is the payload
// of a cache entry and is immutable once stored.
type Artifact struct {
	Node      NodeID            `cbor:"node"`
	Kind      NodeKind          `cbor:"kind"`
	MediaType string            `cbor:"media_type"`
	Content   []byte            `cbor:"content"`
	Meta      map[string]string `cbor:"meta,omitempty"`
	// Outputs holds named extra outputs, e.g. precompressed variants or
	// plugin write_output results.
	Outputs map[string][]byte `cbor:"outputs,omitempty"`
}

// Size approximates the memory held by the artifact.
func (a *Artifact) Size() int64 {
	n := int64(len(a.Content) + len(a.MediaType))
	for k, v := range a.Meta {
		n += int64(len(k) + len(v))
	}
	for k, v := range a.Outputs {
		n += int64(len(k) + len(v))
	}
	return n
}

// Clone returns a deep copy so that callers cannot mutate a cached value.
func (a Artifact) Clone() Artifact {
	c := a
	c.Content = append([]byte(nil), a.Content...)
	c.Meta = maps.Clone(a.Meta)
	if a.Outputs != nil {
		c.Outputs = make(map[string][]byte, len(a.Outputs))
		for k, v := range a.Outputs {
			c.Outputs[k] = append([]byte(nil), v...)
		}
	}
	return c
}

// MetaValue returns a metadata value or the empty string.
func (a *Artifact) MetaValue(key string) string {
	if a.Meta == nil {
		return ""
	}
	return a.Meta[key]
}

// BuildInfo identifies the build pass running a job.
type BuildInfo struct {
	ID   string
	Time time.Time
}

// BuildRequest is the input of a node handler.
type BuildRequest struct {
	Node     Node
	Source   []byte
	Deps     map[NodeID]Artifact
	Refs     []NodeID
	Backrefs []NodeID
	// Build is not part of the node fingerprint. A cached artifact keeps the
	// build info of the pass that rendered it.
	Build BuildInfo
}

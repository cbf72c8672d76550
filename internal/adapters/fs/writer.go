package fs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/press/internal/adapters/codec"
	"go.trai.ch/press/internal/core/domain"
	"go.trai.ch/press/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.OutputWriter = (*OutputWriter)(nil)

const (
	outputDirPerm  = 0o755
	outputFilePerm = 0o644
)

// OutputWriter materializes artifacts under the output directory. It records
// which files each node produced so that the files of removed nodes, and files
// a node stopped producing, can be deleted.
type OutputWriter struct {
	root         string
	manifestPath string
	logger       ports.Logger

	mu      sync.Mutex
	outputs map[string][]string
	dirty   bool
}

// NewOutputWriter opens the writer, loading the manifest of a previous build if present.
func NewOutputWriter(root, manifestPath string, logger ports.Logger) (*OutputWriter, error) {
	if err := os.MkdirAll(root, outputDirPerm); err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrIO, err.Error()), "path", root)
	}
	w := &OutputWriter{
		root:         root,
		manifestPath: manifestPath,
		logger:       logger,
		outputs:      make(map[string][]string),
	}
	data, err := os.ReadFile(manifestPath) //nolint:gosec // Path comes from site configuration
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, zerr.With(zerr.Wrap(domain.ErrIO, err.Error()), "path", manifestPath)
	default:
		if err := codec.Unmarshal(data, &w.outputs); err != nil {
			logger.Warn("ignoring unreadable output manifest", "path", manifestPath, "error", err.Error())
			w.outputs = make(map[string][]string)
		}
	}
	return w, nil
}

// Write writes the primary output and every named extra output of the
// artifact. Files whose content is already on disk are left untouched.
func (w *OutputWriter) Write(ctx context.Context, artifact domain.Artifact, fresh bool) error {
	files := ArtifactFiles(artifact)
	names := make([]string, 0, len(files))
	for rel := range files {
		names = append(names, rel)
	}
	slices.Sort(names)

	written := 0
	for _, rel := range names {
		if err := ctx.Err(); err != nil {
			return zerr.Wrap(domain.ErrBuildCancelled, err.Error())
		}
		changed, err := w.writeFile(rel, files[rel])
		if err != nil {
			return zerr.With(err, "node", artifact.Node.String())
		}
		if changed {
			written++
		}
	}

	w.mu.Lock()
	id := artifact.Node.String()
	stale := difference(w.outputs[id], names)
	if len(names) == 0 {
		delete(w.outputs, id)
	} else {
		w.outputs[id] = names
	}
	w.dirty = true
	w.mu.Unlock()

	for _, rel := range stale {
		w.removeFile(rel)
	}
	if written > 0 {
		w.logger.Debug("outputs written", "node", id, "files", written, "fresh", fresh)
	}
	return nil
}

// Remove deletes every file recorded for id.
func (w *OutputWriter) Remove(_ context.Context, id domain.NodeID) error {
	w.mu.Lock()
	files, ok := w.outputs[id.String()]
	delete(w.outputs, id.String())
	w.dirty = w.dirty || ok
	w.mu.Unlock()

	for _, rel := range files {
		w.removeFile(rel)
	}
	if ok {
		w.logger.Debug("outputs removed", "node", id.String(), "files", len(files))
	}
	return nil
}

// Known lists the nodes with recorded outputs.
func (w *OutputWriter) Known() []domain.NodeID {
	w.mu.Lock()
	defer w.mu.Unlock()
	ids := make([]domain.NodeID, 0, len(w.outputs))
	for id := range w.outputs {
		ids = append(ids, domain.NewNodeID(id))
	}
	slices.SortFunc(ids, domain.NodeID.Compare)
	return ids
}

// Flush persists the manifest if it changed.
func (w *OutputWriter) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.dirty {
		return nil
	}
	data, err := codec.Marshal(w.outputs)
	if err != nil {
		return zerr.Wrap(err, "failed to encode output manifest")
	}
	if err := writeAtomic(w.manifestPath, data, 0o600); err != nil {
		return err
	}
	w.dirty = false
	return nil
}

func (w *OutputWriter) writeFile(rel string, data []byte) (bool, error) {
	local := filepath.FromSlash(rel)
	if !filepath.IsLocal(local) {
		return false, zerr.With(zerr.Wrap(domain.ErrIO, "output path escapes output directory"), "path", rel)
	}
	dst := filepath.Join(w.root, local)
	if unchanged(dst, data) {
		return false, nil
	}
	if err := writeAtomic(dst, data, outputFilePerm); err != nil {
		return false, err
	}
	return true, nil
}

func (w *OutputWriter) removeFile(rel string) {
	local := filepath.FromSlash(rel)
	if !filepath.IsLocal(local) {
		return
	}
	dst := filepath.Join(w.root, local)
	if err := os.Remove(dst); err != nil && !errors.Is(err, os.ErrNotExist) {
		w.logger.Warn("failed to remove output", "path", dst, "error", err.Error())
		return
	}
	// Drop directories left empty, stopping at the output root.
	for dir := filepath.Dir(dst); dir != w.root && len(dir) > len(w.root); dir = filepath.Dir(dir) {
		if os.Remove(dir) != nil {
			break
		}
	}
}

// ArtifactFiles maps output-relative paths to the bytes an artifact produces.
// Artifacts without an output path (templates, drafts) produce only their
// named extra outputs.
func ArtifactFiles(a domain.Artifact) map[string][]byte {
	files := make(map[string][]byte, len(a.Outputs)+1)
	for name, data := range a.Outputs {
		files[name] = data
	}
	if p := a.MetaValue(domain.MetaOutputPath); p != "" {
		files[p] = a.Content
	}
	return files
}

// unchanged reports whether dst already holds data.
func unchanged(dst string, data []byte) bool {
	info, err := os.Stat(dst)
	if err != nil || !info.Mode().IsRegular() || info.Size() != int64(len(data)) {
		return false
	}
	sum, err := ComputeFileHash(dst)
	return err == nil && sum == xxhash.Sum64(data)
}

func writeAtomic(dst string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(dst)
	if err := os.MkdirAll(dir, outputDirPerm); err != nil {
		return zerr.With(zerr.Wrap(domain.ErrIO, err.Error()), "path", dir)
	}
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return zerr.With(zerr.Wrap(domain.ErrIO, err.Error()), "path", dst)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // Already renamed on success

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return zerr.With(zerr.Wrap(domain.ErrIO, err.Error()), "path", dst)
	}
	if err := tmp.Chmod(perm); err != nil {
		_ = tmp.Close()
		return zerr.With(zerr.Wrap(domain.ErrIO, err.Error()), "path", dst)
	}
	if err := tmp.Close(); err != nil {
		return zerr.With(zerr.Wrap(domain.ErrIO, err.Error()), "path", dst)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return zerr.With(zerr.Wrap(domain.ErrIO, err.Error()), "path", dst)
	}
	return nil
}

func difference(prev, next []string) []string {
	var out []string
	for _, p := range prev {
		if !slices.Contains(next, p) {
			out = append(out, p)
		}
	}
	return out
}

// Package artifact manages the per-request files produced by the extractor.
//
// Every request gets its own scratch directory under the workspace root. The
// extractor writes the artifact (and whatever partial files it needs) there,
// and Release removes the directory as a whole.
package artifact

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	namePrefix = "vid_"
	nameExt    = ".mp4"
	dirPrefix  = "req-"
)

// Namer returns the file name for a new artifact.
type Namer func() string

// TimestampNamer names artifacts vid_<unix>_<random>.mp4. The random suffix keeps
// requests that start within the same second apart.
func TimestampNamer(now func() time.Time) Namer {
	return func() string {
		suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
		return fmt.Sprintf("%s%d_%s%s", namePrefix, now().Unix(), suffix, nameExt)
	}
}

// Artifact is one downloaded file scoped to a single request.
type Artifact struct {
	// Name is the file name offered to the client.
	Name string
	// Path is where the extractor must write the file.
	Path string
	// Dir is the scratch directory removed on Release.
	Dir string

	once       sync.Once
	releaseErr error
}

// Stat reports the artifact file info. A missing file yields an error satisfying os.IsNotExist.
func (a *Artifact) Stat() (os.FileInfo, error) {
	return os.Stat(a.Path)
}

// Open opens the artifact for reading and returns its size.
func (a *Artifact) Open() (*os.File, int64, error) {
	f, err := os.Open(a.Path)
	if err != nil {
		return nil, 0, fmt.Errorf("open artifact: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, fmt.Errorf("stat artifact: %w", err)
	}
	return f, info.Size(), nil
}

// Release deletes the scratch directory. Only the first call does any work;
// later calls return the first result.
func (a *Artifact) Release() error {
	a.once.Do(func() {
		if err := os.RemoveAll(a.Dir); err != nil {
			a.releaseErr = fmt.Errorf("remove %s: %w", a.Dir, err)
		}
	})
	return a.releaseErr
}

// Workspace owns the root directory that scratch directories are created in.
type Workspace struct {
	root  string
	namer Namer
}

// NewWorkspace creates root if needed. A nil namer selects TimestampNamer(time.Now).
func NewWorkspace(root string, namer Namer) (*Workspace, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create work dir: %w", err)
	}
	if namer == nil {
		namer = TimestampNamer(time.Now)
	}
	return &Workspace{root: root, namer: namer}, nil
}

// Root returns the workspace root directory.
func (w *Workspace) Root() string {
	return w.root
}

// New allocates a fresh scratch directory and the artifact path inside it.
// The file itself is not created.
func (w *Workspace) New() (*Artifact, error) {
	dir := filepath.Join(w.root, dirPrefix+uuid.NewString())
	if err := os.Mkdir(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create scratch dir: %w", err)
	}

	name := w.namer()
	return &Artifact{
		Name: name,
		Path: filepath.Join(dir, name),
		Dir:  dir,
	}, nil
}

// Sweep removes scratch directories last modified more than maxAge ago. These are
// left behind only when the process dies between New and Release.
func (w *Workspace) Sweep(maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(w.root)
	if err != nil {
		return 0, fmt.Errorf("read work dir: %w", err)
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, e := range entries {
		if !e.IsDir() || !strings.HasPrefix(e.Name(), dirPrefix) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(w.root, e.Name())
		if err := os.RemoveAll(path); err != nil {
			slog.Warn("sweep scratch dir", "path", path, "error", err)
			continue
		}
		removed++
	}
	return removed, nil
}

// CheckWritable verifies that files can be created in the workspace root.
func (w *Workspace) CheckWritable() error {
	f, err := os.CreateTemp(w.root, ".probe-*")
	if err != nil {
		return fmt.Errorf("work dir not writable: %w", err)
	}
	name := f.Name()
	f.Close()
	return os.Remove(name)
}

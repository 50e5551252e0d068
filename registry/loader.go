package registry

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/go-faster/errors"
	"github.com/samber/lo"
)

// ErrNotFound is returned by loaders for names they do not know.
var ErrNotFound = errors.New("schema not found")

// Loader fetches the raw schema document registered under a name.
type Loader interface {
	Load(ctx context.Context, name string) ([]byte, error)
}

// DirLoader serves schema documents from a directory. A name resolves to the
// first existing file among <name>.json, <name>.yaml and <name>.yml.
type DirLoader struct {
	Dir string
}

var extensions = []string{".json", ".yaml", ".yml"}

func (d DirLoader) Load(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !validName(name) {
		return nil, errors.Wrapf(ErrNotFound, "invalid name %q", name)
	}
	for _, ext := range extensions {
		data, err := os.ReadFile(filepath.Join(d.Dir, name+ext))
		if err == nil {
			return data, nil
		}
		if !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "read schema %q", name)
		}
	}
	return nil, errors.Wrapf(ErrNotFound, "%q in %s", name, d.Dir)
}

// Names lists the schema names available in the directory.
func (d DirLoader) Names() ([]string, error) {
	entries, err := os.ReadDir(d.Dir)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if !lo.Contains(extensions, ext) {
			continue
		}
		name := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		if !seen[name] && validName(name) {
			seen[name] = true
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out, nil
}

// validName rejects names that would escape the directory.
func validName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, `/\`) && !strings.Contains(name, "..")
}

// MemLoader serves schema documents held in memory.
type MemLoader struct {
	mtx  sync.RWMutex
	docs map[string][]byte
}

func NewMemLoader() *MemLoader {
	return &MemLoader{docs: make(map[string][]byte)}
}

// Put stores or replaces the document for name.
func (m *MemLoader) Put(name string, doc []byte) {
	cp := make([]byte, len(doc))
	copy(cp, doc)
	m.mtx.Lock()
	m.docs[name] = cp
	m.mtx.Unlock()
}

func (m *MemLoader) Load(_ context.Context, name string) ([]byte, error) {
	m.mtx.RLock()
	defer m.mtx.RUnlock()
	doc, ok := m.docs[name]
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "%q", name)
	}
	return doc, nil
}

// Names lists the stored schema names.
func (m *MemLoader) Names() ([]string, error) {
	m.mtx.RLock()
	defer m.mtx.RUnlock()
	out := lo.Keys(m.docs)
	sort.Strings(out)
	return out, nil
}

// Package registry keeps compiled validators addressable by name. Documents
// are fetched from a Loader on every lookup and fingerprinted with BLAKE3, so
// an edited schema is recompiled on its next use while unchanged ones are
// served from an LRU cache.
package registry

import (
	"context"
	"encoding/hex"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	lru "github.com/hashicorp/golang-lru/v2/simplelru"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/singleflight"
	"lukechampine.com/blake3"

	"github.com/reoring/skemac/compiler"
	"github.com/reoring/skemac/jsonschema"
)

// DefaultSize is the cache capacity used when Config.Size is not positive.
const DefaultSize = 128

// Config sizes the cache and sets the options every schema is compiled with.
type Config struct {
	// Size is the maximum number of compiled validators kept in memory.
	Size int
	// Options are passed to compiler.Compile for every schema.
	Options compiler.Options
}

// Entry is a compiled schema together with the digest of its source document.
type Entry struct {
	Name      string
	Digest    [32]byte
	Validator *compiler.Validator
	Compiled  time.Time
}

// DigestHex renders the digest in hexadecimal, suitable for an ETag.
func (e *Entry) DigestHex() string { return hex.EncodeToString(e.Digest[:]) }

// Digest fingerprints a schema document.
func Digest(doc []byte) [32]byte { return blake3.Sum256(doc) }

// Registry resolves schema names to compiled validators through a Loader and
// keeps the most recently used ones. It is safe for concurrent use.
type Registry struct {
	mtx sync.Mutex
	lru *lru.LRU[string, *Entry]

	loader Loader
	opts   compiler.Options
	logger log.Logger
	group  singleflight.Group

	metrics *metrics
}

// New creates a registry backed by loader. reg may be nil to skip metric
// registration.
func New(loader Loader, cfg Config, logger log.Logger, reg prometheus.Registerer) (*Registry, error) {
	if loader == nil {
		return nil, errors.New("registry: nil loader")
	}
	if logger == nil {
		logger = log.NewNopLogger()
	}
	size := cfg.Size
	if size <= 0 {
		size = DefaultSize
	}
	r := &Registry{
		loader:  loader,
		opts:    cfg.Options,
		logger:  logger,
		metrics: newMetrics(reg),
	}
	l, err := lru.NewLRU[string, *Entry](size, nil)
	if err != nil {
		return nil, err
	}
	r.lru = l
	level.Info(logger).Log("msg", "created schema registry", "size", size)
	return r, nil
}

// Get returns the compiled validator for name, compiling the document when it
// is not cached or changed since it was compiled. Concurrent lookups of the
// same document share one compilation.
func (r *Registry) Get(ctx context.Context, name string) (*Entry, error) {
	doc, err := r.loader.Load(ctx, name)
	if err != nil {
		r.metrics.lookups.WithLabelValues(resultError).Inc()
		return nil, err
	}
	digest := Digest(doc)

	r.mtx.Lock()
	cached, ok := r.lru.Get(name)
	r.mtx.Unlock()
	if ok && cached.Digest == digest {
		r.metrics.lookups.WithLabelValues(resultHit).Inc()
		return cached, nil
	}

	v, err, _ := r.group.Do(name+"@"+hex.EncodeToString(digest[:]), func() (any, error) {
		return r.compile(name, doc, digest)
	})
	if err != nil {
		r.metrics.lookups.WithLabelValues(resultError).Inc()
		return nil, err
	}
	if ok {
		r.metrics.lookups.WithLabelValues(resultStale).Inc()
	} else {
		r.metrics.lookups.WithLabelValues(resultMiss).Inc()
	}
	return v.(*Entry), nil
}

func (r *Registry) compile(name string, doc []byte, digest [32]byte) (*Entry, error) {
	start := time.Now()
	s, err := jsonschema.ParseDocument(doc)
	if err != nil {
		return nil, errors.Wrapf(err, "schema %q", name)
	}
	v, err := compiler.Compile(s, r.opts)
	if err != nil {
		return nil, errors.Wrapf(err, "schema %q", name)
	}
	elapsed := time.Since(start)
	r.metrics.compileDuration.Observe(elapsed.Seconds())

	e := &Entry{Name: name, Digest: digest, Validator: v, Compiled: time.Now()}
	r.mtx.Lock()
	if r.lru.Add(name, e) {
		r.metrics.evictions.Inc()
	}
	r.metrics.entries.Set(float64(r.lru.Len()))
	r.mtx.Unlock()

	level.Debug(r.logger).Log("msg", "compiled schema", "name", name, "digest", e.DigestHex()[:16], "duration", elapsed)
	return e, nil
}

// Invalidate drops the cached validator for name and reports whether one was
// present.
func (r *Registry) Invalidate(name string) bool {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	ok := r.lru.Remove(name)
	r.metrics.entries.Set(float64(r.lru.Len()))
	return ok
}

// Len returns the number of cached validators.
func (r *Registry) Len() int {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	return r.lru.Len()
}

// Names lists the schemas the loader can serve, when it supports listing.
func (r *Registry) Names() ([]string, error) {
	l, ok := r.loader.(interface{ Names() ([]string, error) })
	if !ok {
		return nil, errors.New("registry: loader cannot list schemas")
	}
	return l.Names()
}

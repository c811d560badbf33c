package sonar

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/apex/log"
	"github.com/spf13/afero"
)

// NowFunc defines a function that returns the current time.
type NowFunc func() time.Time

// Hook transforms compiled output before the final write. Registered hooks
// run after a successful compile and may rewrite the text freely.
type Hook func(compiled string) string

// Pipeline ties the normalizer, validator, adapter, record store and output
// writer together for one destination root.
type Pipeline struct {
	cfg      Config
	fs       afero.Fs
	store    RecordStore
	registry *Registry
	adapter  Adapter
	hook     Hook
	authz    Authorizer
	notifier Notifier
	log      log.Interface
	nowFunc  NowFunc

	mu    sync.Mutex
	locks map[string]*sync.Mutex // per-key compile locks
}

// Option defines a function that configures a Pipeline.
type Option func(*Pipeline)

// New creates a pipeline for cfg. The destination root is created if it
// does not exist. With no explicit store a FileStore under
// <DestRoot>/records is used; with no explicit adapter the one named by
// cfg.Backend is resolved from the registry, falling back to the failing
// Unconfigured adapter.
func New(cfg Config, options ...Option) (*Pipeline, error) {
	p := &Pipeline{
		cfg:      cfg,
		fs:       afero.NewOsFs(),
		nowFunc:  time.Now,
		authz:    denyAll{},
		notifier: nopNotifier{},
		log:      log.Log,
		locks:    make(map[string]*sync.Mutex),
	}

	// Apply options
	for _, option := range options {
		option(p)
	}

	if err := p.fs.MkdirAll(cfg.DestRoot, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create destination root: %w", err)
	}

	if p.store == nil {
		store, err := NewFileStore(p.fs, filepath.Join(cfg.DestRoot, "records"))
		if err != nil {
			return nil, err
		}
		p.store = store
	}

	if p.adapter == nil {
		p.adapter = Unconfigured()
		if p.registry != nil {
			if a, ok := p.registry.Lookup(cfg.Backend); ok {
				p.adapter = a
			}
		}
	}

	return p, nil
}

// WithFs sets a custom filesystem for the pipeline.
// This is primarily useful for testing with in-memory filesystems.
func WithFs(fs afero.Fs) Option {
	return func(p *Pipeline) {
		p.fs = fs
	}
}

// WithNowFunc sets a custom time function for the pipeline.
// This is primarily useful for testing with deterministic timestamps.
func WithNowFunc(nowFunc NowFunc) Option {
	return func(p *Pipeline) {
		p.nowFunc = nowFunc
	}
}

// WithLogger sets the log sink for the pipeline.
func WithLogger(logger log.Interface) Option {
	return func(p *Pipeline) {
		p.log = logger
	}
}

// WithStore sets the record store, replacing the default file-backed one.
func WithStore(store RecordStore) Option {
	return func(p *Pipeline) {
		p.store = store
	}
}

// WithRegistry sets the adapter registry the configured backend is
// resolved from.
func WithRegistry(registry *Registry) Option {
	return func(p *Pipeline) {
		p.registry = registry
	}
}

// WithAdapter pins a concrete adapter, bypassing registry resolution.
func WithAdapter(adapter Adapter) Option {
	return func(p *Pipeline) {
		p.adapter = adapter
	}
}

// WithHook registers a post-compile hook.
func WithHook(hook Hook) Option {
	return func(p *Pipeline) {
		p.hook = hook
	}
}

// WithAuthorizer sets the privilege check for error reporting.
func WithAuthorizer(authz Authorizer) Option {
	return func(p *Pipeline) {
		p.authz = authz
	}
}

// WithNotifier sets the operator notice sink for error reporting.
func WithNotifier(notifier Notifier) Option {
	return func(p *Pipeline) {
		p.notifier = notifier
	}
}

// themeDir returns the output directory for a theme.
func (p *Pipeline) themeDir(theme string) string {
	return filepath.Join(p.cfg.DestRoot, theme)
}

// outputPath returns the artifact location for a key within a theme.
func (p *Pipeline) outputPath(theme, key string) string {
	return filepath.Join(p.themeDir(theme), key+".css")
}

// tempPath returns the temporary source file for one compile attempt. The
// timestamp component keeps concurrent attempts on the same key from
// colliding.
func (p *Pipeline) tempPath(theme, key string, startedAt time.Time) string {
	return filepath.Join(p.themeDir(theme), fmt.Sprintf("tmp.%s.%d.scss", key, startedAt.UnixNano()))
}

// keyLock returns the mutex serializing compiles of one key.
func (p *Pipeline) keyLock(key string) *sync.Mutex {
	p.mu.Lock()
	defer p.mu.Unlock()
	lock, ok := p.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		p.locks[key] = lock
	}
	return lock
}

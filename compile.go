package sonar

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/afero"
)

// compileState tracks the orchestration progress of one request.
type compileState int

const (
	stateUnchecked compileState = iota
	stateValidating
	stateSkip
	stateCompiling
	stateCommitted
	stateFailed
)

// String implements fmt.Stringer.
func (s compileState) String() string {
	switch s {
	case stateUnchecked:
		return "unchecked"
	case stateValidating:
		return "validating"
	case stateSkip:
		return "skip"
	case stateCompiling:
		return "compiling"
	case stateCommitted:
		return "committed"
	case stateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

func allowedTransition(from, to compileState) bool {
	switch from {
	case stateUnchecked:
		return to == stateValidating
	case stateValidating:
		return to == stateSkip || to == stateCompiling || to == stateFailed
	case stateCompiling:
		return to == stateCommitted || to == stateFailed
	default:
		return false
	}
}

// compileContext is the per-request context threaded through the pipeline
// stages. Everything but state is fixed at construction.
type compileContext struct {
	req        Request
	key        string
	outputPath string
	startedAt  time.Time
	state      compileState
}

// transition advances the state machine, panicking on a disallowed edge.
// Transitions are driven entirely by Compile, so a bad edge is a
// programming error, not an input error.
func (cc *compileContext) transition(to compileState) {
	if !allowedTransition(cc.state, to) {
		panic(fmt.Sprintf("invalid compile transition %s -> %s", cc.state, to))
	}
	cc.state = to
}

// Artifact is a handle to compiled output.
type Artifact struct {
	// Key is the cache key the artifact is stored under.
	Key string

	// Path is the artifact location under the destination root.
	Path string

	// Fresh is true when this request produced the content, false when a
	// previously compiled file is being served.
	Fresh bool
}

// Compile runs the cache-validation and regeneration protocol for one
// request: compute the key, decide staleness, and when stale normalize the
// fragments, invoke the backend and commit the result.
//
// Compile never propagates a fault to the rendering caller. On failure the
// error is reported through the authorizer/notifier pair and the returned
// artifact points at the existing (possibly stale) output when one exists;
// when nothing servable exists the error also wraps ErrNoArtifact.
//
// Compiles of the same key are serialized by a per-key lock, so concurrent
// requests cannot interleave partial writes on one output path.
func (p *Pipeline) Compile(ctx context.Context, req Request) (*Artifact, error) {
	key := req.Key()
	cc := &compileContext{
		req:        req,
		key:        key,
		outputPath: p.outputPath(req.Theme, key),
		startedAt:  p.nowFunc(),
	}

	lock := p.keyLock(key)
	lock.Lock()
	defer lock.Unlock()

	cc.transition(stateValidating)

	if err := ValidateFragments(p.fs, req.Fragments); err != nil {
		cc.transition(stateFailed)
		return p.fail(cc, err)
	}

	stale, err := p.needsRecompile(key, cc.outputPath, req.Fragments)
	if err != nil {
		cc.transition(stateFailed)
		return p.fail(cc, err)
	}
	if !stale {
		cc.transition(stateSkip)
		return &Artifact{Key: key, Path: cc.outputPath}, nil
	}

	cc.transition(stateCompiling)
	if err := p.runCompile(ctx, cc); err != nil {
		cc.transition(stateFailed)
		return p.fail(cc, err)
	}

	cc.transition(stateCommitted)
	return &Artifact{Key: key, Path: cc.outputPath, Fresh: true}, nil
}

// runCompile performs the Compiling stage: destination directory, temp
// source file, backend invocation, hook, final write and record update.
func (p *Pipeline) runCompile(ctx context.Context, cc *compileContext) error {
	source, err := p.Normalize(cc.req.Fragments)
	if err != nil {
		return err
	}

	dir := p.themeDir(cc.req.Theme)
	if err := p.fs.MkdirAll(dir, 0o755); err != nil {
		return pipelineErrorf(ErrDirectory, err, "create %s", dir)
	}

	// The temp file exists for backend compatibility and debuggability; the
	// backend is handed the in-memory source. A leftover temp file from a
	// prior failed run is simply overwritten on its next timestamp.
	tmp := p.tempPath(cc.req.Theme, cc.key, cc.startedAt)
	if err := afero.WriteFile(p.fs, tmp, []byte(source), 0o644); err != nil {
		return pipelineErrorf(ErrTempWrite, err, "write %s", tmp)
	}

	if p.cfg.Debug {
		p.log.WithField("key", cc.key).
			WithField("request", spew.Sdump(cc.req)).
			Debugf("normalized source:\n%s", source)
	}

	compiled, err := p.adapter.Compile(ctx, source)
	if err != nil {
		return pipelineErrorf(ErrCompile, err, "backend %s", p.adapter.Name())
	}

	if err := p.fs.Remove(tmp); err != nil {
		p.log.WithError(err).Warnf("could not remove temp file %s", tmp)
	}

	if p.hook != nil {
		compiled = p.hook(compiled)
	}

	if p.cfg.Debug {
		p.log.WithField("key", cc.key).Debugf("compiled output:\n%s", compiled)
	}

	if err := afero.WriteFile(p.fs, cc.outputPath, []byte(compiled), 0o644); err != nil {
		return fmt.Errorf("failed to write artifact %s: %w", cc.outputPath, err)
	}

	rec := Record{
		Key:            cc.key,
		LastCompiledAt: p.nowFunc(),
		OutputDigest:   contentDigest([]byte(compiled)),
	}
	if err := p.store.Set(rec); err != nil {
		return fmt.Errorf("failed to update cache record %s: %w", cc.key, err)
	}
	return nil
}

// fail reports err and falls back to whatever artifact already exists at
// the output path. The cache record is left untouched.
func (p *Pipeline) fail(cc *compileContext, err error) (*Artifact, error) {
	p.report(err)
	if exists, _ := afero.Exists(p.fs, cc.outputPath); exists {
		return &Artifact{Key: cc.key, Path: cc.outputPath}, err
	}
	return nil, errors.Join(ErrNoArtifact, err)
}

// Invalidate drops the cache record and the artifact for a request's key,
// forcing the next Compile to regenerate. This is the explicit cache clear
// live mode relies on to pick up source edits.
func (p *Pipeline) Invalidate(req Request) error {
	key := req.Key()
	lock := p.keyLock(key)
	lock.Lock()
	defer lock.Unlock()

	if err := p.store.Delete(key); err != nil {
		return err
	}
	out := p.outputPath(req.Theme, key)
	exists, err := afero.Exists(p.fs, out)
	if err != nil {
		return fmt.Errorf("failed to check artifact %s: %w", out, err)
	}
	if !exists {
		return nil
	}
	if err := p.fs.Remove(out); err != nil {
		return fmt.Errorf("failed to remove artifact %s: %w", out, err)
	}
	return nil
}

/*
Package sonar provides a build cache for stylesheet preprocessing pipelines.

Given an ordered set of source fragments, sonar decides whether a previously
compiled, aggregated output file is still valid and, if not, regenerates it
through a pluggable compiler backend.

# Overview

sonar sits between a page-rendering host and a stylesheet compiler. Each
request carries a theme discriminator and an ordered list of fragments —
inline snippets or references to source files. The pipeline derives a
deterministic cache key from the theme and the fragment identifiers, checks
whether the compiled artifact for that key is stale, and only invokes the
compiler backend when it is.

Keys are deliberately content-insensitive: editing a referenced file does
not change the key, it only makes the existing artifact stale. Staleness is
detected by comparing source modification times against the last recorded
compile, which keeps key computation cheap on every page load.

# Basic Usage

Creating a pipeline and compiling a request:

	registry := sonar.NewRegistry()
	registry.Register(myScssBackend)

	cfg := sonar.DefaultConfig()
	cfg.DestRoot = "public/sonar"
	cfg.Backend = "dart-sass"

	pipeline, err := sonar.New(cfg, sonar.WithRegistry(registry))
	if err != nil {
	    log.Fatalf("failed to create pipeline: %v", err)
	}

	artifact, err := pipeline.Compile(ctx, sonar.Request{
	    Theme: "bartik",
	    Fragments: []sonar.Fragment{
	        sonar.FileFragment("base", "/themes/bartik/base.scss"),
	        sonar.InlineFragment("overrides", "$accent: #b00;"),
	    },
	})

A non-nil artifact is always servable: either freshly compiled output or a
previously committed file. Compile never panics across the API boundary and
never propagates a backend fault to the caller; failures are reported
through the configured Authorizer/Notifier pair and the caller falls back
to whatever exists.

# Staleness Policy

A request recompiles when the output file is missing, when no cache record
exists for the key, or — outside live mode — when any referenced source
file was modified after the last recorded compile. In live mode an existing
artifact with a record is trusted unconditionally; picking up source edits
then requires an explicit Invalidate or a store clear.

# Backends

Compiler backends implement the Adapter interface and are registered by
name at startup. When no backend is configured, a fallback adapter reports
ErrNoBackend on every compile so the system degrades gracefully.

# File Layout

Artifacts and bookkeeping live under the configured destination root:

	public/sonar/
	├── records/
	│   └── sonar-bartik-<hash>.json
	└── bartik/
	    ├── sonar-bartik-<hash>.css
	    └── tmp.sonar-bartik-<hash>.<timestamp>.scss (transient)

Temporary files are uniquely named per compile attempt and removed on
commit; a leftover from an interrupted run is tolerated and never treated
as valid output.
*/
package sonar

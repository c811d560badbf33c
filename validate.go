package sonar

import (
	"fmt"

	"github.com/spf13/afero"
)

// needsRecompile decides whether the artifact for key must be regenerated.
//
// Policy, short-circuiting in order: a missing output file or a missing
// cache record always recompiles; live mode then trusts the existing
// artifact without any staleness scan; otherwise any FileRef fragment whose
// file was modified after the last recorded compile triggers regeneration.
// Inline fragments have no backing file and never trigger staleness.
func (p *Pipeline) needsRecompile(key, outputPath string, fragments []Fragment) (bool, error) {
	exists, err := afero.Exists(p.fs, outputPath)
	if err != nil {
		return false, fmt.Errorf("failed to check output %s: %w", outputPath, err)
	}
	if !exists {
		return true, nil
	}

	rec, ok, err := p.store.Get(key)
	if err != nil {
		return false, fmt.Errorf("failed to load cache record %s: %w", key, err)
	}
	if !ok {
		return true, nil
	}

	if p.cfg.Live {
		// Production trusts an artifact once it exists and has a record;
		// scanning would cost a stat per fragment on every page load. Source
		// edits require an explicit cache clear.
		return false, nil
	}

	for _, f := range fragments {
		if f.Kind != FileRef {
			continue
		}
		info, err := p.fs.Stat(f.Payload)
		if err != nil {
			// File vanished since the existence check; recompile so the
			// fragment validator can report it.
			return true, nil
		}
		if info.ModTime().After(rec.LastCompiledAt) {
			return true, nil
		}
	}
	return false, nil
}

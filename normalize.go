package sonar

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/spf13/afero"
)

var (
	// Regex-based stripping is best effort: comment-like sequences inside
	// string literals are not spared.
	blockCommentRe = regexp.MustCompile(`(?s)/\*.*?\*/`)
	lineCommentRe  = regexp.MustCompile(`//[^\n]*`)
	blankRunRe     = regexp.MustCompile(`\n(?:[ \t\r]*\n)+`)
)

// ValidateFragments checks that every FileRef fragment's path exists on fs.
// All failures are collected into a single ValidationError so one pass
// reports the whole batch; any failure excludes the request from
// compilation (validate-all, fail closed).
func ValidateFragments(fs afero.Fs, fragments []Fragment) error {
	var errs []error
	for _, f := range fragments {
		if f.Kind != FileRef {
			continue
		}
		exists, err := afero.Exists(fs, f.Payload)
		if err != nil {
			errs = append(errs, fmt.Errorf("fragment %s: check %s: %w", f.Name, f.Payload, err))
		} else if !exists {
			errs = append(errs, fmt.Errorf("fragment %s: %w: %s", f.Name, ErrMissingSource, f.Payload))
		}
	}
	return newValidationError(errs)
}

// Normalize turns an ordered fragment list into a single cleaned source
// blob ready for a compiler backend. Inline fragments emit their payload
// verbatim; FileRef fragments emit an import directive referencing their
// path so the backend resolves nested imports itself. Expansions are joined
// in input order, then comments are stripped and blank-line runs collapsed.
func (p *Pipeline) Normalize(fragments []Fragment) (string, error) {
	if err := ValidateFragments(p.fs, fragments); err != nil {
		return "", err
	}

	parts := make([]string, 0, len(fragments))
	for _, f := range fragments {
		switch f.Kind {
		case FileRef:
			parts = append(parts, fmt.Sprintf("@import %q;", f.Payload))
		default:
			parts = append(parts, f.Payload)
		}
	}

	return stripSource(strings.Join(parts, "\n")), nil
}

// stripSource removes block and line comments and collapses runs of blank
// lines to a single newline. Idempotent on already-clean input.
func stripSource(src string) string {
	src = blockCommentRe.ReplaceAllString(src, "")
	src = lineCommentRe.ReplaceAllString(src, "")
	src = blankRunRe.ReplaceAllString(src, "\n")
	return src
}

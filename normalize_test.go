package sonar

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripSource(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "block comment between rules",
			in:   "a { color: red; } /* comment */\nb { color: blue; }",
			want: "a { color: red; } \nb { color: blue; }",
		},
		{
			name: "multiline block comment",
			in:   "a { x: 1; }\n/* one\ntwo\nthree */\nb { y: 2; }",
			want: "a { x: 1; }\nb { y: 2; }",
		},
		{
			name: "line comment to end of line",
			in:   "$x: 1; // scale factor\n$y: 2;",
			want: "$x: 1; \n$y: 2;",
		},
		{
			name: "blank line run collapses",
			in:   "a { x: 1; }\n\n\n   \n\nb { y: 2; }",
			want: "a { x: 1; }\nb { y: 2; }",
		},
		{
			name: "clean input untouched",
			in:   "a { x: 1; }\nb { y: 2; }",
			want: "a { x: 1; }\nb { y: 2; }",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := stripSource(tt.in)
			assert.Equal(t, tt.want, got)

			// Idempotence on the already-clean result.
			assert.Equal(t, got, stripSource(got))
		})
	}
}

func TestNormalizeExpansion(t *testing.T) {
	p, memFs := newTestPipeline(t, testConfig())
	writeSource(t, memFs, "a.scss", "$from-file: 1;")

	fragments := []Fragment{
		FileFragment("f1", "a.scss"),
		InlineFragment("f2", "$x: 1;"),
	}

	got, err := p.Normalize(fragments)
	require.NoError(t, err)
	assert.Equal(t, "@import \"a.scss\";\n$x: 1;", got)
}

func TestNormalizeStripsInlineComments(t *testing.T) {
	p, _ := newTestPipeline(t, testConfig())

	got, err := p.Normalize([]Fragment{
		InlineFragment("f1", "/* header */\n$x: 1;"),
		InlineFragment("f2", "$y: 2; // trailing"),
	})
	require.NoError(t, err)
	assert.Equal(t, "\n$x: 1;\n$y: 2; ", got)
}

func TestNormalizeMissingFile(t *testing.T) {
	p, memFs := newTestPipeline(t, testConfig())
	writeSource(t, memFs, "present.scss", "$x: 1;")

	_, err := p.Normalize([]Fragment{
		FileFragment("ok", "present.scss"),
		FileFragment("gone", "missing.scss"),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingSource)
}

func TestValidateFragmentsCollectsAll(t *testing.T) {
	p, _ := newTestPipeline(t, testConfig())

	err := ValidateFragments(p.fs, []Fragment{
		FileFragment("one", "missing-one.scss"),
		InlineFragment("inline", "$x: 1;"),
		FileFragment("two", "missing-two.scss"),
	})
	require.Error(t, err)

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Len(t, ve.Errors, 2)
}

func TestValidateFragmentsInlineOnly(t *testing.T) {
	p, _ := newTestPipeline(t, testConfig())

	err := ValidateFragments(p.fs, []Fragment{
		InlineFragment("a", "$x: 1;"),
		InlineFragment("b", "$y: 2;"),
	})
	assert.NoError(t, err)
}

func TestValidationErrorUnwrap(t *testing.T) {
	inner := errors.New("boom")
	err := newValidationError([]error{inner})
	assert.ErrorIs(t, err, inner)

	assert.NoError(t, newValidationError(nil))
}

package sonar

import "fmt"

// Kind discriminates the two fragment payload types.
type Kind int

const (
	// Inline means the payload is literal stylesheet source.
	Inline Kind = iota

	// FileRef means the payload is a path to a stylesheet source file.
	FileRef
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case Inline:
		return "inline"
	case FileRef:
		return "file"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Fragment is one unit of stylesheet source. Name is the caller-defined
// identifier; within a Request, slice order is the aggregation order.
type Fragment struct {
	Name    string
	Kind    Kind
	Payload string
}

// InlineFragment builds a fragment carrying literal source text.
func InlineFragment(name, source string) Fragment {
	return Fragment{Name: name, Kind: Inline, Payload: source}
}

// FileFragment builds a fragment referencing a source file by path.
// Callers supply absolute paths in production so the compiler backend can
// resolve nested imports relative to them.
func FileFragment(name, path string) Fragment {
	return Fragment{Name: name, Kind: FileRef, Payload: path}
}

// Request is the ordered fragment collection for one page or context.
// Theme discriminates the presentation context and scopes the output
// directory; two requests with the same theme and the same ordered
// identifier list share a cache key.
type Request struct {
	Theme     string
	Fragments []Fragment
}

// Names returns the fragment identifiers in aggregation order.
func (r Request) Names() []string {
	names := make([]string, len(r.Fragments))
	for i, f := range r.Fragments {
		names[i] = f.Name
	}
	return names
}

// Key returns the cache key for this request.
func (r Request) Key() string {
	return ComputeKey(r.Theme, r.Names())
}

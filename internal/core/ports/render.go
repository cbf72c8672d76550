package ports

import "context"

// TemplateEngine expands templates. Bundle maps template names to their source;
// entry names the template to execute.
//
//go:generate go run go.uber.org/mock/mockgen -source=render.go -destination=mocks/mock_render.go -package=mocks
type TemplateEngine interface {
	Render(ctx context.Context, bundle map[string]string, entry string, data any) ([]byte, error)
	// Check parses a bundle without executing it.
	Check(bundle map[string]string) error
}

// MarkdownRenderer converts markdown to an HTML fragment.
type MarkdownRenderer interface {
	Render(src []byte) ([]byte, error)
}

// Highlighter annotates a code block for the given language.
type Highlighter interface {
	Highlight(code, lang string) (string, error)
}

// AssetTransformer is a trusted first-party pipeline step for static assets.
type AssetTransformer interface {
	Name() string
	Accepts(path string) bool
	Transform(ctx context.Context, in []byte) ([]byte, error)
}

// Compressor produces a precompressed variant of a text output.
type Compressor interface {
	// Encoding is the file suffix of the variant, e.g. "gz".
	Encoding() string
	Compress(in []byte) ([]byte, error)
}

// Package frontmatter splits a document into its YAML header and body.
package frontmatter

import (
	"bytes"

	"go.trai.ch/press/internal/core/domain"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

var delimiter = []byte("---")

// Frontmatter is the parsed document header.
type Frontmatter struct {
	Title  string   `yaml:"title"`
	Layout string   `yaml:"layout"`
	Draft  bool     `yaml:"draft"`
	Date   string   `yaml:"date"`
	Tags   []string `yaml:"tags"`
	// Authors credits the people who wrote the document.
	Authors []string `yaml:"authors"`
	// RedirectFrom lists old site paths that should redirect to this page.
	RedirectFrom []string `yaml:"redirect_from"`
	// RedirectTo publishes the document as a redirect to another URL.
	RedirectTo string `yaml:"redirect_to"`
	// Derived lists plugin outputs the document embeds, as "plugin:input".
	Derived []string `yaml:"derived"`
	// Params holds every header key, including the ones above.
	Params map[string]any `yaml:"-"`
}

// Split parses the header delimited by "---" lines at the very start of src.
// Documents without a header return an empty Frontmatter and src unchanged.
func Split(src []byte) (Frontmatter, []byte, error) {
	var fm Frontmatter

	rest, ok := bytes.CutPrefix(src, delimiter)
	if !ok {
		return fm, src, nil
	}
	rest = bytes.TrimLeft(rest, " \t")
	rest, ok = cutLine(rest)
	if !ok {
		return fm, src, nil
	}

	var header []byte
	for len(rest) > 0 {
		line, next := nextLine(rest)
		if bytes.Equal(bytes.TrimRight(line, " \t\r"), delimiter) {
			body := next
			if err := yaml.Unmarshal(header, &fm); err != nil {
				return Frontmatter{}, nil, zerr.Wrap(domain.ErrTemplate, "invalid frontmatter: "+err.Error())
			}
			if err := yaml.Unmarshal(header, &fm.Params); err != nil {
				return Frontmatter{}, nil, zerr.Wrap(domain.ErrTemplate, "invalid frontmatter: "+err.Error())
			}
			return fm, body, nil
		}
		header = append(header, line...)
		header = append(header, '\n')
		rest = next
	}
	return Frontmatter{}, nil, zerr.Wrap(domain.ErrTemplate, "unterminated frontmatter")
}

// cutLine consumes the remainder of the opening delimiter line.
func cutLine(b []byte) ([]byte, bool) {
	if after, ok := bytes.CutPrefix(b, []byte("\r\n")); ok {
		return after, true
	}
	if after, ok := bytes.CutPrefix(b, []byte("\n")); ok {
		return after, true
	}
	return nil, false
}

func nextLine(b []byte) (line, rest []byte) {
	if i := bytes.IndexByte(b, '\n'); i >= 0 {
		return bytes.TrimSuffix(b[:i], []byte("\r")), b[i+1:]
	}
	return b, nil
}

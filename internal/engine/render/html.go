package render

import (
	"bytes"
	"math"
	"net/url"
	"path"
	"strings"
	"unicode/utf8"

	"go.trai.ch/press/internal/adapters/fs" //nolint:depguard // Link resolution must match the walker
	"go.trai.ch/press/internal/core/domain"
	"go.trai.ch/zerr"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// SummaryLength bounds automatic summaries, in characters.
const SummaryLength = 200

// moreMarker ends a hand-picked summary.
const moreMarker = "more"

// ReadingWPM is the reading speed behind Page.ReadingTimeSeconds.
const ReadingWPM = 150

// Heading is one entry of a page's table of contents.
type Heading struct {
	Level int
	// ID is the anchor goldmark generated, empty if the heading has none.
	ID   string
	Text string
}

type textStats struct {
	content  string
	summary  string
	words    int
	chars    int
	headings []Heading
}

// readingTime estimates the seconds needed to read words at ReadingWPM.
func readingTime(words int) int {
	return int(math.Round(float64(words) * 60 / ReadingWPM))
}

// inspect extracts the plain text and the h1 to h6 headings of a rendered body.
// The summary is the text before a <!-- more --> comment, or else the leading
// words up to SummaryLength.
func inspect(fragment []byte) (textStats, error) {
	nodes, err := html.ParseFragment(bytes.NewReader(fragment), &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	})
	if err != nil {
		return textStats{}, zerr.Wrap(domain.ErrTemplate, "cannot parse rendered body: "+err.Error())
	}

	var words, lead []string
	var headings []Heading
	more := false
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			fields := strings.Fields(n.Data)
			words = append(words, fields...)
			if !more {
				lead = append(lead, fields...)
			}
		case html.CommentNode:
			if strings.TrimSpace(n.Data) == moreMarker {
				more = true
			}
		case html.ElementNode:
			if n.DataAtom == atom.Script || n.DataAtom == atom.Style {
				return
			}
			if level := headingLevel(n.DataAtom); level > 0 {
				headings = append(headings, Heading{Level: level, ID: attrValue(n, "id"), Text: strings.Join(strings.Fields(nodeText(n)), " ")})
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range nodes {
		walk(n)
	}

	content := strings.Join(words, " ")
	stats := textStats{content: content, words: len(words), chars: utf8.RuneCountInString(content), headings: headings}
	if more {
		stats.summary = strings.Join(lead, " ")
	} else {
		stats.summary = truncate(words, SummaryLength)
	}
	return stats, nil
}

func headingLevel(a atom.Atom) int {
	switch a {
	case atom.H1:
		return 1
	case atom.H2:
		return 2
	case atom.H3:
		return 3
	case atom.H4:
		return 4
	case atom.H5:
		return 5
	case atom.H6:
		return 6
	default:
		return 0
	}
}

func attrValue(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val
		}
	}
	return ""
}

func nodeText(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(nodeText(c))
	}
	return b.String()
}

// truncate joins words up to limit characters, cutting at a word boundary.
func truncate(words []string, limit int) string {
	var b strings.Builder
	n := 0
	for i, w := range words {
		l := utf8.RuneCountInString(w)
		if i > 0 {
			l++
		}
		if n+l > limit {
			if n == 0 {
				// A single overlong word.
				return string([]rune(w)[:limit]) + "…"
			}
			return b.String() + "…"
		}
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(w)
		n += l
	}
	return b.String()
}

// postProcess rewrites links to assets and documents under dir to their
// published names and defers loading of embedded media.
func postProcess(page []byte, dir string, assets map[string]string) ([]byte, error) {
	doc, err := html.Parse(bytes.NewReader(page))
	if err != nil {
		return nil, zerr.Wrap(domain.ErrTemplate, "cannot parse page: "+err.Error())
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			for i, attr := range n.Attr {
				if attr.Namespace == "" && (attr.Key == "href" || attr.Key == "src") {
					n.Attr[i].Val = rewriteLink(dir, attr.Val, assets)
				}
			}
			switch n.DataAtom {
			case atom.Img, atom.Iframe, atom.Audio:
				setDefault(n, "loading", "lazy")
			case atom.Video:
				setDefault(n, "loading", "lazy")
				setDefault(n, "preload", "metadata")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	var buf bytes.Buffer
	if err := html.Render(&buf, doc); err != nil {
		return nil, zerr.Wrap(domain.ErrTemplate, "cannot render page: "+err.Error())
	}
	return buf.Bytes(), nil
}

// rewriteLink replaces the last path segment of a local link: assets get
// their hashed name and documents the name of their page. Query and fragment
// are kept.
func rewriteLink(dir, ref string, assets map[string]string) string {
	target, ok := fs.ResolveLink(dir, ref)
	if !ok {
		return ref
	}

	var base string
	if hashed, ok := assets[target]; ok {
		base = path.Base(hashed)
	} else if isMarkdown(target) {
		base = path.Base(OutputPath(domain.NewNodeID(target)))
	} else {
		return ref
	}

	u, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	u.Path = u.Path[:strings.LastIndex(u.Path, "/")+1] + base
	return u.String()
}

func setDefault(n *html.Node, key, val string) {
	for _, attr := range n.Attr {
		if attr.Namespace == "" && attr.Key == key {
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

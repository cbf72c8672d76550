// Command press-wordcount is a reference plugin. It replaces a document with
// a short HTML snippet stating its word count and reading time.
//
// Params:
//
//	wpm    words read per minute (default 200)
//	label  text placed after the count (default "words")
package main

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"strconv"

	"go.trai.ch/press/internal/adapters/sandbox/guest"
	"go.trai.ch/zerr"
)

const defaultWPM = 200

func main() {
	guest.Serve(count)
}

func count(_ context.Context, _ *guest.Host, in guest.Input) (guest.Output, error) {
	wpm := defaultWPM
	if raw, ok := in.Params["wpm"]; ok {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return guest.Output{}, zerr.With(zerr.New("invalid wpm parameter"), "wpm", raw)
		}
		wpm = n
	}
	label := "words"
	if l := in.Params["label"]; l != "" {
		label = l
	}

	words := len(bytes.Fields(in.Content))
	minutes := (words + wpm - 1) / wpm
	if minutes == 0 {
		minutes = 1
	}

	snippet := fmt.Sprintf(
		"<span class=\"wordcount\" data-node=\"%s\">%d %s, %d min read</span>\n",
		html.EscapeString(in.Node), words, html.EscapeString(label), minutes,
	)
	return guest.Output{Content: []byte(snippet), MediaType: "text/html"}, nil
}

// Package form harvests input fields from an HTML page.
package form

import (
	"errors"
	"fmt"
	"io"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Extract returns the name and value of every <input> in the document,
// regardless of which form it belongs to. Inputs without a name or without a
// value attribute are skipped. A repeated name keeps the last value.
func Extract(r io.Reader) (map[string]string, error) {
	fields := make(map[string]string)
	z := html.NewTokenizer(r)
	for {
		switch z.Next() {
		case html.ErrorToken:
			if err := z.Err(); !errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("tokenizing html: %w", err)
			}
			return fields, nil
		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			if tok.DataAtom != atom.Input {
				continue
			}
			name, value, hasValue := inputAttrs(tok)
			if name == "" || !hasValue {
				continue
			}
			fields[name] = value
		}
	}
}

func inputAttrs(tok html.Token) (name, value string, hasValue bool) {
	for _, a := range tok.Attr {
		switch a.Key {
		case "name":
			name = a.Val
		case "value":
			value, hasValue = a.Val, true
		}
	}
	return name, value, hasValue
}

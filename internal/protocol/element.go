package protocol

import (
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

// RawText returns the first CDATA block under e, if any. The daemon
// uses CDATA for payloads it refuses to escape (message bodies,
// project descriptions).
func RawText(e *etree.Element) (string, bool) {
	for _, child := range e.Child {
		cd, ok := child.(*etree.CharData)
		if !ok || !cd.IsCData() {
			continue
		}
		return cd.Data, true
	}
	return "", false
}

// AnyText returns e's payload text, preferring the raw CDATA form
// over the escaped form when both exist.
func AnyText(e *etree.Element) (string, bool) {
	if raw, ok := RawText(e); ok {
		return raw, true
	}
	text := e.Text()
	if text == "" {
		return "", false
	}
	return text, true
}

// TrimmedText is AnyText with surrounding whitespace removed. The
// daemon pads single-line values with newlines and indentation.
func TrimmedText(e *etree.Element) (string, bool) {
	text, ok := AnyText(e)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(text), true
}

// IntContent parses e's text as a base-10 integer.
func IntContent(e *etree.Element) (int64, bool) {
	text, ok := TrimmedText(e)
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// NewTextElement builds a standalone element holding text.
func NewTextElement(tag, text string) *etree.Element {
	e := etree.NewElement(tag)
	e.SetText(text)
	return e
}

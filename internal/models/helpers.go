package models

import (
	"strconv"

	"github.com/beevik/etree"
	"github.com/rs/zerolog/log"

	"github.com/danmuck/boincctl/internal/protocol"
)

// Decoding here is deliberately lenient, for forward compatibility
// with an evolving daemon: unknown tags are ignored, a tag expected
// once keeps its last occurrence, and a field that fails to parse is
// absent rather than failing the record.

// lastChild returns the last child with the given tag. Duplicates of
// a singular tag are logged and the last one wins.
func lastChild(e *etree.Element, tag string) (*etree.Element, bool) {
	kids := e.SelectElements(tag)
	if len(kids) == 0 {
		return nil, false
	}
	if len(kids) > 1 {
		log.Warn().
			Str("parent", e.Tag).
			Str("tag", tag).
			Int("count", len(kids)).
			Msg("expected one child, keeping last")
	}
	return kids[len(kids)-1], true
}

func childString(e *etree.Element, tag string) *string {
	node, ok := lastChild(e, tag)
	if !ok {
		return nil
	}
	text, ok := protocol.TrimmedText(node)
	if !ok {
		return nil
	}
	return &text
}

func childInt(e *etree.Element, tag string) *int64 {
	node, ok := lastChild(e, tag)
	if !ok {
		return nil
	}
	v, ok := protocol.IntContent(node)
	if !ok {
		return nil
	}
	return &v
}

func childUint(e *etree.Element, tag string) *uint64 {
	node, ok := lastChild(e, tag)
	if !ok {
		return nil
	}
	text, ok := protocol.TrimmedText(node)
	if !ok {
		return nil
	}
	v, err := strconv.ParseUint(text, 10, 64)
	if err != nil {
		return nil
	}
	return &v
}

func childFloat(e *etree.Element, tag string) *float64 {
	node, ok := lastChild(e, tag)
	if !ok {
		return nil
	}
	text, ok := protocol.TrimmedText(node)
	if !ok {
		return nil
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil
	}
	return &v
}

func childBool(e *etree.Element, tag string) *bool {
	node, ok := lastChild(e, tag)
	if !ok {
		return nil
	}
	text, ok := protocol.TrimmedText(node)
	if !ok {
		return nil
	}
	v, err := strconv.ParseBool(text)
	if err != nil {
		return nil
	}
	return &v
}

// childFlag maps tag presence to true. The daemon emits these as bare
// tags; false is indistinguishable from absent on the wire.
func childFlag(e *etree.Element, tag string) *bool {
	if _, ok := lastChild(e, tag); !ok {
		return nil
	}
	v := true
	return &v
}

// Encoding: absent fields are omitted entirely, never emitted as an
// empty placeholder.

func addString(parent *etree.Element, tag string, v *string) {
	if v == nil {
		return
	}
	parent.CreateElement(tag).SetText(*v)
}

func addInt(parent *etree.Element, tag string, v *int64) {
	if v == nil {
		return
	}
	parent.CreateElement(tag).SetText(strconv.FormatInt(*v, 10))
}

func addUint(parent *etree.Element, tag string, v *uint64) {
	if v == nil {
		return
	}
	parent.CreateElement(tag).SetText(strconv.FormatUint(*v, 10))
}

func addFloat(parent *etree.Element, tag string, v *float64) {
	if v == nil {
		return
	}
	parent.CreateElement(tag).SetText(strconv.FormatFloat(*v, 'f', -1, 64))
}

func addBool(parent *etree.Element, tag string, v *bool) {
	if v == nil {
		return
	}
	parent.CreateElement(tag).SetText(strconv.FormatBool(*v))
}

func addFlag(parent *etree.Element, tag string, v *bool) {
	if v == nil || !*v {
		return
	}
	parent.CreateElement(tag)
}

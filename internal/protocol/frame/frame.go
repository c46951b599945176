// Package frame owns GUI RPC frame boundaries: one element tree per
// frame, terminated by a single delimiter byte, no length prefix.
package frame

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/beevik/etree"
)

// Delimiter terminates every request and reply frame.
const Delimiter byte = 0x03

// Envelope tags. The envelope is structural: only its children are
// payload.
const (
	RequestTag = "boinc_gui_rpc_request"
	ReplyTag   = "boinc_gui_rpc_reply"
)

var (
	ErrConnClosed   = errors.New("frame: connection closed before delimiter")
	ErrMalformed    = errors.New("frame: malformed reply")
	ErrEmptyFrame   = errors.New("frame: empty frame")
	ErrBadEnvelope  = errors.New("frame: unexpected envelope tag")
	ErrNoOperations = errors.New("frame: request carries no operation")
)

// EncodeRequest serializes operations wrapped in the request envelope
// and terminated by the delimiter.
func EncodeRequest(ops []*etree.Element) ([]byte, error) {
	if len(ops) == 0 {
		return nil, ErrNoOperations
	}
	doc := etree.NewDocument()
	root := doc.CreateElement(RequestTag)
	for _, op := range ops {
		root.AddChild(op.Copy())
	}
	out, err := doc.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("frame: encode request: %w", err)
	}
	return append(out, Delimiter), nil
}

// WriteRequest encodes ops and writes the complete frame to w.
func WriteRequest(w io.Writer, ops []*etree.Element) error {
	out, err := EncodeRequest(ops)
	if err != nil {
		return err
	}
	if _, err := w.Write(out); err != nil {
		return fmt.Errorf("frame: write request: %w", err)
	}
	return nil
}

// ReadReply consumes exactly one reply frame from r, across any
// number of partial reads, and returns the children of the reply
// envelope. End-of-stream before the delimiter is ErrConnClosed,
// never a partial tree.
func ReadReply(r *bufio.Reader) ([]*etree.Element, error) {
	raw, err := r.ReadBytes(Delimiter)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrConnClosed
		}
		return nil, fmt.Errorf("frame: read reply: %w", err)
	}
	return ParseReply(raw[:len(raw)-1])
}

// ParseReply parses one delimiter-stripped reply frame. CDATA stays
// CDATA so downstream readers can tell raw payloads from escaped
// text.
func ParseReply(raw []byte) ([]*etree.Element, error) {
	doc := etree.NewDocument()
	doc.ReadSettings.Permissive = true
	doc.ReadSettings.PreserveCData = true
	if err := doc.ReadFromBytes(raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	root := doc.Root()
	if root == nil {
		return nil, ErrEmptyFrame
	}
	if root.Tag != ReplyTag {
		return nil, fmt.Errorf("%w: %s", ErrBadEnvelope, root.Tag)
	}
	return root.ChildElements(), nil
}

// IsParseFailure reports whether err is a frame-content failure, as
// opposed to an I/O failure.
func IsParseFailure(err error) bool {
	return errors.Is(err, ErrMalformed) ||
		errors.Is(err, ErrEmptyFrame) ||
		errors.Is(err, ErrBadEnvelope)
}

package session

import (
	"bufio"
	"context"
	"crypto/md5"
	"encoding/hex"
	"net"
	"time"

	"github.com/beevik/etree"

	"github.com/danmuck/boincctl/internal/protocol"
	"github.com/danmuck/boincctl/internal/protocol/frame"
)

// Handshake tags. The exchange is auth1 -> nonce -> auth2(nonce_hash)
// -> authorized|unauthorized, run at most once per connection.
const (
	tagBeginAuth    = "auth1"
	tagNonce        = "nonce"
	tagCompleteAuth = "auth2"
	tagNonceHash    = "nonce_hash"
	tagAuthorized   = "authorized"
	tagUnauthorized = "unauthorized"
)

// Session owns exactly one live daemon connection. The first
// unrecoverable failure poisons it; callers construct a new one.
type Session struct {
	conn          net.Conn
	br            *bufio.Reader
	authenticated bool
	broken        bool
}

// Connect dials the daemon and, when a password is supplied, runs the
// challenge/response handshake. Without a password the handshake is
// skipped; an auth-requiring daemon will answer the first query with
// <unauthorized/>, which classifies identically downstream.
func Connect(ctx context.Context, addr, password string) (*Session, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, protocol.Wrap(protocol.KindConnect, "dial "+addr, err)
	}
	s := &Session{conn: conn, br: bufio.NewReader(conn)}
	if password != "" {
		if err := s.handshake(ctx, password); err != nil {
			_ = s.Close()
			return nil, err
		}
	}
	return s, nil
}

// Query writes one request frame and reads exactly one reply frame,
// returning the reply envelope's children. Any failure poisons the
// session.
func (s *Session) Query(ctx context.Context, ops []*etree.Element) ([]*etree.Element, error) {
	if s.broken {
		return nil, protocol.New(protocol.KindNetwork, "session already failed")
	}
	return s.exchange(ctx, ops)
}

// Authenticated reports whether the handshake completed.
func (s *Session) Authenticated() bool { return s.authenticated }

func (s *Session) Close() error {
	s.broken = true
	return s.conn.Close()
}

func (s *Session) handshake(ctx context.Context, password string) error {
	reply, err := s.exchange(ctx, []*etree.Element{etree.NewElement(tagBeginAuth)})
	if err != nil {
		return err
	}
	nonce, ok := extractNonce(reply)
	if !ok {
		s.broken = true
		return protocol.New(protocol.KindDataParse, "handshake reply carries no nonce")
	}

	sum := md5.Sum([]byte(nonce + password))
	complete := etree.NewElement(tagCompleteAuth)
	complete.CreateElement(tagNonceHash).SetText(hex.EncodeToString(sum[:]))

	reply, err = s.exchange(ctx, []*etree.Element{complete})
	if err != nil {
		return err
	}
	for _, node := range reply {
		switch node.Tag {
		case tagAuthorized:
			s.authenticated = true
			return nil
		case tagUnauthorized:
			s.broken = true
			return protocol.New(protocol.KindAuth, "daemon rejected password")
		}
	}
	s.broken = true
	return protocol.New(protocol.KindDataParse, "handshake reply carries no authorization tag")
}

func extractNonce(reply []*etree.Element) (string, bool) {
	for _, node := range reply {
		if node.Tag == tagNonce {
			return protocol.TrimmedText(node)
		}
	}
	return "", false
}

// exchange is the single request/reply round trip. It suspends only
// at socket boundaries; ctx cancellation aborts in-flight I/O rather
// than leaving an ambiguous partial frame.
func (s *Session) exchange(ctx context.Context, ops []*etree.Element) ([]*etree.Element, error) {
	stop := s.watch(ctx)
	defer stop()

	if err := frame.WriteRequest(s.conn, ops); err != nil {
		s.broken = true
		return nil, classify(err)
	}
	children, err := frame.ReadReply(s.br)
	if err != nil {
		s.broken = true
		return nil, classify(err)
	}
	return children, nil
}

// watch aborts socket I/O when ctx ends. The stop func must run
// before the caller inspects the exchange result.
func (s *Session) watch(ctx context.Context) func() {
	if ctx == nil || ctx.Done() == nil {
		return func() {}
	}
	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		select {
		case <-ctx.Done():
			_ = s.conn.SetDeadline(time.Now())
		case <-stop:
		}
	}()
	return func() {
		close(stop)
		<-done
	}
}

func classify(err error) *protocol.Error {
	if frame.IsParseFailure(err) {
		return protocol.Wrap(protocol.KindDataParse, "reply not parseable", err)
	}
	return protocol.Wrap(protocol.KindNetwork, "daemon i/o failed", err)
}

// Package transport presents one Session as a readiness-gated,
// single-in-flight service.
//
// The state machine is a tagged union: exactly one of
// Connecting(pending handshake) / Ready(session) / Error(failure) is
// live at a time, behind one mutex. Readiness checks never block;
// contention reports not-yet-ready, which is the sole backpressure
// mechanism. There is no request queue, no retry and no reconnect:
// the first failure is terminal and every later check reports it.
package transport

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/beevik/etree"
	"github.com/rs/zerolog/log"

	"github.com/danmuck/boincctl/internal/protocol"
	"github.com/danmuck/boincctl/internal/protocol/session"
)

// ErrNotReady means another caller holds the transport or the
// handshake is still pending; poll again.
var ErrNotReady = errors.New("transport: not ready")

// readyPollInterval paces AwaitReady's cooperative polling.
const readyPollInterval = 2 * time.Millisecond

type state int

const (
	stateConnecting state = iota
	stateReady
	stateError
)

type connectResult struct {
	sess *session.Session
	err  error
}

// Transport serializes all access to one Session. Safe for concurrent
// use; exactly one request executes at a time per instance.
type Transport struct {
	mu      sync.Mutex
	state   state
	pending <-chan connectResult
	sess    *session.Session
	err     error
}

// Dial starts connecting (and authenticating) to the daemon in the
// background. The result surfaces through Ready.
func Dial(addr, password string) *Transport {
	pending := make(chan connectResult, 1)
	go func() {
		s, err := session.Connect(context.Background(), addr, password)
		pending <- connectResult{sess: s, err: err}
	}()
	return &Transport{state: stateConnecting, pending: pending}
}

// Ready reports nil when a live session is available. ErrNotReady is
// cooperative backpressure; any other error is the transport's
// terminal failure, reported cheaply on every subsequent check.
func (t *Transport) Ready() error {
	if !t.mu.TryLock() {
		return ErrNotReady
	}
	defer t.mu.Unlock()

	switch t.state {
	case stateConnecting:
		select {
		case res := <-t.pending:
			t.pending = nil
			t.transition(res.sess, res.err)
		default:
			return ErrNotReady
		}
		if t.state == stateError {
			return t.err
		}
		return nil
	case stateReady:
		return nil
	case stateError:
		return t.err
	}
	return t.defect("invalid transport state")
}

// AwaitReady polls Ready until the transport leaves Connecting or ctx
// ends. Abandonment here is safe: no frame is in flight yet.
func (t *Transport) AwaitReady(ctx context.Context) error {
	for {
		err := t.Ready()
		if !errors.Is(err, ErrNotReady) {
			return err
		}
		select {
		case <-ctx.Done():
			return protocol.Wrap(protocol.KindConnect, "awaiting readiness", ctx.Err())
		case <-time.After(readyPollInterval):
		}
	}
}

// Call runs exactly one query under the exclusive guard. Success
// restores Ready; any failure poisons the transport and propagates.
func (t *Transport) Call(ctx context.Context, ops []*etree.Element) ([]*etree.Element, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch t.state {
	case stateError:
		return nil, t.err
	case stateConnecting:
		// Callers must observe Ready() == nil before Call.
		return nil, t.defect("call before ready")
	}

	out, err := t.sess.Query(ctx, ops)
	if err != nil {
		_ = t.sess.Close()
		t.transition(nil, err)
		return nil, err
	}
	return out, nil
}

// Close releases the live session, if any, and poisons the transport.
func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	var err error
	if t.state == stateReady {
		err = t.sess.Close()
	}
	t.transition(nil, protocol.New(protocol.KindNetwork, "transport closed"))
	return err
}

// transition is the only place state changes: (old state, event) ->
// new state. A pending handshake and a live session never coexist;
// leaving Connecting for any other reason hands the still-running
// handshake to a drainer so its socket keeps exactly one owner.
func (t *Transport) transition(sess *session.Session, err error) {
	if t.state == stateConnecting && t.pending != nil {
		go drain(t.pending)
		t.pending = nil
	}
	if err != nil {
		t.state, t.sess, t.err = stateError, nil, err
		return
	}
	t.state, t.sess, t.err = stateReady, sess, nil
}

// drain adopts the result of an abandoned handshake and releases its
// session, if it produced one.
func drain(pending <-chan connectResult) {
	if res := <-pending; res.sess != nil {
		_ = res.sess.Close()
	}
}

// defect records an internally-impossible state. It is returned, not
// panicked: misuse must not abort the host process.
func (t *Transport) defect(msg string) *protocol.Error {
	err := protocol.New(protocol.KindNull, msg)
	log.Error().Err(err).Msg("transport defect")
	t.transition(nil, err)
	return err
}

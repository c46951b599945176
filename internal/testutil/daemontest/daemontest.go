// Package daemontest runs a scripted GUI RPC daemon on a loopback
// listener for transport and client tests.
package daemontest

import (
	"bufio"
	"net"
	"sync"
	"testing"

	"github.com/danmuck/boincctl/internal/protocol/frame"
)

// Handler maps one delimiter-stripped request frame to one
// delimiter-stripped reply frame. Returning nil closes the
// connection without replying.
type Handler func(request []byte) []byte

// Daemon is one scripted fake daemon instance.
type Daemon struct {
	listener net.Listener
	wg       sync.WaitGroup
}

// Start serves handler on a fresh loopback port until Close. Each
// connection is handled frame by frame.
func Start(t *testing.T, handler Handler) *Daemon {
	t.Helper()
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("daemontest listen: %v", err)
	}
	d := &Daemon{listener: listener}
	d.wg.Add(1)
	go d.serve(handler)
	t.Cleanup(d.Close)
	return d
}

// Addr is the daemon's dialable address.
func (d *Daemon) Addr() string {
	return d.listener.Addr().String()
}

func (d *Daemon) Close() {
	_ = d.listener.Close()
	d.wg.Wait()
}

func (d *Daemon) serve(handler Handler) {
	defer d.wg.Done()
	for {
		conn, err := d.listener.Accept()
		if err != nil {
			return
		}
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			defer conn.Close()
			handleConn(conn, handler)
		}()
	}
}

func handleConn(conn net.Conn, handler Handler) {
	br := bufio.NewReader(conn)
	for {
		raw, err := br.ReadBytes(frame.Delimiter)
		if err != nil {
			return
		}
		reply := handler(raw[:len(raw)-1])
		if reply == nil {
			return
		}
		out := append(append([]byte{}, reply...), frame.Delimiter)
		if _, err := conn.Write(out); err != nil {
			return
		}
	}
}

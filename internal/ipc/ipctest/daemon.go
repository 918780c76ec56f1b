// Package ipctest provides a fake motors daemon listening on a unix socket,
// for tests that exercise the client end to end.
package ipctest

import (
	"io"
	"net"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/berrythewa/motors/internal/ipc"
)

// Handler decides what the fake daemon sends back for a request. It writes
// raw bytes so tests can produce short or malformed replies.
type Handler func(req ipc.Request) []byte

// ReplyWith returns a Handler that answers query commands with reply and
// sends nothing for fire-and-forget commands.
func ReplyWith(reply ipc.Reply) Handler {
	return func(req ipc.Request) []byte {
		if !req.Command.ExpectsReply() {
			return nil
		}
		buf, _ := reply.MarshalBinary()
		return buf
	}
}

// Daemon is a one-request-per-connection fake of the motors daemon.
type Daemon struct {
	SocketPath string

	ln      net.Listener
	handler Handler
	wg      sync.WaitGroup

	mu       sync.Mutex
	requests []ipc.Request
}

// NewDaemon starts a fake daemon in a fresh temporary directory. It is shut
// down by t.Cleanup.
func NewDaemon(t testing.TB, handler Handler) *Daemon {
	t.Helper()

	// Unix socket paths are limited to ~108 bytes; t.TempDir can exceed it.
	dir, err := os.MkdirTemp("", "motors")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	path := filepath.Join(dir, "md.sock")

	ln, err := net.Listen("unix", path)
	if err != nil {
		os.RemoveAll(dir)
		t.Fatalf("Failed to listen on %s: %v", path, err)
	}

	d := &Daemon{SocketPath: path, ln: ln, handler: handler}
	d.wg.Add(1)
	go d.serve()

	t.Cleanup(func() {
		d.Close()
		os.RemoveAll(dir)
	})
	return d
}

// Requests returns every request received so far, in arrival order.
func (d *Daemon) Requests() []ipc.Request {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]ipc.Request(nil), d.requests...)
}

// Close stops accepting connections and waits for in-flight handlers.
func (d *Daemon) Close() {
	d.ln.Close()
	d.wg.Wait()
}

func (d *Daemon) serve() {
	defer d.wg.Done()
	for {
		conn, err := d.ln.Accept()
		if err != nil {
			return
		}
		d.wg.Add(1)
		go d.handle(conn)
	}
}

func (d *Daemon) handle(conn net.Conn) {
	defer d.wg.Done()
	defer conn.Close()

	buf := make([]byte, ipc.RequestSize)
	if _, err := io.ReadFull(conn, buf); err != nil {
		return
	}
	var req ipc.Request
	if err := req.UnmarshalBinary(buf); err != nil {
		return
	}

	d.mu.Lock()
	d.requests = append(d.requests, req)
	d.mu.Unlock()

	if d.handler == nil {
		return
	}
	if out := d.handler(req); out != nil {
		conn.Write(out)
	}
}

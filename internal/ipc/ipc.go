package ipc

import (
	"context"
	"errors"
	"io"
	"net"
	"os"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultSocketPath is where the motors daemon listens.
	DefaultSocketPath = "/dev/md"

	DefaultDialTimeout  = 5 * time.Second
	DefaultReplyTimeout = 10 * time.Second
)

// Client talks to the motors daemon over its unix stream socket. Every call
// to Do opens a fresh connection; nothing is retried.
type Client struct {
	socketPath   string
	dialTimeout  time.Duration
	replyTimeout time.Duration
	logger       *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithDialTimeout bounds connection establishment.
func WithDialTimeout(d time.Duration) Option {
	return func(c *Client) { c.dialTimeout = d }
}

// WithReplyTimeout bounds the wait for a reply. Zero waits forever.
func WithReplyTimeout(d time.Duration) Option {
	return func(c *Client) { c.replyTimeout = d }
}

// WithLogger attaches a logger; the default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient creates a client for the daemon at socketPath.
func NewClient(socketPath string, opts ...Option) *Client {
	if socketPath == "" {
		socketPath = DefaultSocketPath
	}
	c := &Client{
		socketPath:   socketPath,
		dialTimeout:  DefaultDialTimeout,
		replyTimeout: DefaultReplyTimeout,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SocketPath returns the socket the client dials.
func (c *Client) SocketPath() string {
	return c.socketPath
}

// Dial connects to the daemon socket.
func (c *Client) Dial(ctx context.Context) (net.Conn, error) {
	d := net.Dialer{Timeout: c.dialTimeout}
	conn, err := d.DialContext(ctx, "unix", c.socketPath)
	if err != nil {
		return nil, Wrap(ConnectionFailure, err, "could not connect to motors daemon at "+c.socketPath)
	}
	return conn, nil
}

// Do performs one complete exchange: connect, send req and, when
// expectsReply is set, read exactly one Reply.
func (c *Client) Do(ctx context.Context, req Request, expectsReply bool) (*Reply, error) {
	conn, err := c.Dial(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	c.logger.Debug("Connected to daemon", zap.String("socket", c.socketPath))

	reply, err := Exchange(conn, req, expectsReply, c.replyTimeout)
	if err != nil {
		c.logger.Debug("Exchange failed",
			zap.Stringer("command", req.Command),
			zap.Stringer("kind", KindOf(err)),
			zap.Error(err))
		return nil, err
	}

	c.logger.Debug("Exchange complete",
		zap.Stringer("command", req.Command),
		zap.Bool("reply", reply != nil))
	return reply, nil
}

type readDeadliner interface {
	SetReadDeadline(t time.Time) error
}

// Exchange writes req to conn and, if expectsReply, blocks for one Reply.
// When conn supports read deadlines and timeout is positive the read is
// bounded and expiry yields ReplyTimeout.
func Exchange(conn io.ReadWriter, req Request, expectsReply bool, timeout time.Duration) (*Reply, error) {
	if err := WriteRequest(conn, req); err != nil {
		return nil, err
	}
	if !expectsReply {
		return nil, nil
	}

	if rd, ok := conn.(readDeadliner); ok && timeout > 0 {
		if err := rd.SetReadDeadline(time.Now().Add(timeout)); err != nil {
			return nil, Wrap(ConnectionFailure, err, "failed to arm reply timeout")
		}
	}

	reply, err := ReadReply(conn)
	if err != nil {
		if errors.Is(err, os.ErrDeadlineExceeded) {
			return nil, Wrap(ReplyTimeout, err, "no reply from daemon within "+timeout.String())
		}
		if KindOf(err) == KindUnknown {
			return nil, Wrap(TruncatedMessage, err, "failed to read reply")
		}
		return nil, err
	}
	return reply, nil
}

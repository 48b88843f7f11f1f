package transport

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"sync"

	"chess-sweeper/protocol"
)

// Client is a protocol.Caller over a byte stream. Calls are serialized.
type Client struct {
	mu   sync.Mutex
	bind protocol.Binding
	r    *bufio.Reader
	w    *bufio.Writer
	c    io.Closer
}

// NewClient speaks bind over rw. If rw is an io.Closer, Close closes it.
func NewClient(rw io.ReadWriter, bind protocol.Binding) *Client {
	cl := &Client{bind: bind, r: bufio.NewReader(rw), w: bufio.NewWriter(rw)}
	if c, ok := rw.(io.Closer); ok {
		cl.c = c
	}
	return cl
}

// Dial connects to a Server at addr.
func Dial(ctx context.Context, addr string, bind protocol.Binding) (*Client, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	return NewClient(conn, bind), nil
}

// Call sends cmd and, for queries, waits for the response.
func (c *Client) Call(ctx context.Context, cmd protocol.Command) (protocol.Response, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := cmd.Validate(); err != nil {
		return 0, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.bind.WriteCommand(c.w, cmd); err != nil {
		return 0, err
	}
	if !cmd.Op.Query() {
		return 0, nil
	}
	if err := c.w.Flush(); err != nil {
		return 0, err
	}
	resp, err := c.bind.ReadResponse(c.r)
	if err != nil {
		return 0, fmt.Errorf("%s response to %v: %w", c.bind.Name(), cmd, err)
	}
	return resp, nil
}

// Flush pushes out buffered commands that have no response.
func (c *Client) Flush() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.w.Flush()
}

func (c *Client) Close() error {
	err := c.Flush()
	if c.c != nil {
		if cerr := c.c.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

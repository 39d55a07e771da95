package daemon

import (
	"context"
	"net"
	"time"

	"github.com/sourcegraph/jsonrpc2"
)

// Client talks to a running daemon over its control socket.
type Client struct {
	conn *jsonrpc2.Conn
}

// Dial connects to the daemon's unix socket.
func Dial(ctx context.Context, socketPath string) (*Client, error) {
	netConn, err := net.DialTimeout("unix", socketPath, 5*time.Second)
	if err != nil {
		return nil, err
	}

	stream := jsonrpc2.NewBufferedStream(netConn, jsonrpc2.VSCodeObjectCodec{})
	conn := jsonrpc2.NewConn(ctx, stream, noopHandler{})

	return &Client{conn: conn}, nil
}

type noopHandler struct{}

func (noopHandler) Handle(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) {}

// Call invokes a control command and decodes the result into out,
// which may be nil.
func (c *Client) Call(ctx context.Context, method string, params, out any) error {
	return c.conn.Call(ctx, method, params, out)
}

func (c *Client) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// Package daemon serves the control plane over a unix socket.
package daemon

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sourcegraph/jsonrpc2"
	"github.com/tmplworks/tmpl/internal/command"
	"github.com/tmplworks/tmpl/internal/logger"
)

var log = logger.ForComponent("daemon")

type Daemon struct {
	socketPath   string
	listener     net.Listener
	registry     *command.Registry
	connections  map[*jsonrpc2.Conn]bool
	connMu       sync.Mutex
	shutdown     chan struct{}
	shutdownOnce sync.Once
	startTime    time.Time
}

func New(socketPath string, registry *command.Registry) *Daemon {
	return &Daemon{
		socketPath:  socketPath,
		registry:    registry,
		connections: make(map[*jsonrpc2.Conn]bool),
		shutdown:    make(chan struct{}),
		startTime:   time.Now(),
	}
}

func (d *Daemon) Start() error {
	if err := os.RemoveAll(d.socketPath); err != nil {
		return fmt.Errorf("failed to remove socket: %w", err)
	}

	socketDir := filepath.Dir(d.socketPath)
	if err := os.MkdirAll(socketDir, 0700); err != nil {
		return fmt.Errorf("failed to create socket dir: %w", err)
	}

	listener, err := net.Listen("unix", d.socketPath)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	d.listener = listener

	if err := os.Chmod(d.socketPath, 0700); err != nil {
		return fmt.Errorf("failed to chmod socket: %w", err)
	}

	log.Info("daemon listening", "socket", d.socketPath, "commands", d.registry.Names())

	go d.acceptConnections()
	return nil
}

func (d *Daemon) acceptConnections() {
	for {
		conn, err := d.listener.Accept()
		if err != nil {
			select {
			case <-d.shutdown:
				return
			default:
				continue
			}
		}

		go d.handleConnection(conn)
	}
}

func (d *Daemon) handleConnection(netConn net.Conn) {
	stream := jsonrpc2.NewBufferedStream(netConn, jsonrpc2.VSCodeObjectCodec{})
	conn := jsonrpc2.NewConn(context.Background(), stream, &serverHandler{registry: d.registry})

	d.connMu.Lock()
	d.connections[conn] = true
	d.connMu.Unlock()

	<-conn.DisconnectNotify()

	d.connMu.Lock()
	delete(d.connections, conn)
	d.connMu.Unlock()
}

type serverHandler struct {
	registry *command.Registry
}

func (h *serverHandler) Handle(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) {
	if req.Notif {
		return
	}

	var params json.RawMessage
	if req.Params != nil {
		params = *req.Params
	}

	result, err := h.registry.Execute(req.Method, params)
	if err != nil {
		code := int64(-32603)
		if cmdErr, ok := err.(*command.Error); ok {
			code = int64(cmdErr.Code)
		}
		conn.ReplyWithError(ctx, req.ID, &jsonrpc2.Error{
			Code:    code,
			Message: err.Error(),
		})
		return
	}

	if err := conn.Reply(ctx, req.ID, result); err != nil {
		log.Debug("reply failed", "method", req.Method, "error", err)
	}
}

func (d *Daemon) Shutdown() {
	d.shutdownOnce.Do(func() {
		close(d.shutdown)

		if d.listener != nil {
			d.listener.Close()
		}

		d.connMu.Lock()
		for conn := range d.connections {
			conn.Close()
		}
		d.connMu.Unlock()

		os.Remove(d.socketPath)
		log.Info("daemon stopped")
	})
}

func (d *Daemon) SocketPath() string {
	return d.socketPath
}

func (d *Daemon) Uptime() time.Duration {
	return time.Since(d.startTime)
}

func (d *Daemon) CommandCount() int {
	return len(d.registry.Names())
}

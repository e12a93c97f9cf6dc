package client

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/matheus3301/wppsim/internal/api"
)

// Client wraps gRPC connections to the daemon.
type Client struct {
	conn    *grpc.ClientConn
	Session *api.SessionClient
	Chat    *api.ChatClient
	Message *api.MessageClient
	Profile *api.ProfileClient
}

// New dials the daemon's Unix domain socket and returns typed service clients.
func New(socketPath string) (*Client, error) {
	conn, err := grpc.NewClient(
		"unix://"+socketPath,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return nil, fmt.Errorf("dial daemon: %w", err)
	}
	return FromConn(conn), nil
}

// FromConn builds a Client over an existing connection and takes ownership of it.
func FromConn(conn *grpc.ClientConn) *Client {
	return &Client{
		conn:    conn,
		Session: api.NewSessionClient(conn),
		Chat:    api.NewChatClient(conn),
		Message: api.NewMessageClient(conn),
		Profile: api.NewProfileClient(conn),
	}
}

// Ping reports whether the daemon answers a status call.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.Session.GetStatus(ctx)
	return err
}

// Close closes the gRPC connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

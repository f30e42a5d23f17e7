package daemon

import (
	"context"
	"path/filepath"
	"time"

	"go.trai.ch/polish/internal/core/domain"
	"go.trai.ch/polish/internal/core/ports"
	"go.trai.ch/zerr"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"
)

var _ ports.DaemonClient = (*Client)(nil)

// Client implements ports.DaemonClient.
type Client struct {
	conn *grpc.ClientConn
}

// Dial creates a client for the daemon serving root.
// The connection is established lazily on the first call.
func Dial(root string) (*Client, error) {
	target := "unix://" + filepath.Join(root, domain.DefaultDaemonSocketPath())

	conn, err := grpc.NewClient(target, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, zerr.Wrap(err, "daemon client creation failed")
	}
	return NewClient(conn), nil
}

// NewClient wraps an existing connection.
func NewClient(conn *grpc.ClientConn) *Client {
	return &Client{conn: conn}
}

func (c *Client) invoke(ctx context.Context, method string, req *structpb.Struct) (*structpb.Struct, error) {
	if req == nil {
		req = &structpb.Struct{}
	}
	resp := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, fullMethod(method), req, resp); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrDaemonUnavailable.Error()), "method", method)
	}
	return resp, nil
}

// Ping implements ports.DaemonClient.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.invoke(ctx, MethodPing, nil)
	return err
}

// Status implements ports.DaemonClient.
func (c *Client) Status(ctx context.Context) (*ports.DaemonStatus, error) {
	resp, err := c.invoke(ctx, MethodStatus, nil)
	if err != nil {
		return nil, err
	}

	f := resp.GetFields()
	return &ports.DaemonStatus{
		Running:       f["running"].GetBoolValue(),
		PID:           int(f["pid"].GetNumberValue()),
		SessionID:     f["session_id"].GetStringValue(),
		Root:          f["root"].GetStringValue(),
		Uptime:        millis(f["uptime_ms"]),
		LastActivity:  time.Unix(int64(f["last_activity_unix"].GetNumberValue()), 0),
		IdleRemaining: millis(f["idle_remaining_ms"]),
		PendingSaves:  int(f["pending_saves"].GetNumberValue()),
	}, nil
}

// WillSave implements ports.DaemonClient.
func (c *Client) WillSave(ctx context.Context, req domain.SaveRequest) (domain.SaveResult, error) {
	in, err := encodeSaveRequest(req)
	if err != nil {
		return domain.SaveResult{Text: req.Text}, zerr.Wrap(err, "failed to encode save request")
	}

	resp, err := c.invoke(ctx, MethodWillSave, in)
	if err != nil {
		return domain.SaveResult{Text: req.Text}, err
	}

	f := resp.GetFields()
	return domain.SaveResult{
		Text:    f["text"].GetStringValue(),
		Applied: f["applied"].GetBoolValue(),
	}, nil
}

// Invalidate implements ports.DaemonClient.
func (c *Client) Invalidate(ctx context.Context) error {
	_, err := c.invoke(ctx, MethodInvalidate, nil)
	return err
}

// Shutdown implements ports.DaemonClient.
func (c *Client) Shutdown(ctx context.Context) error {
	_, err := c.invoke(ctx, MethodShutdown, nil)
	return err
}

// Close implements ports.DaemonClient.
func (c *Client) Close() error {
	return c.conn.Close()
}

func millis(v *structpb.Value) time.Duration {
	return time.Duration(v.GetNumberValue()) * time.Millisecond
}

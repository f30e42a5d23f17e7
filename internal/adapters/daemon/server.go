// Package daemon implements the background process that serves the on-save
// hook. It speaks gRPC over a Unix domain socket in the workspace.
package daemon

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"
	"go.trai.ch/polish/internal/core/domain"
	"go.trai.ch/polish/internal/core/ports"
	"go.trai.ch/zerr"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// Handler is the application behind the daemon.
type Handler interface {
	WillSave(ctx context.Context, req domain.SaveRequest) domain.SaveResult
	InvalidateCaches()
	PendingSaves() int
}

// Server serves the daemon service for one workspace root.
type Server struct {
	root      string
	sessionID string
	handler   Handler
	lifecycle *Lifecycle
	logger    ports.Logger
	grpc      *grpc.Server
}

// NewServer creates a Server. Every request resets the lifecycle's idle timer.
func NewServer(root string, handler Handler, lifecycle *Lifecycle, logger ports.Logger) *Server {
	s := &Server{
		root:      root,
		sessionID: uuid.NewString(),
		handler:   handler,
		lifecycle: lifecycle,
		logger:    logger,
	}
	s.grpc = grpc.NewServer(grpc.UnaryInterceptor(s.intercept))
	s.grpc.RegisterService(&serviceDesc, s)
	return s
}

// SessionID identifies this daemon run.
func (s *Server) SessionID() string {
	return s.sessionID
}

func (s *Server) intercept(
	ctx context.Context,
	req any,
	info *grpc.UnaryServerInfo,
	next grpc.UnaryHandler,
) (any, error) {
	s.lifecycle.Touch()
	s.logger.Debug("rpc " + info.FullMethod)
	return next(ctx, req)
}

// Serve listens on the workspace socket and blocks until ctx is done or the
// lifecycle ends. The socket and pid file are removed on return.
func (s *Server) Serve(ctx context.Context) error {
	socketPath := filepath.Join(s.root, domain.DefaultDaemonSocketPath())

	if err := os.MkdirAll(filepath.Dir(socketPath), domain.DirPerm); err != nil {
		return zerr.Wrap(err, "failed to create daemon directory")
	}
	if err := os.Remove(socketPath); err != nil && !os.IsNotExist(err) {
		return zerr.Wrap(err, "failed to remove stale socket")
	}

	lis, err := net.Listen("unix", socketPath)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to listen on socket"), "socket", socketPath)
	}
	if err := os.Chmod(socketPath, domain.SocketPerm); err != nil {
		_ = lis.Close()
		return zerr.Wrap(err, "failed to set socket permissions")
	}

	pidPath := filepath.Join(s.root, domain.DefaultDaemonPIDPath())
	if err := os.WriteFile(pidPath, []byte(strconv.Itoa(os.Getpid())), domain.PrivateFilePerm); err != nil {
		_ = lis.Close()
		return zerr.Wrap(err, "failed to write pid file")
	}
	defer func() {
		_ = os.Remove(socketPath)
		_ = os.Remove(pidPath)
	}()

	return s.ServeListener(ctx, lis)
}

// ServeListener serves on lis until ctx is done or the lifecycle ends.
func (s *Server) ServeListener(ctx context.Context, lis net.Listener) error {
	errCh := make(chan error, 1)
	go func() { errCh <- s.grpc.Serve(lis) }()

	s.logger.Info("daemon listening on " + lis.Addr().String())

	select {
	case <-ctx.Done():
		s.grpc.GracefulStop()
		return nil
	case <-s.lifecycle.Done():
		s.grpc.GracefulStop()
		return nil
	case err := <-errCh:
		return err
	}
}

// Ping resets the idle timer.
func (s *Server) Ping(_ context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"idle_remaining_ms": s.lifecycle.IdleRemaining().Milliseconds(),
	})
}

// Status reports the daemon's state.
func (s *Server) Status(_ context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"running":            true,
		"pid":                os.Getpid(),
		"session_id":         s.sessionID,
		"root":               s.root,
		"uptime_ms":          s.lifecycle.Uptime().Milliseconds(),
		"last_activity_unix": s.lifecycle.LastActivity().Unix(),
		"idle_remaining_ms":  s.lifecycle.IdleRemaining().Milliseconds(),
		"pending_saves":      s.handler.PendingSaves(),
	})
}

// WillSave runs the on-save hook for one document.
func (s *Server) WillSave(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	res := s.handler.WillSave(ctx, decodeSaveRequest(req))
	return structpb.NewStruct(map[string]any{
		"text":    res.Text,
		"applied": res.Applied,
	})
}

// Invalidate drops cached transform state.
func (s *Server) Invalidate(_ context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	s.handler.InvalidateCaches()
	return &structpb.Struct{}, nil
}

// Shutdown ends the lifecycle; Serve then stops gracefully.
func (s *Server) Shutdown(_ context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	s.lifecycle.Stop()
	return structpb.NewStruct(map[string]any{"success": true})
}

func encodeSaveRequest(req domain.SaveRequest) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"path":     req.Path,
		"root":     req.Root,
		"language": string(req.Language),
		"text":     req.Text,
	})
}

func decodeSaveRequest(in *structpb.Struct) domain.SaveRequest {
	f := in.GetFields()
	return domain.SaveRequest{
		Path:     f["path"].GetStringValue(),
		Root:     f["root"].GetStringValue(),
		Language: domain.Language(f["language"].GetStringValue()),
		Text:     f["text"].GetStringValue(),
	}
}

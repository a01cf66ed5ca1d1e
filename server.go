package gamewire

import (
	"context"
	"log/slog"
	"net"
	"time"

	"github.com/pkg/errors"

	"github.com/Zereker/gamewire/internal/sync"
)

// Handler serves one accepted connection. Handle should return soon after
// ctx is done; Conn.Run does.
type Handler interface {
	Handle(ctx context.Context, conn *net.TCPConn)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, conn *net.TCPConn)

// Handle calls f.
func (f HandlerFunc) Handle(ctx context.Context, conn *net.TCPConn) {
	f(ctx, conn)
}

// Server accepts TCP connections and runs a Handler for each of them.
type Server struct {
	listener        *net.TCPListener
	logger          Logger
	shutdownTimeout time.Duration

	mu          sync.Mutex
	shutdown    bool
	shutdownNow chan struct{} // skips the rest of the drain timeout
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// ServerLoggerOption sets the server logger.
func ServerLoggerOption(logger Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

// ServerShutdownTimeoutOption sets how long Serve waits for running handlers
// after it stops accepting. Handlers still running after that see their
// context canceled. Default is 0: handlers are canceled right away.
func ServerShutdownTimeoutOption(timeout time.Duration) ServerOption {
	return func(s *Server) {
		s.shutdownTimeout = timeout
	}
}

// New creates a server listening on addr.
func New(addr *net.TCPAddr, opts ...ServerOption) (*Server, error) {
	listener, err := net.ListenTCP(addr.Network(), addr)
	if err != nil {
		return nil, errors.Wrapf(err, "listen on %s", addr)
	}

	s := &Server{
		listener:    listener,
		logger:      slog.Default(),
		shutdownNow: make(chan struct{}, 1),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Serve accepts connections until ctx is canceled or Close is called, then
// drains running handlers and returns ctx.Err().
//
// Handlers get a context that outlives ctx by the shutdown timeout, so
// connections can finish in-flight work before they are canceled.
func (s *Server) Serve(ctx context.Context, handler Handler) error {
	s.logger.Info("server started", "addr", s.listener.Addr())

	connCtx, cancelConns := context.WithCancel(context.WithoutCancel(ctx))
	defer cancelConns()

	var handlers sync.WaitGroup

	stop := context.AfterFunc(ctx, func() {
		s.mu.Lock()
		s.shutdown = true
		s.mu.Unlock()
		// Unblock Accept.
		_ = s.listener.SetDeadline(time.Now())
	})
	defer stop()

	for {
		conn, err := s.listener.AcceptTCP()
		if err != nil {
			if s.isShutdown() {
				s.drain(&handlers, cancelConns)
				s.logger.Info("server stopped", "addr", s.listener.Addr())
				return ctx.Err()
			}

			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				continue
			}
			s.logger.Error("accept error", "error", err)
			cancelConns()
			handlers.Wait()
			return errors.Wrap(err, "accept")
		}

		s.logger.Debug("accepted connection", "remote_addr", conn.RemoteAddr())
		_ = conn.SetNoDelay(true)

		handlers.Add(1)
		go func() {
			defer handlers.Done()
			handler.Handle(connCtx, conn)
		}()
	}
}

// drain waits up to the shutdown timeout for handlers, then cancels the
// rest and waits for them to return.
func (s *Server) drain(handlers *sync.WaitGroup, cancel context.CancelFunc) {
	done := make(chan struct{})
	go func() {
		handlers.Wait()
		close(done)
	}()

	if s.shutdownTimeout > 0 {
		s.logger.Info("draining connections", "timeout", s.shutdownTimeout)
		timer := time.NewTimer(s.shutdownTimeout)
		defer timer.Stop()

		select {
		case <-done:
			return
		case <-timer.C:
		case <-s.shutdownNow:
			s.logger.Debug("drain cut short by Close")
		}
	}

	cancel()
	<-done
}

func (s *Server) isShutdown() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shutdown
}

// Close stops accepting and cuts any drain short. Serve still waits for
// handlers to return after canceling them.
func (s *Server) Close() error {
	s.mu.Lock()
	s.shutdown = true
	s.mu.Unlock()

	select {
	case s.shutdownNow <- struct{}{}:
	default:
	}

	return s.listener.Close()
}

// Addr returns the listener's network address.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

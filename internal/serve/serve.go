// Package serve runs the game over SSH, one Bubble Tea program per session.
package serve

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	bm "github.com/charmbracelet/wish/bubbletea"
	"github.com/charmbracelet/wish/logging"

	"github.com/verte-zerg/spacelane/internal/generator"
	"github.com/verte-zerg/spacelane/internal/model"
	"github.com/verte-zerg/spacelane/internal/store"
	"github.com/verte-zerg/spacelane/internal/tui"
)

const shutdownTimeout = 10 * time.Second

// Config configures the SSH server.
type Config struct {
	Host        string
	Port        int
	HostKeyPath string
	Play        model.Config
}

// Addr returns the listen address.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Server hosts game sessions over SSH.
type Server struct {
	cfg    Config
	store  *store.Store
	logger *log.Logger
	ssh    *ssh.Server
}

type sessionModelKey struct{}

// New builds a Server. A missing host key is generated at cfg.HostKeyPath.
func New(cfg Config, st *store.Store, logger *log.Logger) (*Server, error) {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{cfg: cfg, store: st, logger: logger}
	if cfg.HostKeyPath == "" {
		return nil, fmt.Errorf("host key path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(cfg.HostKeyPath), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create host key dir: %w", err)
	}
	srv, err := wish.NewServer(
		wish.WithAddress(cfg.Addr()),
		wish.WithHostKeyPath(cfg.HostKeyPath),
		wish.WithMiddleware(
			s.finishMiddleware,
			bm.Middleware(s.teaHandler),
			activeterm.Middleware(),
			logging.StructuredMiddlewareWithLogger(logger, log.InfoLevel),
		),
		ssh.WrapConn(func(_ ssh.Context, conn net.Conn) net.Conn {
			if tcpConn, ok := conn.(*net.TCPConn); ok {
				_ = tcpConn.SetNoDelay(true)
			}
			return conn
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create ssh server: %w", err)
	}
	s.ssh = srv
	return s, nil
}

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.ssh.ListenAndServe()
	}()
	s.logger.Info("ssh server listening", "addr", s.cfg.Addr(), "mode", s.cfg.Play.Mode)

	select {
	case err := <-errCh:
		if errors.Is(err, ssh.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("failed to serve: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down ssh server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.ssh.Shutdown(shutdownCtx); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
		return fmt.Errorf("failed to shut down ssh server: %w", err)
	}
	return nil
}

func (s *Server) teaHandler(sess ssh.Session) (tea.Model, []tea.ProgramOption) {
	m := tui.NewModel(tui.Options{
		Config: s.cfg.Play,
		Store:  s.store,
		Logger: s.logger.With("user", sess.User()),
		Bell:   sess,
	}, generator.ForSeed(s.cfg.Play.Seed))
	sess.Context().SetValue(sessionModelKey{}, m)
	return m, []tea.ProgramOption{tea.WithAltScreen()}
}

// finishMiddleware runs after the program exits and saves sessions that ended
// by disconnect rather than the quit key.
func (s *Server) finishMiddleware(next ssh.Handler) ssh.Handler {
	return func(sess ssh.Session) {
		if m, ok := sess.Context().Value(sessionModelKey{}).(*tui.Model); ok {
			m.Close()
		}
		next(sess)
	}
}

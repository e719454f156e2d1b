package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	"github.com/charmbracelet/wish/logging"

	"github.com/tomz197/swarm/internal/config"
	"github.com/tomz197/swarm/internal/draw"
	"github.com/tomz197/swarm/internal/loop/client"
	loopconfig "github.com/tomz197/swarm/internal/loop/config"
	"github.com/tomz197/swarm/internal/loop/server"
	"github.com/tomz197/swarm/internal/loop/spectate"
)

const (
	defaultHost         = "::"
	defaultPort         = "2222"
	defaultHostKeyPath  = "/app/keys/host_key"
	defaultSpectateAddr = ":8081"
)

var logger = log.NewWithOptions(os.Stderr, log.Options{
	ReportTimestamp: true,
	Prefix:          "swarm",
})

// Global swarm server - shared by all SSH clients
var (
	gameServer   *server.Server
	cancelServer context.CancelFunc
	serverOnce   sync.Once
)

func main() {
	host := config.GetEnv("SSH_HOST", defaultHost)
	port := config.GetEnv("SSH_PORT", defaultPort)
	hostKeyPath := config.GetEnv("SSH_HOST_KEY", defaultHostKeyPath)
	spectateAddr := config.GetEnv("SPECTATE_ADDR", defaultSpectateAddr)
	spectateOrigins := splitList(config.GetEnv("SPECTATE_ORIGINS", ""))
	logger.Info("ssh config", "host", host, "port", port, "hostKeyPath", hostKeyPath, "spectateAddr", spectateAddr)

	if debug, err := config.GetEnvBool("SWARM_DEBUG", false); err != nil {
		logger.Fatal("invalid configuration", "err", err)
	} else if debug {
		logger.SetLevel(log.DebugLevel)
	}

	simCfg, err := loopconfig.SimConfig()
	if err != nil {
		logger.Fatal("invalid configuration", "err", err)
	}

	// Initialize and start the shared swarm server
	var serverCtx context.Context
	serverOnce.Do(func() {
		serverCtx, cancelServer = context.WithCancel(context.Background())
		gameServer, err = server.NewServer(simCfg, logger.WithPrefix("sim"))
		if err != nil {
			logger.Fatal("failed to start simulation", "err", err)
		}
		go func() {
			if err := gameServer.Run(serverCtx); err != nil {
				logger.Fatal("simulation stopped", "err", err)
			}
		}()
	})

	// Read-only browser stream of the same swarm
	var spectateSrv *http.Server
	if spectateAddr != "" {
		hub := spectate.NewHub(gameServer, logger.WithPrefix("spectate"), spectate.DefaultInterval)
		go hub.Run(serverCtx)

		mux := http.NewServeMux()
		mux.Handle("/ws", spectate.NewHandler(hub, spectateOrigins))
		spectateSrv = &http.Server{
			Addr:              spectateAddr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logger.Info("starting spectator stream", "addr", spectateAddr)
			if err := spectateSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("spectator stream stopped", "err", err)
			}
		}()
	}

	opts := []ssh.Option{
		wish.WithAddress(net.JoinHostPort(host, port)),
		wish.WithMiddleware(
			gameMiddleware,
			activeterm.Middleware(),
			logging.StructuredMiddlewareWithLogger(logger, log.InfoLevel),
		),
		// Set TCP_NODELAY to reduce latency for steering input
		ssh.WrapConn(func(ctx ssh.Context, conn net.Conn) net.Conn {
			if tcpConn, ok := conn.(*net.TCPConn); ok {
				_ = tcpConn.SetNoDelay(true)
			}
			return conn
		}),
	}

	if hostKeyPath != "" {
		opts = append(opts, wish.WithHostKeyPath(hostKeyPath))
	}

	s, err := wish.NewServer(opts...)
	if err != nil {
		logger.Fatal("failed to create server", "err", err)
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("starting SSH server", "host", host, "port", port)
	go func() {
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			logger.Fatal("server error", "err", err)
		}
	}()

	<-done
	logger.Info("shutting down server")

	// Gracefully shut down the swarm server: notify players and wait for them to disconnect
	if gameServer != nil {
		logger.Info("notifying connected players about shutdown")
		gameServer.Shutdown(15 * time.Second)
		cancelServer()
		logger.Info("swarm server stopped")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if spectateSrv != nil {
		if err := spectateSrv.Shutdown(ctx); err != nil {
			logger.Error("spectator shutdown error", "err", err)
		}
	}
	if err := s.Shutdown(ctx); err != nil {
		logger.Fatal("shutdown error", "err", err)
	}
}

// gameMiddleware handles SSH sessions and runs the swarm client.
func gameMiddleware(next ssh.Handler) ssh.Handler {
	return func(sess ssh.Session) {
		pty, winCh, ok := sess.Pty()
		if !ok {
			fmt.Fprintln(sess, "Error: PTY required. Please connect with: ssh -t user@host")
			return
		}

		username := sess.User()
		if len(username) > loopconfig.MaxUsernameLength {
			username = username[:loopconfig.MaxUsernameLength]
		}

		logger.Info("new session", "user", username, "term", pty.Term,
			"size", fmt.Sprintf("%dx%d", pty.Window.Width, pty.Window.Height))

		// Create a terminal size tracker that updates on window changes
		sizeTracker := newSizeTracker(pty.Window.Width, pty.Window.Height)

		// Listen for window size changes in a goroutine
		go func() {
			for win := range winCh {
				sizeTracker.update(win.Width, win.Height)
			}
		}()

		reader := bufio.NewReader(sess)
		clientOpts := client.ClientOptions{
			TermSizeFunc: sizeTracker.getSize,
			Username:     username,
		}

		// Create a new client connected to the shared swarm server
		c := client.NewClient(gameServer, reader, sess, clientOpts)
		if err := c.Run(); err != nil {
			logger.Error("session error", "user", username, "err", err)
		}

		logger.Info("session ended", "user", username)
		next(sess)
	}
}

// splitList parses a comma-separated environment value.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// sizeTracker tracks terminal size from SSH window change events.
type sizeTracker struct {
	mu     sync.RWMutex
	width  int
	height int
}

func newSizeTracker(width, height int) *sizeTracker {
	return &sizeTracker{width: width, height: height}
}

func (s *sizeTracker) update(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width = width
	s.height = height
}

func (s *sizeTracker) getSize() (int, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.width, s.height, nil
}

// Ensure sizeTracker.getSize satisfies draw.TermSizeFunc
var _ draw.TermSizeFunc = (*sizeTracker)(nil).getSize

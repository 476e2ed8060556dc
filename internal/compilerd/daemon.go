package compilerd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"

	"github.com/opencode-ai/faultgen/internal/config"
)

// Options configure the daemon runtime.
type Options struct {
	Hostname string
	Port     int
	Version  string
	// Limits override DefaultRateLimits when rate limiting is enabled.
	Limits map[string]RateLimitConfig
}

// Daemon hosts the compile service.
type Daemon struct {
	cfg    *config.Config
	logger zerolog.Logger
	opts   Options

	server     *Server
	limiter    *RateLimiter
	grpcServer *grpc.Server
}

// New constructs a daemon. Zero options fall back to the daemon section of cfg.
func New(cfg *config.Config, logger zerolog.Logger, opts Options) (*Daemon, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if opts.Hostname == "" {
		opts.Hostname = cfg.Daemon.Host
	}
	if opts.Hostname == "" {
		opts.Hostname = "127.0.0.1"
	}
	if opts.Port == 0 {
		opts.Port = cfg.Daemon.Port
	}
	if opts.Port == 0 {
		opts.Port = config.DefaultPort
	}

	server := NewServer(logger, WithVersion(opts.Version))

	var serverOpts []grpc.ServerOption
	var limiter *RateLimiter
	if cfg.Daemon.RateLimit {
		limiter = NewRateLimiter(opts.Limits)
		serverOpts = append(serverOpts, grpc.UnaryInterceptor(limiter.UnaryServerInterceptor()))
	}

	grpcServer := grpc.NewServer(serverOpts...)
	RegisterCompilerServer(grpcServer, server)

	return &Daemon{
		cfg:        cfg,
		logger:     logger,
		opts:       opts,
		server:     server,
		limiter:    limiter,
		grpcServer: grpcServer,
	}, nil
}

// Run listens on the configured address and serves until ctx is canceled.
func (d *Daemon) Run(ctx context.Context) error {
	if ctx == nil {
		return errors.New("context is required")
	}

	bindAddr := d.bindAddr()
	listener, err := net.Listen("tcp", bindAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", bindAddr, err)
	}
	return d.Serve(ctx, listener)
}

// Serve serves on listener until ctx is canceled, then stops gracefully.
func (d *Daemon) Serve(ctx context.Context, listener net.Listener) error {
	d.logger.Info().
		Str("bind", listener.Addr().String()).
		Str("version", d.opts.Version).
		Bool("rate_limit", d.limiter != nil).
		Msg("compile service starting")

	errCh := make(chan error, 1)
	go func() {
		if err := d.grpcServer.Serve(listener); err != nil {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		d.logger.Info().Msg("compile service shutting down...")
		d.grpcServer.GracefulStop()
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("gRPC server error: %w", err)
		}
	}

	d.logger.Info().Msg("compile service shutdown complete")
	return nil
}

func (d *Daemon) bindAddr() string {
	return net.JoinHostPort(d.opts.Hostname, strconv.Itoa(d.opts.Port))
}

// Server returns the underlying service implementation.
func (d *Daemon) Server() *Server {
	return d.server
}

// Limiter returns the rate limiter, or nil when rate limiting is disabled.
func (d *Daemon) Limiter() *RateLimiter {
	return d.limiter
}

// Package obs drives OBS Studio over its WebSocket API: recording, replay
// buffer and clip saving.
package obs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"sync"

	"github.com/andreykaipov/goobs"
)

// ErrClosed is returned by calls made after Close.
var ErrClosed = errors.New("obs: client closed")

// Hint is logged when the connection cannot be established.
const Hint = "ensure OBS Studio is running, the WebSocket server is enabled and the credentials are valid"

// Config locates the OBS WebSocket server.
type Config struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Password string `json:"password"`
}

// DefaultConfig returns the stock OBS WebSocket address.
func DefaultConfig() Config {
	return Config{Host: "localhost", Port: 4455}
}

// Addr returns host:port.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// backend is the subset of the OBS request API the agent uses.
type backend interface {
	StartRecord() error
	StopRecord() error
	StartReplayBuffer() error
	StopReplayBuffer() error
	SaveReplayBuffer() error
	Disconnect() error
}

// Client is a connected OBS session.
type Client struct {
	mu     sync.Mutex
	api    backend
	closed bool
}

// Connect dials OBS. The error carries Hint so callers can log it as is.
func Connect(ctx context.Context, cfg Config, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	addr := cfg.Addr()
	logger.Info("connecting to obs websocket", "addr", addr)

	var opts []goobs.Option
	if cfg.Password != "" {
		opts = append(opts, goobs.WithPassword(cfg.Password))
	}
	c, err := goobs.New(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect obs at %s: %w (%s)", addr, err, Hint)
	}
	return newClient(goobsBackend{c}), nil
}

func newClient(api backend) *Client {
	return &Client{api: api}
}

func (c *Client) StartRecording(ctx context.Context) error {
	return c.call(ctx, "start record", backend.StartRecord)
}

func (c *Client) StopRecording(ctx context.Context) error {
	return c.call(ctx, "stop record", backend.StopRecord)
}

func (c *Client) StartReplayBuffer(ctx context.Context) error {
	return c.call(ctx, "start replay buffer", backend.StartReplayBuffer)
}

func (c *Client) StopReplayBuffer(ctx context.Context) error {
	return c.call(ctx, "stop replay buffer", backend.StopReplayBuffer)
}

func (c *Client) SaveReplayBuffer(ctx context.Context) error {
	return c.call(ctx, "save replay buffer", backend.SaveReplayBuffer)
}

func (c *Client) call(ctx context.Context, op string, fn func(backend) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	if err := fn(c.api); err != nil {
		return fmt.Errorf("obs %s: %w", op, err)
	}
	return nil
}

// Close disconnects from OBS. It is safe to call more than once.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	return c.api.Disconnect()
}

type goobsBackend struct {
	c *goobs.Client
}

func (b goobsBackend) StartRecord() error {
	_, err := b.c.Record.StartRecord()
	return err
}

func (b goobsBackend) StopRecord() error {
	_, err := b.c.Record.StopRecord()
	return err
}

func (b goobsBackend) StartReplayBuffer() error {
	_, err := b.c.Outputs.StartReplayBuffer()
	return err
}

func (b goobsBackend) StopReplayBuffer() error {
	_, err := b.c.Outputs.StopReplayBuffer()
	return err
}

func (b goobsBackend) SaveReplayBuffer() error {
	_, err := b.c.Outputs.SaveReplayBuffer()
	return err
}

func (b goobsBackend) Disconnect() error {
	return b.c.Disconnect()
}

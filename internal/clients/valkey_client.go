package clients

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/valkey-io/valkey-go"
)

const (
	VALKEY_RATE_LIMIT_PREFIX = "fieldpulse:ratelimit:"
	VALKEY_DIAL_TIMEOUT      = 3 * time.Second
	VALKEY_RETRY_BACKOFF     = 250 * time.Millisecond
)

// windowScript increments a fixed window counter and sets its TTL whenever the
// key has none, so a key left without an expiry heals on its next hit.
var windowScript = valkey.NewLuaScript(`
local n = redis.call('INCR', KEYS[1])
if redis.call('PTTL', KEYS[1]) < 0 then
  redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
return n
`)

// windowRunner executes one increment-and-expire step for key.
type windowRunner func(ctx context.Context, c valkey.Client, key string, window time.Duration) (int64, error)

func runWindowScript(ctx context.Context, c valkey.Client, key string, window time.Duration) (int64, error) {
	ms := max(window.Milliseconds(), 1)
	return windowScript.Exec(ctx, c, []string{key}, []string{strconv.FormatInt(ms, 10)}).AsInt64()
}

var (
	valkeyInstance *ValkeyClient
	valkeyErr      error
	valkeyOnce     sync.Once
)

type ValkeyOptions struct {
	Addr     string
	Password string
	TLS      bool
}

type ValkeyClient struct {
	Client valkey.Client
	opts   ValkeyOptions
	mu     sync.Mutex
	window windowRunner
}

func (o ValkeyOptions) clientOption() valkey.ClientOption {
	opts := valkey.ClientOption{
		InitAddress:      []string{o.Addr},
		Password:         o.Password,
		ConnWriteTimeout: 5 * time.Second,
		SelectDB:         0,
	}
	if o.TLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	return opts
}

func dialValkey(o ValkeyOptions) (valkey.Client, error) {
	client, err := valkey.NewClient(o.clientOption())
	if err != nil {
		return nil, fmt.Errorf("[ValkeyClient] failed to create Valkey: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), VALKEY_DIAL_TIMEOUT)
	defer cancel()

	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("[ValkeyClient] failed to ping Valkey: %w", err)
	}

	return client, nil
}

// NewValkeyClient connects to valkey and verifies the connection with a PING.
func NewValkeyClient(o ValkeyOptions) (*ValkeyClient, error) {
	if o.Addr == "" {
		return nil, errors.New("[ValkeyClient] no address configured")
	}

	client, err := dialValkey(o)
	if err != nil {
		return nil, err
	}

	slog.Info("[ValkeyClient] Successfully connected to valkey", slog.String("addr", o.Addr))
	return &ValkeyClient{Client: client, opts: o, window: runWindowScript}, nil
}

// InitValkey creates the process wide client on first use.
func InitValkey(o ValkeyOptions) (*ValkeyClient, error) {
	valkeyOnce.Do(func() {
		valkeyInstance, valkeyErr = NewValkeyClient(o)
	})
	return valkeyInstance, valkeyErr
}

func CloseValkey() {
	if valkeyInstance != nil {
		valkeyInstance.Close()
	}
}

func (vc *ValkeyClient) Close() {
	vc.mu.Lock()
	defer vc.mu.Unlock()
	vc.Client.Close()
}

func (vc *ValkeyClient) client() valkey.Client {
	vc.mu.Lock()
	defer vc.mu.Unlock()
	return vc.Client
}

func (vc *ValkeyClient) recreateClient() {
	vc.mu.Lock()
	defer vc.mu.Unlock()

	slog.Warn("[ValkeyClient] Attempting to recreate Valkey client...")
	client, err := dialValkey(vc.opts)
	if err != nil {
		slog.Error("[ValkeyClient] Recreate failed", slog.String("error", err.Error()))
		return
	}

	vc.Client.Close()
	vc.Client = client
	slog.Info("[ValkeyClient] Successfully reconnected to valkey")
}

// Ping reports whether valkey answers within ctx.
func (vc *ValkeyClient) Ping(ctx context.Context) error {
	c := vc.client()
	return vc.DoWithRetry(ctx, c.B().Ping().Build(), 2).Error()
}

// IncrWindow increments the fixed window counter for key and returns the
// count so far. Increment and expiry run as one script. It is not retried,
// since a timed out increment may already have been applied.
func (vc *ValkeyClient) IncrWindow(ctx context.Context, key string, window time.Duration) (int64, error) {
	fullKey := VALKEY_RATE_LIMIT_PREFIX + key

	run := vc.window
	if run == nil {
		run = runWindowScript
	}

	count, err := run(ctx, vc.client(), fullKey, window)
	if err != nil {
		if isConnectionError(err) {
			vc.recreateClient()
		}
		return 0, fmt.Errorf("incr %s: %w", fullKey, err)
	}

	return count, nil
}

// DoWithRetry runs an idempotent command, retrying failures until ctx ends.
func (vc *ValkeyClient) DoWithRetry(ctx context.Context, completed valkey.Completed, retries int) valkey.ValkeyResult {
	var result valkey.ValkeyResult
	for i := 0; i < retries; i++ {
		result = vc.client().Do(ctx, completed)
		if result.Error() == nil || ctx.Err() != nil {
			break
		}

		slog.Warn("[ValkeyClient] Do failed",
			slog.Int("attempt", i+1),
			slog.String("error", result.Error().Error()))

		select {
		case <-ctx.Done():
			return result
		case <-time.After(VALKEY_RETRY_BACKOFF):
		}
	}

	return result
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "EOF") ||
		strings.Contains(msg, "i/o timeout")
}

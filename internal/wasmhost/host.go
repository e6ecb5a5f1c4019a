// Package wasmhost runs the godice WASI module in a wazero sandbox.
//
// A host compiles the module once and instantiates it per request, so
// every roll runs in a fresh, memory-isolated instance with no access to
// the filesystem or network. This is how untrusted notation is rolled by
// the godice command when --wasm is set.
//
// # Example
//
//	h, err := wasmhost.Load(ctx, "godice.wasm")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer h.Close(ctx)
//	resp, err := h.Roll(ctx, proto.Request{Notation: "4d6kh3", Seed: 42})
package wasmhost

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"github.com/tetratelabs/wazero/sys"

	"github.com/sandrolain/godice/internal/wasmhost/proto"
)

// Options holds host configuration.
type Options struct {
	// Timeout bounds a single request. Zero means no limit.
	Timeout time.Duration
	// MemoryLimitPages caps guest memory in 64 KiB pages. Zero keeps the
	// wazero default.
	MemoryLimitPages uint32
	// Logger for structured logging.
	Logger *slog.Logger
}

// Option configures a Host.
type Option func(*Options)

// WithTimeout bounds each request.
func WithTimeout(d time.Duration) Option {
	return func(opts *Options) {
		opts.Timeout = d
	}
}

// WithMemoryLimitPages caps guest memory.
func WithMemoryLimitPages(pages uint32) Option {
	return func(opts *Options) {
		opts.MemoryLimitPages = pages
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(opts *Options) {
		opts.Logger = logger
	}
}

// Host holds a compiled godice WASI module.
// It is safe for concurrent use.
type Host struct {
	runtime  wazero.Runtime
	compiled wazero.CompiledModule
	timeout  time.Duration
	logger   *slog.Logger
}

// Load reads and compiles the module at path.
func Load(ctx context.Context, path string, opts ...Option) (*Host, error) {
	wasm, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read wasm module: %w", err)
	}
	return New(ctx, wasm, opts...)
}

// New compiles a module from its binary.
func New(ctx context.Context, wasm []byte, opts ...Option) (*Host, error) {
	options := Options{}
	for _, opt := range opts {
		opt(&options)
	}
	if options.Logger == nil {
		options.Logger = slog.Default()
	}

	cfg := wazero.NewRuntimeConfig().WithCloseOnContextDone(options.Timeout > 0)
	if options.MemoryLimitPages > 0 {
		cfg = cfg.WithMemoryLimitPages(options.MemoryLimitPages)
	}
	r := wazero.NewRuntimeWithConfig(ctx, cfg)
	if _, err := wasi_snapshot_preview1.Instantiate(ctx, r); err != nil {
		_ = r.Close(ctx)
		return nil, fmt.Errorf("instantiate wasi: %w", err)
	}

	compiled, err := r.CompileModule(ctx, wasm)
	if err != nil {
		_ = r.Close(ctx)
		return nil, fmt.Errorf("compile wasm module: %w", err)
	}

	return &Host{
		runtime:  r,
		compiled: compiled,
		timeout:  options.Timeout,
		logger:   options.Logger,
	}, nil
}

// Roll sends req to a fresh module instance and decodes its response.
// An error reported by the module is returned as an error.
func (h *Host) Roll(ctx context.Context, req proto.Request) (*proto.Response, error) {
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	in, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	var stdout, stderr bytes.Buffer
	cfg := wazero.NewModuleConfig().
		WithName("").
		WithArgs("godice").
		WithStdin(bytes.NewReader(in)).
		WithStdout(&stdout).
		WithStderr(&stderr)

	start := time.Now()
	mod, runErr := h.runtime.InstantiateModule(ctx, h.compiled, cfg)
	if mod != nil {
		_ = mod.Close(ctx)
	}
	h.logger.Debug("wasm roll",
		slog.String("notation", req.Notation),
		slog.Duration("elapsed", time.Since(start)),
		slog.Int("stdout_bytes", stdout.Len()))

	var exit *sys.ExitError
	if runErr != nil && !errors.As(runErr, &exit) {
		return nil, fmt.Errorf("run wasm module: %w", runErr)
	}

	var resp proto.Response
	if err := json.Unmarshal(stdout.Bytes(), &resp); err != nil {
		return nil, fmt.Errorf("decode response (exit %v, stderr %q): %w", runErr, stderr.String(), err)
	}
	if resp.Error != "" {
		return &resp, fmt.Errorf("godice module: %s", resp.Error)
	}
	return &resp, nil
}

// Close releases the runtime and every compiled module.
func (h *Host) Close(ctx context.Context) error {
	return h.runtime.Close(ctx)
}

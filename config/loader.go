// Package config binds layered configuration into typed, validated records.
//
// Boot is the entry point. It loads the sources described by source.Options,
// logs the redacted effective tree, binds one block per top-level field of
// the aggregate schema and returns the assembled aggregate, or a *BootError
// wrapping exactly one of the errors in this package.
//
//	type AppConfig struct {
//		HTTP HTTPConfig
//		DB   DBConfig
//	}
//
//	cfg, err := config.Boot[AppConfig](config.WithLogger(logger))
//
// Top-level blocks are looked up by their field name as is (http, db);
// fields inside a block use the kebab-case key from KeyFor (pool-size).
package config

import (
	"context"
	"errors"
	"log/slog"
	"reflect"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/godamri/helix-config/metrics"
	"github.com/godamri/helix-config/schema"
	"github.com/godamri/helix-config/source"
	"github.com/godamri/helix-config/tree"
)

const tracerName = "github.com/godamri/helix-config/config"

// Option customises Boot.
type Option func(*bootOptions)

type bootOptions struct {
	source        source.Options
	sourceSet     bool
	logger        *slog.Logger
	binder        *Binder
	metrics       metrics.Recorder
	tracer        trace.Tracer
	dump          bool
	kebabTopLevel bool
	onLoaded      func(*tree.Tree)
}

// WithSource sets where configuration is read from. Without it Boot uses
// source.OptionsFromEnv.
func WithSource(opts source.Options) Option {
	return func(o *bootOptions) {
		o.source = opts
		o.sourceSet = true
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *bootOptions) { o.logger = logger }
}

// WithBinder binds blocks with b and checks the aggregate with its validator.
func WithBinder(b *Binder) Option {
	return func(o *bootOptions) { o.binder = b }
}

func WithMetrics(r metrics.Recorder) Option {
	return func(o *bootOptions) { o.metrics = r }
}

func WithTracer(t trace.Tracer) Option {
	return func(o *bootOptions) { o.tracer = t }
}

// WithoutDump suppresses the effective configuration log record.
func WithoutDump() Option {
	return func(o *bootOptions) { o.dump = false }
}

// WithKebabTopLevel looks top-level blocks up by KeyFor(name) instead of the
// raw field name, so a field named tlsConfig reads the tls-config block.
func WithKebabTopLevel() Option {
	return func(o *bootOptions) { o.kebabTopLevel = true }
}

// OnLoaded calls fn with the effective tree once sources are loaded and
// before anything is bound. fn must not modify the tree.
func OnLoaded(fn func(root *tree.Tree)) Option {
	return func(o *bootOptions) { o.onLoaded = fn }
}

func newBootOptions(opts []Option) *bootOptions {
	o := &bootOptions{dump: true}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.binder == nil {
		o.binder = NewBinder(nil)
	}
	if o.metrics == nil {
		o.metrics = metrics.Nop{}
	}
	if o.tracer == nil {
		o.tracer = otel.Tracer(tracerName)
	}
	if o.source.Logger == nil {
		o.source.Logger = o.logger
	}
	return o
}

// Boot loads configuration into a T, reflecting T's schema.
func Boot[T any](opts ...Option) (T, error) {
	return BootContextOf[T](context.Background(), opts...)
}

// BootContextOf is Boot with a caller context for tracing and logging.
func BootContextOf[T any](ctx context.Context, opts ...Option) (T, error) {
	var zero T
	s, err := schema.Of[T]()
	if err != nil {
		o := newBootOptions(opts)
		err = &BootError{Schema: typeName[T](), Err: err}
		o.logger.ErrorContext(ctx, "FATAL: Application configuration failed to boot", "error", err)
		return zero, err
	}
	v, err := BootContext(ctx, s, opts...)
	if err != nil {
		return zero, err
	}
	return v.(T), nil
}

// BootSchema loads configuration into an instance of s.
func BootSchema(s schema.Schema, opts ...Option) (any, error) {
	return BootContext(context.Background(), s, opts...)
}

// BootContext loads configuration into an instance of s. It runs once, at
// startup, and returns either a fully validated aggregate or a *BootError.
func BootContext(ctx context.Context, s schema.Schema, opts ...Option) (any, error) {
	o := newBootOptions(opts)

	ctx, span := o.tracer.Start(ctx, "config.Boot", trace.WithAttributes(attribute.String("config.schema", s.Name())))
	defer span.End()

	start := time.Now()
	instance, err := o.boot(ctx, s)

	violations := 0
	var ve *ValidationError
	if errors.As(err, &ve) {
		violations = len(ve.Violations)
	}
	o.metrics.ObserveBoot(s.Name(), time.Since(start), violations, err)

	if err != nil {
		err = &BootError{Schema: s.Name(), Err: err}
		o.logger.ErrorContext(ctx, "FATAL: Application configuration failed to boot", "schema", s.Name(), "error", err)
		span.SetStatus(codes.Error, "configuration failed to boot")
		return nil, err
	}

	o.logger.DebugContext(ctx, "Configuration booted", "schema", s.Name(), "elapsed", time.Since(start))
	return instance, nil
}

func (o *bootOptions) boot(ctx context.Context, s schema.Schema) (any, error) {
	// 1. Layer the sources
	srcOpts := o.source
	if !o.sourceSet {
		env, err := source.OptionsFromEnv()
		if err != nil {
			return nil, &SourceLoadError{Err: err}
		}
		env.Logger = srcOpts.Logger
		srcOpts = env
	}
	root, err := source.Load(srcOpts)
	if err != nil {
		return nil, &SourceLoadError{Err: err}
	}

	// 2. Dump what we are about to bind
	if o.dump {
		LogEffective(ctx, o.logger, root)
	}
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("config.fingerprint", Fingerprint(root)))
	if o.onLoaded != nil {
		o.onLoaded(root)
	}

	// 3. Bind each top-level block; constraints are checked afterwards so
	// every violation across blocks is reported together.
	return o.assemble(root, s)
}

func (o *bootOptions) assemble(root *tree.Tree, s schema.Schema) (any, error) {
	fields := s.Fields()
	values := make([]any, len(fields))
	for i, f := range fields {
		path := f.Name
		if o.kebabTopLevel {
			path = KeyFor(f.Name)
		}
		if f.Type != schema.Object {
			return nil, &UnsupportedTypeError{Key: path, Type: f.TypeName}
		}
		v, err := o.binder.assemble(root, path, f.Schema)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}

	// 4. Assemble and validate the aggregate as a whole
	instance, err := s.Construct(values)
	if err != nil {
		return nil, err
	}
	if err := o.binder.validator.Validate(s, instance); err != nil {
		return nil, err
	}
	return instance, nil
}

func typeName[T any]() string {
	return reflect.TypeOf((*T)(nil)).Elem().String()
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package semex

import (
	"go.uber.org/zap"

	"github.com/pdiddy/semex/internal/metrics"
	"github.com/pdiddy/semex/pkg/types"
)

// Option configures a Processor.
type Option func(*options)

type options struct {
	logger      *zap.Logger
	scope       types.ScopeConfig
	cache       types.CacheConfig
	metrics     *metrics.Metrics
	builtinCues bool
}

func defaultOptions() options {
	return options{
		logger:      zap.NewNop(),
		scope:       types.DefaultScopeConfig(),
		builtinCues: true,
	}
}

// WithLogger sets the logger. A nil logger discards output.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithScope sets the segmentation and scope rules.
func WithScope(cfg types.ScopeConfig) Option {
	return func(o *options) {
		o.scope = cfg
	}
}

// WithCache enables the extraction cache when cfg.Enabled is set.
func WithCache(cfg types.CacheConfig) Option {
	return func(o *options) {
		o.cache = cfg
	}
}

// WithMetrics records extraction activity into m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithBuiltinCues controls whether the embedded cue vocabulary is loaded.
// It is on by default.
func WithBuiltinCues(enabled bool) Option {
	return func(o *options) {
		o.builtinCues = enabled
	}
}

package assetsync

import (
	"github.com/agentstation/assetsync/internal/metrics"
	"github.com/agentstation/assetsync/pkg/sources"
)

// Option is a function that configures a Syncer
type Option func(*options) error

type options struct {
	registry Registry
	sources  []sources.Source
	metrics  *metrics.Metrics
}

// WithRegistry uses reg instead of building a registry client from the
// settings.
func WithRegistry(reg Registry) Option {
	return func(o *options) error {
		o.registry = reg
		return nil
	}
}

// WithSource adds a feed. It replaces the feed of the same name that the
// settings would build.
func WithSource(src sources.Source) Option {
	return func(o *options) error {
		o.sources = append(o.sources, src)
		return nil
	}
}

// WithMetrics records run metrics into m instead of a private set.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) error {
		o.metrics = m
		return nil
	}
}

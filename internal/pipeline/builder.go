// Package pipeline implements pipeline construction.
package pipeline

import (
	"firestige.xyz/atalkdump/internal/core/decoder"
	"firestige.xyz/atalkdump/internal/sink"
	"firestige.xyz/atalkdump/internal/source"
)

// Builder provides a fluent interface for building pipelines.
// This is an alternative to using Config directly.
type Builder struct {
	config Config
}

// NewBuilder creates a new pipeline builder.
func NewBuilder() *Builder {
	return &Builder{
		config: Config{
			BufferSize: 1024,
		},
	}
}

// WithSource sets the packet source.
func (b *Builder) WithSource(s source.Source) *Builder {
	b.config.Source = s
	return b
}

// WithDecoder sets the frame decoder.
func (b *Builder) WithDecoder(d *decoder.Decoder) *Builder {
	b.config.Decoder = d
	return b
}

// WithFilter sets the link-level filter.
func (b *Builder) WithFilter(f *source.Filter) *Builder {
	b.config.Filter = f
	return b
}

// WithSinks sets the outputs.
func (b *Builder) WithSinks(sinks ...sink.Sink) *Builder {
	b.config.Sinks = sinks
	return b
}

// WithBufferSize sets the raw packet channel buffer size.
func (b *Builder) WithBufferSize(size int) *Builder {
	b.config.BufferSize = size
	return b
}

// Build creates the pipeline.
func (b *Builder) Build() *Pipeline {
	return New(b.config)
}

package cmd

import (
	"context"
	"fmt"
	"io"

	"firestige.xyz/atalkdump/internal/config"
	"firestige.xyz/atalkdump/internal/core/decoder"
	"firestige.xyz/atalkdump/internal/log"
	"firestige.xyz/atalkdump/internal/metrics"
	"firestige.xyz/atalkdump/internal/names"
	"firestige.xyz/atalkdump/internal/pipeline"
	"firestige.xyz/atalkdump/internal/sink"
	"firestige.xyz/atalkdump/internal/sink/console"
	"firestige.xyz/atalkdump/internal/sink/pcapfile"
	"firestige.xyz/atalkdump/internal/source"
)

// newDecoder builds a decoder and its names cache from the configuration.
// Numeric output also turns off the names file.
func newDecoder(c *config.Config) (*decoder.Decoder, *names.Cache) {
	cache := names.New(c.Decoder.NamesFile, !c.Decoder.Numeric)
	d := decoder.New(cache, decoder.Options{
		Numeric:    c.Decoder.Numeric,
		LinkDetail: c.Decoder.LinkDetail,
		Observer:   metrics.NewDecodeObserver(),
	})
	return d, cache
}

// runOptions are per-command pipeline settings.
type runOptions struct {
	writePath   string
	noTimestamp bool
}

// runPipeline decodes everything src produces, printing to out.
func runPipeline(ctx context.Context, c *config.Config, src source.Source, out io.Writer, opts runOptions) error {
	defer src.Close()

	if c.Metrics.Enabled {
		srv := metrics.NewServer(c.Metrics.Listen, c.Metrics.Path)
		if err := srv.Start(ctx); err != nil {
			return err
		}
		defer srv.Stop(context.Background())
	}

	d, cache := newDecoder(c)
	con := console.NewSink(out, console.Options{NoTimestamp: opts.noTimestamp})
	sinks := []sink.Sink{con}
	if opts.writePath != "" {
		w, err := pcapfile.Create(opts.writePath, src.LinkType())
		if err != nil {
			return err
		}
		sinks = append(sinks, w)
	}
	defer func() {
		for _, s := range sinks {
			if err := s.Close(); err != nil {
				log.GetLogger().WithError(err).WithField("sink", s.Name()).Warn("failed to close sink")
			}
		}
	}()

	b := pipeline.NewBuilder().
		WithSource(src).
		WithDecoder(d).
		WithSinks(sinks...)
	if c.Input.FilterAppleTalk {
		f, err := source.NewAppleTalkFilter()
		if err != nil {
			return fmt.Errorf("failed to build filter: %w", err)
		}
		b.WithFilter(f)
	}

	err := b.Build().Run(ctx)
	metrics.NamesCacheEntries.Set(float64(cache.Len()))

	stats := src.Stats()
	log.GetLogger().WithFields(map[string]interface{}{
		"source":   src.Name(),
		"received": stats.PacketsReceived,
		"dropped":  stats.PacketsDropped,
	}).Debug("source closed")
	return err
}

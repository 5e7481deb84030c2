// Package pipeline implements the frame processing pipeline engine.
package pipeline

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/gopacket/layers"

	"firestige.xyz/atalkdump/internal/core"
	"firestige.xyz/atalkdump/internal/core/decoder"
	"firestige.xyz/atalkdump/internal/log"
	"firestige.xyz/atalkdump/internal/metrics"
	"firestige.xyz/atalkdump/internal/sink"
	"firestige.xyz/atalkdump/internal/source"
)

// Pipeline reads one source and prints every AppleTalk frame to its sinks.
type Pipeline struct {
	source     source.Source
	decoder    *decoder.Decoder
	filter     *source.Filter
	sinks      []sink.Sink
	classifier *source.Classifier
	metrics    *Metrics
	line       bytes.Buffer

	// Runtime state
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	captureErr error

	// Channel between the capture and process goroutines
	rawPacketChan chan core.RawPacket
}

// Config contains pipeline configuration.
type Config struct {
	Source  source.Source
	Decoder *decoder.Decoder
	// Filter drops non-AppleTalk Ethernet frames before classification.
	// It is not applied to other link types.
	Filter     *source.Filter
	Sinks      []sink.Sink
	BufferSize int // Raw packet channel buffer size
}

// New creates a new pipeline.
func New(cfg Config) *Pipeline {
	if cfg.BufferSize == 0 {
		cfg.BufferSize = 1024
	}
	if cfg.Decoder == nil {
		cfg.Decoder = decoder.New(nil, decoder.Options{})
	}

	return &Pipeline{
		source:        cfg.Source,
		decoder:       cfg.Decoder,
		filter:        cfg.Filter,
		sinks:         cfg.Sinks,
		classifier:    source.NewClassifier(),
		metrics:       NewMetrics(),
		rawPacketChan: make(chan core.RawPacket, cfg.BufferSize),
	}
}

// Start starts the capture and process goroutines.
func (p *Pipeline) Start(ctx context.Context) error {
	p.ctx, p.cancel = context.WithCancel(ctx)

	log.GetLogger().WithField("source", p.source.Name()).
		WithField("link_type", p.source.LinkType().String()).
		Info("pipeline starting")

	p.wg.Add(2)
	go p.captureLoop()
	go p.processLoop()
	return nil
}

// Wait blocks until the source is exhausted or the pipeline is stopped,
// and returns the capture error, if any.
func (p *Pipeline) Wait() error {
	p.wg.Wait()
	return p.captureErr
}

// Stop cancels processing and waits for both goroutines.
func (p *Pipeline) Stop() error {
	log.GetLogger().WithField("source", p.source.Name()).Info("pipeline stopping")
	if p.cancel != nil {
		p.cancel()
	}
	return p.Wait()
}

// Run processes the whole source, or until ctx is cancelled.
func (p *Pipeline) Run(ctx context.Context) error {
	if err := p.Start(ctx); err != nil {
		return err
	}
	err := p.Wait()
	p.cancel()

	stats := p.Stats()
	log.GetLogger().WithFields(map[string]interface{}{
		"source":   p.source.Name(),
		"received": stats.Received,
		"decoded":  stats.Decoded,
		"filtered": stats.Filtered,
		"skipped":  stats.Skipped,
	}).Info("pipeline finished")
	return err
}

// captureLoop reads packets from the source into the processing channel.
func (p *Pipeline) captureLoop() {
	defer p.wg.Done()

	if err := p.source.Capture(p.ctx, p.rawPacketChan); err != nil && p.ctx.Err() == nil {
		log.GetLogger().WithError(err).WithField("source", p.source.Name()).Error("capture failed")
		p.captureErr = err
	}

	// Close channel when capture ends
	close(p.rawPacketChan)
}

// processLoop is the main processing loop.
func (p *Pipeline) processLoop() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return

		case raw, ok := <-p.rawPacketChan:
			if !ok {
				// Channel closed, source exhausted
				return
			}
			p.processPacket(raw)
		}
	}
}

// processPacket filters, classifies, decodes and delivers one packet.
func (p *Pipeline) processPacket(raw core.RawPacket) {
	name := p.source.Name()
	linkType := p.source.LinkType()

	p.metrics.Received.Add(1)
	metrics.CapturePacketsTotal.WithLabelValues(name).Inc()

	if p.filter != nil && linkType == layers.LinkTypeEthernet && !p.filter.Match(raw.Data) {
		p.metrics.Filtered.Add(1)
		metrics.CaptureDropsTotal.WithLabelValues(name, "filter").Inc()
		return
	}

	frame, err := p.classifier.Classify(linkType, raw)
	if err != nil {
		p.metrics.Skipped.Add(1)
		metrics.CaptureDropsTotal.WithLabelValues(name, "classify").Inc()
		if !errors.Is(err, core.ErrNotAppleTalk) {
			log.GetLogger().WithError(err).Debug("frame skipped")
		}
		return
	}

	start := time.Now()
	p.line.Reset()
	switch frame.Kind {
	case core.FrameLocalTalk:
		p.decoder.LocalTalk(&p.line, frame.Data, frame.Length)
	case core.FrameDDP:
		p.decoder.DDP(&p.line, frame.Data, frame.Length)
	case core.FrameAARP:
		p.decoder.AARP(&p.line, frame.Data, frame.Length)
	}
	kind := frame.Kind.String()
	metrics.DecodeLatencySeconds.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	metrics.FramesTotal.WithLabelValues(name, kind).Inc()
	p.metrics.Decoded.Add(1)

	out := &core.DecodedFrame{Raw: raw, Kind: frame.Kind, Line: p.line.String()}
	for _, s := range p.sinks {
		if err := s.Send(out); err != nil {
			p.metrics.SinkErrors.Add(1)
			metrics.SinkErrorsTotal.WithLabelValues(s.Name()).Inc()
			log.GetLogger().WithError(err).WithField("sink", s.Name()).Error("sink failed")
		}
	}
}

// Stats returns pipeline statistics.
func (p *Pipeline) Stats() Stats {
	return Stats{
		Received:   p.metrics.Received.Load(),
		Filtered:   p.metrics.Filtered.Load(),
		Skipped:    p.metrics.Skipped.Load(),
		Decoded:    p.metrics.Decoded.Load(),
		SinkErrors: p.metrics.SinkErrors.Load(),
	}
}

// Stats represents pipeline statistics.
type Stats struct {
	Received   uint64
	Filtered   uint64 // rejected by the link-level filter
	Skipped    uint64 // not AppleTalk, or unsupported framing
	Decoded    uint64
	SinkErrors uint64
}

// Package render sends finished pipeline stages to plot files or a message broker.
package render

import (
	"context"
	"fmt"

	"github.com/huangsam/deadreck/internal/contract"
	"github.com/huangsam/deadreck/schema"
)

// NoopSink discards every series.
type NoopSink struct{}

var _ contract.RenderSink = NoopSink{} // Compile-time check

// Render implements the RenderSink interface.
func (NoopSink) Render(ctx context.Context, _ schema.LabeledSeries) error { return ctx.Err() }

// Close implements the RenderSink interface.
func (NoopSink) Close() error { return nil }

// NewSink builds the sink selected by the configuration.
func NewSink(cfg *contract.Config) (contract.RenderSink, error) {
	switch cfg.Sink {
	case schema.NoSink, "":
		return NoopSink{}, nil
	case schema.PNGSink:
		return NewPNGSink(cfg.SinkDir, cfg.SinkPrefix), nil
	case schema.MQTTSink:
		sink, err := NewMQTTSink(cfg.MQTTBroker, cfg.MQTTTopic, contract.DefaultMQTTClient)
		if err != nil {
			return nil, err
		}
		return sink, nil
	default:
		return nil, fmt.Errorf("unsupported sink: %s", cfg.Sink)
	}
}

// RenderAll sends every stage to the sink. A failed stage is logged and does not
// stop the stages after it; the first error is returned.
func RenderAll(ctx context.Context, sink contract.RenderSink, stages []schema.LabeledSeries) error {
	var first error
	for _, ls := range stages {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := sink.Render(ctx, ls); err != nil {
			contract.LogWarn(fmt.Sprintf("Render failed for %s/%s", ls.Name, ls.Stage), err)
			if first == nil {
				first = err
			}
		}
	}
	return first
}

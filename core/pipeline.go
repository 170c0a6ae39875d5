package core

import (
	"fmt"

	"github.com/huangsam/deadreck/core/algo"
	"github.com/huangsam/deadreck/internal/contract"
	"github.com/huangsam/deadreck/schema"
)

// PipelineOptions configures one dead-reckoning run.
type PipelineOptions struct {
	Strategy    schema.GravityStrategy
	Gravity     schema.Vec3
	TrimSeconds float64
	Truth       schema.TimeSeries // Overrides the log's POSI stream when set
	TruthFrame  schema.TruthFrame
	Name        string // Labels the run and its stages, defaults to the log name
}

// NewPipelineOptions derives run options from the configuration.
func NewPipelineOptions(cfg *contract.Config) PipelineOptions {
	return PipelineOptions{
		Strategy:    cfg.Strategy,
		Gravity:     cfg.GravityVector(),
		TrimSeconds: cfg.TrimSeconds,
		TruthFrame:  cfg.TruthFrame,
	}
}

// RunPipeline turns a parsed sensor log into the labeled stages of a run.
//
// The raw baseline integrates ACCE twice as recorded. The compensated path
// removes gravity with the selected strategy first, then integrates twice.
// When ground truth is available both positions are scored against it.
// The log itself is never modified. A failed run carries no stages.
func RunPipeline(log schema.SensorLog, opts PipelineOptions) (schema.RunResult, error) {
	fail := func(err error) (schema.RunResult, error) {
		return schema.RunResult{Source: log.Source}, err
	}
	name := opts.Name
	if name == "" {
		name = contract.LogName(log.Source)
	}
	result := schema.RunResult{
		Source:      log.Source,
		Name:        name,
		Strategy:    opts.Strategy,
		TrimSeconds: opts.TrimSeconds,
		Gravity:     opts.Gravity,
	}

	acce, ahrs, truth := log.Acce(), log.Ahrs(), log.Posi()
	truthFrame := opts.TruthFrame
	if truthFrame == "" {
		truthFrame = schema.LocalFrame
	}
	trimTruth := true
	if !opts.Truth.Empty() {
		truth, trimTruth = opts.Truth, false
	}

	if acce.Empty() {
		return fail(fmt.Errorf("%s: %s stream: %w", log.Source, schema.AccelerationStream, schema.ErrEmptySeries))
	}
	if err := algo.ValidateSorted(acce); err != nil {
		return fail(fmt.Errorf("%s: %s stream: %w", log.Source, schema.AccelerationStream, err))
	}
	if !ahrs.Empty() {
		if err := algo.ValidateSorted(ahrs); err != nil {
			return fail(fmt.Errorf("%s: %s stream: %w", log.Source, schema.OrientationStream, err))
		}
	}

	if opts.TrimSeconds > 0 {
		var err error
		if acce, err = algo.DropBefore(acce, opts.TrimSeconds); err != nil {
			return fail(fmt.Errorf("trim %s: %w", schema.AccelerationStream, err))
		}
		if !ahrs.Empty() {
			if ahrs, err = algo.DropBefore(ahrs, opts.TrimSeconds); err != nil {
				return fail(fmt.Errorf("trim %s: %w", schema.OrientationStream, err))
			}
		}
		if trimTruth && !truth.Empty() {
			if truth, err = algo.DropBefore(truth, opts.TrimSeconds); err != nil {
				return fail(fmt.Errorf("trim %s: %w", schema.PositionStream, err))
			}
		}
	}

	veloRaw, posiRaw, err := algo.DoubleIntegrate(acce)
	if err != nil {
		return fail(fmt.Errorf("raw integration: %w", err))
	}

	compensator, err := algo.NewCompensator(opts.Strategy, opts.Gravity)
	if err != nil {
		return fail(err)
	}
	acceNoG, err := compensator.Compensate(acce, ahrs)
	if err != nil {
		return fail(fmt.Errorf("%s compensation: %w", compensator.Name(), err))
	}
	veloNoG, posiNoG, err := algo.DoubleIntegrate(acceNoG)
	if err != nil {
		return fail(fmt.Errorf("compensated integration: %w", err))
	}

	stage := func(st schema.Stage, labels [3]string, ts schema.TimeSeries) schema.LabeledSeries {
		return schema.LabeledSeries{Name: result.Name, Stage: st, Labels: labels, Series: ts}
	}
	result.Stages = []schema.LabeledSeries{
		stage(schema.AcceRawStage, schema.AcceLabels, acce),
	}
	if !ahrs.Empty() {
		result.Stages = append(result.Stages, stage(schema.AhrsRawStage, schema.AhrsLabels, ahrs))
	}
	result.Stages = append(result.Stages,
		stage(schema.VeloRawStage, schema.VeloLabels, veloRaw),
		stage(schema.PosiRawStage, schema.PosiLabels, posiRaw),
		stage(schema.AcceNoGStage, schema.AcceLabels, acceNoG),
		stage(schema.VeloNoGStage, schema.VeloLabels, veloNoG),
		stage(schema.PosiNoGStage, schema.PosiLabels, posiNoG),
	)

	if !truth.Empty() {
		if err := algo.ValidateSorted(truth); err != nil {
			return fail(fmt.Errorf("truth: %w", err))
		}
		anchored, err := algo.AnchorTruth(truth, truthFrame)
		if err != nil {
			return fail(fmt.Errorf("truth: %w", err))
		}
		result.Stages = append(result.Stages, stage(schema.PosiOrgStage, schema.PosiLabels, anchored))

		raw, err := algo.EvaluateDrift(posiRaw, truth, truthFrame)
		if err != nil {
			return fail(fmt.Errorf("raw drift: %w", err))
		}
		drift, err := algo.EvaluateDrift(posiNoG, truth, truthFrame)
		if err != nil {
			return fail(fmt.Errorf("drift: %w", err))
		}
		result.RawDrift, result.Drift = &raw, &drift
	}

	result.Summary = schema.Summarize(result.Stages)
	return result, nil
}

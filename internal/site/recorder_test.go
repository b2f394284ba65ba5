package site

import (
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
)

type countingRecorder struct {
	stages  int
	pages   map[string]int
	media   int
	outcome metrics.BuildOutcomeLabel
}

func (r *countingRecorder) ObserveStageDuration(string, time.Duration) {}
func (r *countingRecorder) ObserveBuildDuration(time.Duration)         {}
func (r *countingRecorder) IncStageResult(string, metrics.ResultLabel) { r.stages++ }

func (r *countingRecorder) IncBuildOutcome(o metrics.BuildOutcomeLabel) { r.outcome = o }

func (r *countingRecorder) AddPagesRendered(kind string, n int) { r.pages[kind] += n }

func (r *countingRecorder) AddMediaFiles(_ metrics.MediaResultLabel, n int) { r.media += n }

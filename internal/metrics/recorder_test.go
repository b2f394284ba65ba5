package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type testRecorder struct {
	stageDurations map[string]int
	stageResults   map[string]map[ResultLabel]int
	buildDurations int
	buildOutcomes  map[BuildOutcomeLabel]int
	pages          map[string]int
	media          map[MediaResultLabel]int
}

func newTestRecorder() *testRecorder {
	return &testRecorder{
		stageDurations: map[string]int{},
		stageResults:   map[string]map[ResultLabel]int{},
		buildOutcomes:  map[BuildOutcomeLabel]int{},
		pages:          map[string]int{},
		media:          map[MediaResultLabel]int{},
	}
}

func (t *testRecorder) ObserveStageDuration(stage string, _ time.Duration) {
	t.stageDurations[stage]++
}
func (t *testRecorder) ObserveBuildDuration(_ time.Duration) { t.buildDurations++ }
func (t *testRecorder) IncStageResult(stage string, result ResultLabel) {
	m, ok := t.stageResults[stage]
	if !ok {
		m = map[ResultLabel]int{}
		t.stageResults[stage] = m
	}
	m[result]++
}
func (t *testRecorder) IncBuildOutcome(outcome BuildOutcomeLabel)    { t.buildOutcomes[outcome]++ }
func (t *testRecorder) AddPagesRendered(kind string, n int)          { t.pages[kind] += n }
func (t *testRecorder) AddMediaFiles(result MediaResultLabel, n int) { t.media[result] += n }

var (
	_ Recorder = (*testRecorder)(nil)
	_ Recorder = NoopRecorder{}
	_ Recorder = (*PrometheusRecorder)(nil)
)

func TestTestRecorderCounts(t *testing.T) {
	r := newTestRecorder()
	r.ObserveStageDuration("render_posts", time.Millisecond)
	r.IncStageResult("render_posts", ResultSuccess)
	r.IncStageResult("render_posts", ResultSuccess)
	r.IncBuildOutcome(BuildOutcomeSuccess)
	r.AddPagesRendered("post", 3)

	require.Equal(t, 1, r.stageDurations["render_posts"])
	require.Equal(t, 2, r.stageResults["render_posts"][ResultSuccess])
	require.Equal(t, 1, r.buildOutcomes[BuildOutcomeSuccess])
	require.Equal(t, 3, r.pages["post"])
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NoopRecorder{}
	require.NotPanics(t, func() {
		r.ObserveStageDuration("x", time.Second)
		r.ObserveBuildDuration(time.Second)
		r.IncStageResult("x", ResultFatal)
		r.IncBuildOutcome(BuildOutcomeFailed)
		r.AddPagesRendered("index", 1)
		r.AddMediaFiles(MediaCopied, 2)
	})
}

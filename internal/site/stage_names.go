package site

// StageName is a strongly-typed identifier for a build stage. All canonical
// stages are declared as constants here for compile-time safety.
type StageName string

// Canonical stage names.
const (
	StagePrepareOutput  StageName = "prepare_output"
	StageRenderPosts    StageName = "render_posts"
	StageSortPosts      StageName = "sort_posts"
	StageRenderIndex    StageName = "render_index"
	StageCopyTheme      StageName = "copy_theme"
	StageTranscodeMedia StageName = "transcode_media"
)

// StageDef pairs a stage name with its executing function (internal wiring helper).
type StageDef struct {
	Name StageName
	Fn   Stage
}

// defaultStages is the fixed build order.
func defaultStages() []StageDef {
	return []StageDef{
		{Name: StagePrepareOutput, Fn: stagePrepareOutput},
		{Name: StageRenderPosts, Fn: stageRenderPosts},
		{Name: StageSortPosts, Fn: stageSortPosts},
		{Name: StageRenderIndex, Fn: stageRenderIndex},
		{Name: StageCopyTheme, Fn: stageCopyTheme},
		{Name: StageTranscodeMedia, Fn: stageTranscodeMedia},
	}
}

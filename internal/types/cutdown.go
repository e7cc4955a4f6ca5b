package types

// MediaProbe is the stream metadata summary of a media file. Derived
// transiently from the source, never persisted.
type MediaProbe struct {
	DurationSeconds float64
	HasAudioStream  bool
	FrameRate       float64
	Width           int
	Height          int
	VideoCodec      string
	AudioCodec      string
}

// SceneScreenshot is the single representative frame captured for a scene,
// taken at the temporal midpoint of the interval.
type SceneScreenshot struct {
	SceneIndex  int     `json:"scene_index"`
	FrameNumber int     `json:"frame_number"`
	Timestamp   float64 `json:"timestamp_seconds"`
	Timecode    string  `json:"timestamp"`
	ImagePath   string  `json:"path"`
	URL         string  `json:"url"`
}

// SceneInterval is one contiguous time range of source video treated as a
// semantic unit. Intervals in a detection result are contiguous,
// non-overlapping and ordered by Index.
type SceneInterval struct {
	Index         int               `json:"scene"`
	StartSeconds  float64           `json:"start_seconds"`
	EndSeconds    float64           `json:"end_seconds"`
	StartTimecode string            `json:"start_time"`
	EndTimecode   string            `json:"end_time"`
	StartFrame    int               `json:"start_frame"`
	EndFrame      int               `json:"end_frame"`
	Screenshots   []SceneScreenshot `json:"screenshots"`
	Analysis      *VisualAnalysis   `json:"analysis,omitempty"`
}

// SelectedScene is one time range a caller wants included in a cutdown,
// already normalized to seconds.
type SelectedScene struct {
	SourceRef    string  `json:"source_ref,omitempty"`
	StartSeconds float64 `json:"start_seconds"`
	EndSeconds   float64 `json:"end_seconds"`
}

// AssemblyRequest is the canonical internal form of a cutdown request after
// boundary normalization.
type AssemblyRequest struct {
	Scenes       []SelectedScene
	BaseVideoRef string
	AudioRef     string
}

// CutdownResult is the only artifact that outlives a pipeline run.
// AudioAttached distinguishes a full merge from the degraded video-only
// fallback so callers can retry audio attachment separately.
type CutdownResult struct {
	OutputPath    string `json:"output_path"`
	OutputURL     string `json:"output_url"`
	AudioAttached bool   `json:"audio_attached"`
	Warning       string `json:"warning,omitempty"`
}

// PipelineState names the orchestrator states, used for job progress
// reporting and failure context.
type PipelineState string

const (
	StateValidating       PipelineState = "validating"
	StateExtractingScenes PipelineState = "extracting_scenes"
	StateConcatenating    PipelineState = "concatenating"
	StateAttachingAudio   PipelineState = "attaching_audio"
	StateCleaning         PipelineState = "cleaning"
	StateDone             PipelineState = "done"
	StateFailed           PipelineState = "failed"
)

// Cutdown job status values
const (
	CutdownJobStatusPending uint8 = 0
	CutdownJobStatusRunning uint8 = 1
	CutdownJobStatusDone    uint8 = 2
	CutdownJobStatusFailed  uint8 = 3
)

// CutdownJob tracks one asynchronous assembly request.
type CutdownJob struct {
	Id            int64  `json:"-" gorm:"primaryKey;autoIncrement"`
	JobId         string `json:"job_id" gorm:"column:job_id;uniqueIndex;size:64"`
	Status        uint8  `json:"status" gorm:"column:status"`
	State         string `json:"state" gorm:"column:state;size:32"`
	OutputPath    string `json:"output_path" gorm:"column:output_path"`
	OutputURL     string `json:"output_url" gorm:"column:output_url"`
	AudioAttached bool   `json:"audio_attached" gorm:"column:audio_attached"`
	Warning       string `json:"warning,omitempty" gorm:"column:warning"`
	FailReason    string `json:"fail_reason,omitempty" gorm:"column:fail_reason"`
	CreateTime    int64  `json:"create_time" gorm:"column:create_time;autoCreateTime"`
	UpdateTime    int64  `json:"update_time" gorm:"column:update_time;autoUpdateTime"`
}

func (CutdownJob) TableName() string {
	return "cutdown_jobs"
}

// TranscriptSegment is one timed span of recognized speech returned by the
// transcription collaborator.
type TranscriptSegment struct {
	Id    int     `json:"id"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Transcript is the transcription collaborator's response shape.
type Transcript struct {
	Text     string              `json:"text"`
	Language string              `json:"language"`
	Segments []TranscriptSegment `json:"segments"`
}

// DetectedObject is one object found by the visual analysis collaborator.
type DetectedObject struct {
	Class      string    `json:"class"`
	Confidence float64   `json:"confidence"`
	Position   []float64 `json:"position"`
}

// VisualAnalysis is the visual captioning collaborator's response shape.
type VisualAnalysis struct {
	Description     string           `json:"description"`
	Objects         []DetectedObject `json:"objects"`
	Category        string           `json:"category"`
	Action          string           `json:"action"`
	ImportanceScore float64          `json:"importance_score"`
}

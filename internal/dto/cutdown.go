package dto

import (
	"encoding/json"
	"fmt"

	"github.com/samber/lo"

	"gencut/internal/types"
	"gencut/pkg/util"
)

// FlexTime accepts a media position as either a JSON number (seconds) or a
// colon-delimited timecode string.
type FlexTime struct {
	Seconds float64
}

func (t *FlexTime) UnmarshalJSON(data []byte) error {
	var asNumber float64
	if err := json.Unmarshal(data, &asNumber); err == nil {
		t.Seconds = asNumber
		return nil
	}

	var asString string
	if err := json.Unmarshal(data, &asString); err != nil {
		return fmt.Errorf("time value must be a number or timecode string: %s", string(data))
	}

	seconds, err := util.ParseTimecode(asString)
	if err != nil {
		return err
	}
	t.Seconds = seconds
	return nil
}

func (t FlexTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Seconds)
}

// SelectedSceneReq is one scene entry as sent by clients.
type SelectedSceneReq struct {
	VideoUrl      string   `json:"video_url"`
	StartTime     FlexTime `json:"start_time"`
	EndTime       FlexTime `json:"end_time"`
	Duration      string   `json:"duration,omitempty"`
	ScreenshotUrl string   `json:"screenshot_url,omitempty"`
	Description   string   `json:"description,omitempty"`
}

// nestedScenes is the historical nested request layout where the scene list is
// wrapped in another object and the audio reference uses a different key.
type nestedScenes struct {
	SelectedScenes []SelectedSceneReq `json:"selected_scenes"`
	MusicPrompt    string             `json:"music_prompt,omitempty"`
}

type generateCutdownEnvelope struct {
	SelectedScenes json.RawMessage `json:"selected_scenes"`
	AudioUrl       string          `json:"audio_url,omitempty"`
	AudioFile      string          `json:"audio_file,omitempty"`
	OriginalVideo  string          `json:"original_video,omitempty"`
}

// ParseGenerateCutdownRequest normalizes both accepted request layouts into
// the single internal AssemblyRequest. Shape branching stops here; nothing
// downstream sees the legacy formats.
func ParseGenerateCutdownRequest(body []byte) (*types.AssemblyRequest, error) {
	var envelope generateCutdownEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("invalid request body: %w", err)
	}
	if len(envelope.SelectedScenes) == 0 {
		return nil, fmt.Errorf("selected_scenes is required")
	}

	var scenes []SelectedSceneReq
	audioRef := envelope.AudioUrl

	if err := json.Unmarshal(envelope.SelectedScenes, &scenes); err != nil {
		// Nested layout: selected_scenes is an object wrapping the list, and
		// the audio reference arrives as audio_file.
		var nested nestedScenes
		if err := json.Unmarshal(envelope.SelectedScenes, &nested); err != nil {
			return nil, fmt.Errorf("invalid selected_scenes format")
		}
		scenes = nested.SelectedScenes
		audioRef = envelope.AudioFile
	}

	req := &types.AssemblyRequest{
		BaseVideoRef: envelope.OriginalVideo,
		AudioRef:     audioRef,
		Scenes: lo.Map(scenes, func(scene SelectedSceneReq, _ int) types.SelectedScene {
			return types.SelectedScene{
				SourceRef:    scene.VideoUrl,
				StartSeconds: scene.StartTime.Seconds,
				EndSeconds:   scene.EndTime.Seconds,
			}
		}),
	}
	return req, nil
}

// AnalyzeVideoReq requests scene detection on a local path. Threshold and
// MinSceneLen override the process-wide defaults when set. Describe
// additionally runs the visual analysis collaborator on each scene's
// screenshot.
type AnalyzeVideoReq struct {
	File        string   `json:"file" binding:"required"`
	Threshold   *float64 `json:"threshold,omitempty"`
	MinSceneLen *int     `json:"min_scene_len,omitempty"`
	Describe    bool     `json:"describe,omitempty"`
}

type AnalyzeVideoResData struct {
	Filename string                `json:"filename"`
	Scenes   []types.SceneInterval `json:"scenes"`
}

type SeparateVideoReq struct {
	File string `json:"file" binding:"required"`
}

type SeparateVideoResData struct {
	Filename string `json:"filename"`
	VideoUrl string `json:"video_url"`
	AudioUrl string `json:"audio_url,omitempty"`
}

type TranscribeReq struct {
	File     string `json:"file" binding:"required"`
	Language string `json:"language,omitempty"`
}

type TtsReq struct {
	VoiceId string `json:"voice_id" binding:"required"`
	Text    string `json:"text" binding:"required"`
}

type TtsResData struct {
	AudioPath string `json:"audio_path"`
	AudioUrl  string `json:"audio_url"`
}

type SubmitCutdownJobResData struct {
	JobId string `json:"job_id"`
}

type GetCutdownJobReq struct {
	JobId string `form:"job_id" binding:"required"`
}

type UploadFileResData struct {
	FilePath string `json:"file_path"`
	FileUrl  string `json:"file_url"`
}

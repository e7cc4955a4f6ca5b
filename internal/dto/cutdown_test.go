package dto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexTimeUnmarshal(t *testing.T) {
	var scene SelectedSceneReq
	err := json.Unmarshal([]byte(`{"video_url":"/videos/uploads/a.mp4","start_time":2,"end_time":"00:00:05.500000"}`), &scene)
	require.NoError(t, err)
	assert.Equal(t, 2.0, scene.StartTime.Seconds)
	assert.InDelta(t, 5.5, scene.EndTime.Seconds, 1e-9)

	err = json.Unmarshal([]byte(`{"start_time":"01:30"}`), &scene)
	require.NoError(t, err)
	assert.Equal(t, 90.0, scene.StartTime.Seconds)

	err = json.Unmarshal([]byte(`{"start_time":[1]}`), &scene)
	assert.Error(t, err)
}

func TestParseGenerateCutdownRequestFlat(t *testing.T) {
	body := []byte(`{
		"selected_scenes": [
			{"video_url": "/videos/uploads/demo.mp4", "start_time": "00:00:00", "end_time": "00:00:02"},
			{"video_url": "/videos/uploads/demo.mp4", "start_time": 2, "end_time": 5}
		],
		"audio_url": "http://example.com/track.mp3",
		"original_video": "/videos/uploads/demo.mp4"
	}`)

	req, err := ParseGenerateCutdownRequest(body)
	require.NoError(t, err)
	assert.Len(t, req.Scenes, 2)
	assert.Equal(t, "http://example.com/track.mp3", req.AudioRef)
	assert.Equal(t, "/videos/uploads/demo.mp4", req.BaseVideoRef)
	assert.Equal(t, 0.0, req.Scenes[0].StartSeconds)
	assert.Equal(t, 2.0, req.Scenes[0].EndSeconds)
	assert.Equal(t, 5.0, req.Scenes[1].EndSeconds)
}

func TestParseGenerateCutdownRequestNested(t *testing.T) {
	body := []byte(`{
		"selected_scenes": {
			"selected_scenes": [
				{"video_url": "/separated/demo_video.mp4", "start_time": "00:01:00", "end_time": "00:01:30"}
			],
			"music_prompt": "upbeat"
		},
		"audio_file": "/videos/uploads/voiceover.mp3"
	}`)

	req, err := ParseGenerateCutdownRequest(body)
	require.NoError(t, err)
	require.Len(t, req.Scenes, 1)
	assert.Equal(t, "/videos/uploads/voiceover.mp3", req.AudioRef)
	assert.Equal(t, "/separated/demo_video.mp4", req.Scenes[0].SourceRef)
	assert.Equal(t, 60.0, req.Scenes[0].StartSeconds)
	assert.Equal(t, 90.0, req.Scenes[0].EndSeconds)
}

func TestParseGenerateCutdownRequestInvalid(t *testing.T) {
	_, err := ParseGenerateCutdownRequest([]byte(`{"audio_url":"x"}`))
	assert.Error(t, err)

	_, err = ParseGenerateCutdownRequest([]byte(`{"selected_scenes": "nope"}`))
	assert.Error(t, err)

	_, err = ParseGenerateCutdownRequest([]byte(`not json`))
	assert.Error(t, err)
}

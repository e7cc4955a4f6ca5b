package service

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"gencut/internal/storage"
	"gencut/internal/types"
	"gencut/log"
	apperrors "gencut/pkg/errors"
)

type ffprobeOutput struct {
	Streams []ffprobeStream `json:"streams"`
	Format  ffprobeFormat   `json:"format"`
}

type ffprobeStream struct {
	CodecType  string `json:"codec_type"`
	CodecName  string `json:"codec_name"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	RFrameRate string `json:"r_frame_rate"`
	Duration   string `json:"duration"`
}

type ffprobeFormat struct {
	Duration string `json:"duration"`
}

// ProbeMedia inspects a local media file and summarizes its streams.
func (s Service) ProbeMedia(ctx context.Context, mediaPath string) (*types.MediaProbe, error) {
	output, err := runCommand(ctx, storage.FfprobePath,
		"-v", "error",
		"-show_streams",
		"-show_format",
		"-of", "json",
		mediaPath,
	)
	if err != nil {
		log.GetLogger().Error("ffprobe failed", zap.String("mediaPath", mediaPath), zap.String("output", string(output)), zap.Error(err))
		return nil, apperrors.WrapWithDetail(apperrors.CodeProbeFailed, "Media probe failed", string(output), err)
	}

	var parsed ffprobeOutput
	if err = json.Unmarshal(output, &parsed); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeProbeFailed, "Media probe output unreadable", err)
	}

	probe := &types.MediaProbe{}
	probe.DurationSeconds, _ = strconv.ParseFloat(parsed.Format.Duration, 64)

	for _, stream := range parsed.Streams {
		switch stream.CodecType {
		case "video":
			probe.VideoCodec = stream.CodecName
			probe.Width = stream.Width
			probe.Height = stream.Height
			probe.FrameRate = parseFrameRate(stream.RFrameRate)
			if probe.DurationSeconds == 0 {
				probe.DurationSeconds, _ = strconv.ParseFloat(stream.Duration, 64)
			}
		case "audio":
			probe.HasAudioStream = true
			probe.AudioCodec = stream.CodecName
		}
	}

	return probe, nil
}

// parseFrameRate converts ffprobe's rational "num/den" form to frames per
// second. Malformed or zero-denominator values yield 0.
func parseFrameRate(rational string) float64 {
	if rational == "" {
		return 0
	}
	parts := strings.SplitN(rational, "/", 2)
	num, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return 0
	}
	if len(parts) == 1 {
		return num
	}
	den, err := strconv.ParseFloat(parts[1], 64)
	if err != nil || den == 0 {
		return 0
	}
	return num / den
}

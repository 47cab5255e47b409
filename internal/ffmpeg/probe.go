package ffmpeg

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/keagan/lightningtrim/pkg/util"
)

// ProbeVideo extracts metadata from a video file. The frame rate of the
// first video stream must be a usable positive rational.
func (e *Executor) ProbeVideo(ctx context.Context, filePath string) (*VideoInfo, error) {
	if filePath == "" {
		return nil, fmt.Errorf("file path is required")
	}

	output, err := e.probe(ctx,
		"-v", "error",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		filePath,
	)
	if err != nil {
		return nil, err
	}

	info, err := parseProbeOutput(output)
	if err != nil {
		return nil, err
	}
	info.FilePath = filePath

	e.logger.Debug().
		Str("input", filePath).
		Str("r_frame_rate", info.FrameRate).
		Float64("fps", info.FPS).
		Bool("has_audio", info.HasAudio).
		Msg("probe complete")

	return info, nil
}

// parseProbeOutput turns ffprobe JSON into VideoInfo
func parseProbeOutput(output []byte) (*VideoInfo, error) {
	var probe probeResult
	if err := json.Unmarshal(output, &probe); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	info := &VideoInfo{}

	// Parse duration
	if dur, err := strconv.ParseFloat(probe.Format.Duration, 64); err == nil {
		info.Duration = util.Seconds(dur)
	}
	if size, err := strconv.ParseInt(probe.Format.Size, 10, 64); err == nil {
		info.Size = size
	}

	foundVideo := false
	for _, stream := range probe.Streams {
		switch stream.CodecType {
		case "video":
			// attached cover art is reported as a video stream too
			if foundVideo || stream.Disposition.AttachedPic == 1 {
				continue
			}
			foundVideo = true
			info.Width = stream.Width
			info.Height = stream.Height
			info.VideoCodec = stream.CodecName
			info.FrameRate = stream.RFrameRate
		case "audio":
			if !info.HasAudio {
				info.HasAudio = true
				info.AudioCodec = stream.CodecName
			}
		}
	}

	if !foundVideo {
		return nil, ErrNoVideoStream
	}

	fps, err := util.ParseFrameRate(info.FrameRate)
	if err != nil {
		return nil, fmt.Errorf("unusable r_frame_rate: %w", err)
	}
	info.FPS = fps

	return info, nil
}

// probeResult matches ffprobe JSON output structure
type probeResult struct {
	Format struct {
		Duration string `json:"duration"`
		Size     string `json:"size"`
	} `json:"format"`
	Streams []struct {
		CodecType   string `json:"codec_type"`
		CodecName   string `json:"codec_name"`
		Width       int    `json:"width"`
		Height      int    `json:"height"`
		RFrameRate  string `json:"r_frame_rate"`
		Disposition struct {
			AttachedPic int `json:"attached_pic"`
		} `json:"disposition"`
	} `json:"streams"`
}

package video

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
)

// Prober reads the pixel dimensions of a local video file.
type Prober interface {
	Dimensions(ctx context.Context, path string) (width, height int, err error)
}

// FFProbe shells out to ffprobe.
type FFProbe struct {
	path string
}

// NewFFProbe locates ffprobe in PATH.
func NewFFProbe() (*FFProbe, error) {
	path, err := exec.LookPath("ffprobe")
	if err != nil {
		return nil, fmt.Errorf("ffprobe not found in PATH: %w", err)
	}
	return &FFProbe{path: path}, nil
}

// Dimensions returns the width and height of the first video stream.
func (p *FFProbe) Dimensions(ctx context.Context, path string) (int, int, error) {
	cmd := exec.CommandContext(ctx, p.path,
		"-v", "quiet",
		"-print_format", "json",
		"-show_streams",
		"-select_streams", "v:0",
		path,
	)

	output, err := cmd.Output()
	if err != nil {
		return 0, 0, fmt.Errorf("%w: ffprobe: %v", ErrProbeFailed, err)
	}
	return parseProbeOutput(output)
}

type ffprobeStream struct {
	CodecType    string            `json:"codec_type"`
	Width        int               `json:"width"`
	Height       int               `json:"height"`
	Tags         ffprobeTags       `json:"tags"`
	SideDataList []ffprobeSideData `json:"side_data_list"`
}

type ffprobeTags struct {
	Rotate string `json:"rotate"`
}

type ffprobeSideData struct {
	Rotation int `json:"rotation"`
}

type ffprobeOutput struct {
	Streams []ffprobeStream `json:"streams"`
}

// parseProbeOutput extracts display dimensions from ffprobe JSON. Streams
// rotated by 90 or 270 degrees report swapped width and height.
func parseProbeOutput(output []byte) (int, int, error) {
	var parsed ffprobeOutput
	if err := json.Unmarshal(output, &parsed); err != nil {
		return 0, 0, fmt.Errorf("%w: parse ffprobe output: %v", ErrProbeFailed, err)
	}

	for _, s := range parsed.Streams {
		if s.CodecType != "video" || s.Width <= 0 || s.Height <= 0 {
			continue
		}
		if isQuarterTurn(s) {
			return s.Height, s.Width, nil
		}
		return s.Width, s.Height, nil
	}
	return 0, 0, fmt.Errorf("%w: no video stream with dimensions", ErrProbeFailed)
}

func isQuarterTurn(s ffprobeStream) bool {
	switch s.Tags.Rotate {
	case "90", "-90", "270", "-270":
		return true
	}
	for _, sd := range s.SideDataList {
		switch sd.Rotation {
		case 90, -90, 270, -270:
			return true
		}
	}
	return false
}

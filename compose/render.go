package compose

import (
	"fmt"
	"log"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// Renderer turns clips into mp4 segments by piping raw RGBA frames into
// ffmpeg, then splices the segments with the concat demuxer.
type Renderer struct {
	FPS     int
	WorkDir string
}

func NewRenderer(fps int, workDir string) (*Renderer, error) {
	if err := CheckTools(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(workDir, 0755); err != nil {
		return nil, fmt.Errorf("create work dir: %w", err)
	}
	return &Renderer{FPS: fps, WorkDir: workDir}, nil
}

// CheckTools verifies ffmpeg and ffprobe are on PATH before any rendering
// starts, so a missing install fails fast instead of mid-episode.
func CheckTools() error {
	for _, tool := range []string{"ffmpeg", "ffprobe"} {
		if _, err := exec.LookPath(tool); err != nil {
			return fmt.Errorf("%s not found in PATH: %w", tool, err)
		}
	}
	return nil
}

// RenderSegment renders one clip to outputPath. Frames are sampled at the
// clip's frame rate and streamed to ffmpeg's stdin as raw RGBA; the clip's
// audio file, when set, is muxed in the same pass.
func (r *Renderer) RenderSegment(clip *Clip, outputPath string) error {
	frameCount := int(math.Ceil(clip.Duration * float64(r.FPS)))
	if frameCount <= 0 {
		return fmt.Errorf("clip has no frames (duration %.3fs)", clip.Duration)
	}

	args := []string{
		"-y",
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-s", fmt.Sprintf("%dx%d", clip.Width, clip.Height),
		"-r", strconv.Itoa(r.FPS),
		"-i", "pipe:0",
	}
	if clip.AudioPath != "" {
		args = append(args, "-i", clip.AudioPath)
	} else {
		// Silent segments still need an audio stream so the concat
		// demuxer can stream-copy a uniform set of segments.
		args = append(args, "-f", "lavfi", "-i", "anullsrc=r=44100:cl=mono")
	}
	args = append(args,
		"-c:a", "aac", "-b:a", "192k", "-shortest",
		"-c:v", "libx264",
		"-pix_fmt", "yuv420p",
		"-preset", "ultrafast",
		"-t", fmt.Sprintf("%.3f", clip.Duration),
		outputPath,
	)

	cmd := exec.Command("ffmpeg", args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("ffmpeg stdin: %w", err)
	}
	var stderr strings.Builder
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start ffmpeg: %w", err)
	}

	writeErr := func() error {
		defer stdin.Close()
		for n := 0; n < frameCount; n++ {
			t := float64(n) / float64(r.FPS)
			frame := clip.FrameAt(t)
			if _, err := stdin.Write(frame.Pix); err != nil {
				return fmt.Errorf("write frame %d: %w", n, err)
			}
		}
		return nil
	}()

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("ffmpeg error: %s, output: %s", err, stderr.String())
	}
	if writeErr != nil {
		return writeErr
	}
	return nil
}

// RenderTimeline renders every clip to its own segment and concatenates
// them. Segment files and the concat list stay in the work dir for cleanup.
func (r *Renderer) RenderTimeline(tl *Timeline, outputPath string) error {
	var segments []string
	for i, clip := range tl.Clips {
		segPath := filepath.Join(r.WorkDir, fmt.Sprintf("segment_%03d.mp4", i))
		log.Printf("[RENDER] Segment %d/%d (%.2fs)", i+1, len(tl.Clips), clip.Duration)
		if err := r.RenderSegment(clip, segPath); err != nil {
			return fmt.Errorf("render segment %d: %w", i, err)
		}
		segments = append(segments, segPath)
	}
	return r.ConcatSegments(segments, outputPath)
}

// ConcatSegments splices segments without re-encoding via the concat
// demuxer. All segments share codec settings, so stream copy is safe.
func (r *Renderer) ConcatSegments(segments []string, outputPath string) error {
	if len(segments) == 0 {
		return fmt.Errorf("no segments to concatenate")
	}

	var list strings.Builder
	for _, seg := range segments {
		abs, err := filepath.Abs(seg)
		if err != nil {
			return err
		}
		fmt.Fprintf(&list, "file '%s'\n", abs)
	}
	listPath := filepath.Join(r.WorkDir, "concat_list.txt")
	if err := os.WriteFile(listPath, []byte(list.String()), 0644); err != nil {
		return err
	}

	cmd := exec.Command("ffmpeg",
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
		"-c", "copy",
		outputPath,
	)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg concat error: %s, output: %s", err, string(output))
	}
	return nil
}

// ProbeDuration reads a media file's duration with ffprobe.
func ProbeDuration(path string) (float64, error) {
	cmd := exec.Command("ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return 0, fmt.Errorf("ffprobe error: %w", err)
	}
	return strconv.ParseFloat(strings.TrimSpace(string(output)), 64)
}

// Cleanup removes intermediate segments, mixed audio and the concat list.
func (r *Renderer) Cleanup() {
	patterns := []string{"segment_*.mp4", "*_audio.wav", "concat_list.txt"}
	for _, p := range patterns {
		files, _ := filepath.Glob(filepath.Join(r.WorkDir, p))
		for _, f := range files {
			os.Remove(f)
		}
	}
}

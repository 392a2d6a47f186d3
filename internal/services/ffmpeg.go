package services

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// ---------------------------------------------------------------------------
// FFmpegEncoder — AudioEncoder backed by the ffmpeg binary.
// Input is staged to a temp file, transcoded to 320kbps CBR MP3, and the
// ffmpeg -progress key=value stream on stdout is turned into progress events.
// ---------------------------------------------------------------------------

type FFmpegEncoder struct {
	tempDir string
}

// Ensure FFmpegEncoder implements AudioEncoder at compile time.
var _ AudioEncoder = (*FFmpegEncoder)(nil)

func NewFFmpegEncoder(tempDir string) *FFmpegEncoder {
	if err := os.MkdirAll(tempDir, 0755); err != nil {
		panic(fmt.Sprintf("failed to create temp dir: %v", err))
	}

	return &FFmpegEncoder{
		tempDir: tempDir,
	}
}

// Encode transcodes the input stream to constant 320kbps MP3.
// The input format tag decides the demux flags: MP3 segments concatenate
// into a stream ffmpeg probes natively, raw PCM needs explicit layout.
func (s *FFmpegEncoder) Encode(ctx context.Context, input io.Reader, opts EncodeOptions, onEvent func(EncodeEvent)) ([]byte, error) {
	emit := func(ev EncodeEvent) {
		if onEvent != nil {
			onEvent(ev)
		}
	}

	fail := func(err error) ([]byte, error) {
		emit(EncodeEvent{Type: EncodeEventError, Message: err.Error()})
		return nil, err
	}

	emit(EncodeEvent{Type: EncodeEventStart})

	inFile, err := os.CreateTemp(s.tempDir, "encode_in_*")
	if err != nil {
		return fail(fmt.Errorf("failed to create temp input: %w", err))
	}
	inPath := inFile.Name()
	outPath := inPath + ".mp3"
	defer s.cleanup(inPath, outPath)

	if _, err := io.Copy(inFile, input); err != nil {
		inFile.Close()
		return fail(fmt.Errorf("failed to stage input audio: %w", err))
	}
	if err := inFile.Close(); err != nil {
		return fail(fmt.Errorf("failed to close temp input: %w", err))
	}

	var args []string
	switch opts.InputFormat {
	case FormatPCM24k:
		args = append(args, "-f", "s16le", "-ar", "24000", "-ac", "1")
	case FormatMP3, "":
		// Container format, ffmpeg probes it
	default:
		return fail(fmt.Errorf("unsupported encoder input format %q", opts.InputFormat))
	}

	args = append(args,
		"-i", inPath,
		"-vn",
		"-codec:a", "libmp3lame",
		"-b:a", fmt.Sprintf("%dk", MP3BitrateKbps),
		"-f", "mp3",
		"-progress", "pipe:1",
		"-nostats",
		"-loglevel", "error",
		"-y",
		outPath,
	)

	log.Printf("[FFmpeg] Encoding to %dkbps MP3 (inputFormat=%s, durationHint=%dms)",
		MP3BitrateKbps, opts.InputFormat, opts.DurationHintMs)

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fail(fmt.Errorf("failed to open ffmpeg stdout: %w", err))
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return fail(fmt.Errorf("failed to start ffmpeg: %w", err))
	}

	// ffmpeg writes key=value progress blocks to stdout; track elapsed
	// output time and report it against the duration hint.
	lastPercent := 0
	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		us, ok := parseOutTime(scanner.Text())
		if !ok {
			continue
		}
		percent := progressPercent(us, opts.DurationHintMs)
		if percent > lastPercent {
			lastPercent = percent
			emit(EncodeEvent{Type: EncodeEventProgress, Percent: percent})
		}
	}

	if err := cmd.Wait(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return fail(fmt.Errorf("ffmpeg encode failed: %s", msg))
	}

	audioData, err := os.ReadFile(outPath)
	if err != nil {
		return fail(fmt.Errorf("failed to read encoded audio: %w", err))
	}
	if len(audioData) == 0 {
		return fail(fmt.Errorf("ffmpeg produced empty output"))
	}

	emit(EncodeEvent{Type: EncodeEventProgress, Percent: 100})
	emit(EncodeEvent{Type: EncodeEventEnd})

	log.Printf("[FFmpeg] Encode complete (%d bytes, %.2fs)", len(audioData), MP3Duration(len(audioData)))

	return audioData, nil
}

// cleanup removes temporary files
func (s *FFmpegEncoder) cleanup(paths ...string) {
	for _, path := range paths {
		os.Remove(path)
	}
}

// parseOutTime extracts elapsed output time in microseconds from one
// -progress line. ffmpeg emits both out_time_us and out_time_ms, and the
// latter is microseconds too despite its name.
func parseOutTime(line string) (int64, bool) {
	key, value, found := strings.Cut(strings.TrimSpace(line), "=")
	if !found {
		return 0, false
	}
	if key != "out_time_us" && key != "out_time_ms" {
		return 0, false
	}

	us, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil || us < 0 {
		return 0, false
	}
	return us, true
}

// progressPercent maps elapsed output microseconds onto [0,99] against the
// duration hint. 100 is reserved for the finished output file.
func progressPercent(outTimeUS int64, durationHintMs int) int {
	if durationHintMs <= 0 {
		return 0
	}

	percent := int(outTimeUS / 10 / int64(durationHintMs))
	if percent > 99 {
		percent = 99
	}
	if percent < 0 {
		percent = 0
	}
	return percent
}

package media

import (
	"context"
	"errors"
	"strings"
	"testing"

	"minutes/internal/chunk"
)

func TestDurationParsesProbeOutput(t *testing.T) {
	var gotName string
	var gotArgs []string
	tk := New("", "", WithRunner(func(ctx context.Context, name string, args ...string) ([]byte, error) {
		gotName = name
		gotArgs = args
		return []byte("3612.480000\n"), nil
	}))

	duration, err := tk.Duration(context.Background(), "/lib/recording-1/recording.wav")
	if err != nil {
		t.Fatalf("Duration: %v", err)
	}
	if duration != 3612.48 {
		t.Fatalf("duration = %f", duration)
	}
	if gotName != "ffprobe" {
		t.Fatalf("binary = %q", gotName)
	}
	if gotArgs[len(gotArgs)-1] != "/lib/recording-1/recording.wav" {
		t.Fatalf("args = %v", gotArgs)
	}
}

func TestDurationRejectsGarbage(t *testing.T) {
	tk := New("", "", WithRunner(func(ctx context.Context, name string, args ...string) ([]byte, error) {
		return []byte("N/A"), nil
	}))
	if _, err := tk.Duration(context.Background(), "x.wav"); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestDurationCommandFailure(t *testing.T) {
	tk := New("", "", WithRunner(func(ctx context.Context, name string, args ...string) ([]byte, error) {
		return []byte("x.wav: No such file or directory"), errors.New("exit status 1")
	}))
	_, err := tk.Duration(context.Background(), "x.wav")
	if err == nil || !strings.Contains(err.Error(), "No such file") {
		t.Fatalf("err = %v, want command output in message", err)
	}
}

func TestParseSilenceMidpoints(t *testing.T) {
	output := `
[silencedetect @ 0x1] silence_start: 10.5
[silencedetect @ 0x1] silence_end: 11.5 | silence_duration: 1.0
[silencedetect @ 0x1] silence_start: 100
[silencedetect @ 0x1] silence_end: 102 | silence_duration: 2.0
`
	midpoints := parseSilenceMidpoints(output)
	if len(midpoints) != 2 {
		t.Fatalf("midpoints = %v", midpoints)
	}
	if midpoints[0] != 11.0 || midpoints[1] != 101.0 {
		t.Fatalf("midpoints = %v", midpoints)
	}
}

func TestCutBuildsCopyCommand(t *testing.T) {
	var gotArgs []string
	tk := New("", "", WithRunner(func(ctx context.Context, name string, args ...string) ([]byte, error) {
		gotArgs = args
		return nil, nil
	}))

	span := chunk.Span{Index: 1, Start: 1800, End: 3600}
	if err := tk.Cut(context.Background(), "in.wav", span, "out.wav"); err != nil {
		t.Fatalf("Cut: %v", err)
	}

	joined := strings.Join(gotArgs, " ")
	for _, want := range []string{"-ss 1800.000", "-t 1800.000", "-i in.wav", "-c copy", "out.wav"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("args %q missing %q", joined, want)
		}
	}
}

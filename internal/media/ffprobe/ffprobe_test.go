package ffprobe

import (
	"testing"
)

func TestParseAndHelpers(t *testing.T) {
	data := []byte(`{
	  "streams": [
	    {"index": 0, "codec_type": "video", "width": 1920, "height": 1080, "avg_frame_rate": "30000/1001"},
	    {"index": 1, "codec_type": "audio", "sample_rate": "48000", "channels": 2}
	  ],
	  "format": {"duration": "123.45", "format_name": "mov,mp4"}
	}`)
	result, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !result.HasVideo() || !result.HasAudio() {
		t.Fatal("expected both video and audio streams")
	}
	if w, h := result.VideoSize(); w != 1920 || h != 1080 {
		t.Fatalf("unexpected size %dx%d", w, h)
	}
	if fps := result.FrameRate(); fps < 29.96 || fps > 29.98 {
		t.Fatalf("unexpected frame rate %v", fps)
	}
	if result.DurationSeconds() != 123.45 {
		t.Fatalf("unexpected duration: %v", result.DurationSeconds())
	}
}

func TestDurationFallsBackToStreams(t *testing.T) {
	result := Result{
		Streams: []Stream{
			{CodecType: "audio", Duration: "10.5"},
			{CodecType: "video", Duration: "bad"},
		},
		Format: Format{Duration: "N/A"},
	}
	if result.DurationSeconds() != 10.5 {
		t.Fatalf("expected stream duration fallback, got %v", result.DurationSeconds())
	}
	if result.HasVideo() && result.FrameRate() != 0 {
		t.Fatalf("expected unknown frame rate, got %v", result.FrameRate())
	}
}

func TestAudioOnly(t *testing.T) {
	result := Result{Streams: []Stream{{CodecType: "audio"}}}
	if result.HasVideo() {
		t.Fatal("expected no video stream")
	}
	if w, h := result.VideoSize(); w != 0 || h != 0 {
		t.Fatalf("expected zero size, got %dx%d", w, h)
	}
	if result.DurationSeconds() != 0 {
		t.Fatalf("expected zero duration, got %v", result.DurationSeconds())
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	if _, err := Parse([]byte("nope")); err == nil {
		t.Fatal("expected parse error")
	}
}

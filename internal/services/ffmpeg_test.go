package services

import "testing"

func TestParseOutTime(t *testing.T) {
	tests := []struct {
		line   string
		wantUS int64
		wantOK bool
	}{
		{"out_time_us=1500000", 1500000, true},
		{"out_time_ms=1500000", 1500000, true}, // microseconds despite the name
		{"out_time=00:00:01.500000", 0, false},
		{"frame=42", 0, false},
		{"progress=continue", 0, false},
		{"out_time_us=not-a-number", 0, false},
		{"out_time_us=-5", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		us, ok := parseOutTime(tt.line)
		if ok != tt.wantOK || us != tt.wantUS {
			t.Errorf("parseOutTime(%q) = (%d, %v), want (%d, %v)", tt.line, us, ok, tt.wantUS, tt.wantOK)
		}
	}
}

func TestProgressPercent(t *testing.T) {
	tests := []struct {
		name   string
		us     int64
		hintMs int
		want   int
	}{
		{"halfway", 5_000_000, 10000, 50},
		{"start", 0, 10000, 0},
		{"capped below 100", 20_000_000, 10000, 99},
		{"no hint disables percentages", 5_000_000, 0, 0},
		{"exactly done still 99", 10_000_000, 10000, 99},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := progressPercent(tt.us, tt.hintMs); got != tt.want {
				t.Errorf("progressPercent(%d, %d) = %d, want %d", tt.us, tt.hintMs, got, tt.want)
			}
		})
	}
}

func TestMP3Duration(t *testing.T) {
	// 320kbps = 40000 bytes per second
	if got := MP3Duration(40000); got != 1.0 {
		t.Errorf("MP3Duration(40000) = %v, want 1.0", got)
	}
	if got := MP3Duration(0); got != 0 {
		t.Errorf("MP3Duration(0) = %v, want 0", got)
	}
	if got := MP3Duration(100000); got != 2.5 {
		t.Errorf("MP3Duration(100000) = %v, want 2.5", got)
	}
}

func TestEstimateAudioDuration(t *testing.T) {
	// 140 words at normal speed is one minute
	words := make([]byte, 0)
	for i := 0; i < 140; i++ {
		words = append(words, []byte("word ")...)
	}

	got := estimateAudioDuration(string(words), 1.0)
	if got != 60000 {
		t.Errorf("estimateAudioDuration(140 words, 1.0) = %dms, want 60000", got)
	}

	// Half speed doubles the estimate
	if got := estimateAudioDuration(string(words), 0.5); got != 120000 {
		t.Errorf("estimateAudioDuration(140 words, 0.5) = %dms, want 120000", got)
	}
}

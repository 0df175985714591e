package speedrun

import (
	"testing"
	"time"
)

func TestMilliseconds_String(t *testing.T) {
	tests := []struct {
		in   Milliseconds
		want string
	}{
		{0, "00:00.000"},
		{7, "00:00.007"},
		{61_250, "01:01.250"},
		{3_600_000, "1:00:00.000"},
		{45_296_789, "12:34:56.789"},
		{-1500, "-00:01.500"},
	}
	for _, tt := range tests {
		if got := tt.in.String(); got != tt.want {
			t.Errorf("Milliseconds(%d).String() = %q, want %q", int64(tt.in), got, tt.want)
		}
	}
}

func TestMilliseconds_Duration(t *testing.T) {
	if got := Milliseconds(1500).Duration(); got != 1500*time.Millisecond {
		t.Errorf("Duration() = %v", got)
	}
}

func TestEventKind_String(t *testing.T) {
	if EventRunEnded.String() != "run_ended" {
		t.Errorf("got %q", EventRunEnded.String())
	}
	if EventKind(99).String() != "EventKind(99)" {
		t.Errorf("got %q", EventKind(99).String())
	}
}

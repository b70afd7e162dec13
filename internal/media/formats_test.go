package media

import "testing"

func TestSupportedInput(t *testing.T) {
	for _, name := range []string{"a.mp4", "b.MKV", "c.mov", "show.webm"} {
		if !SupportedInput(name) {
			t.Errorf("SupportedInput(%q) = false, want true", name)
		}
	}
	for _, name := range []string{"a.txt", "b.srt", "noext", "c.exe"} {
		if SupportedInput(name) {
			t.Errorf("SupportedInput(%q) = true, want false", name)
		}
	}
}

package media

import (
	"path/filepath"
	"strings"
)

// SupportedInput reports whether the file extension is a container ffmpeg
// can extract audio from.
func SupportedInput(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	supported := []string{".mp4", ".mkv", ".avi", ".mov", ".webm", ".flv", ".ts", ".m4v", ".mpg", ".wmv"}

	for _, s := range supported {
		if ext == s {
			return true
		}
	}
	return false
}

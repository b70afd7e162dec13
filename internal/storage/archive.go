package storage

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Archive copies finished subtitle files into a dated directory tree
// alongside a metadata JSON, so serve-mode output survives temp cleanup.
type Archive struct {
	dir string
}

// NewArchive creates an archive rooted at dir.
func NewArchive(dir string) *Archive {
	return &Archive{dir: dir}
}

// Save copies the SRT at srtPath into archive/<year>/<month>/<day>/ and
// writes a sidecar metadata file. Returns the archived SRT path.
func (a *Archive) Save(run Run) (string, error) {
	now := time.Now()
	dateDir := filepath.Join(a.dir,
		fmt.Sprintf("%d", now.Year()),
		fmt.Sprintf("%02d", now.Month()),
		fmt.Sprintf("%02d", now.Day()))

	if err := os.MkdirAll(dateDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %v", err)
	}

	timestamp := now.Format("20060102_150405")
	baseFilename := fmt.Sprintf("%s_%s", timestamp, sanitizeFilename(run.VideoPath))
	srtPath := filepath.Join(dateDir, baseFilename+".srt")
	metaPath := filepath.Join(dateDir, baseFilename+"_meta.json")

	if err := copyFile(run.OutputPath, srtPath); err != nil {
		return "", fmt.Errorf("failed to archive subtitles: %v", err)
	}

	metadata := map[string]any{
		"job_id":           run.JobID,
		"video_path":       run.VideoPath,
		"cue_count":        run.CueCount,
		"duration_seconds": run.DurationSeconds,
		"language":         run.Language,
		"model":            run.Model,
		"created_at":       now,
	}
	metaJSON, err := json.MarshalIndent(metadata, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal metadata: %v", err)
	}
	if err := os.WriteFile(metaPath, metaJSON, 0644); err != nil {
		return "", fmt.Errorf("failed to save metadata: %v", err)
	}

	return srtPath, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// sanitizeFilename strips path separators and characters that are invalid
// in filenames, and bounds the length.
func sanitizeFilename(name string) string {
	result := filepath.Base(name)
	result = strings.TrimSuffix(result, filepath.Ext(result))
	for _, c := range []string{":", "*", "?", "\"", "<", ">", "|"} {
		result = strings.ReplaceAll(result, c, "_")
	}
	if len(result) > 100 {
		result = result[:100]
	}
	return result
}

package batch

import (
	"encoding/json"
	"fmt"
	"os"

	"sprite-detector/internal/detect"
)

// ManifestEntry represents one sheet in the output manifest.
type ManifestEntry struct {
	Sheet  string         `json:"sheet"`
	Width  int            `json:"width"`
	Height int            `json:"height"`
	Frames []detect.Frame `json:"frames"`
	Files  []string       `json:"files,omitempty"`
	Error  string         `json:"error,omitempty"`
}

// WriteManifest writes the batch results as indented JSON to path.
func WriteManifest(path string, results []Result) error {
	entries := make([]ManifestEntry, len(results))
	for i, r := range results {
		frames := r.Frames
		if frames == nil {
			frames = []detect.Frame{}
		}
		entries[i] = ManifestEntry{
			Sheet:  r.Path,
			Width:  r.Width,
			Height: r.Height,
			Frames: frames,
			Files:  r.Files,
			Error:  r.Error,
		}
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("batch: encode manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("batch: write %s: %w", path, err)
	}
	return nil
}

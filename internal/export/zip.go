package export

import (
	"encoding/json"
	"fmt"
	"image"
	"io"

	"github.com/klauspost/compress/zip"

	"sprite-detector/internal/detect"
)

// FramesEntry is the name of the frame list stored in every archive.
const FramesEntry = "frames.json"

// WriteZip writes a ZIP archive holding one PNG per frame plus frames.json.
func WriteZip(w io.Writer, sheet image.Image, frames []detect.Frame, scale int) error {
	zw := zip.NewWriter(w)

	for _, fr := range frames {
		fw, err := zw.Create(FormatPNG.FileName(fr))
		if err != nil {
			return fmt.Errorf("export: zip entry %s: %w", fr.Name, err)
		}
		if err := FormatPNG.Encode(fw, Scale(Crop(sheet, fr.Rect), scale)); err != nil {
			return fmt.Errorf("export: zip encode %s: %w", fr.Name, err)
		}
	}

	fw, err := zw.Create(FramesEntry)
	if err != nil {
		return fmt.Errorf("export: zip entry %s: %w", FramesEntry, err)
	}
	enc := json.NewEncoder(fw)
	enc.SetIndent("", "  ")
	if err := enc.Encode(frames); err != nil {
		return fmt.Errorf("export: zip %s: %w", FramesEntry, err)
	}

	return zw.Close()
}

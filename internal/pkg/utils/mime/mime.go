package mime

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// videoTypes lists the accepted quest video formats and the extension each is stored under.
var videoTypes = map[string]string{
	"video/mp4":       ".mp4",
	"video/quicktime": ".mov",
	"video/x-m4v":     ".m4v",
}

// extMimeMap is consulted when content sniffing is inconclusive.
var extMimeMap = map[string]string{
	".mp4": "video/mp4",
	".mov": "video/quicktime",
	".qt":  "video/quicktime",
	".m4v": "video/x-m4v",
}

// DetectMimeType sniffs content and falls back to the filename extension when the
// sniffed type is the generic octet-stream.
func DetectMimeType(content []byte, filename string) string {
	contentType := mimetype.Detect(content).String()
	if contentType == "application/octet-stream" {
		if byExt, ok := extMimeMap[strings.ToLower(filepath.Ext(filename))]; ok {
			return byExt
		}
	}
	return contentType
}

// DetectReader sniffs the head of r and returns the detected type together with a
// reader that replays the consumed bytes.
func DetectReader(r io.Reader, filename string) (string, io.Reader, error) {
	head := make([]byte, 3072)
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", nil, err
	}
	head = head[:n]
	return DetectMimeType(head, filename), io.MultiReader(strings.NewReader(string(head)), r), nil
}

// VideoExt reports whether mimeType is an accepted video type and its storage extension.
func VideoExt(mimeType string) (string, bool) {
	base, _, _ := strings.Cut(mimeType, ";")
	ext, ok := videoTypes[strings.TrimSpace(strings.ToLower(base))]
	return ext, ok
}

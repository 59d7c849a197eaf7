package extract

import (
	"mime"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// guessContentType prefers the extension and falls back to sniffing the bytes.
func guessContentType(filename string, content []byte) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext != "" {
		if mt := mime.TypeByExtension(ext); mt != "" {
			return stripParams(mt)
		}
		// fallbacks for minimal mime tables
		switch ext {
		case ".jpg", ".jpeg":
			return "image/jpeg"
		case ".png":
			return "image/png"
		case ".pdf":
			return "application/pdf"
		case ".tif", ".tiff":
			return "image/tiff"
		case ".heic":
			return "image/heic"
		}
	}
	return stripParams(mimetype.Detect(content).String())
}

func stripParams(mt string) string {
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		return strings.TrimSpace(mt[:i])
	}
	return mt
}

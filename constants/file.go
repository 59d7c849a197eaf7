package constants

import "strings"

// Source formats recognised by the renderable-image conversion.
const (
	PDF   = "PDF"
	IMAGE = "IMAGE"
)

// PDFRenderDPI matches the resolution the visualisations were tuned for.
const PDFRenderDPI = 250

var imageExts = map[string]struct{}{
	"jpg":  {},
	"jpeg": {},
	"png":  {},
	"gif":  {},
	"bmp":  {},
	"tif":  {},
	"tiff": {},
	"heic": {},
	"heif": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToFormat returns PDF, IMAGE or "" for an extension (with or without dot).
func MapExtToFormat(ext string) string {
	ext = NormalizeExt(ext)
	if ext == "pdf" {
		return PDF
	}
	if _, ok := imageExts[ext]; ok {
		return IMAGE
	}
	return ""
}

// IsHEICExt reports whether ext needs converting before Go can decode it.
func IsHEICExt(ext string) bool {
	switch NormalizeExt(ext) {
	case "heic", "heif", "heics", "heifs":
		return true
	}
	return false
}

package gocomics

import (
	"fmt"
	"strings"
	"time"
)

// FormatDate renders the UTC calendar date of t as the site's path fragment, e.g. 2024/03/10.
func FormatDate(t time.Time) string {
	u := t.UTC()
	return fmt.Sprintf("%04d/%02d/%02d", u.Year(), int(u.Month()), u.Day())
}

var extensions = map[string]string{
	"image/png":  "png",
	"image/gif":  "gif",
	"image/jpeg": "jpg",
	"image/jpg":  "jpg",
	"image/webp": "webp",
	"image/avif": "avif",
}

// AttachmentName builds a filename safe for upload from a formatted date and
// the image content type, e.g. 2024-03-10.png.
func AttachmentName(date, contentType string) string {
	mediaType, _, _ := strings.Cut(strings.ToLower(contentType), ";")
	ext, ok := extensions[strings.TrimSpace(mediaType)]
	if !ok {
		ext = "png"
	}
	return strings.ReplaceAll(date, "/", "-") + "." + ext
}

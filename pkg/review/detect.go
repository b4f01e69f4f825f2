package review

import "regexp"

// ImagePlaceholder replaces the data URL in the text sent alongside the image.
const ImagePlaceholder = "[Image attached for analysis]"

var reDataURL = regexp.MustCompile(`data:(image/[^;]+);base64,([A-Za-z0-9+/=]+)`)

type Image struct {
	DataURL  string
	MimeType string
	Base64   string
}

// DetectImage finds the first base64 image data URL embedded in query.
func DetectImage(query string) (Image, bool) {
	m := reDataURL.FindStringSubmatch(query)
	if m == nil {
		return Image{}, false
	}
	return Image{DataURL: m[0], MimeType: m[1], Base64: m[2]}, true
}

// StripImage replaces the first image data URL with ImagePlaceholder.
func StripImage(query string) string {
	loc := reDataURL.FindStringIndex(query)
	if loc == nil {
		return query
	}
	return query[:loc[0]] + ImagePlaceholder + query[loc[1]:]
}

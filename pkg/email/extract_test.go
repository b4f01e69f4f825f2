package email

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	logoPNG   = []byte("\x89PNG\r\n\x1a\nlogo-bytes")
	bannerJPG = []byte("\xff\xd8\xff\xe0banner-bytes")
)

func b64(b []byte) string { return base64.StdEncoding.EncodeToString(b) }

func sampleEmail() string {
	lines := []string{
		"From: Jordan Lee <jordan@example.com>",
		"To: brand@example.com",
		"Subject: Spring banner for review",
		"Date: Tue, 03 Mar 2026 10:15:00 +0100",
		"MIME-Version: 1.0",
		`Content-Type: multipart/mixed; boundary="outer"`,
		"",
		"--outer",
		`Content-Type: multipart/related; boundary="rel"`,
		"",
		"--rel",
		"Content-Type: text/html; charset=utf-8",
		"",
		`<p>See banner</p><img src="cid:banner@example.com">`,
		"--rel",
		`Content-Type: image/jpeg; name="banner.jpg"`,
		"Content-Transfer-Encoding: base64",
		"Content-ID: <banner@example.com>",
		`Content-Disposition: inline; filename="banner.jpg"`,
		"",
		b64(bannerJPG),
		"--rel--",
		"",
		"--outer",
		`Content-Type: image/png; name="logo.png"`,
		"Content-Transfer-Encoding: base64",
		`Content-Disposition: attachment; filename="logo.png"`,
		"",
		b64(logoPNG),
		"--outer",
		`Content-Type: text/plain; name="notes.txt"`,
		`Content-Disposition: attachment; filename="notes.txt"`,
		"",
		"not an image",
		"--outer--",
		"",
	}
	return strings.Join(lines, "\r\n")
}

func TestExtract(t *testing.T) {
	msg, err := Extract(strings.NewReader(sampleEmail()))
	require.NoError(t, err)

	assert.Equal(t, "Spring banner for review", msg.Subject)
	assert.Contains(t, msg.From, "jordan@example.com")
	assert.Equal(t, "2026-03-03T09:15:00Z", msg.Date)

	require.Len(t, msg.Images, 2)

	logo := msg.Images[0]
	assert.Equal(t, "logo.png", logo.Filename)
	assert.Equal(t, "image/png", logo.MimeType)
	assert.Equal(t, b64(logoPNG), logo.Base64)
	assert.Equal(t, len(logoPNG), logo.Size)
	assert.False(t, logo.Inline)

	banner := msg.Images[1]
	assert.Equal(t, "banner.jpg", banner.Filename)
	assert.Equal(t, "image/jpeg", banner.MimeType)
	assert.True(t, banner.Inline)
	assert.Equal(t, "banner@example.com", banner.ContentID)
}

func TestExtract_NoImages(t *testing.T) {
	raw := "From: a@example.com\r\nSubject: hi\r\nContent-Type: text/plain\r\n\r\nhello\r\n"

	msg, err := Extract(strings.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, "hi", msg.Subject)
	assert.Empty(t, msg.Images)
	assert.NotNil(t, msg.Images)
	assert.Equal(t, "", msg.Date)
}

func TestHelpers(t *testing.T) {
	assert.Equal(t, "inline_3", fallbackName("inline", 3))
	assert.Equal(t, "garbage", normalizeDate("garbage"))

	imgs := []Image{{Filename: "a.png", Size: 10}}
	assert.True(t, seen(imgs, "a.png", 10))
	assert.False(t, seen(imgs, "a.png", 11))
	assert.False(t, seen(imgs, "", 10))
}

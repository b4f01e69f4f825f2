package handlers

import (
	"fmt"
	"io"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"
)

// maxUploadBytes ограничивает размер одного загружаемого файла (25MB).
const maxUploadBytes = 25 << 20

// readUpload opens the multipart file under field and reads it whole.
// ok=false means the field is absent.
func readUpload(c *fiber.Ctx, field string, max int64) (fh *multipart.FileHeader, data []byte, ok bool, err error) {
	fh, ferr := c.FormFile(field)
	if ferr != nil || fh == nil {
		return nil, nil, false, nil
	}
	file, err := fh.Open()
	if err != nil {
		return fh, nil, true, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()
	data, err = readAtMost(file, max)
	return fh, data, true, err
}

func readAtMost(f multipart.File, max int64) ([]byte, error) {
	limited := io.LimitReader(f, max+1)
	b, err := io.ReadAll(limited)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if int64(len(b)) > max {
		return nil, fmt.Errorf("file too large: limit is %d bytes", max)
	}
	return b, nil
}

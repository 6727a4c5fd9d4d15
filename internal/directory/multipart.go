package directory

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"strings"

	"github.com/google/uuid"
)

const (
	defaultPhotoContentType = "image/jpeg"
	defaultPhotoFilename    = "image.jpg"
)

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func NewBoundary() string {
	return "Boundary-" + uuid.New().String()
}

func MultipartContentType(boundary string) string {
	return "multipart/form-data; boundary=" + boundary
}

// EncodeMultipart serializes a submission as multipart/form-data. The photo
// part is always written with a filename and content type; a missing photo
// becomes a zero-length payload because the service answers 500 when those
// headers are absent.
func EncodeMultipart(s Submission, boundary string) ([]byte, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.SetBoundary(boundary); err != nil {
		return nil, fmt.Errorf("invalid boundary: %w", err)
	}

	fields := []struct {
		name  string
		value string
	}{
		{"name", s.Name},
		{"email", s.Email},
		{"phone", s.Phone},
		{"position_id", s.PositionID},
	}
	for _, f := range fields {
		if err := w.WriteField(f.name, f.value); err != nil {
			return nil, fmt.Errorf("failed to write field %s: %w", f.name, err)
		}
	}

	contentType, filename, data := defaultPhotoContentType, defaultPhotoFilename, []byte{}
	if s.Photo != nil {
		data = s.Photo.Data
		if s.Photo.ContentType != "" {
			contentType = s.Photo.ContentType
		}
		if s.Photo.Filename != "" {
			filename = s.Photo.Filename
		}
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="photo"; filename="%s"`, quoteEscaper.Replace(filename)))
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("failed to create photo part: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("failed to write photo: %w", err)
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}
	return buf.Bytes(), nil
}

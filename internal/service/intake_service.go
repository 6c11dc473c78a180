package service

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

const (
	MimeJPEG = "image/jpeg"
	MimePNG  = "image/png"
	MimePDF  = "application/pdf"
)

// IntakeService validates an uploaded document and prepares it for transport
// to the extraction gateway. Files that fail validation never reach the
// gateway.
type IntakeService struct {
	maxSizeBytes int64
	logger       *zap.Logger
}

func NewIntakeService(maxSizeBytes int64, logger *zap.Logger) *IntakeService {
	return &IntakeService{
		maxSizeBytes: maxSizeBytes,
		logger:       logger,
	}
}

// Validate checks the size cap and sniffs the MIME type from content.
// The multipart Content-Type header is client-controlled and ignored.
func (s *IntakeService) Validate(data []byte) (string, error) {
	if len(data) == 0 {
		return "", &ValidationError{Reason: "file is empty"}
	}
	if int64(len(data)) > s.maxSizeBytes {
		return "", &ValidationError{
			Reason: fmt.Sprintf("file size %d exceeds limit of %d bytes", len(data), s.maxSizeBytes),
		}
	}

	mimeType := http.DetectContentType(data)
	switch mimeType {
	case MimeJPEG, MimePNG, MimePDF:
	default:
		return "", &ValidationError{
			Reason: fmt.Sprintf("unsupported file type %s (supported: jpeg, png, pdf)", mimeType),
		}
	}

	s.logger.Debug("Document accepted",
		zap.String("mime_type", mimeType),
		zap.Int("size", len(data)),
	)

	return mimeType, nil
}

// Encode produces the transport-safe base64 representation of a document.
func (s *IntakeService) Encode(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// Decode decodes a base64 payload, stripping any data-URL prefix
// ("data:image/png;base64,...") a browser client may have added.
func (s *IntakeService) Decode(payload string) ([]byte, error) {
	if strings.HasPrefix(payload, "data:") {
		if idx := strings.Index(payload, ","); idx != -1 {
			payload = payload[idx+1:]
		}
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, &ValidationError{Reason: "payload is not valid base64"}
	}
	return data, nil
}

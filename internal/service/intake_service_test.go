package service

import (
	"bytes"
	"encoding/base64"
	"errors"
	"testing"

	"go.uber.org/zap"
)

var (
	pngHeader  = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0}
	jpegHeader = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F'}
	pdfHeader  = []byte("%PDF-1.4\n%test")
)

func TestIntakeValidate(t *testing.T) {
	svc := NewIntakeService(1024, zap.NewNop())

	tests := []struct {
		name     string
		data     []byte
		wantMime string
		wantErr  bool
	}{
		{"png accepted", pngHeader, MimePNG, false},
		{"jpeg accepted", jpegHeader, MimeJPEG, false},
		{"pdf accepted", pdfHeader, MimePDF, false},
		{"empty rejected", nil, "", true},
		{"plain text rejected", []byte("hello world"), "", true},
		{"oversize rejected", bytes.Repeat(pngHeader, 200), "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mime, err := svc.Validate(tt.data)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				var validationErr *ValidationError
				if !errors.As(err, &validationErr) {
					t.Errorf("expected ValidationError, got %T", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if mime != tt.wantMime {
				t.Errorf("mime = %q, want %q", mime, tt.wantMime)
			}
		})
	}
}

func TestIntakeValidateSniffsContent(t *testing.T) {
	svc := NewIntakeService(1024, zap.NewNop())

	// An executable disguised with a .png name is still rejected: only the
	// content matters.
	if _, err := svc.Validate([]byte{0x7F, 'E', 'L', 'F', 2, 1, 1, 0}); err == nil {
		t.Error("expected non-image content to be rejected")
	}
}

func TestIntakeDecode(t *testing.T) {
	svc := NewIntakeService(1024, zap.NewNop())
	payload := base64.StdEncoding.EncodeToString(pngHeader)

	tests := []struct {
		name    string
		payload string
		wantErr bool
	}{
		{"plain base64", payload, false},
		{"data url prefix", "data:image/png;base64," + payload, false},
		{"garbage", "!!not-base64!!", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := svc.Decode(tt.payload)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !bytes.Equal(data, pngHeader) {
				t.Error("decoded bytes do not round-trip")
			}
		})
	}
}

func TestIntakeEncodeDecodeRoundTrip(t *testing.T) {
	svc := NewIntakeService(1024, zap.NewNop())

	encoded := svc.Encode(jpegHeader)
	decoded, err := svc.Decode(encoded)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(decoded, jpegHeader) {
		t.Error("encode/decode round trip lost data")
	}
}

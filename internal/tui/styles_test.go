package tui

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	apierrors "github.com/diogo/roomchat/internal/errors"
)

func TestFormatError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want []string
	}{
		{"nil", nil, nil},
		{"permission", apierrors.ErrPermissionDenied, []string{"Permission denied", "gallery access"}},
		{"send", apierrors.NewSendError(apierrors.ActionSendText, errors.New("timeout")), []string{"Send failed", "internet connection", "timeout"}},
		{"generic", errors.New("boom"), []string{"Error", "boom"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatError(tt.err)
			if tt.err == nil && got != "" {
				t.Fatalf("FormatError(nil) = %q", got)
			}
			for _, want := range tt.want {
				if !strings.Contains(got, want) {
					t.Errorf("FormatError() = %q, missing %q", got, want)
				}
			}
		})
	}
}

func TestPrintError(t *testing.T) {
	var buf bytes.Buffer
	PrintError(&buf, nil)
	if buf.Len() != 0 {
		t.Error("nil error should print nothing")
	}

	PrintError(&buf, apierrors.ErrNoImageData)
	if !strings.Contains(buf.String(), "Could not read the image data.") {
		t.Errorf("output = %q", buf.String())
	}
}

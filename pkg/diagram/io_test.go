package diagram

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/viralify/edgecraft/pkg/errors"
)

func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "nope.json"))
	if err == nil {
		t.Fatal("ReadFile on missing file should error")
	}
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("error code = %s, want %s", errors.GetCode(err), errors.ErrCodeFileNotFound)
	}
}

func TestUnmarshalMalformed(t *testing.T) {
	_, err := Unmarshal([]byte(`{"nodes": [`))
	if err == nil {
		t.Fatal("Unmarshal of malformed JSON should error")
	}
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("error code = %s, want %s", errors.GetCode(err), errors.ErrCodeInvalidFormat)
	}
}

func TestReadMalformed(t *testing.T) {
	_, err := Read(strings.NewReader("not json"))
	if err == nil {
		t.Fatal("Read of malformed input should error")
	}
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("error code = %s, want %s", errors.GetCode(err), errors.ErrCodeInvalidFormat)
	}
}

package storage

import (
	"testing"

	"github.com/google/uuid"
)

func TestObjectKey(t *testing.T) {
	id := uuid.MustParse("1b4e28ba-2fa1-11d2-883f-0016d3cca427")
	got := ObjectKey("+5547999887766", "Áudio Cliente 01.WAV", id)
	want := "+5547999887766/audio-cliente-01_1b4e28ba.wav"
	if got != want {
		t.Fatalf("ObjectKey = %q, want %q", got, want)
	}
}

func TestValidateContentType(t *testing.T) {
	if err := validateContentType("audio/wav; codecs=1"); err != nil {
		t.Fatalf("wav rejected: %v", err)
	}
	if err := validateContentType("image/png"); err == nil {
		t.Fatalf("image accepted")
	}
}

func TestValidateFileSize(t *testing.T) {
	if err := validateFileSize(0, 10); err == nil {
		t.Fatalf("empty file accepted")
	}
	if err := validateFileSize(11, 10); err == nil {
		t.Fatalf("oversized file accepted")
	}
	if err := validateFileSize(10, 10); err != nil {
		t.Fatalf("file at limit rejected: %v", err)
	}
}

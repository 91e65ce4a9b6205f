package ocr

import (
	"errors"
	"testing"

	"github.com/checkam/scanverifier/internal/common"
)

func TestNormalize_CollapsesWhitespace(t *testing.T) {
	got, err := Normalize(" NF-12345 ")
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if got != "NF-12345" {
		t.Fatalf("got %q, want %q", got, "NF-12345")
	}
}

func TestNormalize_RemovesEmbeddedWhitespace(t *testing.T) {
	got, err := Normalize("NF\t12\n345  X")
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if got != "NF12345X" {
		t.Fatalf("got %q, want %q", got, "NF12345X")
	}
}

func TestNormalize_TooShort(t *testing.T) {
	for _, raw := range []string{"", "  ", "ab", " a b \n"} {
		if _, err := Normalize(raw); !errors.Is(err, common.ErrCodeTooShort) {
			t.Fatalf("Normalize(%q): got %v, want ErrCodeTooShort", raw, err)
		}
	}
}

func TestNormalize_MinimumLengthBoundary(t *testing.T) {
	got, err := Normalize(" a b c ")
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if got != "abc" {
		t.Fatalf("got %q, want %q", got, "abc")
	}
}

package link

import (
	"strings"
	"testing"
)

func TestGenerateShortCode_LengthAndCharset(t *testing.T) {
	code, err := generateShortCode()
	if err != nil {
		t.Fatalf("generateShortCode: %v", err)
	}

	if len(code) != shortCodeLength {
		t.Errorf("expected length %d, got %d (%q)", shortCodeLength, len(code), code)
	}

	for _, r := range code {
		if !strings.ContainsRune(shortCodeCharset, r) {
			t.Errorf("code %q contains character %q outside the charset", code, r)
		}
	}
}

func TestGenerateShortCode_UniformDistribution(t *testing.T) {
	// A naive byte%62 mapping favours the first 256%62 characters by 25%.
	// Count character frequency over 100k characters and require every
	// character to stay close to the uniform expectation.
	counts := make(map[rune]int, len(shortCodeCharset))

	const codes = 12500
	for i := 0; i < codes; i++ {
		code, err := generateShortCode()
		if err != nil {
			t.Fatalf("generateShortCode: %v", err)
		}
		for _, r := range code {
			counts[r]++
		}
	}

	mean := float64(codes*shortCodeLength) / float64(len(shortCodeCharset))
	for _, r := range shortCodeCharset {
		got := float64(counts[r])
		if got > 1.12*mean || got < 0.88*mean {
			t.Errorf("character %q frequency %v deviates from uniform mean %v", r, got, mean)
		}
	}
}

func TestGenerateShortCode_NoCollisionsAcross10k(t *testing.T) {
	seen := make(map[string]struct{}, 10000)

	for i := 0; i < 10000; i++ {
		code, err := generateShortCode()
		if err != nil {
			t.Fatalf("generateShortCode: %v", err)
		}
		if _, dup := seen[code]; dup {
			t.Fatalf("collision after %d codes: %q", i, code)
		}
		seen[code] = struct{}{}
	}
}

package curl

import (
	"testing"

	"github.com/google/uuid"
)

func TestExtension(t *testing.T) {
	testCases := map[string]struct {
		url string
		exp string
	}{
		"upperWithQuery": {url: "https://x.com/file.PDF?x=1", exp: "pdf"},
		"noExtension":    {url: "https://x.com/noextension", exp: "tmp"},
		"portRemnant":    {url: "https://x.com/a.b:8080", exp: "b"},
		"tooLong":        {url: "https://x.com/archive.tar.gzip", exp: "tmp"},
		"threeChars":     {url: "https://x.com/img.JPG", exp: "jpg"},
		"nonAlnum":       {url: "https://x.com/a.b-c", exp: "tmp"},
		"queryHasDot":    {url: "https://x.com/doc?name=a.zip", exp: "tmp"},
		"trailingDot":    {url: "https://x.com/file.", exp: "tmp"},
		"empty":          {url: "", exp: "tmp"},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			if got := Extension(tc.url); got != tc.exp {
				t.Errorf("exp %q, got %q", tc.exp, got)
			}
		})
	}
}

func TestPathToken_Unique(t *testing.T) {
	seen := make(map[string]struct{})
	for range 100 {
		tok, err := pathToken("https://x.com/same.bin")
		if err != nil {
			t.Fatal(err)
		}
		if _, err := uuid.Parse(tok); err != nil {
			t.Fatalf("token %q is not a uuid: %v", tok, err)
		}
		if _, dup := seen[tok]; dup {
			t.Fatalf("duplicate token %q", tok)
		}
		seen[tok] = struct{}{}
	}
}

func TestParseStrategy(t *testing.T) {
	testCases := map[string]struct {
		in     string
		exp    Strategy
		expErr bool
	}{
		"empty":    {in: "", exp: Chunked},
		"chunked":  {in: "Chunked", exp: Chunked},
		"buffered": {in: "buffered", exp: Buffered},
		"unknown":  {in: "mmap", expErr: true},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			got, err := ParseStrategy(tc.in)
			if tc.expErr {
				if err == nil {
					t.Fatal("exp error")
				}
				return
			}
			if err != nil || got != tc.exp {
				t.Errorf("exp %v, got %v (%v)", tc.exp, got, err)
			}
		})
	}
}

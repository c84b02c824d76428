package binary

import (
	"os"
	"path/filepath"
	"testing"
)

func TestIsBinaryMIME(t *testing.T) {
	cases := []struct {
		mime string
		want bool
	}{
		{"image/png", true},
		{"audio/mpeg", true},
		{"video/mp4", true},
		{"font/woff2", true},
		{"application/zip", true},
		{"application/pdf", true},
		{"application/octet-stream", true},
		{"text/plain", false},
		{"text/x-go", false},
		{"application/json", false},
		{"text/plain; charset=utf-8", false},
		{"IMAGE/PNG", true},
	}
	for _, tc := range cases {
		if got := IsBinaryMIME(tc.mime); got != tc.want {
			t.Errorf("IsBinaryMIME(%q) = %v, want %v", tc.mime, got, tc.want)
		}
	}
}

func TestIsBinaryFile(t *testing.T) {
	dir := t.TempDir()

	text := filepath.Join(dir, "a.txt")
	if err := os.WriteFile(text, []byte("hello world"), 0o644); err != nil {
		t.Fatal(err)
	}
	if IsBinaryFile(text) {
		t.Error("a.txt should be text")
	}

	img := filepath.Join(dir, "pic.png")
	if err := os.WriteFile(img, []byte{0x89, 'P', 'N', 'G'}, 0o644); err != nil {
		t.Fatal(err)
	}
	if !IsBinaryFile(img) {
		t.Error("pic.png should be binary")
	}
}

func TestIsBinaryData(t *testing.T) {
	if IsBinaryData("main.go", []byte("package main")) {
		t.Error("Go source should be text")
	}
	if !IsBinaryData("pic.jpeg", []byte{0xff, 0xd8, 0xff}) {
		t.Error("jpeg extension should be binary")
	}
	if !IsBinaryData("blob", []byte{0x00, 0x01, 0x02, 0x03, 0x00, 0xff}) {
		t.Error("NUL-laden content should sniff as binary")
	}
	if IsBinaryData("empty.txt", nil) {
		t.Error("empty text file should not be binary")
	}
}

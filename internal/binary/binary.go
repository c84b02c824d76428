// Package binary detects binary files by MIME type so they can be skipped
// during summarization and content retrieval.
package binary

import (
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// binaryMIMEPrefixes covers the common binary families. Anything not matched
// here is treated as text.
var binaryMIMEPrefixes = []string{
	"image/",
	"audio/",
	"video/",
	"font/",
}

var binaryMIMETypes = map[string]bool{
	"application/octet-stream":      true,
	"application/zip":               true,
	"application/gzip":              true,
	"application/x-gzip":            true,
	"application/x-tar":             true,
	"application/x-bzip2":           true,
	"application/x-7z-compressed":   true,
	"application/x-rar-compressed":  true,
	"application/vnd.rar":           true,
	"application/pdf":               true,
	"application/x-executable":      true,
	"application/x-mach-binary":     true,
	"application/x-msdownload":      true,
	"application/x-sharedlib":       true,
	"application/x-object":          true,
	"application/vnd.ms-fontobject": true,
	"application/wasm":              true,
	"application/x-sqlite3":         true,
	"application/java-archive":      true,
}

// IsBinaryMIME reports whether the given MIME type belongs to a binary family.
func IsBinaryMIME(mimeType string) bool {
	mimeType = strings.TrimSpace(strings.ToLower(mimeType))
	if i := strings.Index(mimeType, ";"); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}
	if binaryMIMETypes[mimeType] {
		return true
	}
	for _, prefix := range binaryMIMEPrefixes {
		if strings.HasPrefix(mimeType, prefix) {
			return true
		}
	}
	return false
}

// DetectPath sniffs the MIME type of the file at path, preferring the
// extension and falling back to content sniffing of the first 512 bytes.
func DetectPath(path string) string {
	if mt := mime.TypeByExtension(filepath.Ext(path)); mt != "" {
		return mt
	}

	f, err := os.Open(path)
	if err != nil {
		return "application/octet-stream"
	}
	defer f.Close()

	buf := make([]byte, 512)
	n, _ := f.Read(buf)
	if n == 0 {
		return "text/plain"
	}
	return http.DetectContentType(buf[:n])
}

// IsBinaryFile reports whether the file at path looks binary.
func IsBinaryFile(path string) bool {
	return IsBinaryMIME(DetectPath(path))
}

// IsBinaryData reports whether in-memory content named path looks binary,
// checking the extension's MIME family and then sniffing the first 512 bytes.
func IsBinaryData(path string, data []byte) bool {
	if IsBinaryMIME(mime.TypeByExtension(filepath.Ext(path))) {
		return true
	}
	if len(data) == 0 {
		return false
	}
	n := len(data)
	if n > 512 {
		n = 512
	}
	return IsBinaryMIME(http.DetectContentType(data[:n]))
}

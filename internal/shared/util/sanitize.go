package util

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"
)

// SanitizeFileName removes path separators and rejects traversal patterns.
func SanitizeFileName(name string) (string, error) {
	if strings.Contains(name, "..") {
		return "", errors.New("invalid file name")
	}
	s := strings.TrimSpace(name)
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	if s == "" {
		return "", errors.New("invalid file name")
	}
	return s, nil
}

const (
	MimePDF  = "application/pdf"
	MimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MimeText = "text/plain"
)

// DetectMimeType sniffs the leading bytes and refines zip containers and
// plain text using the file extension.
func DetectMimeType(fileName string, head []byte) string {
	sniffed := http.DetectContentType(head)
	ext := strings.ToLower(filepath.Ext(fileName))
	switch {
	case strings.HasPrefix(sniffed, MimePDF):
		return MimePDF
	case sniffed == "application/zip" && ext == ".docx":
		return MimeDOCX
	case strings.HasPrefix(sniffed, "text/plain"):
		return MimeText
	}
	return sniffed
}

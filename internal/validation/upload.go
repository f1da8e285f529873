package validation

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// sniffLen bytes read ahead for content detection
const sniffLen = 3072

// UploadRule size and type allow-list for one kind of upload.
// Empty Extensions / MIMETypes accept any type.
type UploadRule struct {
	Field      string
	MaxBytes   int64
	Extensions []string
	MIMETypes  []string
}

// AvatarRule profile photos: jpg/jpeg/png/gif
func AvatarRule(maxBytes int64) UploadRule {
	return UploadRule{
		Field:      "avatar",
		MaxBytes:   maxBytes,
		Extensions: []string{".jpg", ".jpeg", ".png", ".gif"},
		MIMETypes:  []string{"image/jpeg", "image/png", "image/gif"},
	}
}

// LeaveAttachmentRule supporting document of a medical leave: pdf or image
func LeaveAttachmentRule(maxBytes int64) UploadRule {
	return UploadRule{
		Field:      "attachment",
		MaxBytes:   maxBytes,
		Extensions: []string{".pdf", ".jpg", ".jpeg", ".png"},
		MIMETypes:  []string{"application/pdf", "image/jpeg", "image/png"},
	}
}

// DocumentRule shared documents: any type, size-limited
func DocumentRule(maxBytes int64) UploadRule {
	return UploadRule{Field: "file", MaxBytes: maxBytes}
}

// Check validates filename, declared size and the leading bytes of the content.
// Returns the detected MIME type.
func (r UploadRule) Check(filename string, size int64, head []byte) (string, error) {
	var errs Errors

	if size <= 0 {
		errs.Add(r.Field, "file is empty")
	} else if r.MaxBytes > 0 && size > r.MaxBytes {
		errs.Add(r.Field, fmt.Sprintf("file exceeds %s", humanSize(r.MaxBytes)))
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if len(r.Extensions) > 0 && !contains(r.Extensions, ext) {
		errs.Add(r.Field, "file type not allowed, use "+strings.Join(r.Extensions, ", "))
	}

	detected := mimetype.Detect(head)
	if len(r.MIMETypes) > 0 && !errs.Has(r.Field) {
		ok := false
		for _, m := range r.MIMETypes {
			if detected.Is(m) {
				ok = true
				break
			}
		}
		if !ok {
			errs.Add(r.Field, "file content does not match an allowed type")
		}
	}

	if err := errs.Err(); err != nil {
		return "", err
	}
	return detected.String(), nil
}

// Sniff reads the head of r for Check and returns a reader over the full content.
func Sniff(r io.Reader) ([]byte, io.Reader, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, nil, err
	}
	head = head[:n]
	return head, io.MultiReader(bytes.NewReader(head), r), nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func humanSize(n int64) string {
	if n%(1<<20) == 0 {
		return fmt.Sprintf("%dMB", n>>20)
	}
	return fmt.Sprintf("%d bytes", n)
}

// Package resume holds job applications and the resume files they link to.
// Intake is two-phase: the file is uploaded first and the returned URL is
// carried into the application submission.
package resume

import (
	"path/filepath"
	"strings"
	"time"
)

// DefaultMaxBytes caps an uploaded resume at 5 MiB.
const DefaultMaxBytes int64 = 5 * 1024 * 1024

// AllowedExtensions maps accepted resume extensions to their canonical MIME type.
var AllowedExtensions = map[string]string{
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// Extension returns the lower-cased extension of name and whether it is accepted.
func Extension(name string) (string, bool) {
	ext := strings.ToLower(filepath.Ext(name))
	_, ok := AllowedExtensions[ext]
	return ext, ok
}

// AllowedMIME reports whether a client-declared content type is acceptable.
// Browsers often send application/octet-stream for .doc files, so a generic
// or missing type defers to the extension check.
func AllowedMIME(contentType string) bool {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	if ct == "" || ct == "application/octet-stream" {
		return true
	}
	for _, v := range AllowedExtensions {
		if v == ct {
			return true
		}
	}
	return false
}

// Application is a submitted job application.
type Application struct {
	ID            string    `json:"id" bson:"_id"`
	CareerID      string    `json:"careerId" bson:"careerId"`
	FullName      string    `json:"fullName" bson:"fullName"`
	Email         string    `json:"email" bson:"email"`
	Phone         *string   `json:"phone" bson:"phone"`
	CoverLetter   *string   `json:"coverLetter" bson:"coverLetter"`
	ResumeFileURL string    `json:"resumeFileUrl" bson:"resumeFileUrl"`
	CreatedAt     time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt" bson:"updatedAt"`
}

func (a *Application) Clone() *Application {
	c := *a
	if a.Phone != nil {
		v := *a.Phone
		c.Phone = &v
	}
	if a.CoverLetter != nil {
		v := *a.CoverLetter
		c.CoverLetter = &v
	}
	return &c
}

// UploadedFile describes a resume accepted by the upload step.
type UploadedFile struct {
	URL         string `json:"url"`
	Key         string `json:"key"`
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}

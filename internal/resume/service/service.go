package service

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/medbill/medbill-site/backend/api/internal/apierr"
	"github.com/medbill/medbill-site/backend/api/internal/events"
	"github.com/medbill/medbill-site/backend/api/internal/resume"
	"github.com/medbill/medbill-site/backend/api/internal/resume/repository"
	"github.com/medbill/medbill-site/backend/api/internal/storage"
	"github.com/medbill/medbill-site/backend/api/pkg/logger"
	"github.com/medbill/medbill-site/backend/api/pkg/metrics"
)

// Careers resolves career postings referenced by applications.
type Careers interface {
	CareerExists(ctx context.Context, id string) (bool, error)
}

// UploadInput is one file from the upload form.
type UploadInput struct {
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// SubmitInput is the application form.
type SubmitInput struct {
	CareerID      string  `json:"careerId"`
	FullName      string  `json:"fullName"`
	Email         string  `json:"email"`
	Phone         *string `json:"phone"`
	CoverLetter   *string `json:"coverLetter"`
	ResumeFileURL string  `json:"resumeFileUrl"`
}

type Service struct {
	repo     repository.Repository
	files    storage.ObjectStore
	careers  Careers
	events   events.Publisher
	maxBytes int64
	now      func() time.Time
}

func NewService(repo repository.Repository, files storage.ObjectStore, careers Careers, pub events.Publisher, maxBytes int64) *Service {
	if pub == nil {
		pub = events.Noop{}
	}
	if maxBytes <= 0 {
		maxBytes = resume.DefaultMaxBytes
	}
	return &Service{
		repo:     repo,
		files:    files,
		careers:  careers,
		events:   pub,
		maxBytes: maxBytes,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// MaxBytes is the largest accepted resume.
func (s *Service) MaxBytes() int64 { return s.maxBytes }

func rejected(err error) error {
	metrics.Uploads.WithLabelValues("resume", "rejected").Inc()
	return err
}

// Upload accepts a resume file and returns where it was stored. It holds no
// reference to a career or applicant.
func (s *Service) Upload(ctx context.Context, in UploadInput) (*resume.UploadedFile, error) {
	ext, ok := resume.Extension(in.FileName)
	if !ok || !resume.AllowedMIME(in.ContentType) {
		return nil, rejected(apierr.UnsupportedFileType("Only PDF, DOC and DOCX files are allowed"))
	}
	if in.Size > s.maxBytes {
		return nil, rejected(apierr.FileTooLarge("File size must be at most %s", humanize.IBytes(uint64(s.maxBytes))))
	}
	if in.Size == 0 || in.Body == nil {
		return nil, rejected(apierr.Validation("Please choose a file to upload"))
	}

	contentType := resume.AllowedExtensions[ext]
	key := "resumes/" + uuid.NewString() + ext
	url, err := s.files.Put(ctx, key, in.Body, in.Size, contentType)
	if err != nil {
		metrics.Uploads.WithLabelValues("resume", "failed").Inc()
		return nil, apierr.Persistence("store resume", err)
	}
	metrics.Uploads.WithLabelValues("resume", "accepted").Inc()
	logger.Infow("resume uploaded", "key", key, "size", in.Size)
	return &resume.UploadedFile{URL: url, Key: key, FileName: in.FileName, ContentType: contentType, Size: in.Size}, nil
}

func optional(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	if v == "" {
		return nil
	}
	return &v
}

// Submit stores an application for an existing career. The resume URL is
// trusted as issued by Upload.
func (s *Service) Submit(ctx context.Context, in SubmitInput) (*resume.Application, error) {
	careerID := strings.TrimSpace(in.CareerID)
	name := strings.TrimSpace(in.FullName)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	fileURL := strings.TrimSpace(in.ResumeFileURL)

	var missing []string
	for _, f := range []struct{ field, value string }{
		{"careerId", careerID}, {"fullName", name}, {"email", email}, {"resumeFileUrl", fileURL},
	} {
		if f.value == "" {
			missing = append(missing, f.field)
		}
	}
	if len(missing) > 0 {
		return nil, apierr.Validation("Please fill in all required fields: %s", strings.Join(missing, ", "))
	}
	if at := strings.Index(email, "@"); at <= 0 || at == len(email)-1 {
		return nil, apierr.Validation("Please provide a valid email address")
	}

	ok, err := s.careers.CareerExists(ctx, careerID)
	if err != nil {
		return nil, apierr.Persistence("look up career", err)
	}
	if !ok {
		return nil, apierr.NotFound("Career")
	}

	now := s.now()
	a := &resume.Application{
		ID:            uuid.NewString(),
		CareerID:      careerID,
		FullName:      name,
		Email:         email,
		Phone:         optional(in.Phone),
		CoverLetter:   optional(in.CoverLetter),
		ResumeFileURL: fileURL,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, apierr.Persistence("create application", err)
	}
	metrics.ResumeApplications.Inc()
	logger.Infow("application submitted", "id", a.ID, "career", careerID)

	if err := s.events.Publish(ctx, events.ResumeSubmitted, a); err != nil {
		logger.Warnw("application event not published", "id", a.ID, "err", err)
	}
	return a, nil
}

// List returns applications for admins, optionally for one career.
func (s *Service) List(ctx context.Context, careerID string) ([]*resume.Application, error) {
	out, err := s.repo.List(ctx, strings.TrimSpace(careerID))
	if err != nil {
		return nil, apierr.Persistence("list applications", err)
	}
	return out, nil
}

package service

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"inr99_academy_backend/internal/model"
	"inr99_academy_backend/internal/repository"
	"inr99_academy_backend/internal/util"
)

// certificateTmpl is the rendered artifact stored alongside the record. A
// printable page is enough; PDF rendering stays on the client.
var certificateTmpl = template.Must(template.New("certificate").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Certificate of Completion</title>
<style>
body { font-family: Georgia, serif; text-align: center; margin: 4em; }
.serial { color: #888; font-size: 0.8em; }
h1 { letter-spacing: 0.2em; }
</style>
</head>
<body>
<h1>INR99 ACADEMY</h1>
<p>This certifies that</p>
<h2>{{.UserName}}</h2>
<p>has successfully completed the course</p>
<h2>{{.CourseTitle}}</h2>
<p>on {{.IssuedOn}}</p>
<p class="serial">Serial: {{.Serial}}</p>
</body>
</html>
`))

type CertificateService struct {
	Repo    *repository.CertificateRepository
	Courses *repository.CourseRepository
	Users   *repository.UserRepository
	Storage *StorageService
}

func NewCertificateService(repo *repository.CertificateRepository, courses *repository.CourseRepository, users *repository.UserRepository, storage *StorageService) *CertificateService {
	return &CertificateService{Repo: repo, Courses: courses, Users: users, Storage: storage}
}

// Issue creates the certificate for a finished course. Calling it again for
// the same user and course returns the existing record.
func (s *CertificateService) Issue(ctx context.Context, userID, courseID uint) (*model.Certificate, error) {
	if existing, err := s.Repo.FindByUserAndCourse(userID, courseID); err == nil {
		return existing, nil
	}

	enrollment, err := s.Courses.FindEnrollment(userID, courseID)
	if err != nil {
		return nil, util.ErrNotEnrolled
	}
	if enrollment.CompletedAt == nil {
		return nil, util.ErrCourseNotCompleted
	}

	course, err := s.Courses.FindByID(courseID)
	if err != nil {
		return nil, util.ErrCourseNotFound
	}
	user, err := s.Users.FindByID(userID)
	if err != nil {
		return nil, util.ErrUserNotFound
	}

	cert := &model.Certificate{
		UserID:   userID,
		CourseID: courseID,
		Serial:   model.GenerateUUID(),
		IssuedAt: time.Now(),
	}

	var buf bytes.Buffer
	data := struct {
		UserName    string
		CourseTitle string
		IssuedOn    string
		Serial      string
	}{user.Name, course.Title, cert.IssuedAt.Format(util.DateFormat), cert.Serial}
	if err := certificateTmpl.Execute(&buf, data); err != nil {
		return nil, err
	}

	objectKey := fmt.Sprintf("certificates/%d/%s.html", userID, cert.Serial)
	if _, err := s.Storage.Upload(ctx, objectKey, &buf, int64(buf.Len()), util.MimeHTML+"; charset=utf-8"); err != nil {
		return nil, err
	}
	cert.ObjectKey = objectKey

	if err := s.Repo.Create(cert); err != nil {
		// Unique index on (user, course); a concurrent issue already won.
		if existing, ferr := s.Repo.FindByUserAndCourse(userID, courseID); ferr == nil {
			return existing, nil
		}
		return nil, err
	}
	return cert, nil
}

type CertificateView struct {
	model.Certificate
	DownloadURL string `json:"downloadUrl"`
}

func (s *CertificateService) ListUserCertificates(userID uint) ([]CertificateView, error) {
	certs, err := s.Repo.ListByUser(userID)
	if err != nil {
		return nil, err
	}
	views := make([]CertificateView, 0, len(certs))
	for _, c := range certs {
		views = append(views, CertificateView{Certificate: c, DownloadURL: s.Storage.GetURL(c.ObjectKey)})
	}
	return views, nil
}

func (s *CertificateService) Get(userID, courseID uint) (*CertificateView, error) {
	cert, err := s.Repo.FindByUserAndCourse(userID, courseID)
	if err != nil {
		return nil, err
	}
	return &CertificateView{Certificate: *cert, DownloadURL: s.Storage.GetURL(cert.ObjectKey)}, nil
}

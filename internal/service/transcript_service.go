package service

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/gradetrack-api/internal/dto"
	"github.com/noah-isme/gradetrack-api/internal/models"
	appErrors "github.com/noah-isme/gradetrack-api/pkg/errors"
	"github.com/noah-isme/gradetrack-api/pkg/export"
	"github.com/noah-isme/gradetrack-api/pkg/gradecalc"
	"github.com/noah-isme/gradetrack-api/pkg/storage"
)

var transcriptHeaders = []string{"semester", "course_code", "course_name", "credits", "grade", "points"}

type transcriptSource interface {
	List(ctx context.Context, userID string) ([]models.PastGrade, error)
	GPA(ctx context.Context, userID string) (*dto.GPASummary, error)
}

// TranscriptService renders transcripts, stores them and hands out signed
// download links.
type TranscriptService struct {
	source  transcriptSource
	store   storage.Store
	signer  *storage.Signer
	baseURL string
	logger  *zap.Logger
	now     func() time.Time
}

// NewTranscriptService constructs a TranscriptService. baseURL prefixes the
// download path, e.g. "/api/v1/transcripts".
func NewTranscriptService(source transcriptSource, store storage.Store, signer *storage.Signer, baseURL string, logger *zap.Logger) *TranscriptService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TranscriptService{
		source:  source,
		store:   store,
		signer:  signer,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Generate renders the user's transcript in format and returns a signed link.
func (s *TranscriptService) Generate(ctx context.Context, userID string, format string) (*dto.TranscriptLink, error) {
	parsed, err := export.ParseFormat(format)
	if err != nil {
		return nil, validationError(err, "unsupported transcript format")
	}
	renderer, err := export.RendererFor(parsed)
	if err != nil {
		return nil, validationError(err, "unsupported transcript format")
	}

	grades, err := s.source.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	summary, err := s.source.GPA(ctx, userID)
	if err != nil {
		return nil, err
	}

	data, err := renderer.Render(s.dataset(grades, summary))
	if err != nil {
		return nil, internalError(err, "failed to render transcript")
	}

	key := path.Join("transcripts", userID, fmt.Sprintf("%s-%s.%s", s.now().Format("20060102"), uuid.NewString(), parsed))
	if err := s.store.Put(ctx, key, data); err != nil {
		return nil, internalError(err, "failed to store transcript")
	}

	token, expiresAt, err := s.signer.Sign(userID, key)
	if err != nil {
		return nil, internalError(err, "failed to sign transcript link")
	}
	s.logger.Info("transcript generated", zap.String("user_id", userID), zap.String("key", key), zap.Int("bytes", len(data)))

	return &dto.TranscriptLink{
		URL:       s.baseURL + "/" + token,
		Token:     token,
		Format:    string(parsed),
		ExpiresAt: expiresAt,
	}, nil
}

// Open verifies a download token and opens the stored transcript. Only the
// user the link was issued to may open it.
func (s *TranscriptService) Open(ctx context.Context, userID, token string) (*dto.TranscriptFile, error) {
	link, err := s.signer.Verify(token)
	if err != nil {
		if errors.Is(err, storage.ErrTokenExpired) {
			return nil, appErrors.Clone(appErrors.ErrLinkExpired, "download link expired")
		}
		return nil, appErrors.Clone(appErrors.ErrNotFound, "transcript not found")
	}
	if link.OwnerID != userID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "transcript belongs to another user")
	}

	body, err := s.store.Get(ctx, link.Key)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, appErrors.Clone(appErrors.ErrLinkExpired, "transcript is no longer available")
		}
		return nil, internalError(err, "failed to open transcript")
	}

	name := path.Base(link.Key)
	contentType := "application/octet-stream"
	if format, err := export.ParseFormat(strings.TrimPrefix(path.Ext(name), ".")); err == nil {
		if renderer, err := export.RendererFor(format); err == nil {
			contentType = renderer.ContentType()
		}
	}
	return &dto.TranscriptFile{Name: "transcript" + path.Ext(name), ContentType: contentType, Body: body}, nil
}

func (s *TranscriptService) dataset(grades []models.PastGrade, summary *dto.GPASummary) export.Dataset {
	sorted := make([]models.PastGrade, len(grades))
	copy(sorted, grades)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Semester != sorted[j].Semester {
			return sorted[i].Semester < sorted[j].Semester
		}
		return sorted[i].CourseName < sorted[j].CourseName
	})

	rows := make([]map[string]string, 0, len(sorted))
	for _, grade := range sorted {
		rows = append(rows, map[string]string{
			"semester":    grade.Semester,
			"course_code": grade.CourseCode,
			"course_name": grade.CourseName,
			"credits":     formatNumber(grade.Credits),
			"grade":       displayGrade(grade),
			"points":      strconv.FormatFloat(gradecalc.Round2(grade.Record().Points()), 'f', 2, 64),
		})
	}

	footer := []string{
		fmt.Sprintf("Cumulative GPA: %.2f", summary.GPA),
		fmt.Sprintf("Total credits: %s", formatNumber(summary.TotalCredits)),
		fmt.Sprintf("Courses counted: %d", summary.TotalCourses),
		fmt.Sprintf("Generated: %s", s.now().Format(time.RFC3339)),
	}
	return export.Dataset{Title: "Academic Transcript", Headers: transcriptHeaders, Rows: rows, Footer: footer}
}

func displayGrade(grade models.PastGrade) string {
	if grade.LetterGrade != "" {
		return grade.LetterGrade
	}
	if grade.NumericGrade != nil {
		return formatNumber(*grade.NumericGrade)
	}
	return ""
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

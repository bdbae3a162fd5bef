package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"jobportal/internal/config"
	"jobportal/internal/models"
	"jobportal/internal/repositories"
)

var (
	ErrJobNotFound         = errors.New("job not found")
	ErrAlreadyApplied      = errors.New("already applied to this job")
	ErrApplicationNotFound = errors.New("application not found")
	ErrNotWithdrawable     = errors.New("application not found or cannot be withdrawn")
)

// ValidationError covers malformed client input; handlers map it to 400.
type ValidationError struct {
	Reason string
}

func (e ValidationError) Error() string {
	return e.Reason
}

// EligibilityError carries the qualification matcher's rejection
// message; handlers map it to 403.
type EligibilityError struct {
	Reason string
}

func (e EligibilityError) Error() string {
	return e.Reason
}

var allowedFileTypes = map[string]bool{
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"text/plain": true,
}

// UploadedFile is an in-memory file part from a multipart submission.
type UploadedFile struct {
	Name        string
	ContentType string
	Size        int64
	Data        []byte
}

type ApplyInput struct {
	ApplicantID uint
	JobID       string
	Resume      *UploadedFile
	CoverLetter *UploadedFile
}

type ApplicationService interface {
	Apply(ctx context.Context, input ApplyInput) (*models.JobApplication, error)
	ListMine(ctx context.Context, applicantID uint) ([]models.JobApplication, error)
	Get(ctx context.Context, applicantID, applicationID uint) (*models.JobApplication, error)
	Withdraw(ctx context.Context, applicantID, applicationID uint) (*models.JobApplication, error)
	UpdateStatus(ctx context.Context, applicationID uint, status models.ApplicationStatus) (*models.JobApplication, error)
	Stats(ctx context.Context, applicantID uint) (*models.ApplicationStats, error)
	CompanyCandidates(ctx context.Context, companyID uint) ([]models.JobApplication, error)
}

type applicationService struct {
	appRepo       repositories.ApplicationRepository
	jobRepo       repositories.JobRepository
	eduRepo       repositories.EducationRepository
	matcher       QualificationMatcher
	extractor     TextExtractor
	ats           ATSService
	storage       StorageGateway
	notifications NotificationService
	buckets       config.StorageConfig
	maxFileSize   int64
	now           func() time.Time
}

func NewApplicationService(
	appRepo repositories.ApplicationRepository,
	jobRepo repositories.JobRepository,
	eduRepo repositories.EducationRepository,
	matcher QualificationMatcher,
	extractor TextExtractor,
	ats ATSService,
	storage StorageGateway,
	notifications NotificationService,
	buckets config.StorageConfig,
	maxFileSize int64,
) ApplicationService {
	return &applicationService{
		appRepo:       appRepo,
		jobRepo:       jobRepo,
		eduRepo:       eduRepo,
		matcher:       matcher,
		extractor:     extractor,
		ats:           ats,
		storage:       storage,
		notifications: notifications,
		buckets:       buckets,
		maxFileSize:   maxFileSize,
		now:           time.Now,
	}
}

type uploadedBlob struct {
	bucket string
	path   string
}

// Apply runs one submission through the full pipeline: validate, check
// the job and qualification gate, then upload, extract, score and
// persist inside one transaction. Uploads straddle two systems, so a
// failure after any upload triggers compensating deletes.
func (s *applicationService) Apply(ctx context.Context, input ApplyInput) (*models.JobApplication, error) {
	jobID, err := parseJobID(input.JobID)
	if err != nil {
		return nil, err
	}

	if input.Resume == nil && input.CoverLetter == nil {
		return nil, ValidationError{"At least one file (resume or cover letter) is required"}
	}
	if err := s.validateFile(input.Resume, "Resume"); err != nil {
		return nil, err
	}
	if err := s.validateFile(input.CoverLetter, "Cover Letter"); err != nil {
		return nil, err
	}

	job, err := s.jobRepo.FindByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to load job: %w", err)
	}

	if job.Education != "" {
		records, err := s.eduRepo.FindByUser(ctx, input.ApplicantID)
		if err != nil {
			return nil, fmt.Errorf("failed to load education records: %w", err)
		}
		if eligibility := s.matcher.CheckEligibility(job.Education, records); !eligibility.Eligible {
			return nil, EligibilityError{eligibility.Message}
		}
	}

	var (
		application *models.JobApplication
		uploaded    []uploadedBlob
	)

	txErr := s.appRepo.InTransaction(ctx, func(tx repositories.ApplicationRepository) error {
		// Re-check inside the transaction: two concurrent submissions
		// may both have passed everything above.
		_, err := tx.FindByJobAndApplicant(ctx, jobID, input.ApplicantID)
		if err == nil {
			return ErrAlreadyApplied
		}
		if !errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("failed to check for existing application: %w", err)
		}

		var resumeLink, coverLetterLink *string

		if input.Resume != nil {
			link, blob, err := s.uploadFile(ctx, input.Resume, s.buckets.ResumeBucket, input.ApplicantID, jobID)
			if err != nil {
				return err
			}
			uploaded = append(uploaded, blob)
			resumeLink = &link
		}

		if input.CoverLetter != nil {
			link, blob, err := s.uploadFile(ctx, input.CoverLetter, s.buckets.CoverLetterBucket, input.ApplicantID, jobID)
			if err != nil {
				return err
			}
			uploaded = append(uploaded, blob)
			coverLetterLink = &link
		}

		atsScore, atsFeedback := s.scoreCandidate(ctx, input, job)

		application = &models.JobApplication{
			JobID:       jobID,
			JobSeekerID: input.ApplicantID,
			ResumeLink:  resumeLink,
			CoverLetter: coverLetterLink,
			ATSScore:    atsScore,
			ATSFeedback: atsFeedback,
			Status:      models.StatusApplied,
			AppliedAt:   s.now(),
		}

		if err := tx.Create(ctx, application); err != nil {
			if errors.Is(err, repositories.ErrDuplicateApplication) {
				// Lost the race against a concurrent submission.
				return ErrAlreadyApplied
			}
			return fmt.Errorf("failed to persist application: %w", err)
		}
		return nil
	})

	if txErr != nil {
		s.cleanupBlobs(ctx, uploaded)
		return nil, txErr
	}

	return application, nil
}

func parseJobID(raw string) (uint, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 32)
	if err != nil || id == 0 {
		return 0, ValidationError{"Invalid job ID format"}
	}
	return uint(id), nil
}

func (s *applicationService) validateFile(file *UploadedFile, label string) error {
	if file == nil {
		return nil
	}
	if !allowedFileTypes[file.ContentType] {
		return ValidationError{fmt.Sprintf("Invalid %s file type. Only PDF, DOC, DOCX, and TXT files are allowed.", label)}
	}
	if file.Size > s.maxFileSize {
		return ValidationError{fmt.Sprintf("%s file is too large. Maximum size is 5MB.", label)}
	}
	return nil
}

func (s *applicationService) uploadFile(ctx context.Context, file *UploadedFile, bucket string, applicantID, jobID uint) (string, uploadedBlob, error) {
	objectPath := BuildObjectPath(applicantID, jobID, file.Name, s.now())
	link, err := s.storage.Upload(ctx, file.Data, file.ContentType, bucket, objectPath)
	if err != nil {
		return "", uploadedBlob{}, fmt.Errorf("failed to upload %s: %w", file.Name, err)
	}
	return link, uploadedBlob{bucket: bucket, path: objectPath}, nil
}

// scoreCandidate extracts text from the uploaded files and runs the ATS
// scorer. Every failure inside this step degrades to a nil score; it
// never fails the submission.
func (s *applicationService) scoreCandidate(ctx context.Context, input ApplyInput, job *models.Job) (*int, *string) {
	var combined strings.Builder
	if input.Resume != nil {
		combined.WriteString(s.extractor.Extract(input.Resume.Data, input.Resume.Name))
	}
	if input.CoverLetter != nil {
		if text := s.extractor.Extract(input.CoverLetter.Data, input.CoverLetter.Name); text != "" {
			combined.WriteString("\n\nCover Letter:\n")
			combined.WriteString(text)
		}
	}

	text := strings.TrimSpace(combined.String())
	if text == "" {
		return nil, nil
	}

	result := s.ats.Score(ctx, text, job)
	return result.Score, &result.Feedback
}

// cleanupBlobs is the saga's compensating action. It runs detached from
// the request's cancellation so an aborted request still gets cleaned.
func (s *applicationService) cleanupBlobs(ctx context.Context, blobs []uploadedBlob) {
	if len(blobs) == 0 {
		return
	}
	cleanupCtx := context.WithoutCancel(ctx)
	for _, blob := range blobs {
		s.storage.Remove(cleanupCtx, blob.bucket, blob.path)
	}
}

func (s *applicationService) ListMine(ctx context.Context, applicantID uint) ([]models.JobApplication, error) {
	return s.appRepo.FindByApplicant(ctx, applicantID)
}

func (s *applicationService) Get(ctx context.Context, applicantID, applicationID uint) (*models.JobApplication, error) {
	app, err := s.appRepo.FindByID(ctx, applicationID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, err
	}
	if app.JobSeekerID != applicantID {
		return nil, ErrApplicationNotFound
	}
	return app, nil
}

// Withdraw moves the caller's own application to withdrawn. Only
// applied and under_review applications can be withdrawn.
func (s *applicationService) Withdraw(ctx context.Context, applicantID, applicationID uint) (*models.JobApplication, error) {
	app, err := s.Get(ctx, applicantID, applicationID)
	if err != nil {
		return nil, err
	}

	if !app.Status.CanTransitionTo(models.StatusWithdrawn) {
		return nil, ErrNotWithdrawable
	}

	if err := s.appRepo.UpdateStatus(ctx, app.ID, models.StatusWithdrawn); err != nil {
		return nil, fmt.Errorf("failed to withdraw application: %w", err)
	}

	app.Status = models.StatusWithdrawn
	return app, nil
}

// UpdateStatus applies a company-side status change, enforcing the
// forward-only transition table, and notifies the applicant.
func (s *applicationService) UpdateStatus(ctx context.Context, applicationID uint, status models.ApplicationStatus) (*models.JobApplication, error) {
	if !status.IsValid() {
		return nil, ValidationError{fmt.Sprintf("Invalid status %q. Valid statuses are: applied, under_review, approved, rejected, withdrawn", status)}
	}

	app, err := s.appRepo.FindByID(ctx, applicationID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, err
	}

	if !app.Status.CanTransitionTo(status) {
		return nil, ValidationError{fmt.Sprintf("Cannot change status from %s to %s", app.Status, status)}
	}

	if err := s.appRepo.UpdateStatus(ctx, app.ID, status); err != nil {
		return nil, fmt.Errorf("failed to update status: %w", err)
	}
	app.Status = status

	// Best-effort: a failed notification never fails the status update.
	jobTitle := app.Job.Title
	if jobTitle == "" {
		if job, err := s.jobRepo.FindByID(ctx, app.JobID); err == nil {
			jobTitle = job.Title
		}
	}
	if err := s.notifications.NotifyStatusChange(ctx, app, jobTitle); err != nil {
		log.Printf("⚠️  Failed to create notification for application %d: %v", app.ID, err)
	}

	return app, nil
}

func (s *applicationService) Stats(ctx context.Context, applicantID uint) (*models.ApplicationStats, error) {
	counts, err := s.appRepo.CountByStatus(ctx, applicantID)
	if err != nil {
		return nil, err
	}

	stats := &models.ApplicationStats{
		Applied:     counts[models.StatusApplied],
		UnderReview: counts[models.StatusUnderReview],
		Approved:    counts[models.StatusApproved],
		Rejected:    counts[models.StatusRejected],
		Withdrawn:   counts[models.StatusWithdrawn],
	}
	stats.Total = stats.Applied + stats.UnderReview + stats.Approved + stats.Rejected + stats.Withdrawn
	return stats, nil
}

func (s *applicationService) CompanyCandidates(ctx context.Context, companyID uint) ([]models.JobApplication, error) {
	return s.appRepo.FindByCompany(ctx, companyID)
}

package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobportal/internal/middleware"
	"jobportal/internal/models"
	"jobportal/internal/services"
)

type fakeApplicationService struct {
	apply        func(input services.ApplyInput) (*models.JobApplication, error)
	lastInput    services.ApplyInput
	withdrawErr  error
	updateErr    error
	updateStatus models.ApplicationStatus
}

func (s *fakeApplicationService) Apply(_ context.Context, input services.ApplyInput) (*models.JobApplication, error) {
	s.lastInput = input
	return s.apply(input)
}

func (s *fakeApplicationService) ListMine(context.Context, uint) ([]models.JobApplication, error) {
	return []models.JobApplication{*sampleApplication()}, nil
}

func (s *fakeApplicationService) Get(_ context.Context, _, id uint) (*models.JobApplication, error) {
	if id != 1 {
		return nil, services.ErrApplicationNotFound
	}
	return sampleApplication(), nil
}

func (s *fakeApplicationService) Withdraw(context.Context, uint, uint) (*models.JobApplication, error) {
	if s.withdrawErr != nil {
		return nil, s.withdrawErr
	}
	app := sampleApplication()
	app.Status = models.StatusWithdrawn
	return app, nil
}

func (s *fakeApplicationService) UpdateStatus(_ context.Context, _ uint, status models.ApplicationStatus) (*models.JobApplication, error) {
	if s.updateErr != nil {
		return nil, s.updateErr
	}
	s.updateStatus = status
	app := sampleApplication()
	app.Status = status
	return app, nil
}

func (s *fakeApplicationService) Stats(context.Context, uint) (*models.ApplicationStats, error) {
	return &models.ApplicationStats{Total: 2, Applied: 1, Withdrawn: 1}, nil
}

func (s *fakeApplicationService) CompanyCandidates(context.Context, uint) ([]models.JobApplication, error) {
	return nil, nil
}

func sampleApplication() *models.JobApplication {
	score := 87
	feedback := "Strong match"
	link := "https://blob.test/resumes/user_7_job_1/resume.pdf"
	return &models.JobApplication{
		ID:          1,
		JobID:       1,
		JobSeekerID: 7,
		ResumeLink:  &link,
		ATSScore:    &score,
		ATSFeedback: &feedback,
		Status:      models.StatusApplied,
		AppliedAt:   time.Now(),
	}
}

// newTestApp registers the routes behind a stub identity so tests do
// not need real tokens.
func newTestApp(svc services.ApplicationService) *fiber.App {
	handler := NewApplicationHandler(svc, false)
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals(middleware.CtxUserIDKey, uint(7))
		c.Locals(middleware.CtxRoleKey, models.RoleJobSeeker)
		return c.Next()
	})
	app.Post("/applications", handler.HandleApply)
	app.Get("/applications", handler.HandleListMine)
	app.Get("/applications/stats", handler.HandleStats)
	app.Get("/applications/:id", handler.HandleGet)
	app.Patch("/applications/:id/withdraw", handler.HandleWithdraw)
	app.Put("/applications/:id/status", handler.HandleUpdateStatus)
	return app
}

func multipartBody(t *testing.T, jobID string, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	require.NoError(t, writer.WriteField("job_id", jobID))
	for field, content := range files {
		part, err := writer.CreateFormFile(field, field+".txt")
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	return decoded
}

func TestHandleApplyCreated(t *testing.T) {
	svc := &fakeApplicationService{
		apply: func(services.ApplyInput) (*models.JobApplication, error) {
			return sampleApplication(), nil
		},
	}
	app := newTestApp(svc)

	body, contentType := multipartBody(t, "1", map[string]string{
		"resume":      "Senior Go developer",
		"coverLetter": "I want this job",
	})
	req := httptest.NewRequest(http.MethodPost, "/applications", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	decoded := decodeBody(t, resp)
	assert.Equal(t, true, decoded["success"])
	application := decoded["application"].(map[string]any)
	assert.Equal(t, float64(1), application["id"])
	assert.Equal(t, "applied", application["status"])
	assert.Equal(t, float64(87), application["ats_score"])

	// The handler passed both file parts through.
	assert.Equal(t, uint(7), svc.lastInput.ApplicantID)
	assert.Equal(t, "1", svc.lastInput.JobID)
	require.NotNil(t, svc.lastInput.Resume)
	assert.Equal(t, []byte("Senior Go developer"), svc.lastInput.Resume.Data)
	require.NotNil(t, svc.lastInput.CoverLetter)
}

func TestHandleApplyMissingFilesIsServiceDecision(t *testing.T) {
	svc := &fakeApplicationService{
		apply: func(services.ApplyInput) (*models.JobApplication, error) {
			return nil, services.ValidationError{Reason: "At least one file (resume or cover letter) is required"}
		},
	}
	app := newTestApp(svc)

	body, contentType := multipartBody(t, "1", nil)
	req := httptest.NewRequest(http.MethodPost, "/applications", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	decoded := decodeBody(t, resp)
	assert.Equal(t, false, decoded["success"])
	assert.Contains(t, decoded["message"], "At least one file")
	assert.Nil(t, svc.lastInput.Resume)
}

func TestHandleApplyErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{"eligibility failure", services.EligibilityError{Reason: "You are not eligible"}, fiber.StatusForbidden, "You are not eligible"},
		{"job missing", services.ErrJobNotFound, fiber.StatusNotFound, "Job not found"},
		// A duplicate submission is a 400 told apart by its message.
		{"duplicate", services.ErrAlreadyApplied, fiber.StatusBadRequest, "Already applied"},
		{"internal error is masked", errors.New("pq: connection refused"), fiber.StatusInternalServerError, "Something went wrong"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeApplicationService{
				apply: func(services.ApplyInput) (*models.JobApplication, error) {
					return nil, tt.err
				},
			}
			app := newTestApp(svc)

			body, contentType := multipartBody(t, "1", map[string]string{"resume": "text"})
			req := httptest.NewRequest(http.MethodPost, "/applications", body)
			req.Header.Set("Content-Type", contentType)

			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			decoded := decodeBody(t, resp)
			assert.Equal(t, false, decoded["success"])
			assert.Contains(t, decoded["message"], tt.wantBody)
		})
	}
}

func TestHandleApplyInternalErrorUnmaskedInDevelopment(t *testing.T) {
	svc := &fakeApplicationService{
		apply: func(services.ApplyInput) (*models.JobApplication, error) {
			return nil, errors.New("pq: connection refused")
		},
	}
	handler := NewApplicationHandler(svc, true)
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals(middleware.CtxUserIDKey, uint(7))
		return c.Next()
	})
	app.Post("/applications", handler.HandleApply)

	body, contentType := multipartBody(t, "1", map[string]string{"resume": "text"})
	req := httptest.NewRequest(http.MethodPost, "/applications", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	assert.Contains(t, decodeBody(t, resp)["message"], "connection refused")
}

func TestHandleGet(t *testing.T) {
	app := newTestApp(&fakeApplicationService{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/applications/1", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/applications/99", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/applications/abc", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestHandleWithdraw(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		app := newTestApp(&fakeApplicationService{})
		resp, err := app.Test(httptest.NewRequest(http.MethodPatch, "/applications/1/withdraw", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		decoded := decodeBody(t, resp)
		application := decoded["application"].(map[string]any)
		assert.Equal(t, "withdrawn", application["status"])
	})

	t.Run("terminal application", func(t *testing.T) {
		app := newTestApp(&fakeApplicationService{withdrawErr: services.ErrNotWithdrawable})
		resp, err := app.Test(httptest.NewRequest(http.MethodPatch, "/applications/1/withdraw", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})
}

func TestHandleUpdateStatus(t *testing.T) {
	svc := &fakeApplicationService{}
	app := newTestApp(svc)

	payload := bytes.NewBufferString(`{"status":"under_review"}`)
	req := httptest.NewRequest(http.MethodPut, "/applications/1/status", payload)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, models.StatusUnderReview, svc.updateStatus)
}

func TestHandleStats(t *testing.T) {
	app := newTestApp(&fakeApplicationService{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/applications/stats", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	decoded := decodeBody(t, resp)
	stats := decoded["stats"].(map[string]any)
	assert.Equal(t, float64(2), stats["total"])
}

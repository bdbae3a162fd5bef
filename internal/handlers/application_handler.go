package handlers

import (
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"

	"jobportal/internal/middleware"
	"jobportal/internal/models"
	"jobportal/internal/services"
)

type ApplicationHandler struct {
	applications services.ApplicationService
	development  bool
}

func NewApplicationHandler(applications services.ApplicationService, development bool) *ApplicationHandler {
	return &ApplicationHandler{
		applications: applications,
		development:  development,
	}
}

// respondError writes the failure envelope: success false plus a
// human-readable message.
func respondError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"message": message,
	})
}

// HandleApply accepts a multipart submission with a job_id field and
// optional resume / coverLetter file parts.
func (h *ApplicationHandler) HandleApply(c *fiber.Ctx) error {
	applicantID, ok := middleware.UserID(c)
	if !ok {
		return respondError(c, fiber.StatusUnauthorized, "Missing or malformed authorization header")
	}

	input := services.ApplyInput{
		ApplicantID: applicantID,
		JobID:       c.FormValue("job_id"),
	}

	resume, err := readFilePart(c, "resume")
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "Failed to read resume file")
	}
	input.Resume = resume

	coverLetter, err := readFilePart(c, "coverLetter")
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "Failed to read cover letter file")
	}
	input.CoverLetter = coverLetter

	application, err := h.applications.Apply(c.Context(), input)
	if err != nil {
		return h.writeError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":     true,
		"message":     "Application submitted successfully",
		"application": models.NewApplicationResponse(application),
	})
}

func (h *ApplicationHandler) HandleListMine(c *fiber.Ctx) error {
	applicantID, ok := middleware.UserID(c)
	if !ok {
		return respondError(c, fiber.StatusUnauthorized, "Missing or malformed authorization header")
	}

	applications, err := h.applications.ListMine(c.Context(), applicantID)
	if err != nil {
		return h.writeError(c, err)
	}

	responses := make([]models.ApplicationResponse, 0, len(applications))
	for i := range applications {
		responses = append(responses, models.NewApplicationResponse(&applications[i]))
	}
	return c.JSON(fiber.Map{
		"success":      true,
		"applications": responses,
	})
}

func (h *ApplicationHandler) HandleGet(c *fiber.Ctx) error {
	applicantID, ok := middleware.UserID(c)
	if !ok {
		return respondError(c, fiber.StatusUnauthorized, "Missing or malformed authorization header")
	}

	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return respondError(c, fiber.StatusBadRequest, "Invalid application ID")
	}

	application, err := h.applications.Get(c.Context(), applicantID, uint(id))
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(fiber.Map{
		"success":     true,
		"application": models.NewApplicationResponse(application),
	})
}

func (h *ApplicationHandler) HandleWithdraw(c *fiber.Ctx) error {
	applicantID, ok := middleware.UserID(c)
	if !ok {
		return respondError(c, fiber.StatusUnauthorized, "Missing or malformed authorization header")
	}

	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return respondError(c, fiber.StatusBadRequest, "Invalid application ID")
	}

	application, err := h.applications.Withdraw(c.Context(), applicantID, uint(id))
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(fiber.Map{
		"success":     true,
		"message":     "Application withdrawn",
		"application": models.NewApplicationResponse(application),
	})
}

func (h *ApplicationHandler) HandleStats(c *fiber.Ctx) error {
	applicantID, ok := middleware.UserID(c)
	if !ok {
		return respondError(c, fiber.StatusUnauthorized, "Missing or malformed authorization header")
	}

	stats, err := h.applications.Stats(c.Context(), applicantID)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"stats":   stats,
	})
}

// HandleUpdateStatus is the company-side status change endpoint.
func (h *ApplicationHandler) HandleUpdateStatus(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return respondError(c, fiber.StatusBadRequest, "Invalid application ID")
	}

	var req models.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	application, err := h.applications.UpdateStatus(c.Context(), uint(id), models.ApplicationStatus(req.Status))
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(fiber.Map{
		"success":     true,
		"message":     "Status updated",
		"application": models.NewApplicationResponse(application),
	})
}

func (h *ApplicationHandler) HandleCompanyCandidates(c *fiber.Ctx) error {
	callerID, ok := middleware.UserID(c)
	if !ok {
		return respondError(c, fiber.StatusUnauthorized, "Missing or malformed authorization header")
	}

	companyID, err := c.ParamsInt("companyId")
	if err != nil || companyID <= 0 {
		return respondError(c, fiber.StatusBadRequest, "Invalid company ID")
	}

	// Companies may only list their own candidates; admins may list any.
	role, _ := c.Locals(middleware.CtxRoleKey).(models.UserRole)
	if role != models.RoleAdmin && uint(companyID) != callerID {
		return respondError(c, fiber.StatusForbidden, "You do not have permission to perform this action")
	}

	applications, err := h.applications.CompanyCandidates(c.Context(), uint(companyID))
	if err != nil {
		return h.writeError(c, err)
	}

	responses := make([]models.ApplicationResponse, 0, len(applications))
	for i := range applications {
		responses = append(responses, models.NewApplicationResponse(&applications[i]))
	}
	return c.JSON(fiber.Map{
		"success":    true,
		"candidates": responses,
	})
}

// writeError maps the service error taxonomy to HTTP statuses. Client
// errors carry their message through; everything else is a masked 500.
// A duplicate application is a 400 distinguished by its message.
func (h *ApplicationHandler) writeError(c *fiber.Ctx, err error) error {
	var validationErr services.ValidationError
	if errors.As(err, &validationErr) {
		return respondError(c, fiber.StatusBadRequest, validationErr.Reason)
	}

	var eligibilityErr services.EligibilityError
	if errors.As(err, &eligibilityErr) {
		return respondError(c, fiber.StatusForbidden, eligibilityErr.Reason)
	}

	switch {
	case errors.Is(err, services.ErrJobNotFound):
		return respondError(c, fiber.StatusNotFound, "Job not found")
	case errors.Is(err, services.ErrApplicationNotFound):
		return respondError(c, fiber.StatusNotFound, "Application not found")
	case errors.Is(err, services.ErrAlreadyApplied):
		return respondError(c, fiber.StatusBadRequest, "Already applied to this job")
	case errors.Is(err, services.ErrNotWithdrawable):
		return respondError(c, fiber.StatusBadRequest, "Application cannot be withdrawn")
	}

	log.Printf("❌ Request failed: %v", err)
	message := "Something went wrong. Please try again later."
	if h.development {
		message = err.Error()
	}
	return respondError(c, fiber.StatusInternalServerError, message)
}

// readFilePart buffers an optional multipart file into memory. A
// missing part is not an error.
func readFilePart(c *fiber.Ctx, field string) (*services.UploadedFile, error) {
	fileHeader, err := c.FormFile(field)
	if err != nil {
		return nil, nil
	}
	data, err := readAll(fileHeader)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s part: %w", field, err)
	}
	return &services.UploadedFile{
		Name:        fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Size:        fileHeader.Size,
		Data:        data,
	}, nil
}

func readAll(fileHeader *multipart.FileHeader) ([]byte, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(file)
}

package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/Windi-Fikriyansyah/skillhub_be/internal/models"
	"github.com/Windi-Fikriyansyah/skillhub_be/internal/services/marketplace"
	"github.com/Windi-Fikriyansyah/skillhub_be/internal/storage"
)

type JobHandler struct {
	Market *marketplace.Service
	Store  storage.Storage
	Log    logrus.FieldLogger
}

func (h *JobHandler) ListJobs(c *fiber.Ctx) error {
	jobs, err := h.Market.ListJobs(c.UserContext(), marketplace.JobFilter{
		Keyword: strings.TrimSpace(c.Query("q")),
		Limit:   c.QueryInt("limit", 0),
	})
	if err != nil {
		return serviceError(c, h.Log, err)
	}
	return success(c, "OK", jobs)
}

type PostJobReq struct {
	Title          string `json:"title" validate:"required,max=200"`
	Description    string `json:"description" validate:"required"`
	SkillsRequired string `json:"skills_required" validate:"max=500"`
	Location       string `json:"location" validate:"max=120"`
	JobType        string `json:"job_type" validate:"max=50"`
	Salary         int64  `json:"salary" validate:"gte=0"`
}

func (h *JobHandler) PostJob(c *fiber.Ctx) error {
	uid, ok := currentUser(c)
	if !ok {
		return nil
	}
	var req PostJobReq
	if err := parseAndValidate(c, &req); err != nil {
		return nil
	}

	job, err := h.Market.PostJob(c.UserContext(), uid, marketplace.NewJob{
		Title:          req.Title,
		Description:    req.Description,
		SkillsRequired: req.SkillsRequired,
		Location:       req.Location,
		JobType:        req.JobType,
		Salary:         req.Salary,
	})
	if err != nil {
		return serviceError(c, h.Log, err)
	}
	return created(c, "Job posted", job)
}

// Apply accepts a cover letter and an optional resume file.
func (h *JobHandler) Apply(c *fiber.Ctx) error {
	uid, jobID, ok := userAndParam(c, "id")
	if !ok {
		return nil
	}
	ctx := c.UserContext()

	resumeURL, err := saveUpload(ctx, c, h.Store, "resume", "resumes")
	if errors.Is(err, errUploadTooLarge) {
		return fail(c, fiber.StatusRequestEntityTooLarge, err.Error())
	}
	if err != nil {
		return serviceError(c, h.Log, err)
	}

	var req struct {
		CoverLetter string `json:"cover_letter" form:"cover_letter"`
	}
	_ = c.BodyParser(&req)

	app, err := h.Market.Apply(ctx, uid, jobID, req.CoverLetter, resumeURL)
	if err != nil {
		return serviceError(c, h.Log, err)
	}
	return created(c, "Application submitted", app)
}

func (h *JobHandler) JobApplications(c *fiber.Ctx) error {
	uid, jobID, ok := userAndParam(c, "id")
	if !ok {
		return nil
	}
	job, apps, err := h.Market.JobApplications(c.UserContext(), uid, jobID)
	if err != nil {
		return serviceError(c, h.Log, err)
	}
	return success(c, "OK", fiber.Map{"job": job, "applications": apps})
}

type ApplicationStatusReq struct {
	Status string `json:"status" validate:"required,oneof=Accepted Rejected"`
}

func (h *JobHandler) UpdateApplicationStatus(c *fiber.Ctx) error {
	uid, appID, ok := userAndParam(c, "id")
	if !ok {
		return nil
	}
	var req ApplicationStatusReq
	if err := parseAndValidate(c, &req); err != nil {
		return nil
	}

	decision, err := h.Market.UpdateApplicationStatus(c.UserContext(), uid, appID, models.ApplicationStatus(req.Status))
	if err != nil {
		return serviceError(c, h.Log, err)
	}
	return success(c, "Application "+strings.ToLower(req.Status), decision)
}

func (h *JobHandler) MyApplications(c *fiber.Ctx) error {
	uid, ok := currentUser(c)
	if !ok {
		return nil
	}
	apps, err := h.Market.MyApplications(c.UserContext(), uid)
	if err != nil {
		return serviceError(c, h.Log, err)
	}
	return success(c, "OK", apps)
}

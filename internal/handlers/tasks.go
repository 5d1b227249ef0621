package handlers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Windi-Fikriyansyah/skillhub_be/internal/models"
	"github.com/Windi-Fikriyansyah/skillhub_be/internal/services/tasks"
	"github.com/Windi-Fikriyansyah/skillhub_be/internal/storage"
)

const dueDateLayout = "2006-01-02"

type TaskService interface {
	AuthorizeRecruiter(ctx context.Context, recruiterUserID, projectID uuid.UUID) error
	AuthorizeFreelancer(ctx context.Context, freelancerUserID, taskID uuid.UUID) error
	CreateTask(ctx context.Context, recruiterUserID, projectID uuid.UUID, in tasks.NewTask) (*models.Task, error)
	FreelancerUpdate(ctx context.Context, freelancerUserID, taskID uuid.UUID, status, deliverable string) (*models.Task, error)
	Approve(ctx context.Context, recruiterUserID, taskID uuid.UUID) (*tasks.Outcome, error)
	Disapprove(ctx context.Context, recruiterUserID, taskID uuid.UUID) (*tasks.Outcome, error)
	ProjectTasks(ctx context.Context, userID, projectID uuid.UUID) (*models.Project, []models.Task, error)
	ProjectsForRoom(ctx context.Context, freelancerUserID, roomID uuid.UUID) ([]models.Project, error)
}

type TaskHandler struct {
	Tasks TaskService
	Store storage.Storage
	Log   logrus.FieldLogger
}

func (h *TaskHandler) ProjectTasks(c *fiber.Ctx) error {
	uid, projectID, ok := userAndParam(c, "id")
	if !ok {
		return nil
	}
	project, list, err := h.Tasks.ProjectTasks(c.UserContext(), uid, projectID)
	if err != nil {
		return serviceError(c, h.Log, err)
	}
	return success(c, "OK", fiber.Map{"project": project, "tasks": list})
}

type CreateTaskReq struct {
	Title       string `json:"title" form:"title" validate:"required,max=200"`
	Description string `json:"description" form:"description"`
	DueDate     string `json:"due_date" form:"due_date" validate:"omitempty,datetime=2006-01-02"`
	Priority    string `json:"priority" form:"priority" validate:"omitempty,oneof=low medium high"`
}

// CreateTask takes a form or JSON body plus an optional reference_file.
func (h *TaskHandler) CreateTask(c *fiber.Ctx) error {
	uid, projectID, ok := userAndParam(c, "id")
	if !ok {
		return nil
	}
	var req CreateTaskReq
	if err := parseAndValidate(c, &req); err != nil {
		return nil
	}

	in := tasks.NewTask{
		Title:       req.Title,
		Description: req.Description,
		Priority:    models.TaskPriority(req.Priority),
	}
	if req.DueDate != "" {
		due, err := time.Parse(dueDateLayout, req.DueDate)
		if err != nil {
			return validationFail(c, []string{"Field 'DueDate' failed on the 'datetime' tag"})
		}
		in.DueDate = &due
	}

	ctx := c.UserContext()
	if hasUpload(c, "reference_file") {
		if err := h.Tasks.AuthorizeRecruiter(ctx, uid, projectID); err != nil {
			return serviceError(c, h.Log, err)
		}
	}
	ref, err := saveUpload(ctx, c, h.Store, "reference_file", "task_references")
	if errors.Is(err, errUploadTooLarge) {
		return fail(c, fiber.StatusRequestEntityTooLarge, err.Error())
	}
	if err != nil {
		return serviceError(c, h.Log, err)
	}
	in.ReferenceFile = ref

	task, err := h.Tasks.CreateTask(ctx, uid, projectID, in)
	if err != nil {
		return serviceError(c, h.Log, err)
	}
	return created(c, "Task created", task)
}

// FreelancerUpdate moves the task and attaches an optional freelancer_file.
func (h *TaskHandler) FreelancerUpdate(c *fiber.Ctx) error {
	uid, taskID, ok := userAndParam(c, "id")
	if !ok {
		return nil
	}
	ctx := c.UserContext()

	// Outsiders are turned away before anything reaches storage.
	if hasUpload(c, "freelancer_file") {
		if err := h.Tasks.AuthorizeFreelancer(ctx, uid, taskID); err != nil {
			return serviceError(c, h.Log, err)
		}
	}
	file, err := saveUpload(ctx, c, h.Store, "freelancer_file", "task_deliverables")
	if errors.Is(err, errUploadTooLarge) {
		return fail(c, fiber.StatusRequestEntityTooLarge, err.Error())
	}
	if err != nil {
		return serviceError(c, h.Log, err)
	}

	var req struct {
		Status string `json:"status" form:"status"`
	}
	// A bare file upload has no status field.
	_ = c.BodyParser(&req)

	task, err := h.Tasks.FreelancerUpdate(ctx, uid, taskID, strings.TrimSpace(req.Status), file)
	if err != nil {
		return serviceError(c, h.Log, err)
	}
	return success(c, "Task updated", task)
}

func (h *TaskHandler) Approve(c *fiber.Ctx) error {
	return h.verdict(c, h.Tasks.Approve, "Task approved")
}

func (h *TaskHandler) Disapprove(c *fiber.Ctx) error {
	return h.verdict(c, h.Tasks.Disapprove, "Task disapproved")
}

type verdictFunc func(ctx context.Context, recruiterUserID, taskID uuid.UUID) (*tasks.Outcome, error)

// verdict answers 200 either way; Changed tells the client whether the
// task was actually in a state that accepts the verdict.
func (h *TaskHandler) verdict(c *fiber.Ctx, fn verdictFunc, message string) error {
	uid, taskID, ok := userAndParam(c, "id")
	if !ok {
		return nil
	}
	out, err := fn(c.UserContext(), uid, taskID)
	if err != nil {
		return serviceError(c, h.Log, err)
	}
	if !out.Changed {
		message = "Task is not awaiting review"
	}
	return success(c, message, out)
}

func (h *TaskHandler) RoomProjects(c *fiber.Ctx) error {
	uid, roomID, ok := userAndParam(c, "id")
	if !ok {
		return nil
	}
	projects, err := h.Tasks.ProjectsForRoom(c.UserContext(), uid, roomID)
	if err != nil {
		return serviceError(c, h.Log, err)
	}
	return success(c, "OK", projects)
}

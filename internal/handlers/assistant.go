package handlers

import (
	"context"
	"io"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Windi-Fikriyansyah/skillhub_be/internal/models"
	"github.com/Windi-Fikriyansyah/skillhub_be/internal/services/assistant"
	"github.com/Windi-Fikriyansyah/skillhub_be/internal/storage"
)

type AssistantService interface {
	Ask(ctx context.Context, userID uuid.UUID, prompt string) (assistant.Reply, error)
	ReviewResume(ctx context.Context, userID uuid.UUID, filename string, r io.ReaderAt, size int64) (assistant.Reply, error)
	History(ctx context.Context, userID uuid.UUID, limit int) ([]models.AIRequestLog, error)
}

type AssistantHandler struct {
	AI    AssistantService
	Store storage.Storage
	Log   logrus.FieldLogger
}

type AskReq struct {
	Prompt string `json:"prompt" validate:"required,max=4000"`
}

func (h *AssistantHandler) Ask(c *fiber.Ctx) error {
	uid, ok := currentUser(c)
	if !ok {
		return nil
	}
	var req AskReq
	if err := parseAndValidate(c, &req); err != nil {
		return nil
	}
	reply, err := h.AI.Ask(c.UserContext(), uid, req.Prompt)
	if err != nil {
		return serviceError(c, h.Log, err)
	}
	return h.reply(c, reply, "")
}

// Resume keeps the uploaded resume in storage and returns the model's review.
func (h *AssistantHandler) Resume(c *fiber.Ctx) error {
	uid, ok := currentUser(c)
	if !ok {
		return nil
	}
	fh, err := c.FormFile("resume")
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "resume file is required")
	}
	if fh.Size > maxUploadBytes {
		return fail(c, fiber.StatusRequestEntityTooLarge, errUploadTooLarge.Error())
	}

	f, err := fh.Open()
	if err != nil {
		return serviceError(c, h.Log, err)
	}
	defer f.Close()

	ctx := c.UserContext()
	url := ""
	if h.Store != nil {
		url, err = h.Store.Save(ctx, "resumes", fh.Filename, f, fh.Header.Get("Content-Type"))
		if err != nil {
			h.Log.WithError(err).WithField("user_id", uid).Warn("store resume")
		}
	}

	reply, err := h.AI.ReviewResume(ctx, uid, fh.Filename, f, fh.Size)
	if err != nil {
		return serviceError(c, h.Log, err)
	}
	return h.reply(c, reply, url)
}

func (h *AssistantHandler) History(c *fiber.Ctx) error {
	uid, ok := currentUser(c)
	if !ok {
		return nil
	}
	logs, err := h.AI.History(c.UserContext(), uid, c.QueryInt("limit", 0))
	if err != nil {
		return serviceError(c, h.Log, err)
	}
	return success(c, "OK", logs)
}

// reply answers 200 even when the model is unavailable; the text then
// carries the message shown to the user.
func (h *AssistantHandler) reply(c *fiber.Ctx, r assistant.Reply, fileURL string) error {
	data := fiber.Map{
		"text":        r.Text,
		"unavailable": r.Unavailable,
		"usage":       r.Usage,
	}
	if fileURL != "" {
		data["file_url"] = fileURL
	}
	msg := "OK"
	if r.Unavailable {
		msg = r.Text
	}
	return c.JSON(fiber.Map{
		"success": !r.Unavailable,
		"message": msg,
		"data":    data,
	})
}

package handlers

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Windi-Fikriyansyah/skillhub_be/internal/models"
	"github.com/Windi-Fikriyansyah/skillhub_be/internal/storage"
)

const maxPhotoBytes = 2 << 20

type ProfileStore interface {
	FreelancerByUserID(ctx context.Context, userID uuid.UUID) (*models.FreelancerProfile, error)
	RecruiterByUserID(ctx context.Context, userID uuid.UUID) (*models.RecruiterProfile, error)
	UpdateFreelancer(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*models.FreelancerProfile, error)
	UpdateRecruiter(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*models.RecruiterProfile, error)
}

// StatsQueue schedules a derived stats recompute for a freelancer profile.
type StatsQueue interface {
	Enqueue(freelancerProfileID uuid.UUID)
}

type ProfileHandler struct {
	Profiles ProfileStore
	Store    storage.Storage
	Stats    StatsQueue
	Log      logrus.FieldLogger
}

func (h *ProfileHandler) GetFreelancer(c *fiber.Ctx) error {
	uid, ok := currentUser(c)
	if !ok {
		return nil
	}
	p, err := h.Profiles.FreelancerByUserID(c.UserContext(), uid)
	if err != nil {
		return serviceError(c, h.Log, err)
	}
	return success(c, "OK", p)
}

type FreelancerProfileReq struct {
	FullName          *string `json:"full_name" validate:"omitempty,max=120"`
	ProfessionalTitle *string `json:"professional_title" validate:"omitempty,max=120"`
	Bio               *string `json:"bio" validate:"omitempty,max=5000"`
	Skills            *string `json:"skills" validate:"omitempty,max=500"`
	ExperienceLevel   *string `json:"experience_level" validate:"omitempty,oneof=entry intermediate expert"`
	Location          *string `json:"location" validate:"omitempty,max=120"`
}

func (r FreelancerProfileReq) fields() map[string]interface{} {
	out := map[string]interface{}{}
	set := func(col string, v *string) {
		if v != nil {
			out[col] = strings.TrimSpace(*v)
		}
	}
	set("full_name", r.FullName)
	set("professional_title", r.ProfessionalTitle)
	set("bio", r.Bio)
	set("skills", r.Skills)
	set("experience_level", r.ExperienceLevel)
	set("location", r.Location)
	return out
}

func (h *ProfileHandler) UpdateFreelancer(c *fiber.Ctx) error {
	uid, ok := currentUser(c)
	if !ok {
		return nil
	}
	var req FreelancerProfileReq
	if err := parseAndValidate(c, &req); err != nil {
		return nil
	}
	fields := req.fields()
	if len(fields) == 0 {
		return fail(c, fiber.StatusBadRequest, "Nothing to update")
	}
	return h.saveFreelancer(c, uid, fields, "Profile updated")
}

// UploadPhoto replaces the profile picture (jpg or png, at most 2 MB).
func (h *ProfileHandler) UploadPhoto(c *fiber.Ctx) error {
	return h.uploadFreelancerFile(c, "photo", "profile_pictures", "profile_picture", maxPhotoBytes, ".jpg", ".jpeg", ".png")
}

func (h *ProfileHandler) UploadResume(c *fiber.Ctx) error {
	return h.uploadFreelancerFile(c, "resume", "resumes", "resume", maxUploadBytes, ".pdf", ".txt", ".doc", ".docx")
}

func (h *ProfileHandler) uploadFreelancerFile(c *fiber.Ctx, field, folder, column string, maxBytes int64, exts ...string) error {
	uid, ok := currentUser(c)
	if !ok {
		return nil
	}
	fh, err := c.FormFile(field)
	if err != nil {
		return fail(c, fiber.StatusBadRequest, field+" is required (multipart field: "+field+")")
	}
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	allowed := false
	for _, e := range exts {
		if ext == e {
			allowed = true
			break
		}
	}
	if !allowed {
		return fail(c, fiber.StatusBadRequest, field+" must be one of "+strings.Join(exts, ", "))
	}
	if fh.Size > maxBytes {
		return fail(c, fiber.StatusRequestEntityTooLarge, field+" is too large")
	}

	f, err := fh.Open()
	if err != nil {
		return serviceError(c, h.Log, err)
	}
	defer f.Close()

	url, err := h.Store.Save(c.UserContext(), folder, fh.Filename, f, fh.Header.Get("Content-Type"))
	if err != nil {
		return serviceError(c, h.Log, err)
	}
	return h.saveFreelancer(c, uid, map[string]interface{}{column: url}, field+" uploaded")
}

func (h *ProfileHandler) saveFreelancer(c *fiber.Ctx, uid uuid.UUID, fields map[string]interface{}, message string) error {
	ctx := c.UserContext()
	p, err := h.Profiles.FreelancerByUserID(ctx, uid)
	if err != nil {
		return serviceError(c, h.Log, err)
	}
	p, err = h.Profiles.UpdateFreelancer(ctx, p.ID, fields)
	if err != nil {
		return serviceError(c, h.Log, err)
	}
	h.Stats.Enqueue(p.ID)
	return success(c, message, p)
}

type RecruiterProfileReq struct {
	CompanyName        *string `json:"company_name" validate:"omitempty,max=150"`
	CompanyWebsite     *string `json:"company_website" validate:"omitempty,url"`
	CompanyDescription *string `json:"company_description" validate:"omitempty,max=5000"`
	Location           *string `json:"location" validate:"omitempty,max=120"`
}

func (h *ProfileHandler) GetRecruiter(c *fiber.Ctx) error {
	uid, ok := currentUser(c)
	if !ok {
		return nil
	}
	p, err := h.Profiles.RecruiterByUserID(c.UserContext(), uid)
	if err != nil {
		return serviceError(c, h.Log, err)
	}
	return success(c, "OK", p)
}

func (h *ProfileHandler) UpdateRecruiter(c *fiber.Ctx) error {
	uid, ok := currentUser(c)
	if !ok {
		return nil
	}
	var req RecruiterProfileReq
	if err := parseAndValidate(c, &req); err != nil {
		return nil
	}

	fields := map[string]interface{}{}
	for col, v := range map[string]*string{
		"company_name":        req.CompanyName,
		"company_website":     req.CompanyWebsite,
		"company_description": req.CompanyDescription,
		"location":            req.Location,
	} {
		if v != nil {
			fields[col] = strings.TrimSpace(*v)
		}
	}
	if len(fields) == 0 {
		return fail(c, fiber.StatusBadRequest, "Nothing to update")
	}

	ctx := c.UserContext()
	p, err := h.Profiles.RecruiterByUserID(ctx, uid)
	if err != nil {
		return serviceError(c, h.Log, err)
	}
	p, err = h.Profiles.UpdateRecruiter(ctx, p.ID, fields)
	if err != nil {
		return serviceError(c, h.Log, err)
	}
	return success(c, "Profile updated", p)
}

package handlers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/Windi-Fikriyansyah/skillhub_be/internal/middleware"
	"github.com/Windi-Fikriyansyah/skillhub_be/internal/models"
	"github.com/Windi-Fikriyansyah/skillhub_be/internal/repository"
	"github.com/Windi-Fikriyansyah/skillhub_be/internal/utils"
)

type UserStore interface {
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	UserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	CreateUser(ctx context.Context, u *models.User) error
	UpdateName(ctx context.Context, id uuid.UUID, name string) error
	TouchLogin(ctx context.Context, id uuid.UUID) error
}

// LoginRecorder keeps the freelancer login streak.
type LoginRecorder interface {
	RecordLogin(ctx context.Context, user *models.User, now time.Time) error
}

type AuthHandler struct {
	Users     UserStore
	Logins    LoginRecorder
	JWTSecret string
	Expires   int
	Log       logrus.FieldLogger
}

type RegisterReq struct {
	Name     string `json:"name" validate:"required,max=120"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Phone    string `json:"phone" validate:"omitempty,min=8,max=30"`
	Role     string `json:"role" validate:"required,oneof=recruiter freelancer"`
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req RegisterReq
	if err := parseAndValidate(c, &req); err != nil {
		return nil
	}

	pw, err := utils.HashPassword(strings.TrimSpace(req.Password))
	if err != nil {
		h.Log.WithError(err).Error("hash password")
		return fail(c, fiber.StatusInternalServerError, "Failed to process password")
	}

	u := models.User{
		Name:     strings.TrimSpace(req.Name),
		Email:    strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:    strings.TrimSpace(req.Phone),
		Password: pw,
		Role:     models.Role(req.Role),
		IsActive: true,
	}
	if err := h.Users.CreateUser(c.UserContext(), &u); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return validationFail(c, []string{"Email is already registered"})
		}
		h.Log.WithError(err).Error("create user")
		return fail(c, fiber.StatusInternalServerError, "Registration failed")
	}

	if err := h.issueCookie(c, &u); err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to create token")
	}
	return created(c, "Registration successful", fiber.Map{"user": publicUser(&u)})
}

type LoginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginReq
	if err := parseAndValidate(c, &req); err != nil {
		return nil
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	u, err := h.Users.UserByEmail(c.UserContext(), email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		h.Log.WithError(err).Error("load user by email")
		return fail(c, fiber.StatusInternalServerError, "Internal server error")
	}
	if u == nil || !utils.CheckPassword(u.Password, strings.TrimSpace(req.Password)) {
		return fail(c, fiber.StatusUnauthorized, "Invalid email or password")
	}
	if !u.IsActive {
		return fail(c, fiber.StatusForbidden, "Account is inactive")
	}

	if err := h.issueCookie(c, u); err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to create token")
	}
	h.afterLogin(c.UserContext(), u)

	return success(c, "Login successful", fiber.Map{"user": publicUser(u)})
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HTTPOnly: true,
		SameSite: "Lax",
	})
	return success(c, "Logout successful", nil)
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	uid, ok := currentUser(c)
	if !ok {
		return nil
	}
	u, err := h.Users.UserByID(c.UserContext(), uid)
	if err != nil {
		return serviceError(c, h.Log, err)
	}
	return success(c, "OK", u)
}

// afterLogin stamps the login time and streak. Failures only cost the
// streak, so they are logged.
func (h *AuthHandler) afterLogin(ctx context.Context, u *models.User) {
	entry := h.Log.WithField("user_id", u.ID)
	if err := h.Users.TouchLogin(ctx, u.ID); err != nil {
		entry.WithError(err).Warn("touch last login")
	}
	if h.Logins == nil {
		return
	}
	if err := h.Logins.RecordLogin(ctx, u, time.Now()); err != nil {
		entry.WithError(err).Warn("record login streak")
	}
}

func (h *AuthHandler) issueCookie(c *fiber.Ctx, u *models.User) error {
	token, err := utils.SignJWT(h.JWTSecret, u.ID.String(), string(u.Role), h.Expires)
	if err != nil {
		return err
	}
	c.Cookie(&fiber.Cookie{
		Name:     middleware.CookieName,
		Value:    token,
		Path:     "/",
		HTTPOnly: true,
		SameSite: "Lax",
		MaxAge:   h.Expires * 60,
	})
	return nil
}

func publicUser(u *models.User) fiber.Map {
	return fiber.Map{
		"id":    u.ID,
		"name":  u.Name,
		"email": u.Email,
		"phone": u.Phone,
		"role":  u.Role,
	}
}

package handlers

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"gorm.io/gorm"

	"github.com/Windi-Fikriyansyah/skillhub_be/internal/models"
	"github.com/Windi-Fikriyansyah/skillhub_be/internal/utils"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

type GoogleOAuthHandler struct {
	*AuthHandler
	GoogleClientID  string
	GoogleSecret    string
	GoogleRedirect  string
	FrontendBaseURL string
}

func (h *GoogleOAuthHandler) oauthCfg() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     h.GoogleClientID,
		ClientSecret: h.GoogleSecret,
		RedirectURL:  h.GoogleRedirect,
		Endpoint:     google.Endpoint,
		Scopes:       []string{"openid", "email", "profile"},
	}
}

func randomState(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}

func tempCookie(name, value string, maxAge int) *fiber.Cookie {
	return &fiber.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HTTPOnly: true,
		SameSite: "Lax",
		MaxAge:   maxAge,
	}
}

func (h *GoogleOAuthHandler) GoogleStart(c *fiber.Ctx) error {
	st := randomState(32)
	c.Cookie(tempCookie("oauth_state", st, 10*60))
	c.Cookie(tempCookie("oauth_next", c.Query("next", "/"), 10*60))

	return c.Redirect(h.oauthCfg().AuthCodeURL(st, oauth2.AccessTypeOffline), http.StatusTemporaryRedirect)
}

type googleUserInfo struct {
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// GoogleCallback signs the user in, creating a freelancer account for an
// unknown email.
func (h *GoogleOAuthHandler) GoogleCallback(c *fiber.Ctx) error {
	code := c.Query("code")
	state := c.Query("state")
	if code == "" || state == "" {
		return c.Status(fiber.StatusBadRequest).SendString("Missing code/state")
	}

	stCookie := c.Cookies("oauth_state")
	if stCookie == "" || stCookie != state {
		return c.Status(fiber.StatusBadRequest).SendString("Invalid state")
	}
	next := c.Cookies("oauth_next")
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		next = "/"
	}

	ctx := c.UserContext()
	tok, err := h.oauthCfg().Exchange(ctx, code)
	if err != nil {
		h.Log.WithError(err).Warn("google code exchange")
		return c.Status(fiber.StatusBadRequest).SendString("Failed to exchange code")
	}

	resp, err := h.oauthCfg().Client(ctx, tok).Get(googleUserInfoURL)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("Failed to fetch userinfo")
	}
	defer resp.Body.Close()

	var gu googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&gu); err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("Failed to decode userinfo")
	}

	email := strings.ToLower(strings.TrimSpace(gu.Email))
	name := strings.TrimSpace(gu.Name)
	if email == "" {
		return c.Status(fiber.StatusBadRequest).SendString("Email not found from Google")
	}

	u, err := h.Users.UserByEmail(ctx, email)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		// The account never logs in with a password; store an unusable one.
		hashed, err := utils.HashPassword(randomState(24))
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).SendString("Failed to create account")
		}
		if name == "" {
			name = strings.SplitN(email, "@", 2)[0]
		}
		u = &models.User{
			Name:     name,
			Email:    email,
			Password: hashed,
			Role:     models.RoleFreelancer,
			IsActive: true,
		}
		if err := h.Users.CreateUser(ctx, u); err != nil {
			h.Log.WithError(err).WithField("email", email).Error("create google user")
			return c.Status(fiber.StatusInternalServerError).SendString("Failed to create account")
		}
	case err != nil:
		h.Log.WithError(err).Error("load google user")
		return c.Status(fiber.StatusInternalServerError).SendString("DB error")
	case name != "" && u.Name != name:
		if err := h.Users.UpdateName(ctx, u.ID, name); err != nil {
			h.Log.WithError(err).WithField("user_id", u.ID).Warn("update name from google")
		}
		u.Name = name
	}

	if !u.IsActive {
		return c.Redirect(h.FrontendBaseURL+"/auth/login?err="+url.QueryEscape("Account is inactive"), http.StatusTemporaryRedirect)
	}

	if err := h.issueCookie(c, u); err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString("Failed to sign jwt")
	}
	h.afterLogin(ctx, u)

	c.Cookie(tempCookie("oauth_state", "", -1))
	c.Cookie(tempCookie("oauth_next", "", -1))

	return c.Redirect(h.FrontendBaseURL+next, http.StatusTemporaryRedirect)
}

package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func getUserUUID(c *fiber.Ctx) (uuid.UUID, error) {
	v := c.Locals("userId")
	if v == nil {
		return uuid.Nil, fmt.Errorf("unauthorized")
	}

	switch t := v.(type) {
	case uuid.UUID:
		return t, nil
	case string:
		return uuid.Parse(t)
	case []byte:
		return uuid.ParseBytes(t)
	default:
		return uuid.Nil, fmt.Errorf("invalid userId type: %T", v)
	}
}

// localUUID reads the authenticated user from websocket or fiber locals.
func localUUID(v interface{}) (uuid.UUID, bool) {
	s, ok := v.(string)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(s)
	return id, err == nil
}

// userAndParam resolves the caller and the uuid path parameter name. When
// it reports false the error response has been written.
func userAndParam(c *fiber.Ctx, name string) (uuid.UUID, uuid.UUID, bool) {
	uid, err := getUserUUID(c)
	if err != nil {
		_ = fail(c, fiber.StatusUnauthorized, "Unauthorized")
		return uuid.Nil, uuid.Nil, false
	}
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		_ = fail(c, fiber.StatusBadRequest, "Invalid "+name)
		return uuid.Nil, uuid.Nil, false
	}
	return uid, id, true
}

// currentUser writes a 401 and reports false when no user is attached.
func currentUser(c *fiber.Ctx) (uuid.UUID, bool) {
	uid, err := getUserUUID(c)
	if err != nil {
		_ = fail(c, fiber.StatusUnauthorized, "Unauthorized")
		return uuid.Nil, false
	}
	return uid, true
}

package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/Windi-Fikriyansyah/skillhub_be/internal/services/marketplace"
	"github.com/Windi-Fikriyansyah/skillhub_be/internal/services/stats"
)

type DashboardHandler struct {
	Market *marketplace.Service
	Stats  *stats.Service
	Log    logrus.FieldLogger
}

func (h *DashboardHandler) Freelancer(c *fiber.Ctx) error {
	uid, ok := currentUser(c)
	if !ok {
		return nil
	}
	d, err := h.Market.Dashboard(c.UserContext(), uid)
	if err != nil {
		return serviceError(c, h.Log, err)
	}
	return success(c, "OK", d)
}

func (h *DashboardHandler) Ranks(c *fiber.Ctx) error {
	board, err := h.Stats.Leaderboard(c.UserContext())
	if err != nil {
		return serviceError(c, h.Log, err)
	}
	return success(c, "OK", board)
}

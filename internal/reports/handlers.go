package reports

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Get("/users/:userID/daily", authMiddleware, func(c *fiber.Ctx) error {
		userID := c.Params("userID")
		if !canView(c, userID) {
			return fiber.NewError(fiber.StatusForbidden, "not allowed")
		}
		from, to, err := parseWindow(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		summaries, err := svc.DailySummaries(c.Context(), userID, from, to)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(summaries)
	})

	r.Get("/users/:userID/sessions", authMiddleware, func(c *fiber.Ctx) error {
		userID := c.Params("userID")
		if !canView(c, userID) {
			return fiber.NewError(fiber.StatusForbidden, "not allowed")
		}
		from, to, err := parseWindow(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		sessions, err := svc.Sessions(c.Context(), userID, from, to)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(sessions)
	})

	r.Get("/team/daily", authMiddleware, func(c *fiber.Ctx) error {
		role, _ := c.Locals("role").(string)
		if role != "manager" && role != "admin" {
			return fiber.NewError(fiber.StatusForbidden, "manager role required")
		}
		day, err := parseDay(c.Query("day"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		summaries, err := svc.TeamDaily(c.Context(), day)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(summaries)
	})
}

func canView(c *fiber.Ctx, userID string) bool {
	requester, _ := c.Locals("user_id").(string)
	role, _ := c.Locals("role").(string)
	return requester == userID || role == "manager" || role == "admin"
}

func parseWindow(c *fiber.Ctx) (time.Time, time.Time, error) {
	var from, to time.Time
	var err error
	if v := c.Query("from"); v != "" {
		if from, err = time.Parse("2006-01-02", v); err != nil {
			return from, to, err
		}
	}
	if v := c.Query("to"); v != "" {
		if to, err = time.Parse("2006-01-02", v); err != nil {
			return from, to, err
		}
	}
	return from, to, nil
}

func parseDay(v string) (time.Time, error) {
	if v == "" {
		now := time.Now()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()), nil
	}
	return time.Parse("2006-01-02", v)
}

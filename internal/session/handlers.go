package session

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Hari1275/sdp-sub002/internal/shared/geo"
)

type checkInRequest struct {
	UserID    string    `json:"user_id"`
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
	AccuracyM float64   `json:"accuracy_m"`
	At        time.Time `json:"at"`
}

type logRequest struct {
	Lat        float64   `json:"lat"`
	Lng        float64   `json:"lng"`
	AccuracyM  float64   `json:"accuracy_m"`
	SpeedMps   float64   `json:"speed_mps"`
	AltitudeM  float64   `json:"altitude_m"`
	RecordedAt time.Time `json:"recorded_at"`
}

type checkOutRequest struct {
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
	AccuracyM float64   `json:"accuracy_m"`
	At        time.Time `json:"at"`
}

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Post("/check-in", authMiddleware, func(c *fiber.Ctx) error {
		var req checkInRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		userID := req.UserID
		if userID == "" {
			userID, _ = c.Locals("user_id").(string)
		}

		result, err := svc.CheckIn(c.Context(), userID, geo.Point{Lat: req.Lat, Lng: req.Lng, AccuracyM: req.AccuracyM}, req.At)
		if err != nil {
			return httpError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(result)
	})

	r.Post("/:id/logs", authMiddleware, func(c *fiber.Ctx) error {
		var req logRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		logEntry, err := svc.IngestLog(c.Context(), c.Params("id"), geo.Point{
			Lat: req.Lat, Lng: req.Lng,
			AccuracyM: req.AccuracyM, SpeedMps: req.SpeedMps, AltitudeM: req.AltitudeM,
			RecordedAt: req.RecordedAt,
		})
		if err != nil {
			return httpError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(logEntry)
	})

	r.Post("/:id/check-out", authMiddleware, func(c *fiber.Ctx) error {
		var req checkOutRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		requesterID, _ := c.Locals("user_id").(string)
		role, _ := c.Locals("role").(string)

		result, err := svc.CheckOut(c.Context(), c.Params("id"), requesterID, role,
			geo.Point{Lat: req.Lat, Lng: req.Lng, AccuracyM: req.AccuracyM}, req.At)
		if err != nil {
			return httpError(err)
		}
		return c.JSON(result)
	})

	r.Post("/:id/force-close", authMiddleware, func(c *fiber.Ctx) error {
		actorID, _ := c.Locals("user_id").(string)
		role, _ := c.Locals("role").(string)

		result, err := svc.ForceClose(c.Context(), c.Params("id"), actorID, role)
		if err != nil {
			return httpError(err)
		}
		return c.JSON(result)
	})

	r.Post("/:id/recalculate", authMiddleware, func(c *fiber.Ctx) error {
		result, err := svc.Recalculate(c.Context(), c.Params("id"))
		if err != nil {
			return httpError(err)
		}
		return c.JSON(result)
	})

	r.Get("/:id", authMiddleware, func(c *fiber.Ctx) error {
		session, err := svc.Get(c.Context(), c.Params("id"))
		if err != nil {
			return httpError(err)
		}
		return c.JSON(session)
	})

	r.Get("/:id/logs", authMiddleware, func(c *fiber.Ctx) error {
		logs, err := svc.Logs(c.Context(), c.Params("id"))
		if err != nil {
			return httpError(err)
		}
		return c.JSON(logs)
	})
}

// httpError maps domain error codes to HTTP statuses, keeping the stable code
// in the message for API consumers.
func httpError(err error) error {
	var domainErr *Error
	if !errors.As(err, &domainErr) {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	switch domainErr.Code {
	case CodeValidation:
		return fiber.NewError(fiber.StatusBadRequest, domainErr.Error())
	case CodeNotFound:
		return fiber.NewError(fiber.StatusNotFound, domainErr.Error())
	case CodePermission:
		return fiber.NewError(fiber.StatusForbidden, domainErr.Error())
	case CodeAlreadyClosed, CodeSessionNotOpen:
		return fiber.NewError(fiber.StatusConflict, domainErr.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, domainErr.Error())
	}
}

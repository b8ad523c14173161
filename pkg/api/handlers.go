package api

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/slickwilli/neoview/models"
	"github.com/slickwilli/neoview/pkg/glucose"
)

func detail(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"detail": msg})
}

// PostReading classifies and stores one reading. A missing timestamp or
// device id is filled in by the server.
func (s *Server) PostReading(c *fiber.Ctx) error {
	var in models.ReadingInput
	if err := c.BodyParser(&in); err != nil {
		return detail(c, fiber.StatusUnprocessableEntity, fmt.Sprintf("invalid body: %v", err))
	}
	if err := in.Validate(); err != nil {
		return detail(c, fiber.StatusUnprocessableEntity, fmt.Sprintf("invalid reading: %v", err))
	}

	now := s.now().UTC()
	timestamp := strings.TrimSpace(in.Timestamp)
	if timestamp == "" {
		timestamp = now.Format(time.RFC3339Nano)
	}
	deviceID := strings.TrimSpace(in.DeviceID)
	if deviceID == "" {
		deviceID = models.DefaultDeviceID
	}
	category, color := glucose.Classify(*in.GlucoseValue)

	reading := models.Reading{
		ID:           s.newID(),
		GlucoseValue: *in.GlucoseValue,
		Category:     category,
		Color:        color,
		Timestamp:    timestamp,
		DeviceID:     deviceID,
		CreatedAt:    now,
	}
	if err := s.store.Insert(c.UserContext(), reading); err != nil {
		s.logger.Error("error saving glucose reading", zap.Error(err))
		return detail(c, fiber.StatusInternalServerError, fmt.Sprintf("Error saving glucose reading: %v", err))
	}
	s.logger.Debug(
		"stored glucose reading",
		zap.String("id", reading.ID),
		zap.Float64("glucose_value", reading.GlucoseValue),
		zap.String("category", string(reading.Category)),
		zap.String("device_id", reading.DeviceID),
	)
	return c.JSON(reading)
}

// GetLatest responds with the most recent reading or JSON null.
func (s *Server) GetLatest(c *fiber.Ctx) error {
	latest, err := s.store.Latest(c.UserContext())
	if err != nil {
		s.logger.Error("error fetching latest reading", zap.Error(err))
		return detail(c, fiber.StatusInternalServerError, fmt.Sprintf("Error fetching latest reading: %v", err))
	}
	if latest == nil {
		return c.JSON(nil)
	}
	return c.JSON(latest)
}

func (s *Server) GetHistory(c *fiber.Ctx) error {
	limit := s.historyLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return detail(c, fiber.StatusUnprocessableEntity, "limit must be a positive integer")
		}
		limit = n
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}

	history, err := s.store.History(c.UserContext(), limit)
	if err != nil {
		s.logger.Error("error fetching history", zap.Error(err))
		return detail(c, fiber.StatusInternalServerError, fmt.Sprintf("Error fetching history: %v", err))
	}
	if history == nil {
		history = []models.Reading{}
	}
	return c.JSON(history)
}

func (s *Server) GetStats(c *fiber.Ctx) error {
	stats, err := s.store.Stats(c.UserContext())
	if err != nil {
		s.logger.Error("error fetching stats", zap.Error(err))
		return detail(c, fiber.StatusInternalServerError, fmt.Sprintf("Error fetching stats: %v", err))
	}
	if stats.CategoryDistribution == nil {
		stats.CategoryDistribution = models.Distribution{}
	}
	return c.JSON(stats)
}

func (s *Server) DeleteAll(c *fiber.Ctx) error {
	n, err := s.store.Clear(c.UserContext())
	if err != nil {
		s.logger.Error("error clearing readings", zap.Error(err))
		return detail(c, fiber.StatusInternalServerError, fmt.Sprintf("Error clearing readings: %v", err))
	}
	s.logger.Info("cleared glucose readings", zap.Int("deleted", n))
	return c.JSON(fiber.Map{"message": fmt.Sprintf("Deleted %d readings", n)})
}

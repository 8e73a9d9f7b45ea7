package handlers

import (
	"strconv"

	"github.com/arnold/runcast-api/internal/database"
	"github.com/arnold/runcast-api/internal/middleware"
	"github.com/arnold/runcast-api/internal/models"
	"github.com/gofiber/fiber/v2"
)

// GetNotifications returns paginated notification entries for the current user
func GetNotifications(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = 20
	}
	offset := (page - 1) * limit

	var entries []models.NotificationEntry
	database.DB.Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&entries)

	var total int64
	database.DB.Model(&models.NotificationEntry{}).Where("user_id = ?", userID).Count(&total)

	return c.JSON(fiber.Map{
		"notifications": entries,
		"total":         total,
		"page":          page,
		"limit":         limit,
	})
}

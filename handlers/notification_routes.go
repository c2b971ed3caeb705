// handlers/notification_routes.go
package handlers

import (
	"auracoins-server/middleware"
	"auracoins-server/models"
	"auracoins-server/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupNotificationRoutes(app *fiber.App, db *gorm.DB, authClient *services.AuthServiceClient) {
	admin := app.Group("/s/admin", middleware.UserContextMiddleware(authClient), middleware.AdminOnlyMiddleware())

	// Outbox backlog view for operators: how much is pending/failed.
	admin.Get("/notifications", func(c *fiber.Ctx) error {
		status := c.Query("status", string(models.NotificationPending))

		var notifications []models.EmailNotification
		if err := db.Where("status = ?", status).
			Order("created_at DESC").
			Limit(100).
			Find(&notifications).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to fetch notifications",
			})
		}

		var counts []struct {
			Status string `json:"status"`
			Count  int64  `json:"count"`
		}
		if err := db.Model(&models.EmailNotification{}).
			Select("status, count(*) as count").
			Group("status").
			Scan(&counts).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to count notifications",
			})
		}

		return c.JSON(fiber.Map{
			"notifications": notifications,
			"counts":        counts,
		})
	})
}

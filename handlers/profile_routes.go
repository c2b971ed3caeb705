// handlers/profile_routes.go
package handlers

import (
	"errors"
	"strconv"

	"auracoins-server/middleware"
	"auracoins-server/services"

	"github.com/gofiber/fiber/v2"
)

func SetupProfileRoutes(app *fiber.App, profileService *services.ProfileService, activityService *services.ActivityService, authClient *services.AuthServiceClient) {
	secured := app.Group("/s", middleware.UserContextMiddleware(authClient))

	secured.Get("/profile", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		email, _ := c.Locals("user_email").(string)
		name, _ := c.Locals("user_name").(string)

		// First sight of a user creates the profile row from session identity
		profile, err := profileService.EnsureProfile(userID, email, name)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to load profile",
				"cause": err.Error(),
			})
		}
		return c.JSON(profile)
	})

	secured.Patch("/profile", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		var req struct {
			Name      *string `json:"name"`
			AvatarURL *string `json:"avatar_url"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}

		profile, err := profileService.UpdateProfile(userID, req.Name, req.AvatarURL)
		if err != nil {
			if errors.Is(err, services.ErrProfileNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Profile not found"})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update profile"})
		}
		return c.JSON(profile)
	})

	secured.Get("/profile/ledger", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		page, _ := strconv.Atoi(c.Query("page", "1"))
		size, _ := strconv.Atoi(c.Query("size", "20"))

		entries, total, err := profileService.GetLedger(userID, page, size)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to fetch ledger",
			})
		}
		return c.JSON(fiber.Map{
			"transactions": entries,
			"total":        total,
			"page":         page,
			"size":         size,
		})
	})

	secured.Post("/activity/watch", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		var req struct {
			MovieID        int    `json:"movie_id"`
			MovieTitle     string `json:"movie_title"`
			MinutesWatched int    `json:"minutes_watched"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}

		session, err := activityService.RecordWatch(userID, req.MovieID, req.MovieTitle, req.MinutesWatched)
		if err != nil {
			if errors.Is(err, services.ErrProfileNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Profile not found"})
			}
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(fiber.Map{
			"message":      "Watch session recorded",
			"coins_earned": session.CoinsEarned,
			"xp_earned":    session.XPEarned,
			"session":      session,
		})
	})
}

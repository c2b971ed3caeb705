// handlers/reward_routes.go
package handlers

import (
	"auracoins-server/middleware"
	"auracoins-server/services"

	"github.com/gofiber/fiber/v2"
)

func SetupRewardRoutes(app *fiber.App, rewardService *services.RewardService, authClient *services.AuthServiceClient) {
	// 🔓 Public catalog — no user context, but still behind Gateway auth
	app.Get("/rewards", func(c *fiber.Ctx) error {
		rewards, skipped, err := rewardService.ListActiveRewards()
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to fetch rewards",
			})
		}
		return c.JSON(fiber.Map{
			"rewards": rewards,
			"skipped": skipped,
		})
	})

	app.Get("/rewards/:id", func(c *fiber.Ctx) error {
		reward, err := rewardService.GetReward(c.Params("id"))
		if err != nil {
			return respondRewardError(c, err)
		}
		return c.JSON(fiber.Map{
			"reward":    reward,
			"available": reward.Available(),
		})
	})

	// 🔐 Admin catalog management
	admin := app.Group("/s/admin", middleware.UserContextMiddleware(authClient), middleware.AdminOnlyMiddleware())

	admin.Get("/rewards", rewardService.GetAllRewards)
	admin.Post("/rewards", rewardService.CreateReward)
	admin.Put("/rewards/:id", rewardService.UpdateReward)
	admin.Patch("/rewards/:id", rewardService.UpdateReward)
	admin.Delete("/rewards/:id", rewardService.DeleteReward)
}

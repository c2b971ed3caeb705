// handlers/redemption_routes.go
package handlers

import (
	"errors"
	"strconv"

	"auracoins-server/middleware"
	"auracoins-server/services"

	"github.com/gofiber/fiber/v2"
)

func SetupRedemptionRoutes(app *fiber.App, redemptionService *services.RedemptionService, authClient *services.AuthServiceClient) {
	secured := app.Group("/s", middleware.UserContextMiddleware(authClient))

	secured.Post("/rewards/:id/redeem", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		result, err := redemptionService.Redeem(userID, c.Params("id"))
		if err != nil {
			return respondRedeemError(c, err)
		}

		return c.JSON(fiber.Map{
			"message":         "Reward redeemed successfully",
			"redemption_code": result.RedemptionCode,
			"cashback_earned": result.CashbackEarned,
			"new_balance":     result.NewBalance,
			"redemption":      result.Redemption,
		})
	})

	secured.Get("/redemptions", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		page, _ := strconv.Atoi(c.Query("page", "1"))
		size, _ := strconv.Atoi(c.Query("size", "20"))

		redemptions, total, err := redemptionService.ListRedemptions(userID, page, size)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to fetch redemptions",
			})
		}
		return c.JSON(fiber.Map{
			"redemptions": redemptions,
			"total":       total,
			"page":        page,
			"size":        size,
		})
	})
}

// respondRedeemError maps orchestrator errors onto user-visible responses.
// Every failure states its concrete reason; insufficient balance reports
// both required and current amounts.
func respondRedeemError(c *fiber.Ctx, err error) error {
	var short *services.InsufficientBalanceError
	if errors.As(err, &short) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":    short.Error(),
			"required": short.Required,
			"current":  short.Current,
		})
	}
	switch {
	case errors.Is(err, services.ErrInsufficientBalance):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrRewardUnavailable):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Reward is not available for redemption"})
	case errors.Is(err, services.ErrProfileNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Profile not found"})
	default:
		return respondRewardError(c, err)
	}
}

func respondRewardError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidRewardID):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid reward ID"})
	case errors.Is(err, services.ErrRewardNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Reward not found"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal error", "cause": err.Error()})
	}
}

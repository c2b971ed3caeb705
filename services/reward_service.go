// services/reward_service.go
package services

import (
	"errors"
	"fmt"
	"log"

	"auracoins-server/models"
	"auracoins-server/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

type RewardService struct {
	DB *gorm.DB
}

func NewRewardService(db *gorm.DB) *RewardService {
	return &RewardService{DB: db}
}

// ListActiveRewards returns the active catalog ordered by platform then
// ascending price. Rows with an unrecognized platform value are skipped
// (counted, warned) instead of failing the whole listing.
func (s *RewardService) ListActiveRewards() ([]models.Reward, int, error) {
	var raw []models.Reward
	err := s.DB.
		Where("is_active = ?", true).
		Order("platform ASC").
		Order("price ASC").
		Find(&raw).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list rewards: %w", err)
	}

	rewards := make([]models.Reward, 0, len(raw))
	skipped := 0
	for _, r := range raw {
		if !models.ValidPlatform(r.Platform) {
			log.Printf("⚠️  [CATALOG] Skipping reward %s: unknown platform %q", r.ID, r.Platform)
			skipped++
			continue
		}
		rewards = append(rewards, r)
	}
	return rewards, skipped, nil
}

// GetReward looks a reward up by id. Non-uuid or stale identifiers fall
// back to a full-catalog scan matching id or slug.
func (s *RewardService) GetReward(id string) (*models.Reward, error) {
	if id == "" {
		return nil, ErrInvalidRewardID
	}

	if _, err := uuid.Parse(id); err == nil {
		var reward models.Reward
		err := s.DB.Where("id = ? AND is_active = ?", id, true).First(&reward).Error
		if err == nil {
			if !models.ValidPlatform(reward.Platform) {
				return nil, ErrRewardNotFound
			}
			return &reward, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("fetch reward: %w", err)
		}
		// fall through to catalog scan
	}

	rewards, _, err := s.ListActiveRewards()
	if err != nil {
		return nil, err
	}
	for i := range rewards {
		if rewards[i].ID == id || rewards[i].Slug == id {
			return &rewards[i], nil
		}
	}
	return nil, ErrRewardNotFound
}

// ReserveStockTx decrements stock for one redemption, inside the caller's
// transaction. Unlimited-stock rewards (NULL quantity) pass through; a
// zero-stock row fails closed without touching anything.
func (s *RewardService) ReserveStockTx(tx *gorm.DB, rewardID string) error {
	var reward models.Reward
	if err := tx.Where("id = ?", rewardID).First(&reward).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRewardNotFound
		}
		return fmt.Errorf("fetch reward for stock check: %w", err)
	}
	if !reward.IsActive {
		return ErrRewardUnavailable
	}
	if reward.StockQuantity == nil {
		return nil
	}

	res := tx.Model(&models.Reward{}).
		Where("id = ? AND stock_quantity > 0", rewardID).
		Update("stock_quantity", gorm.Expr("stock_quantity - 1"))
	if res.Error != nil {
		return fmt.Errorf("decrement stock: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrRewardUnavailable
	}
	return nil
}

// --- Admin Handlers ---

// CreateReward creates a new catalog entry (Admin only). Accepts multipart
// form so the image can be uploaded in the same request.
func (s *RewardService) CreateReward(c *fiber.Ctx) error {
	var req struct {
		Title              string                `json:"title" form:"title"`
		Description        string                `json:"description" form:"description"`
		Platform           models.RewardPlatform `json:"platform" form:"platform"`
		Price              int64                 `json:"price" form:"price"`
		CashbackPercentage *float64              `json:"cashback_percentage" form:"cashback_percentage"`
		ImageURL           string                `json:"image_url" form:"image_url"`
		Badge              *string               `json:"badge" form:"badge"`
		IsActive           *bool                 `json:"is_active" form:"is_active"`
		StockQuantity      *int                  `json:"stock_quantity" form:"stock_quantity"`
	}

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if req.Title == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "title is required"})
	}
	if !models.ValidPlatform(req.Platform) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "platform must be one of netflix, playstore, xbox, psn, steam"})
	}
	if req.Price <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "price must be a positive number of AuraCoins"})
	}
	if req.CashbackPercentage != nil && (*req.CashbackPercentage < 0 || *req.CashbackPercentage > 100) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "cashback_percentage must be between 0 and 100"})
	}

	reward := &models.Reward{
		ID:                 uuid.NewString(),
		Title:              req.Title,
		Slug:               slug.Make(req.Title),
		Description:        req.Description,
		Platform:           req.Platform,
		Price:              req.Price,
		CashbackPercentage: req.CashbackPercentage,
		ImageURL:           req.ImageURL,
		Badge:              req.Badge,
		IsActive:           true,
		StockQuantity:      req.StockQuantity,
	}
	if req.IsActive != nil {
		reward.IsActive = *req.IsActive
	}

	// Optional image upload — stored on R2, URL wins over image_url field
	if imageFile, err := c.FormFile("image"); err == nil && imageFile.Size > 0 {
		key := fmt.Sprintf("rewards/%s%s", reward.ID, utils.FileExt(imageFile.Filename))
		url, err := utils.UploadFileToR2(imageFile, key)
		if err != nil {
			log.Printf("R2 upload failed for reward image: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to upload image"})
		}
		reward.ImageURL = url
	}

	if err := s.DB.Create(reward).Error; err != nil {
		log.Printf("DB Error creating reward: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create reward"})
	}

	return c.Status(fiber.StatusCreated).JSON(reward)
}

// UpdateReward updates an existing reward (Admin only)
func (s *RewardService) UpdateReward(c *fiber.Ctx) error {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid reward ID"})
	}

	var existing models.Reward
	if err := s.DB.First(&existing, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Reward not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	var req struct {
		Title              *string                `json:"title"`
		Description        *string                `json:"description"`
		Platform           *models.RewardPlatform `json:"platform"`
		Price              *int64                 `json:"price"`
		CashbackPercentage *float64               `json:"cashback_percentage"`
		ImageURL           *string                `json:"image_url"`
		Badge              *string                `json:"badge"`
		IsActive           *bool                  `json:"is_active"`
		StockQuantity      *int                   `json:"stock_quantity"`
	}

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	// Apply updates if provided
	if req.Title != nil {
		existing.Title = *req.Title
		existing.Slug = slug.Make(*req.Title)
	}
	if req.Description != nil {
		existing.Description = *req.Description
	}
	if req.Platform != nil {
		if !models.ValidPlatform(*req.Platform) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid platform"})
		}
		existing.Platform = *req.Platform
	}
	if req.Price != nil {
		if *req.Price <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "price must be positive"})
		}
		existing.Price = *req.Price
	}
	if req.CashbackPercentage != nil {
		if *req.CashbackPercentage < 0 || *req.CashbackPercentage > 100 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "cashback_percentage must be between 0 and 100"})
		}
		existing.CashbackPercentage = req.CashbackPercentage
	}
	if req.ImageURL != nil {
		existing.ImageURL = *req.ImageURL
	}
	if req.Badge != nil {
		existing.Badge = req.Badge
	}
	if req.IsActive != nil {
		existing.IsActive = *req.IsActive
	}
	if req.StockQuantity != nil {
		existing.StockQuantity = req.StockQuantity
	}

	if err := s.DB.Save(&existing).Error; err != nil {
		log.Printf("DB Error updating reward: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update reward"})
	}

	return c.JSON(existing)
}

// DeleteReward deletes a reward (Admin only). Soft delete — historical
// redemptions keep their snapshots either way.
func (s *RewardService) DeleteReward(c *fiber.Ctx) error {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid reward ID"})
	}

	var reward models.Reward
	if err := s.DB.First(&reward, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Reward not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	if err := s.DB.Delete(&reward).Error; err != nil {
		log.Printf("DB Error deleting reward: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete reward"})
	}

	return c.JSON(fiber.Map{"message": "Reward deleted successfully"})
}

// GetAllRewards fetches all rewards including inactive ones (Admin only)
func (s *RewardService) GetAllRewards(c *fiber.Ctx) error {
	var rewards []models.Reward
	if err := s.DB.Order("platform ASC").Order("price ASC").Find(&rewards).Error; err != nil {
		log.Printf("DB Error fetching all rewards: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch rewards"})
	}

	return c.JSON(rewards)
}

package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/opskitchen/resto-ops/audit"
	"github.com/opskitchen/resto-ops/middlewares"
	"github.com/opskitchen/resto-ops/models"
	"github.com/opskitchen/resto-ops/utils"
)

type InventoryController struct {
	DB    *gorm.DB
	Audit *audit.Sink
}

func NewInventoryController(db *gorm.DB, sink *audit.Sink) *InventoryController {
	return &InventoryController{DB: db, Audit: sink}
}

func (ic *InventoryController) CreateItem(c *gin.Context) {
	var req struct {
		Name            string  `json:"name" binding:"required"`
		Unit            string  `json:"unit" binding:"required"`
		CurrentQuantity float64 `json:"current_quantity" binding:"gte=0"`
		ParLevel        float64 `json:"par_level" binding:"gte=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidation(c, err)
		return
	}

	item := models.InventoryItem{
		Name:            req.Name,
		Unit:            req.Unit,
		CurrentQuantity: req.CurrentQuantity,
		ParLevel:        req.ParLevel,
	}
	if err := ic.DB.Create(&item).Error; err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Inventory item created", item)
}

func (ic *InventoryController) GetAllItems(c *gin.Context) {
	var items []models.InventoryItem
	if err := ic.DB.Order("name").Find(&items).Error; err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of inventory items", items)
}

// AdjustQuantity applies a signed delta to an item's stock. An adjustment
// that would drive the quantity negative is rejected, not clamped.
func (ic *InventoryController) AdjustQuantity(c *gin.Context) {
	id, err := parseID(c, "item_id")
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	var req struct {
		Delta  *float64 `json:"delta" binding:"required"`
		Reason string   `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidation(c, err)
		return
	}

	var item models.InventoryItem
	if err := ic.DB.First(&item, id).Error; err != nil {
		utils.RespondError(c, utils.ErrNotFound("inventory item", id))
		return
	}

	newQuantity := item.CurrentQuantity + *req.Delta
	if newQuantity < 0 {
		utils.RespondError(c, utils.ErrValidation(
			fmt.Sprintf("adjustment would drive quantity negative (%.2f)", newQuantity)))
		return
	}

	before := item
	res := ic.DB.Model(&models.InventoryItem{}).
		Where("id = ? AND current_quantity = ?", id, item.CurrentQuantity).
		Update("current_quantity", newQuantity)
	if res.Error != nil {
		utils.RespondError(c, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		utils.RespondError(c, utils.ErrConflict("inventory quantity changed concurrently, retry"))
		return
	}
	item.CurrentQuantity = newQuantity

	actorID, role := middlewares.ActorFromContext(c)
	ic.Audit.RecordMutation(actorID, string(role), models.SourceManual, models.AuditUpdate,
		"inventory_item", item.ID, before, item, req.Reason)

	utils.RespondJSON(c, http.StatusOK, "Inventory adjusted", item)
}

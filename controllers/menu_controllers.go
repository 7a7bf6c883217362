package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/opskitchen/resto-ops/middlewares"
	"github.com/opskitchen/resto-ops/models"
	"github.com/opskitchen/resto-ops/rbac"
	"github.com/opskitchen/resto-ops/utils"
)

type MenuController struct {
	DB *gorm.DB
}

func NewMenuController(db *gorm.DB) *MenuController {
	return &MenuController{DB: db}
}

func (mc *MenuController) CreateMenuItem(c *gin.Context) {
	var req struct {
		Name        string  `json:"name" binding:"required"`
		Category    string  `json:"category"`
		Price       float64 `json:"price" binding:"required,gt=0"`
		Description string  `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidation(c, err)
		return
	}

	item := models.MenuItem{
		Name:        req.Name,
		Category:    req.Category,
		Price:       req.Price,
		Description: req.Description,
		Status:      models.MenuAvailable,
	}
	if err := mc.DB.Create(&item).Error; err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Menu item created", item)
}

// GetAllMenuItems lists the public catalog. Ingredient detail never rides
// along here: the route is unauthenticated and cached by URI, so hydrated
// bodies would leak to anyone. Staff read ingredients per item through the
// authenticated detail endpoint.
func (mc *MenuController) GetAllMenuItems(c *gin.Context) {
	var items []models.MenuItem
	if err := mc.DB.Order("name").Find(&items).Error; err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of menu items", items)
}

func (mc *MenuController) GetMenuItemByID(c *gin.Context) {
	id, err := parseID(c, "menu_id")
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	_, role := middlewares.ActorFromContext(c)
	tx := mc.DB
	if rbac.CanAccessField(role, "menu", "ingredients") {
		tx = tx.Preload("Ingredients.InventoryItem")
	}

	var item models.MenuItem
	if err := tx.First(&item, id).Error; err != nil {
		utils.RespondError(c, utils.ErrNotFound("menu item", id))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu item detail", item)
}

// AddIngredient attaches an inventory requirement to a menu item.
func (mc *MenuController) AddIngredient(c *gin.Context) {
	id, err := parseID(c, "menu_id")
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	var req struct {
		InventoryItemID  uint    `json:"inventory_item_id" binding:"required"`
		QuantityRequired float64 `json:"quantity_required" binding:"required,gt=0"`
		IsOptional       bool    `json:"is_optional"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidation(c, err)
		return
	}

	var item models.MenuItem
	if err := mc.DB.First(&item, id).Error; err != nil {
		utils.RespondError(c, utils.ErrNotFound("menu item", id))
		return
	}
	var inv models.InventoryItem
	if err := mc.DB.First(&inv, req.InventoryItemID).Error; err != nil {
		utils.RespondError(c, utils.ErrNotFound("inventory item", req.InventoryItemID))
		return
	}

	ingredient := models.MenuItemIngredient{
		MenuItemID:       item.ID,
		InventoryItemID:  inv.ID,
		QuantityRequired: req.QuantityRequired,
		IsOptional:       req.IsOptional,
	}
	if err := mc.DB.Create(&ingredient).Error; err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Ingredient added", ingredient)
}

package models

import "time"

// Menu item availability status. Mutated only through the 86 engine's
// confirm/resolve path.
const (
	MenuAvailable   = "AVAILABLE"
	MenuEightySixed = "EIGHTY_SIXED"
)

type MenuItem struct {
	ID          uint                 `gorm:"primaryKey" json:"id"`
	Name        string               `gorm:"type:varchar(255);not null" json:"name"`
	Category    string               `gorm:"type:varchar(100)" json:"category"`
	Price       float64              `gorm:"type:decimal(10,2);not null" json:"price"`
	Status      string               `gorm:"type:varchar(20);not null;default:'AVAILABLE'" json:"status"`
	Description string               `gorm:"type:text" json:"description"`
	Ingredients []MenuItemIngredient `gorm:"foreignKey:MenuItemID" json:"ingredients,omitempty"`
	CreatedAt   time.Time            `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time            `gorm:"not null" json:"updated_at"`
}

// MenuItemIngredient links a menu item to an inventory item with the
// quantity one portion requires. Optional ingredients never trigger an 86.
type MenuItemIngredient struct {
	ID               uint          `gorm:"primaryKey" json:"id"`
	MenuItemID       uint          `gorm:"not null;index" json:"menu_item_id"`
	InventoryItemID  uint          `gorm:"not null;index" json:"inventory_item_id"`
	InventoryItem    InventoryItem `gorm:"foreignKey:InventoryItemID" json:"inventory_item"`
	QuantityRequired float64       `gorm:"not null" json:"quantity_required"`
	IsOptional       bool          `gorm:"not null;default:false" json:"is_optional"`
	CreatedAt        time.Time     `gorm:"not null" json:"created_at"`
}

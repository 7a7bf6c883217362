package models

import "time"

type InventoryItem struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Name            string    `gorm:"type:varchar(255);not null" json:"name"`
	Unit            string    `gorm:"type:varchar(50);not null" json:"unit"`
	CurrentQuantity float64   `gorm:"not null;default:0" json:"current_quantity"`
	ParLevel        float64   `gorm:"not null;default:0" json:"par_level"`
	CreatedAt       time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time `gorm:"not null" json:"updated_at"`
}

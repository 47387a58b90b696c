package models

import (
	"time"

	"gorm.io/gorm"
)

// Resource is a shared catalog item with a countable stock.
type Resource struct {
	ID                uint           `gorm:"primaryKey" json:"id"`
	Name              string         `gorm:"size:200;not null" json:"name"`
	Description       string         `gorm:"type:text" json:"description"`
	Category          string         `gorm:"size:100;not null;index" json:"category"`
	QuantityAvailable int            `gorm:"not null;default:0;check:chk_resources_quantity_available,quantity_available >= 0" json:"quantity_available"`
	CreatedByUserID   uint           `gorm:"index" json:"created_by_user_id"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`
}

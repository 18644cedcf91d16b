package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/tierworks/sellertiers/internal/shared/constants"
)

// SubscriptionModel is keyed by owner so a seller can never hold two rows.
type SubscriptionModel struct {
	OwnerID     string         `gorm:"primaryKey;size:64"`
	PackageName string         `gorm:"size:64;not null;default:''"`
	Status      string         `gorm:"size:20;not null;index"`
	StartDate   time.Time      `gorm:"not null"`
	EndDate     time.Time      `gorm:"not null;index"`
	Features    datatypes.JSON `gorm:"not null"`
	Revision    int            `gorm:"not null;default:1"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (SubscriptionModel) TableName() string {
	return constants.TableSellerSubscriptions
}

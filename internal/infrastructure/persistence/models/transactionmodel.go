package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/tierworks/sellertiers/internal/shared/constants"
)

type TransactionModel struct {
	ID                  string         `gorm:"primaryKey;size:36"`
	OwnerID             string         `gorm:"size:64;not null;index:idx_tier_tx_owner_created,priority:1"`
	Kind                string         `gorm:"size:20;not null"`
	PackageName         string         `gorm:"size:64;not null"`
	Amount              int64          `gorm:"not null"`
	Currency            string         `gorm:"size:3;not null"`
	Status              string         `gorm:"size:20;not null;index"`
	ProcessorOrderRef   *string        `gorm:"size:128;uniqueIndex"`
	ProcessorPaymentRef string         `gorm:"size:128;not null;default:''"`
	Signature           string         `gorm:"size:128;not null;default:''"`
	Receipt             string         `gorm:"size:128;not null;default:''"`
	CatalogVersion      string         `gorm:"size:32;not null;default:''"`
	Features            datatypes.JSON `gorm:"not null"`
	FailureReason       string         `gorm:"size:255;not null;default:''"`
	RefundOf            string         `gorm:"size:36;not null;default:''"`
	CreatedAt           time.Time      `gorm:"index:idx_tier_tx_owner_created,priority:2"`
	UpdatedAt           time.Time
}

func (TransactionModel) TableName() string {
	return constants.TableTransactions
}

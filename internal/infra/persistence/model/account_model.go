// Package model holds the GORM persistence models mirroring the database schema.
package model

import (
	"time"
)

// AccountModel mirrors the 'accounts' table. The email column carries the
// unique constraint that backs one-account-per-email; the three token columns
// each hold at most the newest value of their secret class.
type AccountModel struct {
	ID           int64  `gorm:"primaryKey;autoIncrement"`
	Name         string `gorm:"type:varchar(100);not null"`
	Email        string `gorm:"type:varchar(255);unique;not null"`
	PasswordHash string `gorm:"type:varchar(255);not null"`

	EmailVerified      bool       `gorm:"not null;default:false"`
	VerificationCode   *string    `gorm:"type:varchar(6)"`
	VerificationExpiry *time.Time

	ResetToken  *string    `gorm:"type:varchar(64);index"`
	ResetExpiry *time.Time

	RefreshToken  *string    `gorm:"type:varchar(64);index"`
	RefreshExpiry *time.Time

	FailedLoginCount int `gorm:"not null;default:0"`
	LockoutUntil     *time.Time
	LastLoginAt      *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName explicitly sets the table name for GORM.
func (AccountModel) TableName() string {
	return "accounts"
}

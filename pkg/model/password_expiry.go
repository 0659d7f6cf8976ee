package model

import "fmt"

// PasswordExpiry holds the password expiration period for a single user.
// Zero days is stored as-is; callers decide what it means.
type PasswordExpiry struct {
	UserID     int64 `gorm:"column:user_id;primaryKey;autoIncrement:false"`
	ExpiryDays int   `gorm:"column:expiry_days;not null;default:0"`
}

func (PasswordExpiry) TableName() string {
	return "password_expiry"
}

func (p PasswordExpiry) String() string {
	return fmt.Sprintf("<%d>: %d", p.UserID, p.ExpiryDays)
}

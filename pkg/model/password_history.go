package model

import (
	"fmt"
	"time"
)

// PasswordHistory is a single previous password of a user. Password holds
// a value the caller already encrypted; it is stored as-is.
type PasswordHistory struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	UserID    int64     `gorm:"column:user_id;not null"`
	Password  string    `gorm:"column:password;size:255;not null"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (PasswordHistory) TableName() string {
	return "password_history"
}

func (p PasswordHistory) String() string {
	return fmt.Sprintf("<%d>: %s", p.UserID, p.CreatedAt.Format(time.RFC3339))
}

package model

import "time"

// User is the row that history and expiry records hang off. The password
// manager only reads it; the host application owns its lifecycle.
type User struct {
	ID        int64     `gorm:"column:id;primaryKey"`
	Login     string    `gorm:"column:login"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (User) TableName() string {
	return "users"
}

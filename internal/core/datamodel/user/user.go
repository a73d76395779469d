package user

import "time"

type User struct {
	ID           string    `gorm:"primaryKey"`
	Email        string    `gorm:"column:email;uniqueIndex;not null"`
	PasswordHash string    `gorm:"column:password_hash;not null"`
	Role         string    `gorm:"column:role;not null;default:collector"`
	CreatedAt    time.Time `gorm:"column:created_at;default:now()"`
}

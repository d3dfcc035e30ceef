package models

import "time"

// User is a registered account. Seller and buyer are capabilities on the same
// record, never separate types.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"size:80;not null" json:"username"`
	Email        string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	IsSeller     bool      `gorm:"not null;default:false" json:"is_seller"`
	CreatedAt    time.Time `json:"created_at"`
}

// Capabilities is the set of marketplace actions a user may take.
type Capabilities struct {
	CanSell bool
	CanBuy  bool
}

// Capabilities derives the capability set from the role flag. Every account can buy.
func (u *User) Capabilities() Capabilities {
	return Capabilities{CanSell: u.IsSeller, CanBuy: true}
}

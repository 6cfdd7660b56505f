package model

import "time"

// MailToken is a single-use login link secret. Multiple outstanding
// tokens per email are allowed, the secret itself is globally unique.
type MailToken struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	Email     string    `gorm:"index;not null"`
	Secret    string    `gorm:"uniqueIndex;not null"`
	ExpiresAt time.Time `gorm:"not null"`
	CreatedAt time.Time
}

// OtpCode holds the single live SMS code for a phone number. Issuing
// a new code for the same phone replaces the row, so the previous
// code stops working immediately.
type OtpCode struct {
	Phone     string    `gorm:"primaryKey"`
	Code      string    `gorm:"not null"`
	ExpiresAt time.Time `gorm:"not null"`
	CreatedAt time.Time
}

// Package model defines database models
package model

// User is created lazily on the first successful token or code
// redemption. Either Email or Phone is set depending on which login
// flow created it, never neither.
type User struct {
	ID    string  `gorm:"primaryKey" json:"id"`
	Email *string `gorm:"uniqueIndex" json:"email,omitempty"`
	Phone *string `gorm:"uniqueIndex" json:"phone,omitempty"`

	CreatedAt int64 `gorm:"not null" json:"created_at"`

	Files []File `gorm:"foreignKey:UserID" json:"-"`
}

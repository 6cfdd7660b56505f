// Package service holds the business logic sitting between the HTTP
// handlers and the database/blob layers.
package service

import (
	"errors"
	"fmt"
	"time"

	"bitwise74/zeropass/model"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const idCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// Contact designates which user column a verified contact maps to.
type Contact struct {
	Email string
	Phone string
}

// Identity maps verified contacts to stable user records.
type Identity struct {
	DB *gorm.DB
}

func NewIdentity(db *gorm.DB) *Identity {
	return &Identity{DB: db}
}

// Resolve finds the user owning the given contact, creating one on
// first sight. Concurrent resolutions of a brand new contact race on
// the unique email/phone index, the loser re-reads instead of
// failing, so exactly one row ever exists per contact.
func (i *Identity) Resolve(contact Contact) (*model.User, error) {
	field, value := "email", contact.Email
	if value == "" {
		field, value = "phone", contact.Phone
	}

	if value == "" {
		return nil, errors.New("no contact provided")
	}

	var user model.User

	err := i.DB.Where(field+" = ?", value).First(&user).Error
	if err == nil {
		return &user, nil
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up user, %w", err)
	}

	id, err := gonanoid.Generate(idCharset, 16)
	if err != nil {
		return nil, fmt.Errorf("failed to generate user ID, %w", err)
	}

	user = model.User{
		ID:        id,
		CreatedAt: time.Now().Unix(),
	}

	if field == "email" {
		user.Email = &value
	} else {
		user.Phone = &value
	}

	if err := i.DB.Create(&user).Error; err != nil {
		// Unique index conflict means another request created the row
		// first. Re-read and use theirs
		var existing model.User

		if rerr := i.DB.Where(field+" = ?", value).First(&existing).Error; rerr == nil {
			return &existing, nil
		}

		return nil, fmt.Errorf("failed to create user, %w", err)
	}

	zap.L().Info("Created user", zap.String("userID", user.ID))
	return &user, nil
}

// Exists reports whether a user row is present. Consulted on every
// protected call so tokens for deleted accounts stop working.
func (i *Identity) Exists(userID string) (bool, error) {
	var count int64

	err := i.DB.
		Model(model.User{}).
		Where("id = ?", userID).
		Count(&count).
		Error
	if err != nil {
		return false, fmt.Errorf("failed to check if user exists, %w", err)
	}

	return count > 0, nil
}

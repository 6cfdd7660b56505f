package service

import (
	"errors"
	"fmt"

	"bitwise74/zeropass/model"

	"gorm.io/gorm"
)

// ErrNoSpace is returned when an upload would push a user past their
// storage cap. Nothing has been written when it fires.
var ErrNoSpace = errors.New("not enough space")

// Quota sums a user's stored bytes and admits or denies new uploads
// against a fixed cap.
type Quota struct {
	DB *gorm.DB
	// Max is the cap in bytes, fixed for the process lifetime
	Max int64
}

func NewQuota(db *gorm.DB, max int64) *Quota {
	return &Quota{DB: db, Max: max}
}

// Usage recomputes the byte total from the files table on every call.
// File counts per user are small enough that correctness beats
// caching here.
func (q *Quota) Usage(userID string) (int64, error) {
	var used int64

	err := q.DB.
		Model(model.File{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(size), 0)").
		Scan(&used).
		Error
	if err != nil {
		return 0, fmt.Errorf("failed to sum used storage, %w", err)
	}

	return used, nil
}

// Admit checks whether incoming bytes still fit under the cap. The
// check and the later write are not atomic, two concurrent uploads
// from the same user can both pass and together overshoot. Accepted
// trade-off, enforcement is best effort.
func (q *Quota) Admit(userID string, incoming int64) error {
	used, err := q.Usage(userID)
	if err != nil {
		return err
	}

	if used+incoming > q.Max {
		return ErrNoSpace
	}

	return nil
}

package model

// File describes one stored object. Rows are never mutated after
// creation.
type File struct {
	ID     uint   `gorm:"primaryKey;autoIncrement;index" json:"id"`
	UserID string `gorm:"index;not null" json:"-"`

	// Original file name as declared by the client. Untrusted, only
	// ever echoed back, never used as a storage key
	Name string `json:"name"`

	// Since different users can upload files with the same name the
	// blob lives under a generated key instead
	Locator string `gorm:"uniqueIndex" json:"locator"`

	Size      int64 `gorm:"not null" json:"size"`
	CreatedAt int64 `gorm:"not null" json:"created_at"`
}

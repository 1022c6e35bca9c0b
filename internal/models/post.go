package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"gorm.io/gorm"
)

// Post represents a blog post. The author reference is set at creation time
// and never changes afterwards.
type Post struct {
	ID         string `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Title      string `json:"title" gorm:"type:varchar(255)" validate:"required,max=255"`
	Content    string `json:"content" gorm:"type:text" validate:"required"`
	CoverImage string `json:"coverImage,omitempty" gorm:"type:varchar(512)"`
	Tags       Tags   `json:"tags" gorm:"type:text"`
	AuthorID   string `json:"-" gorm:"index;type:varchar(36)"`
	Author     *User  `json:"-" gorm:"foreignKey:AuthorID"`
	Published  bool   `json:"published"`
	gorm.Model        // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}

// Tags is an ordered list of tag strings persisted as a single JSON text
// column so the same schema works on both postgres and sqlite.
type Tags []string

// Value implements driver.Valuer.
func (t Tags) Value() (driver.Value, error) {
	if t == nil {
		t = Tags{}
	}
	b, err := json.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tags: %w", err)
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (t *Tags) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*t = Tags{}
		return nil
	case []byte:
		return json.Unmarshal(v, t)
	case string:
		return json.Unmarshal([]byte(v), t)
	default:
		return fmt.Errorf("cannot scan tags from %T", value)
	}
}

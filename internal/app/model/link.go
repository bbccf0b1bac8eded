package model

import "time"

// ProfileLink is a link an owner publishes on their profile. Platform is a
// free-form display string; the catalog is consulted for icons only and
// membership is never enforced. Clicks only ever grows while the record lives.
type ProfileLink struct {
	ID          string    `json:"id" gorm:"primaryKey;size:36"`
	UserID      string    `json:"user_id" gorm:"index;size:36;not null"`
	Platform    string    `json:"platform" gorm:"size:64;not null"`
	URL         string    `json:"url" gorm:"type:text;not null"`
	Title       string    `json:"title" gorm:"size:255;not null"`
	Description string    `json:"description,omitempty" gorm:"size:500"`
	Clicks      int64     `json:"clicks" gorm:"not null;default:0"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

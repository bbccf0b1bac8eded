package model

import "time"

// Theme values accepted for the user preference.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// User is the account record. Username and email are unique across all users
// (case-insensitively, enforced in the identity service before insert).
type User struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	Username  string    `json:"username" gorm:"uniqueIndex;size:64;not null"`
	Email     string    `json:"email" gorm:"uniqueIndex;size:255;not null"`
	Name      string    `json:"name" gorm:"size:128;not null"`
	Theme     string    `json:"theme" gorm:"size:16;not null;default:light"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// Credential holds the login secret, stored apart from the User record and
// keyed 1:1 by user id. The password is kept as plain text on purpose: this
// mirrors the product's simulated auth layer and real hashing is out of scope.
type Credential struct {
	UserID   string `gorm:"primaryKey;size:36"`
	Password string `gorm:"size:255;not null"`
}

// SessionKey is the fixed primary key of the single persisted session row.
const SessionKey = "current"

// Session is the persisted "current session" pointer that survives restarts.
// Logout deletes the row; there is no token blacklist.
type Session struct {
	Key      string    `gorm:"primaryKey;size:16"`
	Token    string    `gorm:"type:text;not null"`
	UserID   string    `gorm:"size:36;not null"`
	IssuedAt time.Time `gorm:"not null"`
}

package gorm

import "time"

// StoredSession holds the last signed-in session of a client profile.
type StoredSession struct {
	Slot         string    `gorm:"column:slot;primaryKey;size:64"`
	UserID       string    `gorm:"column:user_id;not null"`
	Email        string    `gorm:"column:email"`
	AccessToken  string    `gorm:"column:access_token;not null"`
	RefreshToken string    `gorm:"column:refresh_token"`
	TokenType    string    `gorm:"column:token_type"`
	ExpiresAt    time.Time `gorm:"column:expires_at"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (StoredSession) TableName() string {
	return "client_sessions"
}

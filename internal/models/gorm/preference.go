package gorm

import "time"

// Preference is a key/value setting that survives restarts.
type Preference struct {
	Key       string    `gorm:"column:key;primaryKey;size:191"`
	Value     string    `gorm:"column:value;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (Preference) TableName() string {
	return "client_preferences"
}

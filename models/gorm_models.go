// models/gorm_models.go
package models

import (
	"gorm.io/gorm"
)

// GormUser mirrors the users table.
type GormUser struct {
	gorm.Model
	TelegramID            int64 `gorm:"uniqueIndex;not null"`
	Banned                bool  `gorm:"not null;default:false"`
	AvailableForBroadcast bool  `gorm:"not null;default:true"`
}

func (GormUser) TableName() string { return "users" }

// GormGame mirrors the games table. GameID is the opaque public
// identifier used by the web app; ID stays internal.
type GormGame struct {
	gorm.Model
	GameID    string `gorm:"size:128;index;not null"`
	RoomID    int64  `gorm:"index;not null"`
	MessageID int64  `gorm:"not null;default:0"`
	OwnerID   int64  `gorm:"not null"`
	OwnerName string `gorm:"size:128;not null"`
	Word      string `gorm:"size:128;not null"`
	Finished  bool   `gorm:"not null;default:false"`
}

func (GormGame) TableName() string { return "games" }

// persistence/gorm_postgresql.go
package persistence

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/wfunc/drawbot/models"
)

// GormPostgreSQL is the primary Store implementation.
type GormPostgreSQL struct {
	db *gorm.DB
}

func NewGormPostgreSQL(host string, port int, user, password, dbname string) (*GormPostgreSQL, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: time.Second,
			LogLevel:      logger.Silent,
			Colorful:      false,
		},
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&models.GormUser{}, &models.GormGame{}); err != nil {
		return nil, err
	}

	return &GormPostgreSQL{db: db}, nil
}

func (p *GormPostgreSQL) GetOrCreateUser(telegramID int64) (*models.User, bool, error) {
	var user models.GormUser
	err := p.db.Where("telegram_id = ?", telegramID).First(&user).Error
	if err == nil {
		return userFromModel(&user), false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	user = models.GormUser{TelegramID: telegramID, AvailableForBroadcast: true}
	if err := p.db.Create(&user).Error; err != nil {
		return nil, false, err
	}
	return userFromModel(&user), true, nil
}

func (p *GormPostgreSQL) CreateGame(gameID string, roomID, ownerID int64, ownerName, word string) (*models.Game, error) {
	game := models.GormGame{
		GameID:    gameID,
		RoomID:    roomID,
		OwnerID:   ownerID,
		OwnerName: ownerName,
		Word:      word,
	}
	if err := p.db.Create(&game).Error; err != nil {
		return nil, fmt.Errorf("creating game: %w", err)
	}
	return gameFromModel(&game), nil
}

func (p *GormPostgreSQL) GetGame(gameID string) (*models.Game, error) {
	var game models.GormGame
	err := p.db.Where("game_id = ? AND finished = false", gameID).First(&game).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return gameFromModel(&game), nil
}

func (p *GormPostgreSQL) GetRoomGame(roomID int64) (*models.Game, error) {
	var game models.GormGame
	err := p.db.Where("room_id = ? AND finished = false", roomID).
		Order("id DESC").First(&game).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return gameFromModel(&game), nil
}

func (p *GormPostgreSQL) SetGameMessage(id int64, messageID int64) error {
	return p.db.Model(&models.GormGame{}).Where("id = ?", id).
		Update("message_id", messageID).Error
}

func (p *GormPostgreSQL) FinishGame(id int64) error {
	return p.db.Model(&models.GormGame{}).Where("id = ?", id).
		Update("finished", true).Error
}

func (p *GormPostgreSQL) DeleteRoomGames(roomID int64) error {
	return p.db.Where("room_id = ?", roomID).Delete(&models.GormGame{}).Error
}

func (p *GormPostgreSQL) CountActiveGames() (int64, error) {
	var count int64
	err := p.db.Model(&models.GormGame{}).Where("finished = false").Count(&count).Error
	return count, err
}

func (p *GormPostgreSQL) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func userFromModel(u *models.GormUser) *models.User {
	return &models.User{
		ID:                    int64(u.ID),
		TelegramID:            u.TelegramID,
		Banned:                u.Banned,
		AvailableForBroadcast: u.AvailableForBroadcast,
	}
}

func gameFromModel(g *models.GormGame) *models.Game {
	return &models.Game{
		ID:        int64(g.ID),
		GameID:    g.GameID,
		RoomID:    g.RoomID,
		MessageID: g.MessageID,
		OwnerID:   g.OwnerID,
		OwnerName: g.OwnerName,
		Word:      g.Word,
		CreatedAt: g.CreatedAt.Unix(),
		Finished:  g.Finished,
	}
}

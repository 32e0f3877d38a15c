// persistence/interface.go
package persistence

import (
	"fmt"

	"github.com/wfunc/drawbot/models"
)

// Store is the durable side of a game: users and game rows. In-memory
// derived state (pattern cache, live-view slot) belongs to the
// coordinator, not here.
type Store interface {
	GetOrCreateUser(telegramID int64) (*models.User, bool, error)

	CreateGame(gameID string, roomID, ownerID int64, ownerName, word string) (*models.Game, error)
	// GetGame returns the unfinished game with the given public id, or
	// ErrRecordNotFound.
	GetGame(gameID string) (*models.Game, error)
	// GetRoomGame returns the most recent unfinished game in the room,
	// or ErrRecordNotFound.
	GetRoomGame(roomID int64) (*models.Game, error)
	SetGameMessage(id int64, messageID int64) error
	// FinishGame marks the game finished. There is no way back.
	FinishGame(id int64) error
	DeleteRoomGames(roomID int64) error
	CountActiveGames() (int64, error)

	Close() error
}

var (
	ErrRecordNotFound = fmt.Errorf("record not found")
)

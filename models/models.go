// models/models.go
package models

// User is a chat participant known to the bot.
type User struct {
	ID                    int64 `json:"id"`
	TelegramID            int64 `json:"telegram_id"`
	Banned                bool  `json:"banned"`
	AvailableForBroadcast bool  `json:"available_for_broadcast"`
}

// Game is one drawing round: the owner draws Word, the room guesses it.
// MessageID points at the announcement message that is edited as the
// canvas changes. A room has at most one unfinished game at a time; the
// coordinator enforces that, not the store.
type Game struct {
	ID        int64  `json:"id"`
	GameID    string `json:"game_id"`
	RoomID    int64  `json:"room_id"`
	MessageID int64  `json:"message_id"`
	OwnerID   int64  `json:"owner_id"`
	OwnerName string `json:"owner_name"`
	Word      string `json:"word"`
	CreatedAt int64  `json:"created_at"`
	Finished  bool   `json:"finished"`
}

// WordStatus is returned to polling web clients asking for the secret word.
type WordStatus int

const (
	WordOk WordStatus = iota
	WordNotHost
	WordEnded
	WordNotAuth
)

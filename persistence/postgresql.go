// persistence/postgresql.go
package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/wfunc/drawbot/models"
)

// PostgreSQL is a plain database/sql Store implementation, kept for
// deployments that prefer hand-written SQL over the ORM.
type PostgreSQL struct {
	db *sql.DB
}

func NewPostgreSQL(host string, port int, user, password, dbname string) (*PostgreSQL, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := initTables(db); err != nil {
		return nil, err
	}

	return &PostgreSQL{db: db}, nil
}

func initTables(db *sql.DB) error {
	_, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS users (
            id SERIAL PRIMARY KEY,
            telegram_id BIGINT UNIQUE NOT NULL,
            created_at BIGINT NOT NULL,
            banned BOOLEAN NOT NULL DEFAULT FALSE,
            available_for_broadcast BOOLEAN NOT NULL DEFAULT TRUE
        )
    `)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
        CREATE TABLE IF NOT EXISTS games (
            id SERIAL PRIMARY KEY,
            game_id VARCHAR(128) NOT NULL,
            room_id BIGINT NOT NULL,
            message_id BIGINT NOT NULL DEFAULT 0,
            owner_id BIGINT NOT NULL,
            owner_name VARCHAR(128) NOT NULL,
            word VARCHAR(128) NOT NULL,
            created_at BIGINT NOT NULL,
            finished BOOLEAN NOT NULL DEFAULT FALSE
        )
    `)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
        CREATE INDEX IF NOT EXISTS idx_games_game_id ON games(game_id);
        CREATE INDEX IF NOT EXISTS idx_games_room_id ON games(room_id);
    `)

	return err
}

func (p *PostgreSQL) GetOrCreateUser(telegramID int64) (*models.User, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	user, err := p.scanUser(ctx, telegramID)
	if err == nil {
		return user, false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, err
	}

	_, err = p.db.ExecContext(ctx,
		`INSERT INTO users (telegram_id, created_at) VALUES ($1, $2)`,
		telegramID, time.Now().UTC().Unix())
	if err != nil {
		return nil, false, err
	}

	user, err = p.scanUser(ctx, telegramID)
	if err != nil {
		return nil, false, err
	}
	return user, true, nil
}

func (p *PostgreSQL) scanUser(ctx context.Context, telegramID int64) (*models.User, error) {
	var user models.User
	err := p.db.QueryRowContext(ctx, `
        SELECT id, telegram_id, banned, available_for_broadcast
        FROM users WHERE telegram_id = $1`,
		telegramID,
	).Scan(&user.ID, &user.TelegramID, &user.Banned, &user.AvailableForBroadcast)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (p *PostgreSQL) CreateGame(gameID string, roomID, ownerID int64, ownerName, word string) (*models.Game, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	createdAt := time.Now().UTC().Unix()
	var id int64
	err := p.db.QueryRowContext(ctx, `
        INSERT INTO games (game_id, room_id, owner_id, owner_name, word, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id`,
		gameID, roomID, ownerID, ownerName, word, createdAt,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("creating game: %w", err)
	}

	return &models.Game{
		ID:        id,
		GameID:    gameID,
		RoomID:    roomID,
		OwnerID:   ownerID,
		OwnerName: ownerName,
		Word:      word,
		CreatedAt: createdAt,
	}, nil
}

func (p *PostgreSQL) GetGame(gameID string) (*models.Game, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return p.scanGame(ctx, `
        SELECT id, game_id, room_id, message_id, owner_id, owner_name,
               word, created_at, finished
        FROM games
        WHERE game_id = $1 AND finished IS NOT TRUE
        LIMIT 1`, gameID)
}

func (p *PostgreSQL) GetRoomGame(roomID int64) (*models.Game, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return p.scanGame(ctx, `
        SELECT id, game_id, room_id, message_id, owner_id, owner_name,
               word, created_at, finished
        FROM games
        WHERE room_id = $1 AND finished IS NOT TRUE
        ORDER BY id DESC
        LIMIT 1`, roomID)
}

func (p *PostgreSQL) scanGame(ctx context.Context, query string, arg interface{}) (*models.Game, error) {
	var game models.Game
	err := p.db.QueryRowContext(ctx, query, arg).Scan(
		&game.ID, &game.GameID, &game.RoomID, &game.MessageID,
		&game.OwnerID, &game.OwnerName, &game.Word, &game.CreatedAt, &game.Finished)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &game, nil
}

func (p *PostgreSQL) SetGameMessage(id int64, messageID int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := p.db.ExecContext(ctx,
		`UPDATE games SET message_id = $1 WHERE id = $2`, messageID, id)
	return err
}

func (p *PostgreSQL) FinishGame(id int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := p.db.ExecContext(ctx,
		`UPDATE games SET finished = TRUE WHERE id = $1`, id)
	return err
}

func (p *PostgreSQL) DeleteRoomGames(roomID int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := p.db.ExecContext(ctx,
		`DELETE FROM games WHERE room_id = $1`, roomID)
	return err
}

func (p *PostgreSQL) CountActiveGames() (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var count int64
	err := p.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM games WHERE finished IS NOT TRUE`).Scan(&count)
	return count, err
}

func (p *PostgreSQL) Close() error {
	return p.db.Close()
}

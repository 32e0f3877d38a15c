// game/coordinator.go
package game

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/wfunc/drawbot/logger"
	"github.com/wfunc/drawbot/match"
	"github.com/wfunc/drawbot/models"
	"github.com/wfunc/drawbot/monitor"
	"github.com/wfunc/drawbot/persistence"
	"github.com/wfunc/drawbot/session"
)

var (
	ErrGameAlreadyRunning = errors.New("a game is already running in this room")
	ErrNotAllowed         = errors.New("caller may not cancel this game")
)

// Coordinator owns the lifecycle of games: one unfinished game per
// room, one live-view slot per game, guesses matched against the
// cached pattern. All in-memory derived state (cache entries, slots)
// is mutated only here; durable fields belong to the store.
type Coordinator struct {
	store     persistence.Store
	gateway   Gateway
	words     WordProvider
	verifier  Verifier
	cache     *match.Cache
	registry  *session.Registry
	monitor   *monitor.Monitor
	webAppURL string
	locale    string
}

func NewCoordinator(store persistence.Store, gateway Gateway, words WordProvider, verifier Verifier, webAppURL, locale string) *Coordinator {
	return &Coordinator{
		store:     store,
		gateway:   gateway,
		words:     words,
		verifier:  verifier,
		cache:     match.NewCache(),
		registry:  session.NewRegistry(),
		webAppURL: webAppURL,
		locale:    locale,
	}
}

// SetMonitor attaches metrics. Optional; the coordinator works without.
func (c *Coordinator) SetMonitor(m *monitor.Monitor) {
	c.monitor = m
}

// Registry exposes the live-view registry for transports that need to
// observe slot state (the CLI admin surface).
func (c *Coordinator) Registry() *session.Registry {
	return c.registry
}

// CreateGame starts a new game in a room unless one is already
// running. The duplicate check and the insert are not atomic; the
// store read of the most recent unfinished game makes a lost race
// reconcile to the newer row, so the window is benign.
func (c *Coordinator) CreateGame(roomID, ownerID int64, ownerName string) (*models.Game, error) {
	running, err := c.store.GetRoomGame(roomID)
	if err == nil {
		if nerr := c.gateway.Notify(running.RoomID, running.MessageID, msgAlreadyStarted); nerr != nil {
			logger.Log.Debugf("Already-started notice for room %d failed: %v", roomID, nerr)
		}
		return nil, ErrGameAlreadyRunning
	}
	if !errors.Is(err, persistence.ErrRecordNotFound) {
		return nil, err
	}

	word, err := c.words.NextWord(c.locale)
	if err != nil {
		return nil, err
	}

	gameID := generateGameID()
	if _, err := c.cache.GetOrCompile(gameID, word); err != nil {
		return nil, err
	}

	game, err := c.store.CreateGame(gameID, roomID, ownerID, ownerName, word)
	if err != nil {
		c.cache.Invalidate(gameID)
		return nil, err
	}

	// Until the owner pushes the first stroke, the announcement shows a
	// QR code opening the drawing app.
	image, err := qrcode.Encode(c.appURL(gameID), qrcode.Medium, 512)
	if err != nil {
		return nil, err
	}

	caption := fmt.Sprintf(captionDrawing, ownerID, ownerName)
	messageID, err := c.gateway.Announce(roomID, image, caption, buttonStartDraw, c.appURL(gameID))
	if err != nil {
		return nil, err
	}

	if err := c.store.SetGameMessage(game.ID, messageID); err != nil {
		return nil, err
	}
	game.MessageID = messageID

	logger.Log.Infof("Game %s created in room %d by %d", gameID, roomID, ownerID)
	c.refreshActiveGames()
	return game, nil
}

// UpdateState pushes a new canvas image into the announcement message.
// Fails closed on any identity or ownership defect. When the original
// announcement can no longer be edited a fresh one is posted and its
// id persisted only after that post succeeds.
func (c *Coordinator) UpdateState(initData, gameID string, image []byte) bool {
	userID, _, err := c.verifier.Verify(initData)
	if err != nil {
		return false
	}

	game, err := c.store.GetGame(gameID)
	if err != nil {
		return false
	}
	if game.OwnerID != userID {
		return false
	}

	caption := fmt.Sprintf(captionDrawing, game.OwnerID, game.OwnerName)
	actionURL := c.appURL(game.GameID)

	err = c.gateway.EditAnnouncement(game.RoomID, game.MessageID, image, caption, buttonStartDraw, actionURL)
	if err == nil {
		return true
	}

	messageID, err := c.gateway.Announce(game.RoomID, image, caption, buttonStartDraw, actionURL)
	if err != nil {
		logger.Log.Warnf("Re-announcing game %s failed: %v", gameID, err)
		return false
	}
	if err := c.store.SetGameMessage(game.ID, messageID); err != nil {
		logger.Log.Errorf("Persisting new announcement for game %s failed: %v", gameID, err)
		return false
	}
	return true
}

// CheckWord matches a chat message against the room's secret word. A
// correct guess from anyone but the owner ends the game and reveals
// the word to the room.
func (c *Coordinator) CheckWord(roomID, messageID, userID int64, text string) error {
	game, err := c.store.GetRoomGame(roomID)
	if errors.Is(err, persistence.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	if game.OwnerID == userID {
		return nil
	}

	pattern, err := c.cache.GetOrCompile(game.GameID, game.Word)
	if err != nil {
		return err
	}

	if c.monitor != nil {
		c.monitor.IncGuessesChecked()
	}

	if !pattern.MatchString(text) {
		return nil
	}

	err = c.terminate(game, session.ErrorEvent(session.ReasonEnded))

	if nerr := c.gateway.Notify(roomID, messageID, fmt.Sprintf(msgCorrectWord, game.Word)); nerr != nil {
		logger.Log.Debugf("Reveal notice for room %d failed: %v", roomID, nerr)
	}

	if c.monitor != nil {
		c.monitor.IncWordsGuessed()
	}
	logger.Log.Infof("Game %s in room %d guessed by %d", game.GameID, roomID, userID)
	return err
}

// CancelGame ends the running game without revealing anything. Only
// the owner or a room admin may cancel.
func (c *Coordinator) CancelGame(roomID, userID int64, isAdmin bool) error {
	game, err := c.store.GetRoomGame(roomID)
	if errors.Is(err, persistence.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	if game.OwnerID != userID && !isAdmin {
		return ErrNotAllowed
	}

	err = c.terminate(game, session.ErrorEvent(session.ReasonEnded))

	if nerr := c.gateway.Notify(roomID, 0, msgCancelled); nerr != nil {
		logger.Log.Debugf("Cancel notice for room %d failed: %v", roomID, nerr)
	}

	logger.Log.Infof("Game %s in room %d cancelled by %d", game.GameID, roomID, userID)
	return err
}

// DeleteGame tears down all games of a room silently. Used when the
// bot is removed from the chat and can no longer post there.
func (c *Coordinator) DeleteGame(roomID int64) error {
	game, err := c.store.GetRoomGame(roomID)
	if err == nil {
		c.cache.Invalidate(game.GameID)
		c.registry.Terminate(game.GameID, session.ErrorEvent(session.ReasonEnded))
	} else if !errors.Is(err, persistence.ErrRecordNotFound) {
		return err
	}

	if err := c.store.DeleteRoomGames(roomID); err != nil {
		return err
	}
	c.refreshActiveGames()
	return nil
}

// terminate runs the three-step game teardown. A player is waiting on
// the outcome, so the in-memory steps run regardless of whether the
// store update succeeded.
func (c *Coordinator) terminate(game *models.Game, final session.Event) error {
	err := c.store.FinishGame(game.ID)
	c.cache.Invalidate(game.GameID)
	c.registry.Terminate(game.GameID, final)
	c.refreshActiveGames()
	return err
}

// Subscription is a live-view hookup. Events carries the push stream;
// the identities captured at subscribe time let Unsubscribe release
// exactly this connection and no other.
type Subscription struct {
	GameID    string
	Events    chan session.Event
	sessionID string
	requestID string
}

// Subscribe attaches a web-app caller to the game's live view. Every
// failure mode comes back as a channel pre-loaded with the terminal
// event, so transports handle exactly one shape.
func (c *Coordinator) Subscribe(initData, gameID string) *Subscription {
	userID, sessionHash, err := c.verifier.Verify(initData)
	if err != nil {
		return deadSubscription(gameID, session.ReasonNotAuth)
	}

	game, err := c.store.GetGame(gameID)
	if err != nil {
		return deadSubscription(gameID, session.ReasonEnded)
	}
	if game.OwnerID != userID {
		return deadSubscription(gameID, session.ReasonNotHost)
	}

	slot, err := c.registry.Acquire(gameID, sessionHash)
	if err != nil {
		return deadSubscription(gameID, session.ReasonAlreadyConnected)
	}

	// A freshly connected viewer immediately learns what to draw.
	session.Deliver(slot.Channel, session.WordEvent(game.Word))

	return &Subscription{
		GameID:    gameID,
		Events:    slot.Channel,
		sessionID: slot.SessionID,
		requestID: slot.RequestID,
	}
}

// Unsubscribe releases the live-view slot held by this subscription,
// if it still holds it.
func (c *Coordinator) Unsubscribe(sub *Subscription) {
	if sub == nil || sub.requestID == "" {
		return
	}
	c.registry.Release(sub.GameID, sub.sessionID, sub.requestID)
}

// GetWord is the polling variant of Subscribe for clients without a
// push transport.
func (c *Coordinator) GetWord(initData, gameID string) (string, models.WordStatus) {
	userID, _, err := c.verifier.Verify(initData)
	if err != nil {
		return "", models.WordNotAuth
	}

	game, err := c.store.GetGame(gameID)
	if err != nil {
		return "", models.WordEnded
	}
	if game.OwnerID != userID {
		return "", models.WordNotHost
	}
	return game.Word, models.WordOk
}

// ActiveGames reports the number of unfinished games.
func (c *Coordinator) ActiveGames() (int64, error) {
	return c.store.CountActiveGames()
}

func (c *Coordinator) refreshActiveGames() {
	if c.monitor == nil {
		return
	}
	count, err := c.store.CountActiveGames()
	if err != nil {
		return
	}
	c.monitor.SetActiveGames(count)
}

func (c *Coordinator) appURL(gameID string) string {
	return fmt.Sprintf("%s?startapp=%s", c.webAppURL, gameID)
}

func deadSubscription(gameID string, reason session.Reason) *Subscription {
	ch := session.NewChannel()
	session.Deliver(ch, session.ErrorEvent(reason))
	return &Subscription{GameID: gameID, Events: ch}
}

func generateGameID() string {
	return "gameId__" + uuid.New().String()
}

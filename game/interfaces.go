// game/interfaces.go
package game

// Gateway sends and edits chat messages on behalf of the bot. Notify
// failures are treated as best-effort by every caller.
type Gateway interface {
	Announce(roomID int64, image []byte, caption, actionText, actionURL string) (int64, error)
	EditAnnouncement(roomID, messageID int64, image []byte, caption, actionText, actionURL string) error
	Notify(roomID, replyTo int64, text string) error
}

// Verifier authenticates an opaque web-app payload and yields the
// caller's user id plus a session hash stable across reconnects of the
// same authenticated session.
type Verifier interface {
	Verify(initData string) (userID int64, sessionHash string, err error)
}

// WordProvider picks the next secret word for a locale.
type WordProvider interface {
	NextWord(locale string) (string, error)
}

// game/messages.go
package game

// Chat strings. The original bot localized these; plain English is
// enough here.
const (
	msgAlreadyStarted = "The game has already started"
	msgCorrectWord    = "Correct! Word: <b>%s</b>.\nType /game to start new game"
	msgCancelled      = "The game is cancelled. Type /game to start new game"
	captionDrawing    = "<a href='tg://user?id=%d'>%s</a> draws for guessing"
	buttonStartDraw   = "Start drawing"
)

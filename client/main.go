// Command client is a terminal live-view client: it connects to a
// game's push stream and prints the events as they arrive. Useful for
// checking takeover and termination behaviour against a running server.
package main

import (
	"encoding/json"
	"flag"
	"log"
	"net/url"
	"os"
	"os/signal"
	"time"

	"github.com/gorilla/websocket"
)

type event struct {
	Type   string `json:"type"`
	Word   string `json:"word,omitempty"`
	Reason string `json:"reason,omitempty"`
}

func main() {
	host := flag.String("host", "localhost:8080", "game server address")
	gameID := flag.String("game", "", "public game id")
	auth := flag.String("auth", "", "web app init data")
	flag.Parse()

	if *gameID == "" || *auth == "" {
		log.Fatal("both -game and -auth are required")
	}

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	u := url.URL{
		Scheme:   "ws",
		Host:     *host,
		Path:     "/web/live",
		RawQuery: url.Values{"_auth": {*auth}, "gameId": {*gameID}}.Encode(),
	}
	log.Printf("Connecting to %s", u.String())

	c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("Dial failed: %v", err)
	}
	defer c.Close()

	done := make(chan struct{})

	go func() {
		defer close(done)
		for {
			_, message, err := c.ReadMessage()
			if err != nil {
				log.Println("Read error:", err)
				return
			}

			var ev event
			if err := json.Unmarshal(message, &ev); err != nil {
				log.Printf("Received invalid event: %s", message)
				continue
			}

			switch ev.Type {
			case "word":
				log.Printf("<- WORD: %s", ev.Word)
			case "error":
				log.Printf("<- ERROR: %s", ev.Reason)
				return
			case "disconnect":
				log.Println("<- DISCONNECT (another tab took over)")
				return
			default:
				log.Printf("<- UNKNOWN: %s", message)
			}
		}
	}()

	select {
	case <-done:
	case <-interrupt:
		log.Println("Interrupt received, closing connection.")
		err := c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		if err != nil {
			log.Println("Write close error:", err)
		}
		select {
		case <-done:
		case <-time.After(time.Second):
		}
	}
}

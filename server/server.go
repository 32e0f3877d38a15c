// server/server.go
package server

import (
	"io"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wfunc/drawbot/game"
	"github.com/wfunc/drawbot/logger"
	"github.com/wfunc/drawbot/models"
	"github.com/wfunc/drawbot/monitor"
	"github.com/wfunc/drawbot/network"
	"github.com/wfunc/drawbot/services"
	"github.com/wfunc/drawbot/session"
	"github.com/wfunc/drawbot/telegram"
)

const maxCanvasBytes = 4 << 20

type GameServer struct {
	addr           string
	coordinator    *game.Coordinator
	users          *services.UserService
	bot            *telegram.Bot
	webhookSecret  string
	apiSecretToken string
	throttle       *Throttle
	monitor        *monitor.Monitor
	upgrader       websocket.Upgrader
}

func NewGameServer(addr string, coordinator *game.Coordinator, users *services.UserService, bot *telegram.Bot, webhookSecret, apiSecretToken string, throttle *Throttle) *GameServer {
	return &GameServer{
		addr:           addr,
		coordinator:    coordinator,
		users:          users,
		bot:            bot,
		webhookSecret:  webhookSecret,
		apiSecretToken: apiSecretToken,
		throttle:       throttle,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // the web app runs on a separate origin
			},
		},
	}
}

// SetMonitor attaches metrics. Optional.
func (s *GameServer) SetMonitor(m *monitor.Monitor) {
	s.monitor = m
}

func (s *GameServer) Start() error {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /bot/"+s.webhookSecret, s.handleWebhook)
	mux.HandleFunc("POST /web/update", s.handleUpdate)
	mux.HandleFunc("GET /web/word", s.handleWord)
	mux.HandleFunc("GET /web/live", s.handleLive)

	logger.Log.Infof("Game server listening on %s", s.addr)
	return http.ListenAndServe(s.addr, mux)
}

// handleUpdate receives a freshly drawn canvas from the web app and
// reflects it into the chat announcement.
func (s *GameServer) handleUpdate(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	if err := r.ParseMultipartForm(maxCanvasBytes); err != nil {
		http.Error(w, "incorrect content type", http.StatusUnauthorized)
		return
	}

	auth := r.FormValue("_auth")
	gameID := r.FormValue("gameId")
	file, _, err := r.FormFile("image")
	if auth == "" || gameID == "" || err != nil {
		http.Error(w, "some keys are missing", http.StatusUnauthorized)
		return
	}
	defer file.Close()

	image, err := io.ReadAll(io.LimitReader(file, maxCanvasBytes))
	if err != nil {
		http.Error(w, "error", http.StatusUnauthorized)
		return
	}

	if !s.coordinator.UpdateState(auth, gameID, image) {
		http.Error(w, "error", http.StatusUnauthorized)
		return
	}

	if s.monitor != nil {
		s.monitor.ObserveCanvasUpdate(time.Since(started))
	}
	w.Write([]byte("OK"))
}

// handleWord is the polling fallback for clients without a live
// websocket.
func (s *GameServer) handleWord(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	auth := query.Get("_auth")
	gameID := query.Get("gameId")
	if auth == "" || gameID == "" {
		http.Error(w, "some keys are missing", http.StatusUnauthorized)
		return
	}

	word, status := s.coordinator.GetWord(auth, gameID)
	switch status {
	case models.WordOk:
		w.Write([]byte(word))
	case models.WordNotAuth:
		http.Error(w, "not_auth", http.StatusUnauthorized)
	case models.WordNotHost:
		http.Error(w, "not_host", http.StatusUnauthorized)
	case models.WordEnded:
		http.Error(w, "ended", http.StatusUnauthorized)
	default:
		http.Error(w, "error", http.StatusUnauthorized)
	}
}

// handleLive upgrades to a websocket and pumps live-view events until
// the stream terminates or the peer goes away. The slot is released on
// every exit path.
func (s *GameServer) handleLive(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	auth := query.Get("_auth")
	gameID := query.Get("gameId")

	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Infof("Failed to upgrade live view: %v", err)
		return
	}

	conn := network.NewWSConnection(ws)
	defer conn.Close()

	sub := s.coordinator.Subscribe(auth, gameID)
	defer s.coordinator.Unsubscribe(sub)

	if s.monitor != nil {
		s.monitor.IncLiveViewers()
		defer s.monitor.DecLiveViewers()
	}

	logger.Log.Infof("Live view for game %s from %s", gameID, conn.RemoteAddr())

	ticker := time.NewTicker(network.PingPeriod)
	defer ticker.Stop()

	for {
		select {
		case ev := <-sub.Events:
			if err := conn.SendEvent(ev); err != nil {
				return
			}
			// Error and Disconnect are terminal for this stream.
			if ev.Type != session.EventWord {
				return
			}
		case <-conn.WaitClosed():
			return
		case <-ticker.C:
			if err := conn.Ping(); err != nil {
				return
			}
		}
	}
}

package rpc

import (
	"net"
	"net/rpc"

	"github.com/wfunc/drawbot/game"
	"github.com/wfunc/drawbot/logger"
)

// Server manages the RPC listener for the ops surface.
type Server struct {
	listener net.Listener
	address  string
}

func NewServer(addr string) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Server{
		listener: listener,
		address:  addr,
	}, nil
}

// Start begins listening for RPC requests.
func (s *Server) Start() {
	logger.Log.Infof("RPC server listening on %s", s.address)
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if _, ok := err.(*net.OpError); ok {
				logger.Log.Info("RPC server listener closed.")
				return
			}
			logger.Log.Errorf("RPC server accept error: %v", err)
			continue
		}
		go rpc.ServeConn(conn)
	}
}

// Stop closes the RPC listener.
func (s *Server) Stop() {
	if s.listener != nil {
		logger.Log.Info("Stopping RPC server.")
		s.listener.Close()
	}
}

// AdminService exposes operator commands over net/rpc.
type AdminService struct {
	coordinator *game.Coordinator
}

func NewAdminService(c *game.Coordinator) *AdminService {
	return &AdminService{coordinator: c}
}

type StatsArgs struct{}

type StatsReply struct {
	ActiveGames int64
	LiveViewers int
}

// Stats reports the running game and viewer counts.
func (a *AdminService) Stats(args *StatsArgs, reply *StatsReply) error {
	count, err := a.coordinator.ActiveGames()
	if err != nil {
		return err
	}
	reply.ActiveGames = count
	reply.LiveViewers = a.coordinator.Registry().Count()
	return nil
}

type CancelArgs struct {
	RoomID int64
}

type CancelReply struct{}

// Cancel force-cancels the running game of a room.
func (a *AdminService) Cancel(args *CancelArgs, reply *CancelReply) error {
	return a.coordinator.CancelGame(args.RoomID, 0, true)
}

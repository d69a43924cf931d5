package services

import (
	"conquest/contract"
	"conquest/domain"
	"conquest/runtime"
)

// IGameService is the surface the transport layer programs against.
type IGameService interface {
	EnterRoom(conn contract.EventSink, user domain.User, roomID domain.RoomID, width, height int)
	Conquer(conn contract.EventSink, userID string, roomID domain.RoomID, cellID int, team string, cost int)
	Chat(conn contract.EventSink, userID string, roomID domain.RoomID, text string)
	Disconnect(conn contract.EventSink)
}

type GameService struct {
	orchestrator *runtime.Orchestrator
}

func NewGameService(o *runtime.Orchestrator) *GameService {
	return &GameService{orchestrator: o}
}

func (s *GameService) EnterRoom(conn contract.EventSink, user domain.User, roomID domain.RoomID, width, height int) {
	s.orchestrator.EnterRoom(conn, user, roomID, width, height)
}

func (s *GameService) Conquer(conn contract.EventSink, userID string, roomID domain.RoomID, cellID int, team string, cost int) {
	s.orchestrator.Conquer(conn, userID, roomID, cellID, team, cost)
}

func (s *GameService) Chat(conn contract.EventSink, userID string, roomID domain.RoomID, text string) {
	s.orchestrator.Chat(conn, userID, roomID, text)
}

func (s *GameService) Disconnect(conn contract.EventSink) {
	s.orchestrator.Disconnect(conn)
}

package runtime

import (
	"conquest/domain"
	"conquest/domain/event"
	"conquest/mocks"
	"log/slog"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"go.uber.org/mock/gomock"
)

func mockSink(ctrl *gomock.Controller, id string) *mocks.MockEventSink {
	sink := mocks.NewMockEventSink(ctrl)
	sink.EXPECT().ID().Return(id).AnyTimes()
	return sink
}

func TestNotifier_ToRoomExcept_SkipsTheSender(t *testing.T) {
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	sessions := NewSessionDirectory(log)
	rooms := NewRoomRegistry(log)
	notifier := NewNotifier(log, sessions, rooms, 100*time.Millisecond)

	rooms.GetOrCreate("r1", 2, 2)
	s1 := mockSink(ctrl, "c1")
	s2 := mockSink(ctrl, "c2")
	s3 := mockSink(ctrl, "c3")
	for i, sink := range []*mocks.MockEventSink{s1, s2, s3} {
		userID := []string{"u1", "u2", "u3"}[i]
		sessions.Register(sink, domain.User{ID: userID}, "r1")
		rooms.Enter("r1", userID)
	}

	// The sender's own sink must never hear the broadcast
	s1.EXPECT().Consume(gomock.Any(), gomock.Any()).Return(nil).Times(1)
	s3.EXPECT().Consume(gomock.Any(), gomock.Any()).Return(nil).Times(1)

	notifier.ToRoomExcept("r1", s2, event.ChatEvent{Room: "r1", User: "u2", Text: "hello"})
}

func TestNotifier_ToRoomExcept_SkipsMembersWithoutSession(t *testing.T) {
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	sessions := NewSessionDirectory(log)
	rooms := NewRoomRegistry(log)
	notifier := NewNotifier(log, sessions, rooms, 100*time.Millisecond)

	rooms.GetOrCreate("r1", 2, 2)
	s1 := mockSink(ctrl, "c1")
	sessions.Register(s1, domain.User{ID: "u1"}, "r1")
	rooms.Enter("r1", "u1")
	// u2 is a member whose session is already gone
	rooms.Enter("r1", "u2")

	s1.EXPECT().Consume(gomock.Any(), gomock.Any()).Return(nil).Times(1)

	notifier.ToRoomExcept("r1", nil, event.ChatEvent{Room: "r1", Text: "hi"})
}

func TestNotifier_ToAll_ReachesEveryConnectionOnce(t *testing.T) {
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	sessions := NewSessionDirectory(log)
	rooms := NewRoomRegistry(log)
	notifier := NewNotifier(log, sessions, rooms, 100*time.Millisecond)

	shared := mockSink(ctrl, "c1")
	other := mockSink(ctrl, "c2")
	// One connection serving the same user in two rooms is reached once
	sessions.Register(shared, domain.User{ID: "u1"}, "r1")
	sessions.Register(shared, domain.User{ID: "u1"}, "r2")
	sessions.Register(other, domain.User{ID: "u2"}, "r1")

	shared.EXPECT().Consume(gomock.Any(), gomock.Any()).Return(nil).Times(1)
	other.EXPECT().Consume(gomock.Any(), gomock.Any()).Return(nil).Times(1)

	notifier.ToAll(event.ChatEvent{Text: "server wide"})
}

func TestNotifier_ToOne(t *testing.T) {
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	sessions := NewSessionDirectory(log)
	rooms := NewRoomRegistry(log)
	notifier := NewNotifier(log, sessions, rooms, 100*time.Millisecond)

	sink := mockSink(ctrl, "c1")
	sink.EXPECT().Consume(gomock.Any(), gomock.Any()).Return(nil).Times(1)

	notifier.ToOne(sink, event.RoomExitUserEvent{Room: "r1", User: "u1"})
}

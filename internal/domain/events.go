package domain

import "time"

type GameEventKind string

const (
	GameEventCreated  GameEventKind = "created"
	GameEventAsked    GameEventKind = "asked"
	GameEventBusy     GameEventKind = "busy"
	GameEventAnswered GameEventKind = "answered"
	GameEventFailed   GameEventKind = "failed"
	GameEventGaveUp   GameEventKind = "gave_up"
	GameEventEnded    GameEventKind = "ended"
	GameEventDeleted  GameEventKind = "deleted"
	GameEventExpired  GameEventKind = "expired"
)

type GameEvent struct {
	Kind     GameEventKind
	Language Language
	At       time.Time
}

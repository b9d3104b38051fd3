package events

import "time"

type Actor struct {
	Type ActorType
	ID   string
}

// RegistryEvent es una entrada del historial de actividad de un animal.
// Append-only: se anula con Void (status voided), nunca se borra.
type RegistryEvent struct {
	ID       string
	AnimalID string

	Type EventType

	OccurredAt time.Time
	RecordedAt time.Time

	Title string
	Notes string

	Actor  Actor
	Source Source
	Status EventStatus
}

package transfers

import "time"

type Status string

const (
	StatusRequested Status = "requested"
	StatusAccepted  Status = "accepted"
	StatusDeclined  Status = "declined"
	StatusCancelled Status = "cancelled"
)

// Transfer es una solicitud de traspaso de titularidad de un animal.
// El registro queda como historial: nunca se borra, solo cambia de status.
type Transfer struct {
	ID string

	AnimalID string

	FromOwnerID string // titular actual
	ToOwnerID   string // titular propuesto

	Status Status
	Notes  string

	CreatedAt  time.Time
	UpdatedAt  time.Time
	ResolvedAt *time.Time
}

// IsOpen indica si la solicitud sigue pendiente de resolución.
func (t Transfer) IsOpen() bool {
	return t.Status == StatusRequested
}

package events

type EventType string

const (
	EventTypeRegistered           EventType = "REGISTERED"
	EventTypeProfileUpdated       EventType = "PROFILE_UPDATED"
	EventTypeRoleAssigned         EventType = "ROLE_ASSIGNED"
	EventTypeRoleRevoked          EventType = "ROLE_REVOKED"
	EventTypeInternalNumAssigned  EventType = "INTERNAL_NUMBER_ASSIGNED"
	EventTypeInternalNumEnded     EventType = "INTERNAL_NUMBER_ENDED"
	EventTypeStatusChanged        EventType = "STATUS_CHANGED"
	EventTypeOwnershipTransferred EventType = "OWNERSHIP_TRANSFERRED"
	EventTypeWeightRecorded       EventType = "WEIGHT_RECORDED"
	EventTypeNote                 EventType = "NOTE"
)

type ActorType string

const (
	ActorTypeStaffUser ActorType = "STAFF_USER"
	ActorTypeSystem    ActorType = "SYSTEM"
	ActorTypeImport    ActorType = "IMPORT"
)

type Source string

const (
	SourceManual Source = "manual"
	SourceImport Source = "import"
	SourceSystem Source = "system"
)

type EventStatus string

const (
	EventStatusActive EventStatus = "active"
	EventStatusVoided EventStatus = "voided"
)

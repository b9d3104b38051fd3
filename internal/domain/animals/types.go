package animals

// Species define las especies soportadas del registro.
// @Enum BOVINE, EQUINE, CAMEL, OVINE, CAPRINE, SWINE
type Species string

const (
	SpeciesBovine  Species = "BOVINE"
	SpeciesEquine  Species = "EQUINE"
	SpeciesCamel   Species = "CAMEL"
	SpeciesOvine   Species = "OVINE"
	SpeciesCaprine Species = "CAPRINE"
	SpeciesSwine   Species = "SWINE"
)

// Sex define el sexo del animal.
// @Enum MALE, FEMALE
type Sex string

const (
	SexMale   Sex = "MALE"
	SexFemale Sex = "FEMALE"
)

// Status define el estado del animal en el registro.
type Status string

const (
	StatusActive      Status = "ACTIVE"
	StatusInactive    Status = "INACTIVE"
	StatusDeceased    Status = "DECEASED"
	StatusSold        Status = "SOLD"
	StatusTransferred Status = "TRANSFERRED"
)

// KnownStatuses en orden estable (se usa para stats y validación).
func KnownStatuses() []Status {
	return []Status{StatusActive, StatusInactive, StatusDeceased, StatusSold, StatusTransferred}
}

// Role es un tag de capacidad: decide en qué workflows puede participar el animal.
// Un animal puede tener varios roles activos a la vez.
type Role string

const (
	RoleDonor     Role = "Donor"
	RoleRecipient Role = "Recipient"
	RoleSire      Role = "Sire"
	RoleLabSample Role = "LabSample"
	RoleReference Role = "Reference"
)

// KnownRoles en orden estable.
func KnownRoles() []Role {
	return []Role{RoleDonor, RoleRecipient, RoleSire, RoleLabSample, RoleReference}
}

// Purpose clasifica el uso principal del animal.
type Purpose string

const (
	PurposeBreeding Purpose = "Breeding"
	PurposeRacing   Purpose = "Racing"
	PurposeDairy    Purpose = "Dairy"
	PurposeMeat     Purpose = "Meat"
	PurposeShow     Purpose = "Show"
	PurposeResearch Purpose = "Research"
)

// CustomerCategory clasifica al cliente dueño del animal.
type CustomerCategory string

const (
	CustomerStandard CustomerCategory = "Standard"
	CustomerPremium  CustomerCategory = "Premium"
	CustomerVIP      CustomerCategory = "VIP"
	CustomerResearch CustomerCategory = "Research"
)

package adoptions

import "time"

// Status define el ciclo de vida de una solicitud de adopción.
// @Enum pending, under_review, interview_scheduled, approved, rejected, completed, withdrawn
type Status string

const (
	StatusPending            Status = "pending"
	StatusUnderReview        Status = "under_review"
	StatusInterviewScheduled Status = "interview_scheduled"
	StatusApproved           Status = "approved"
	StatusRejected           Status = "rejected"
	StatusCompleted          Status = "completed"
	StatusWithdrawn          Status = "withdrawn"
)

// HousingType define los tipos de vivienda aceptados en el formulario.
// @Enum house, apartment, condo, townhouse, mobile_home, other
type HousingType string

const (
	HousingHouse      HousingType = "house"
	HousingApartment  HousingType = "apartment"
	HousingCondo      HousingType = "condo"
	HousingTownhouse  HousingType = "townhouse"
	HousingMobileHome HousingType = "mobile_home"
	HousingOther      HousingType = "other"
)

// CommunicationType define los tipos de entrada del communication log.
// @Enum email_sent, phone_call, meeting_scheduled, meeting_completed, note_added
type CommunicationType string

const (
	CommEmailSent        CommunicationType = "email_sent"
	CommPhoneCall        CommunicationType = "phone_call"
	CommMeetingScheduled CommunicationType = "meeting_scheduled"
	CommMeetingCompleted CommunicationType = "meeting_completed"
	CommNoteAdded        CommunicationType = "note_added"
)

// Role y UserStatus describen al User del backend. El cliente solo los lee;
// nunca es fuente de verdad de usuarios.
type Role string

const (
	RoleUser       Role = "user"
	RoleVolunteer  Role = "volunteer"
	RoleFoster     Role = "foster"
	RoleStaff      Role = "staff"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

type UserStatus string

const (
	UserActive              UserStatus = "active"
	UserInactive            UserStatus = "inactive"
	UserSuspended           UserStatus = "suspended"
	UserPendingVerification UserStatus = "pending_verification"
)

// Address es la dirección del solicitante. Country se defaultea si falta.
type Address struct {
	Street  string
	City    string
	Region  string
	Zip     string
	Country string
}

const DefaultCountry = "US"

// AdoptionRequest es la solicitud tal como la entrega el backend.
// ID, Status inicial y timestamps los asigna el backend; el cliente
// nunca es dueño de este estado.
type AdoptionRequest struct {
	ID    string
	PetID string

	ApplicantName  string
	ApplicantEmail string
	ApplicantPhone string
	Address        Address

	HousingType HousingType
	HasYard     bool
	YardDetails string
	HasPets     bool
	CurrentPets string

	Reason               string
	PetExperience        string
	PreferredMeetingTime *time.Time

	Status           Status
	AdminNotes       string
	RejectionReason  string
	FollowUpRequired bool

	Communications []CommunicationLogEntry

	CreatedAt time.Time
	UpdatedAt time.Time
}

// CommunicationLogEntry es append-only: nunca se edita ni se borra.
type CommunicationLogEntry struct {
	Type    CommunicationType
	Message string
	At      time.Time
}

// CreateInput es el payload del formulario, tal cual lo tipeó el usuario
// (sin normalizar; eso lo hace el service después de validar).
type CreateInput struct {
	PetID          string
	ApplicantName  string
	ApplicantEmail string
	ApplicantPhone string
	Address        Address

	HousingType string
	HasYard     bool
	YardDetails string
	HasPets     bool
	CurrentPets string

	Reason               string
	PetExperience        string
	PreferredMeetingTime *time.Time
}

// CreatePayload es el payload ya normalizado que viaja al backend,
// con el timestamp de submit puesto por el cliente.
type CreatePayload struct {
	CreateInput
	SubmittedAt time.Time
}

// UpdateStatusInput es el PATCH de revisión del admin.
type UpdateStatusInput struct {
	Status           Status
	AdminNotes       string
	RejectionReason  string
	WithdrawalReason string
}

// ListOptions son los filtros del listado admin.
// Page/Limit en cero significan "usar default" (1 / 20).
type ListOptions struct {
	Page  int
	Limit int

	Status           Status
	PetID            string
	Search           string
	SortBy           string
	SortOrder        string
	Priority         string
	FollowUpRequired *bool
}

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxPage      = 1000
	MaxLimit     = 100
)

type Pagination struct {
	Page       int
	Limit      int
	Total      int
	TotalPages int
}

type Page struct {
	Data       []AdoptionRequest
	Pagination Pagination
}

// Stats son los agregados del dashboard para un período en días.
type Stats struct {
	PeriodDays int

	Total              int
	Pending            int
	UnderReview        int
	InterviewScheduled int
	Approved           int
	Rejected           int
	Completed          int
	Withdrawn          int

	ApprovalRate float64
}

package models

import "fmt"

type Role string

const (
	RoleSuperAdmin Role = "SUPER_ADMIN"
	RoleAdmin      Role = "ADMIN"
	RoleStaff      Role = "STAFF"
	RoleUnassigned Role = ""
)

// ParseRole maps a stored role string onto the closed role set.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleSuperAdmin, RoleAdmin, RoleStaff, RoleUnassigned:
		return Role(s), nil
	default:
		return RoleUnassigned, fmt.Errorf("unknown role %q", s)
	}
}

type ProfileStatus string

const (
	StatusPending  ProfileStatus = "PENDING"
	StatusActive   ProfileStatus = "ACTIVE"
	StatusInactive ProfileStatus = "INACTIVE"
)

type Identity struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	CreatedAt    int64  `json:"created_at"`
}

type Profile struct {
	ID        string        `json:"id"`
	Email     string        `json:"email"`
	FullName  string        `json:"full_name"`
	Role      Role          `json:"role"`
	IsActive  bool          `json:"is_active"`
	Status    ProfileStatus `json:"status"`
	CreatedAt int64         `json:"created_at"`
	UpdatedAt int64         `json:"updated_at"`
}

type Session struct {
	ID        string `json:"id"`
	ProfileID string `json:"profile_id"`
	ExpiresAt int64  `json:"expires_at"`
	RevokedAt *int64 `json:"revoked_at,omitempty"`
	CreatedAt int64  `json:"created_at"`
}

// Active reports whether the session can still authenticate requests at now.
func (s *Session) Active(now int64) bool {
	return s.RevokedAt == nil && s.ExpiresAt > now
}

type Setting struct {
	Key       string `json:"key"`
	Value     string `json:"value"`
	UpdatedAt int64  `json:"updated_at"`
}

type ContactMessage struct {
	ID        string `json:"id"`
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
	Email     string `json:"email"`
	Subject   string `json:"subject"`
	Message   string `json:"message"`
	Notified  bool   `json:"notified"`
	CreatedAt int64  `json:"created_at"`
}

// SubmissionStatus tracks how staff handled a procedure submission.
type SubmissionStatus string

const (
	SubmissionPending   SubmissionStatus = "PENDING"
	SubmissionProcessed SubmissionStatus = "PROCESSED"
	SubmissionRejected  SubmissionStatus = "REJECTED"
)

func ParseSubmissionStatus(s string) (SubmissionStatus, error) {
	switch SubmissionStatus(s) {
	case SubmissionPending, SubmissionProcessed, SubmissionRejected:
		return SubmissionStatus(s), nil
	default:
		return "", fmt.Errorf("unknown submission status %q", s)
	}
}

type ProcedureSubmission struct {
	ID            string           `json:"id"`
	ProcedureType string           `json:"procedure_type"`
	Firstname     string           `json:"firstname"`
	Lastname      string           `json:"lastname"`
	Email         string           `json:"email"`
	Phone         string           `json:"phone"`
	Address       string           `json:"address"`
	Details       string           `json:"details"`
	Status        SubmissionStatus `json:"status"`
	Notified      bool             `json:"notified"`
	CreatedAt     int64            `json:"created_at"`
}

type Application struct {
	ID           string `json:"id"`
	JobID        string `json:"job_id,omitempty"`
	RPLastname   string `json:"rp_lastname"`
	RPFirstname  string `json:"rp_firstname"`
	RPAge        int    `json:"rp_age"`
	Position     string `json:"position"`
	Motivation   string `json:"motivation"`
	Experience   string `json:"experience"`
	DiscordID    string `json:"discord_id"`
	Availability string `json:"availability"`
	Source       string `json:"source,omitempty"`
	Notified     bool   `json:"notified"`
	CreatedAt    int64  `json:"created_at"`
}

type Job struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Department  string `json:"department"`
	Description string `json:"description"`
	IsOpen      bool   `json:"is_open"`
	CreatedAt   int64  `json:"created_at"`
	UpdatedAt   int64  `json:"updated_at"`
}

type NewsArticle struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Content     string `json:"content"`
	Category    string `json:"category"`
	ImageURL    string `json:"image_url"`
	PublishedAt int64  `json:"published_at"`
	CreatedAt   int64  `json:"created_at"`
	UpdatedAt   int64  `json:"updated_at"`
}

type Event struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	EventDate   int64  `json:"event_date"`
	Location    string `json:"location"`
	Category    string `json:"category"`
	ImageURL    string `json:"image_url"`
	CreatedAt   int64  `json:"created_at"`
	UpdatedAt   int64  `json:"updated_at"`
}

// ServiceField describes one input of a municipal service's request form.
type ServiceField struct {
	Name     string `json:"name" validate:"required,max=64"`
	Label    string `json:"label" validate:"required,max=120"`
	Type     string `json:"type" validate:"required,oneof=text textarea email tel date number select"`
	Required bool   `json:"required"`
}

type Service struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Category    string         `json:"category"`
	Icon        string         `json:"icon"`
	Fields      []ServiceField `json:"fields"`
	IsActive    bool           `json:"is_active"`
	CreatedAt   int64          `json:"created_at"`
	UpdatedAt   int64          `json:"updated_at"`
}

// DashboardCounts summarises the admin home page.
type DashboardCounts struct {
	Users             int `json:"users"`
	OpenJobs          int `json:"open_jobs"`
	UpcomingEvents    int `json:"upcoming_events"`
	News              int `json:"news"`
	Applications      int `json:"applications"`
	PendingProcedures int `json:"pending_procedures"`
	Messages          int `json:"messages"`
}

type AuditLog struct {
	ID           string                 `json:"id"`
	ActorID      string                 `json:"actor_id"`
	Action       string                 `json:"action"`
	ResourceType string                 `json:"resource_type"`
	ResourceID   string                 `json:"resource_id"`
	Metadata     map[string]interface{} `json:"metadata"`
	IPAddress    string                 `json:"ip_address"`
	UserAgent    string                 `json:"user_agent"`
	CreatedAt    int64                  `json:"created_at"`
}

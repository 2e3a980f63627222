package chi

import "github.com/kailas-cloud/profilematch/internal/domain"

// ErrorCode is a machine-readable error identifier.
type ErrorCode string

// Error codes returned in ErrorResponse.Code.
const (
	CodeBadRequest       ErrorCode = "bad_request"
	CodeValidationFailed ErrorCode = "validation_failed"
	CodeProfileNotFound  ErrorCode = "profile_not_found"
	CodeUnauthorized     ErrorCode = "unauthorized"
	CodeInternalError    ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// TurnDTO is one prior conversation message.
type TurnDTO struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the POST /api/chat body.
type ChatRequest struct {
	Message string    `json:"message"`
	History []TurnDTO `json:"history,omitempty"`
}

// ProfileSummary identifies a recommended profile.
type ProfileSummary struct {
	ID     string `json:"id"`
	Slug   string `json:"slug,omitempty"`
	Name   string `json:"name"`
	Handle string `json:"handle,omitempty"`
}

// ChatResponse is the POST /api/chat reply.
type ChatResponse struct {
	Reply    string           `json:"reply"`
	Profiles []ProfileSummary `json:"profiles"`
}

// SearchResponse is the GET /api/profiles/search reply.
type SearchResponse struct {
	Strategy string           `json:"strategy"`
	Profiles []ProfileSummary `json:"profiles"`
}

// ProfileResponse is a full profile without its vector.
type ProfileResponse struct {
	ID          string           `json:"id"`
	Slug        string           `json:"slug,omitempty"`
	Name        string           `json:"name"`
	Handle      string           `json:"handle,omitempty"`
	Bio         string           `json:"bio,omitempty"`
	Description string           `json:"description,omitempty"`
	Tags        []string         `json:"tags"`
	Stats       map[string]int64 `json:"stats,omitempty"`
}

// HealthResponse is the GET /health reply.
type HealthResponse struct {
	Status  string            `json:"status"`
	Version string            `json:"version"`
	Checks  map[string]string `json:"checks"`
}

func summariesFromDomain(profiles []domain.Profile) []ProfileSummary {
	out := make([]ProfileSummary, len(profiles))
	for i := range profiles {
		p := &profiles[i]
		out[i] = ProfileSummary{ID: p.ID, Slug: p.Slug, Name: p.Name, Handle: p.Handle}
	}
	return out
}

func profileFromDomain(p *domain.Profile) ProfileResponse {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return ProfileResponse{
		ID:          p.ID,
		Slug:        p.Slug,
		Name:        p.Name,
		Handle:      p.Handle,
		Bio:         p.Bio,
		Description: p.Description,
		Tags:        tags,
		Stats:       p.Stats,
	}
}

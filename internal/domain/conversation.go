package domain

// Role is a conversation participant label.
type Role string

const (
	// RoleSystem carries instructions and the rendered profile context.
	RoleSystem Role = "system"
	// RoleUser is the person asking for recommendations.
	RoleUser Role = "user"
	// RoleAssistant is the model.
	RoleAssistant Role = "assistant"

	// roleAI is the label some clients use for model turns.
	roleAI Role = "ai"
)

// Turn is one message of a conversation.
type Turn struct {
	Role    Role
	Content string
}

// NormalizeRole maps the "ai" label onto "assistant". Other labels pass through unchanged.
func NormalizeRole(r Role) Role {
	if r == roleAI {
		return RoleAssistant
	}
	return r
}

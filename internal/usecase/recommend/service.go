package recommend

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/profilematch/internal/domain"
	"github.com/kailas-cloud/profilematch/internal/usecase/retrieval"
)

// DefaultSystemPrompt instructs the model how to use the rendered profiles.
const DefaultSystemPrompt = "You recommend creator profiles from a catalog. " +
	"Answer the user's request using only the profiles listed below, " +
	"mention them by name and handle, and say so plainly when none of them fit."

// emptyContext replaces the profile block when retrieval found nothing.
const emptyContext = "No matching profiles were found."

// Reply is the outcome of one chat request.
type Reply struct {
	Text     string
	Profiles []domain.Profile
	Strategy retrieval.Strategy
}

// Option configures the Service.
type Option func(*Service)

// WithSystemPrompt replaces DefaultSystemPrompt.
func WithSystemPrompt(prompt string) Option {
	return func(s *Service) {
		if prompt != "" {
			s.systemPrompt = prompt
		}
	}
}

// Service answers a chat message with a recommendation grounded in retrieved profiles.
type Service struct {
	retriever    Retriever
	model        ChatModel
	systemPrompt string
	logger       *zap.Logger
}

// New creates a recommendation service.
func New(retriever Retriever, model ChatModel, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		retriever:    retriever,
		model:        model,
		systemPrompt: DefaultSystemPrompt,
		logger:       logger,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Chat retrieves profiles for message, renders them into the system turn and asks the model.
// history is replayed between the system turn and the new user message.
func (s *Service) Chat(ctx context.Context, message string, history []domain.Turn) (Reply, error) {
	if strings.TrimSpace(message) == "" {
		return Reply{}, fmt.Errorf("%w: message is required", domain.ErrInput)
	}

	turns := make([]domain.Turn, 0, len(history)+2)
	turns = append(turns, domain.Turn{})
	for _, t := range history {
		turns = append(turns, domain.Turn{Role: domain.NormalizeRole(t.Role), Content: t.Content})
	}
	turns = append(turns, domain.Turn{Role: domain.RoleUser, Content: message})

	res, err := s.retriever.Retrieve(ctx, message)
	if err != nil {
		return Reply{}, fmt.Errorf("retrieve: %w", err)
	}
	turns[0] = domain.Turn{Role: domain.RoleSystem, Content: s.systemTurn(res.Profiles)}

	text, err := s.model.Complete(ctx, turns)
	if err != nil {
		s.logger.Error("Chat completion failed",
			zap.String("strategy", string(res.Strategy)),
			zap.Int("turns", len(turns)),
			zap.Error(err),
		)
		return Reply{}, fmt.Errorf("complete: %w", err)
	}

	return Reply{Text: text, Profiles: res.Profiles, Strategy: res.Strategy}, nil
}

func (s *Service) systemTurn(profiles []domain.Profile) string {
	block := RenderContext(profiles)
	if block == "" {
		block = emptyContext
	}
	return s.systemPrompt + "\n\nProfiles:\n\n" + block
}

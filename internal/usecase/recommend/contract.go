package recommend

import (
	"context"

	"github.com/kailas-cloud/profilematch/internal/domain"
	"github.com/kailas-cloud/profilematch/internal/usecase/retrieval"
)

// Retriever ranks catalog profiles for a query.
type Retriever interface {
	Retrieve(ctx context.Context, query string) (retrieval.Result, error)
}

// ChatModel produces the conversational reply.
type ChatModel interface {
	Complete(ctx context.Context, turns []domain.Turn) (string, error)
}

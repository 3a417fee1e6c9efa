package ports

import (
	"context"

	"github.com/lingoleap/learning-api/internal/core/domain"
)

// SessionEventRecorder accepts audit events without blocking the caller.
type SessionEventRecorder interface {
	Record(event domain.SessionEvent)
}

// SessionEventRepository persists audit events.
type SessionEventRepository interface {
	Insert(ctx context.Context, event *domain.SessionEvent) error
}

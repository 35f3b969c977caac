package service

import (
	"context"
	"fmt"

	"concord/internal/domain"
)

// MessageBatchSize is the fixed page size for history retrieval. It is part
// of the transport contract.
const MessageBatchSize = 20

// HistoryPage is one page of a container's message history, newest first.
// NextCursor is nil when the page ends the history.
type HistoryPage struct {
	Items      []*domain.Message `json:"items"`
	NextCursor *string           `json:"nextCursor"`
}

// HistoryService retrieves paginated message history for a container.
type HistoryService struct {
	messages domain.MessageRepository
}

func NewHistoryService(messages domain.MessageRepository) *HistoryService {
	return &HistoryService{messages: messages}
}

// Page fetches one batch of messages in reverse chronological order. A
// non-empty cursor resumes strictly after the cursor message. The next
// cursor is set only when the batch came back full; a short batch means the
// history is exhausted.
func (s *HistoryService) Page(ctx context.Context, container domain.Container, cursor string) (*HistoryPage, error) {
	if container.ID == "" {
		return nil, domain.ErrInvalidInput
	}

	msgs, err := s.messages.ListPage(ctx, container, cursor, MessageBatchSize)
	if err != nil {
		return nil, fmt.Errorf("list page: %w", err)
	}

	page := &HistoryPage{Items: msgs}
	if len(msgs) == MessageBatchSize {
		last := msgs[len(msgs)-1].ID
		page.NextCursor = &last
	}
	if page.Items == nil {
		page.Items = []*domain.Message{}
	}
	return page, nil
}

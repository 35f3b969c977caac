package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"concord/internal/domain"
)

var mutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "concord_message_mutations_total",
	Help: "Committed message mutations by operation.",
}, []string{"op"})

// EventPublisher delivers mutation events to subscribers of a topic.
// Delivery is fire-and-forget: a publish never fails the mutation.
type EventPublisher interface {
	Publish(topic string, payload any)
}

// MessageService validates and applies message create/edit/delete
// operations and fans successful mutations out to container subscribers.
type MessageService struct {
	messages domain.MessageRepository
	bus      EventPublisher
}

func NewMessageService(messages domain.MessageRepository, bus EventPublisher) *MessageService {
	return &MessageService{messages: messages, bus: bus}
}

// MaxContentLength bounds message content, mirroring the transport limit.
const MaxContentLength = 5000

type MessageCreateInput struct {
	Container domain.Container
	Content   string
	FileURL   *string
}

// Create stores a new message authored by the given member and publishes it
// under the container's create topic.
func (s *MessageService) Create(ctx context.Context, in MessageCreateInput, author *domain.Member) (*domain.Message, error) {
	if in.Container.ID == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.Content == "" && (in.FileURL == nil || *in.FileURL == "") {
		return nil, domain.ErrInvalidInput
	}
	if len([]rune(in.Content)) > MaxContentLength {
		return nil, domain.ErrInvalidInput
	}

	msg := &domain.Message{
		ID:       uuid.NewString(),
		MemberID: author.ID,
		Content:  in.Content,
		FileURL:  in.FileURL,
	}
	switch in.Container.Kind {
	case domain.ContainerChannel:
		id := in.Container.ID
		msg.ChannelID = &id
	case domain.ContainerConversation:
		id := in.Container.ID
		msg.ConversationID = &id
	default:
		return nil, domain.ErrInvalidInput
	}

	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}
	msg.Member = author

	mutationsTotal.WithLabelValues("create").Inc()
	s.bus.Publish(in.Container.Topic("create"), msg)
	return msg, nil
}

// Edit replaces the content of a message. Only the author may edit, and only
// while the message is not deleted. A deleted message behaves as not found.
func (s *MessageService) Edit(ctx context.Context, container domain.Container, messageID string, caller *domain.Member, content string) (*domain.Message, error) {
	if content == "" {
		return nil, domain.ErrInvalidInput
	}
	if len([]rune(content)) > MaxContentLength {
		return nil, domain.ErrInvalidInput
	}

	msg, err := s.load(ctx, container, messageID)
	if err != nil {
		return nil, err
	}
	if !CanModify(caller, msg, OpEdit) {
		return nil, domain.ErrUnauthorized
	}

	msg.Content = content
	if err := s.messages.Update(ctx, msg); err != nil {
		return nil, fmt.Errorf("update message: %w", err)
	}

	mutationsTotal.WithLabelValues("edit").Inc()
	s.bus.Publish(container.Topic("update"), msg)
	return msg, nil
}

// Delete soft-deletes a message: content becomes the tombstone, the file
// reference is cleared, and the record is immutable afterwards. The author,
// moderators, and admins may delete.
func (s *MessageService) Delete(ctx context.Context, container domain.Container, messageID string, caller *domain.Member) (*domain.Message, error) {
	msg, err := s.load(ctx, container, messageID)
	if err != nil {
		return nil, err
	}
	if !CanModify(caller, msg, OpDelete) {
		return nil, domain.ErrUnauthorized
	}

	if err := s.messages.SoftDelete(ctx, msg.ID); err != nil {
		return nil, fmt.Errorf("soft delete message: %w", err)
	}
	msg.Content = domain.TombstoneContent
	msg.FileURL = nil
	msg.Deleted = true

	mutationsTotal.WithLabelValues("delete").Inc()
	s.bus.Publish(container.Topic("update"), msg)
	return msg, nil
}

// load fetches the message and applies the shared mutation preconditions: it
// must exist, belong to the container, and not be deleted. An
// already-deleted message is reported as not found, matching the behaviour
// callers depend on.
func (s *MessageService) load(ctx context.Context, container domain.Container, messageID string) (*domain.Message, error) {
	msg, err := s.messages.GetByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if !msg.In(container) {
		return nil, domain.ErrNotFound
	}
	if msg.Deleted {
		return nil, domain.ErrNotFound
	}
	return msg, nil
}

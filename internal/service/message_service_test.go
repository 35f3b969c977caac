package service_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"concord/internal/domain"
	"concord/internal/service"
)

func channelContainer(id string) domain.Container {
	return domain.Container{Kind: domain.ContainerChannel, ID: id}
}

func channelMessage(id, channelID, memberID string) *domain.Message {
	cid := channelID
	return &domain.Message{ID: id, ChannelID: &cid, MemberID: memberID, Content: "hello"}
}

func TestMessageService_Create(t *testing.T) {
	ctx := context.Background()
	author := &domain.Member{ID: "m-1", ServerID: "srv-1", Role: domain.RoleGuest}
	container := channelContainer("chan-1")

	t.Run("creates and publishes", func(t *testing.T) {
		repo := new(MockMessageRepo)
		bus := &capturePublisher{}
		svc := service.NewMessageService(repo, bus)

		repo.On("Create", ctx, mock.AnythingOfType("*domain.Message")).Return(nil)

		msg, err := svc.Create(ctx, service.MessageCreateInput{Container: container, Content: "hello"}, author)
		assert.NoError(t, err)
		assert.NotEmpty(t, msg.ID)
		assert.Equal(t, "hello", msg.Content)
		assert.Equal(t, author.ID, msg.MemberID)
		if assert.NotNil(t, msg.ChannelID) {
			assert.Equal(t, "chan-1", *msg.ChannelID)
		}
		assert.Nil(t, msg.ConversationID)
		assert.Equal(t, author, msg.Member)

		events := bus.captured()
		if assert.Len(t, events, 1) {
			assert.Equal(t, "channel:chan-1:message:create", events[0].Topic)
			assert.Equal(t, msg, events[0].Payload)
		}
		repo.AssertExpectations(t)
	})

	t.Run("conversation container publishes conversation topic", func(t *testing.T) {
		repo := new(MockMessageRepo)
		bus := &capturePublisher{}
		svc := service.NewMessageService(repo, bus)

		repo.On("Create", ctx, mock.AnythingOfType("*domain.Message")).Return(nil)

		conv := domain.Container{Kind: domain.ContainerConversation, ID: "conv-1"}
		msg, err := svc.Create(ctx, service.MessageCreateInput{Container: conv, Content: "hi"}, author)
		assert.NoError(t, err)
		if assert.NotNil(t, msg.ConversationID) {
			assert.Equal(t, "conv-1", *msg.ConversationID)
		}
		assert.Nil(t, msg.ChannelID)

		events := bus.captured()
		if assert.Len(t, events, 1) {
			assert.Equal(t, "conversation:conv-1:message:create", events[0].Topic)
		}
	})

	t.Run("file-only message is allowed", func(t *testing.T) {
		repo := new(MockMessageRepo)
		bus := &capturePublisher{}
		svc := service.NewMessageService(repo, bus)

		repo.On("Create", ctx, mock.AnythingOfType("*domain.Message")).Return(nil)

		fileURL := "https://files.example/pic.png"
		msg, err := svc.Create(ctx, service.MessageCreateInput{Container: container, FileURL: &fileURL}, author)
		assert.NoError(t, err)
		assert.Equal(t, "", msg.Content)
		if assert.NotNil(t, msg.FileURL) {
			assert.Equal(t, fileURL, *msg.FileURL)
		}
	})

	t.Run("rejects empty message", func(t *testing.T) {
		repo := new(MockMessageRepo)
		bus := &capturePublisher{}
		svc := service.NewMessageService(repo, bus)

		_, err := svc.Create(ctx, service.MessageCreateInput{Container: container}, author)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		assert.Empty(t, bus.captured())
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("rejects oversized content", func(t *testing.T) {
		repo := new(MockMessageRepo)
		svc := service.NewMessageService(repo, &capturePublisher{})

		long := strings.Repeat("a", service.MaxContentLength+1)
		_, err := svc.Create(ctx, service.MessageCreateInput{Container: container, Content: long}, author)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("rejects missing container", func(t *testing.T) {
		repo := new(MockMessageRepo)
		svc := service.NewMessageService(repo, &capturePublisher{})

		_, err := svc.Create(ctx, service.MessageCreateInput{Content: "hi"}, author)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestMessageService_Edit(t *testing.T) {
	ctx := context.Background()
	container := channelContainer("chan-1")
	author := &domain.Member{ID: "m-author", ServerID: "srv-1", Role: domain.RoleGuest}

	t.Run("author edits own message", func(t *testing.T) {
		repo := new(MockMessageRepo)
		bus := &capturePublisher{}
		svc := service.NewMessageService(repo, bus)

		repo.On("GetByID", ctx, "msg-1").Return(channelMessage("msg-1", "chan-1", author.ID), nil)
		repo.On("Update", ctx, mock.AnythingOfType("*domain.Message")).Return(nil)

		msg, err := svc.Edit(ctx, container, "msg-1", author, "edited")
		assert.NoError(t, err)
		assert.Equal(t, "edited", msg.Content)

		events := bus.captured()
		if assert.Len(t, events, 1) {
			assert.Equal(t, "channel:chan-1:message:update", events[0].Topic)
		}
		repo.AssertExpectations(t)
	})

	t.Run("non-author cannot edit regardless of role", func(t *testing.T) {
		for _, role := range []domain.MemberRole{domain.RoleGuest, domain.RoleModerator, domain.RoleAdmin} {
			repo := new(MockMessageRepo)
			bus := &capturePublisher{}
			svc := service.NewMessageService(repo, bus)

			repo.On("GetByID", ctx, "msg-1").Return(channelMessage("msg-1", "chan-1", author.ID), nil)

			caller := &domain.Member{ID: "m-other", ServerID: "srv-1", Role: role}
			_, err := svc.Edit(ctx, container, "msg-1", caller, "sneaky")
			assert.ErrorIs(t, err, domain.ErrUnauthorized, "role %s", role)
			assert.Empty(t, bus.captured())
			repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		}
	})

	t.Run("deleted message behaves as not found", func(t *testing.T) {
		repo := new(MockMessageRepo)
		bus := &capturePublisher{}
		svc := service.NewMessageService(repo, bus)

		msg := channelMessage("msg-1", "chan-1", author.ID)
		msg.Deleted = true
		msg.Content = domain.TombstoneContent
		repo.On("GetByID", ctx, "msg-1").Return(msg, nil)

		_, err := svc.Edit(ctx, container, "msg-1", author, "resurrect")
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.Empty(t, bus.captured())
	})

	t.Run("message outside container is not found", func(t *testing.T) {
		repo := new(MockMessageRepo)
		svc := service.NewMessageService(repo, &capturePublisher{})

		repo.On("GetByID", ctx, "msg-1").Return(channelMessage("msg-1", "chan-OTHER", author.ID), nil)

		_, err := svc.Edit(ctx, container, "msg-1", author, "edited")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("rejects empty content", func(t *testing.T) {
		repo := new(MockMessageRepo)
		svc := service.NewMessageService(repo, &capturePublisher{})

		_, err := svc.Edit(ctx, container, "msg-1", author, "")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		repo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})
}

func TestMessageService_Delete(t *testing.T) {
	ctx := context.Background()
	container := channelContainer("chan-1")
	author := &domain.Member{ID: "m-author", ServerID: "srv-1", Role: domain.RoleGuest}

	allowed := []struct {
		name   string
		caller *domain.Member
	}{
		{"author", author},
		{"moderator", &domain.Member{ID: "m-mod", ServerID: "srv-1", Role: domain.RoleModerator}},
		{"admin", &domain.Member{ID: "m-adm", ServerID: "srv-1", Role: domain.RoleAdmin}},
	}

	for _, tc := range allowed {
		t.Run(tc.name+" deletes", func(t *testing.T) {
			repo := new(MockMessageRepo)
			bus := &capturePublisher{}
			svc := service.NewMessageService(repo, bus)

			fileURL := "https://files.example/doc.pdf"
			msg := channelMessage("msg-1", "chan-1", author.ID)
			msg.FileURL = &fileURL
			repo.On("GetByID", ctx, "msg-1").Return(msg, nil)
			repo.On("SoftDelete", ctx, "msg-1").Return(nil)

			got, err := svc.Delete(ctx, container, "msg-1", tc.caller)
			assert.NoError(t, err)
			assert.True(t, got.Deleted)
			assert.Equal(t, domain.TombstoneContent, got.Content)
			assert.Nil(t, got.FileURL)

			events := bus.captured()
			if assert.Len(t, events, 1) {
				assert.Equal(t, "channel:chan-1:message:update", events[0].Topic)
			}
			repo.AssertExpectations(t)
		})
	}

	t.Run("guest cannot delete others", func(t *testing.T) {
		repo := new(MockMessageRepo)
		bus := &capturePublisher{}
		svc := service.NewMessageService(repo, bus)

		repo.On("GetByID", ctx, "msg-1").Return(channelMessage("msg-1", "chan-1", author.ID), nil)

		caller := &domain.Member{ID: "m-guest", ServerID: "srv-1", Role: domain.RoleGuest}
		_, err := svc.Delete(ctx, container, "msg-1", caller)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
		assert.Empty(t, bus.captured())
		repo.AssertNotCalled(t, "SoftDelete", mock.Anything, mock.Anything)
	})

	t.Run("already deleted is not found even for admin", func(t *testing.T) {
		repo := new(MockMessageRepo)
		svc := service.NewMessageService(repo, &capturePublisher{})

		msg := channelMessage("msg-1", "chan-1", author.ID)
		msg.Deleted = true
		repo.On("GetByID", ctx, "msg-1").Return(msg, nil)

		admin := &domain.Member{ID: "m-adm", ServerID: "srv-1", Role: domain.RoleAdmin}
		_, err := svc.Delete(ctx, container, "msg-1", admin)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("unknown message is not found", func(t *testing.T) {
		repo := new(MockMessageRepo)
		svc := service.NewMessageService(repo, &capturePublisher{})

		repo.On("GetByID", ctx, "missing").Return(nil, domain.ErrNotFound)

		_, err := svc.Delete(ctx, container, "missing", author)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestMessageService_PublishOrder(t *testing.T) {
	ctx := context.Background()
	container := channelContainer("chan-1")
	author := &domain.Member{ID: "m-author", ServerID: "srv-1", Role: domain.RoleGuest}

	repo := new(MockMessageRepo)
	bus := &capturePublisher{}
	svc := service.NewMessageService(repo, bus)

	repo.On("Create", ctx, mock.AnythingOfType("*domain.Message")).Return(nil)
	repo.On("GetByID", ctx, mock.AnythingOfType("string")).Return(channelMessage("msg-1", "chan-1", author.ID), nil)
	repo.On("Update", ctx, mock.AnythingOfType("*domain.Message")).Return(nil)
	repo.On("SoftDelete", ctx, "msg-1").Return(nil)

	_, err := svc.Create(ctx, service.MessageCreateInput{Container: container, Content: "one"}, author)
	assert.NoError(t, err)
	_, err = svc.Edit(ctx, container, "msg-1", author, "two")
	assert.NoError(t, err)
	_, err = svc.Delete(ctx, container, "msg-1", author)
	assert.NoError(t, err)

	events := bus.captured()
	if assert.Len(t, events, 3) {
		assert.Equal(t, "channel:chan-1:message:create", events[0].Topic)
		assert.Equal(t, "channel:chan-1:message:update", events[1].Topic)
		assert.Equal(t, "channel:chan-1:message:update", events[2].Topic)
	}
}

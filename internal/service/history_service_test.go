package service_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"concord/internal/domain"
	"concord/internal/service"
)

func makeMessages(channelID string, n int) []*domain.Message {
	msgs := make([]*domain.Message, 0, n)
	for i := 0; i < n; i++ {
		msgs = append(msgs, channelMessage(fmt.Sprintf("msg-%02d", i), channelID, "m-1"))
	}
	return msgs
}

func TestHistoryService_Page(t *testing.T) {
	ctx := context.Background()
	container := channelContainer("chan-1")

	t.Run("full batch sets next cursor to last item", func(t *testing.T) {
		repo := new(MockMessageRepo)
		svc := service.NewHistoryService(repo)

		msgs := makeMessages("chan-1", service.MessageBatchSize)
		repo.On("ListPage", ctx, container, "", service.MessageBatchSize).Return(msgs, nil)

		page, err := svc.Page(ctx, container, "")
		assert.NoError(t, err)
		assert.Len(t, page.Items, service.MessageBatchSize)
		if assert.NotNil(t, page.NextCursor) {
			assert.Equal(t, msgs[len(msgs)-1].ID, *page.NextCursor)
		}
	})

	t.Run("short batch ends the history", func(t *testing.T) {
		repo := new(MockMessageRepo)
		svc := service.NewHistoryService(repo)

		msgs := makeMessages("chan-1", service.MessageBatchSize-1)
		repo.On("ListPage", ctx, container, "", service.MessageBatchSize).Return(msgs, nil)

		page, err := svc.Page(ctx, container, "")
		assert.NoError(t, err)
		assert.Len(t, page.Items, service.MessageBatchSize-1)
		assert.Nil(t, page.NextCursor)
	})

	t.Run("empty history yields empty page", func(t *testing.T) {
		repo := new(MockMessageRepo)
		svc := service.NewHistoryService(repo)

		repo.On("ListPage", ctx, container, "", service.MessageBatchSize).Return([]*domain.Message{}, nil)

		page, err := svc.Page(ctx, container, "")
		assert.NoError(t, err)
		assert.NotNil(t, page.Items)
		assert.Empty(t, page.Items)
		assert.Nil(t, page.NextCursor)
	})

	t.Run("cursor is passed through to the store", func(t *testing.T) {
		repo := new(MockMessageRepo)
		svc := service.NewHistoryService(repo)

		repo.On("ListPage", ctx, container, "msg-19", service.MessageBatchSize).Return([]*domain.Message{}, nil)

		_, err := svc.Page(ctx, container, "msg-19")
		assert.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("missing container id is invalid", func(t *testing.T) {
		repo := new(MockMessageRepo)
		svc := service.NewHistoryService(repo)

		_, err := svc.Page(ctx, domain.Container{Kind: domain.ContainerChannel}, "")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

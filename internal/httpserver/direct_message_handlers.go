package httpserver

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"concord/internal/domain"
	"concord/internal/service"
)

// resolveConversationMember loads the conversation and the caller's member
// within it. A caller outside the conversation gets not-found.
func resolveConversationMember(
	ctx context.Context,
	convSvc *service.ConversationService,
	conversationID, profileID string,
) (*domain.Conversation, *domain.Member, error) {
	if conversationID == "" {
		return nil, nil, domain.ErrInvalidInput
	}
	conv, err := convSvc.GetByID(ctx, conversationID)
	if err != nil {
		return nil, nil, err
	}
	member, err := convSvc.ResolveCaller(ctx, conv, profileID)
	if err != nil {
		return nil, nil, err
	}
	return conv, member, nil
}

// GET /api/direct-messages?conversationId=&cursor=
func handleListDirectMessages(historySvc *service.HistoryService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conversationID := r.URL.Query().Get("conversationId")
		if conversationID == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "conversationId is required"})
			return
		}
		container := domain.Container{Kind: domain.ContainerConversation, ID: conversationID}
		page, err := historySvc.Page(r.Context(), container, r.URL.Query().Get("cursor"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, page)
	}
}

// POST /api/direct-messages?conversationId=
func handleCreateDirectMessage(msgSvc *service.MessageService, convSvc *service.ConversationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profile := CurrentProfile(r)
		conv, member, err := resolveConversationMember(r.Context(), convSvc,
			r.URL.Query().Get("conversationId"), profile.ID)
		if err != nil {
			writeError(w, err)
			return
		}

		var req messageCreateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
			return
		}

		msg, err := msgSvc.Create(r.Context(), service.MessageCreateInput{
			Container: domain.Container{Kind: domain.ContainerConversation, ID: conv.ID},
			Content:   req.Content,
			FileURL:   req.FileURL,
		}, member)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, msg)
	}
}

// PATCH /api/direct-messages/{messageID}?conversationId=
func handleEditDirectMessage(msgSvc *service.MessageService, convSvc *service.ConversationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profile := CurrentProfile(r)
		conv, member, err := resolveConversationMember(r.Context(), convSvc,
			r.URL.Query().Get("conversationId"), profile.ID)
		if err != nil {
			writeError(w, err)
			return
		}

		var req messageEditRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
			return
		}

		container := domain.Container{Kind: domain.ContainerConversation, ID: conv.ID}
		msg, err := msgSvc.Edit(r.Context(), container, chi.URLParam(r, "messageID"), member, req.Content)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, msg)
	}
}

// DELETE /api/direct-messages/{messageID}?conversationId=
func handleDeleteDirectMessage(msgSvc *service.MessageService, convSvc *service.ConversationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profile := CurrentProfile(r)
		conv, member, err := resolveConversationMember(r.Context(), convSvc,
			r.URL.Query().Get("conversationId"), profile.ID)
		if err != nil {
			writeError(w, err)
			return
		}

		container := domain.Container{Kind: domain.ContainerConversation, ID: conv.ID}
		msg, err := msgSvc.Delete(r.Context(), container, chi.URLParam(r, "messageID"), member)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, msg)
	}
}

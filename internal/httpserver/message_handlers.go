package httpserver

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"concord/internal/domain"
	"concord/internal/service"
)

type messageCreateRequest struct {
	Content string  `json:"content"`
	FileURL *string `json:"file_url"`
}

type messageEditRequest struct {
	Content string `json:"content"`
}

// resolveChannelMember loads the channel scoped to the server and the
// caller's membership in that server. Every stage that misses reports
// not-found; nothing is fabricated.
func resolveChannelMember(
	ctx context.Context,
	channels domain.ChannelRepository,
	members domain.MemberRepository,
	serverID, channelID, profileID string,
) (*domain.Channel, *domain.Member, error) {
	if serverID == "" || channelID == "" {
		return nil, nil, domain.ErrInvalidInput
	}
	channel, err := channels.GetByID(ctx, channelID)
	if err != nil {
		return nil, nil, err
	}
	if channel.ServerID != serverID {
		return nil, nil, domain.ErrNotFound
	}
	member, err := members.GetByServerAndProfile(ctx, serverID, profileID)
	if err != nil {
		return nil, nil, err
	}
	return channel, member, nil
}

// GET /api/messages?channelId=&cursor=
func handleListChannelMessages(historySvc *service.HistoryService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		channelID := r.URL.Query().Get("channelId")
		if channelID == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "channelId is required"})
			return
		}
		container := domain.Container{Kind: domain.ContainerChannel, ID: channelID}
		page, err := historySvc.Page(r.Context(), container, r.URL.Query().Get("cursor"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, page)
	}
}

// POST /api/messages?serverId=&channelId=
func handleCreateChannelMessage(
	msgSvc *service.MessageService,
	channels domain.ChannelRepository,
	members domain.MemberRepository,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profile := CurrentProfile(r)
		channel, member, err := resolveChannelMember(r.Context(), channels, members,
			r.URL.Query().Get("serverId"), r.URL.Query().Get("channelId"), profile.ID)
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
			Container: domain.Container{Kind: domain.ContainerChannel, ID: channel.ID},
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

// PATCH /api/messages/{messageID}?serverId=&channelId=
func handleEditChannelMessage(
	msgSvc *service.MessageService,
	channels domain.ChannelRepository,
	members domain.MemberRepository,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profile := CurrentProfile(r)
		channel, member, err := resolveChannelMember(r.Context(), channels, members,
			r.URL.Query().Get("serverId"), r.URL.Query().Get("channelId"), profile.ID)
		if err != nil {
			writeError(w, err)
			return
		}

		var req messageEditRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
			return
		}

		container := domain.Container{Kind: domain.ContainerChannel, ID: channel.ID}
		msg, err := msgSvc.Edit(r.Context(), container, chi.URLParam(r, "messageID"), member, req.Content)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, msg)
	}
}

// DELETE /api/messages/{messageID}?serverId=&channelId=
func handleDeleteChannelMessage(
	msgSvc *service.MessageService,
	channels domain.ChannelRepository,
	members domain.MemberRepository,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profile := CurrentProfile(r)
		channel, member, err := resolveChannelMember(r.Context(), channels, members,
			r.URL.Query().Get("serverId"), r.URL.Query().Get("channelId"), profile.ID)
		if err != nil {
			writeError(w, err)
			return
		}

		container := domain.Container{Kind: domain.ContainerChannel, ID: channel.ID}
		msg, err := msgSvc.Delete(r.Context(), container, chi.URLParam(r, "messageID"), member)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, msg)
	}
}

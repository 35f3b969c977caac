package httpserver

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"concord/internal/domain"
	"concord/internal/service"
)

type channelCreateRequest struct {
	Name string             `json:"name"`
	Type domain.ChannelType `json:"type"`
}

type channelRenameRequest struct {
	Name string `json:"name"`
}

// callerMember resolves the caller's membership in the routed server.
func callerMember(r *http.Request, members domain.MemberRepository) (*domain.Member, error) {
	profile := CurrentProfile(r)
	return members.GetByServerAndProfile(r.Context(), chi.URLParam(r, "serverID"), profile.ID)
}

// GET /api/servers/{serverID}/channels
func handleListChannels(channels domain.ChannelRepository, members domain.MemberRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		member, err := callerMember(r, members)
		if err != nil {
			writeError(w, err)
			return
		}
		list, err := channels.ListForServer(r.Context(), member.ServerID)
		if err != nil {
			writeError(w, err)
			return
		}
		if list == nil {
			list = []*domain.Channel{}
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// POST /api/servers/{serverID}/channels
func handleCreateChannel(channelSvc *service.ChannelService, members domain.MemberRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		member, err := callerMember(r, members)
		if err != nil {
			writeError(w, err)
			return
		}

		var req channelCreateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
			return
		}

		ch, err := channelSvc.Create(r.Context(), member, req.Name, req.Type)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, ch)
	}
}

// PATCH /api/servers/{serverID}/channels/{channelID}
func handleRenameChannel(channelSvc *service.ChannelService, members domain.MemberRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		member, err := callerMember(r, members)
		if err != nil {
			writeError(w, err)
			return
		}

		var req channelRenameRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
			return
		}

		ch, err := channelSvc.Rename(r.Context(), member, chi.URLParam(r, "channelID"), req.Name)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, ch)
	}
}

// DELETE /api/servers/{serverID}/channels/{channelID}
func handleDeleteChannel(channelSvc *service.ChannelService, members domain.MemberRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		member, err := callerMember(r, members)
		if err != nil {
			writeError(w, err)
			return
		}
		if err := channelSvc.Delete(r.Context(), member, chi.URLParam(r, "channelID")); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
	}
}

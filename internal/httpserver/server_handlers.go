package httpserver

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"concord/internal/domain"
	"concord/internal/service"
)

type serverCreateRequest struct {
	Name     string `json:"name"`
	ImageURL string `json:"image_url"`
}

type serverJoinRequest struct {
	InviteCode string `json:"invite_code"`
}

type memberRoleRequest struct {
	Role domain.MemberRole `json:"role"`
}

// POST /api/servers
func handleCreateServer(serverSvc *service.ServerService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req serverCreateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
			return
		}
		srv, err := serverSvc.Create(r.Context(), CurrentProfile(r), service.ServerCreateInput{
			Name:     req.Name,
			ImageURL: req.ImageURL,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, srv)
	}
}

// POST /api/servers/join
func handleJoinServer(serverSvc *service.ServerService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req serverJoinRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
			return
		}
		srv, err := serverSvc.Join(r.Context(), CurrentProfile(r), req.InviteCode)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, srv)
	}
}

// POST /api/servers/{serverID}/leave
func handleLeaveServer(serverSvc *service.ServerService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := serverSvc.Leave(r.Context(), CurrentProfile(r), chi.URLParam(r, "serverID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
	}
}

// DELETE /api/servers/{serverID}
func handleDeleteServer(serverSvc *service.ServerService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := serverSvc.Delete(r.Context(), CurrentProfile(r), chi.URLParam(r, "serverID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
	}
}

// PATCH /api/servers/{serverID}/members/{memberID}
func handleUpdateMemberRole(serverSvc *service.ServerService, members domain.MemberRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profile := CurrentProfile(r)
		caller, err := members.GetByServerAndProfile(r.Context(), chi.URLParam(r, "serverID"), profile.ID)
		if err != nil {
			writeError(w, err)
			return
		}

		var req memberRoleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
			return
		}

		member, err := serverSvc.UpdateMemberRole(r.Context(), caller, chi.URLParam(r, "memberID"), req.Role)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, member)
	}
}

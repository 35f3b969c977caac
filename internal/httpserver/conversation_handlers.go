package httpserver

import (
	"encoding/json"
	"net/http"

	"concord/internal/domain"
	"concord/internal/service"
)

type conversationOpenRequest struct {
	ServerID string `json:"server_id"`
	MemberID string `json:"member_id"`
}

// POST /api/conversations
//
// Opens (or lazily creates) the direct-message conversation between the
// caller's member in the given server and another member of that server.
func handleOpenConversation(convSvc *service.ConversationService, members domain.MemberRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profile := CurrentProfile(r)

		var req conversationOpenRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
			return
		}
		if req.ServerID == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "server_id is required"})
			return
		}

		caller, err := members.GetByServerAndProfile(r.Context(), req.ServerID, profile.ID)
		if err != nil {
			writeError(w, err)
			return
		}

		conv, err := convSvc.GetOrCreate(r.Context(), caller, req.MemberID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, conv)
	}
}

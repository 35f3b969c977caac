package httpserver

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"concord/internal/config"
	"concord/internal/domain"
	"concord/internal/security"
	"concord/internal/service"
	"concord/internal/ws"
)

// Stores bundles the repository implementations of the selected database
// backend.
type Stores struct {
	Profiles      domain.ProfileRepository
	Servers       domain.ServerRepository
	Channels      domain.ChannelRepository
	Members       domain.MemberRepository
	Conversations domain.ConversationRepository
	Messages      domain.MessageRepository
}

// NewRouter constructs the main HTTP router and wires routes, services, and
// middleware. The fan-out hub is injected rather than reached through global
// state; main owns its lifecycle.
func NewRouter(cfg *config.Config, stores Stores, hub *ws.Hub, tokenSvc *security.TokenService) http.Handler {
	r := chi.NewRouter()

	// Middlewares
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Services
	historySvc := service.NewHistoryService(stores.Messages)
	msgSvc := service.NewMessageService(stores.Messages, hub)
	convSvc := service.NewConversationService(stores.Conversations, stores.Members)
	serverSvc := service.NewServerService(stores.Servers, stores.Channels, stores.Members)
	channelSvc := service.NewChannelService(stores.Channels)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"message":"Concord API","version":"1.0.0"}`))
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	r.Handle("/metrics", promhttp.Handler())

	// API routes (all authenticated)
	r.Route("/api", func(r chi.Router) {
		r.Use(AuthMiddleware(tokenSvc, stores.Profiles))

		// Channel message history and mutations
		r.Route("/messages", func(r chi.Router) {
			r.Get("/", handleListChannelMessages(historySvc))
			r.Post("/", handleCreateChannelMessage(msgSvc, stores.Channels, stores.Members))
			r.Patch("/{messageID}", handleEditChannelMessage(msgSvc, stores.Channels, stores.Members))
			r.Delete("/{messageID}", handleDeleteChannelMessage(msgSvc, stores.Channels, stores.Members))
		})

		// Direct-message history and mutations
		r.Route("/direct-messages", func(r chi.Router) {
			r.Get("/", handleListDirectMessages(historySvc))
			r.Post("/", handleCreateDirectMessage(msgSvc, convSvc))
			r.Patch("/{messageID}", handleEditDirectMessage(msgSvc, convSvc))
			r.Delete("/{messageID}", handleDeleteDirectMessage(msgSvc, convSvc))
		})

		// Servers, channels, members
		r.Route("/servers", func(r chi.Router) {
			r.Post("/", handleCreateServer(serverSvc))
			r.Post("/join", handleJoinServer(serverSvc))
			r.Post("/{serverID}/leave", handleLeaveServer(serverSvc))
			r.Delete("/{serverID}", handleDeleteServer(serverSvc))
			r.Patch("/{serverID}/members/{memberID}", handleUpdateMemberRole(serverSvc, stores.Members))

			r.Route("/{serverID}/channels", func(r chi.Router) {
				r.Get("/", handleListChannels(stores.Channels, stores.Members))
				r.Post("/", handleCreateChannel(channelSvc, stores.Members))
				r.Patch("/{channelID}", handleRenameChannel(channelSvc, stores.Members))
				r.Delete("/{channelID}", handleDeleteChannel(channelSvc, stores.Members))
			})
		})

		// Direct conversations
		r.Post("/conversations", handleOpenConversation(convSvc, stores.Members))

		// Message attachments
		r.Mount("/uploads", UploadRoutes(cfg))
	})

	// WebSocket subscription endpoint
	r.Get("/ws", ws.MakeHandler(hub, tokenSvc, cfg.CORSOrigins))

	return r
}

// writeJSON is a small helper to send JSON responses.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// writeError maps sentinel errors to their HTTP status. Unexpected errors
// are logged and surface as a generic 500.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthenticated"})
	case errors.Is(err, domain.ErrUnauthorized):
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
	case errors.Is(err, domain.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request"})
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	case errors.Is(err, domain.ErrConflict):
		writeJSON(w, http.StatusConflict, map[string]string{"error": "already exists"})
	default:
		log.Printf("http: internal error: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}

package handler

import (
	"errors"
	"net/http"

	"boardshoot-server/internal/cache"
	"boardshoot-server/internal/middleware"
	"boardshoot-server/pkg/response"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// CacheHandler exposes the caller's own user mirror entry for inspection. It never
// touches the store of record.
type CacheHandler struct {
	mirror     cache.Mirror
	resolver   PrincipalResolver
	exposeKeys bool
	logger     zerolog.Logger
}

func NewCacheHandler(mirror cache.Mirror, resolver PrincipalResolver, exposeKeys bool, logger zerolog.Logger) *CacheHandler {
	return &CacheHandler{
		mirror:     mirror,
		resolver:   resolver,
		exposeKeys: exposeKeys,
		logger:     logger,
	}
}

func (h *CacheHandler) Ping(w http.ResponseWriter, r *http.Request) {
	if _, ok := resolveUser(w, r, h.resolver); !ok {
		return
	}

	if err := h.mirror.Ping(r.Context()); err != nil {
		h.unavailable(w, err)
		return
	}
	response.Success(w, map[string]string{"ping": "OK"})
}

// User answers only for the caller's own username. Any other name looks like a miss.
func (h *CacheHandler) User(w http.ResponseWriter, r *http.Request) {
	if _, ok := resolveUser(w, r, h.resolver); !ok {
		return
	}

	username := mux.Vars(r)["username"]
	if username == "" || username != principalName(r) {
		response.Failure(w, http.StatusNotFound, "User is not cached")
		return
	}

	profile, err := h.mirror.Get(r.Context(), username)
	if err != nil {
		if errors.Is(err, cache.ErrMiss) {
			response.Failure(w, http.StatusNotFound, "User is not cached")
			return
		}
		h.unavailable(w, err)
		return
	}

	response.Success(w, map[string]interface{}{
		"username":   username,
		"cachedUser": profile,
	})
}

// Keys lists every mirrored username, so it stays hidden unless explicitly enabled.
func (h *CacheHandler) Keys(w http.ResponseWriter, r *http.Request) {
	if _, ok := resolveUser(w, r, h.resolver); !ok {
		return
	}

	if !h.exposeKeys {
		response.Failure(w, http.StatusNotFound, "Not found")
		return
	}

	keys, err := h.mirror.Keys(r.Context())
	if err != nil {
		h.unavailable(w, err)
		return
	}
	response.Success(w, keys)
}

func (h *CacheHandler) unavailable(w http.ResponseWriter, err error) {
	if errors.Is(err, cache.ErrDisabled) {
		response.Failure(w, http.StatusServiceUnavailable, "User cache is disabled")
		return
	}
	h.logger.Warn().Err(err).Msg("user cache unavailable")
	response.Failure(w, http.StatusServiceUnavailable, "User cache is unavailable")
}

func principalName(r *http.Request) string {
	if auth := middleware.GetAuthentication(r); auth != nil && auth.Details != nil {
		return auth.Details.Username
	}
	return ""
}

package handler

import (
	"net/http"

	"boardshoot-server/pkg/response"

	"github.com/gorilla/mux"
)

type Handlers struct {
	Auth   *AuthHandler
	User   *UserHandler
	Folder *FolderHandler
	Note   *NoteHandler
	Cache  *CacheHandler
	Health *HealthHandler
	WS     *WebSocketHandler
}

// NewRouter registers every route. Middlewares run in the given order, outermost first.
func NewRouter(h Handlers, middlewares ...mux.MiddlewareFunc) *mux.Router {
	r := mux.NewRouter()
	r.Use(middlewares...)

	r.HandleFunc("/", rootHandler).Methods("GET")
	if h.Health != nil {
		r.HandleFunc("/health", h.Health.Check).Methods("GET")
	}

	auth := r.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/signup", h.Auth.Signup).Methods("POST", "OPTIONS")
	auth.HandleFunc("/login", h.Auth.Login).Methods("POST", "OPTIONS")
	auth.HandleFunc("/profile", h.Auth.Profile).Methods("GET", "OPTIONS")

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/users/{id}", h.User.Get).Methods("GET", "OPTIONS")
	api.HandleFunc("/users/{id}", h.User.Update).Methods("PUT", "OPTIONS")
	api.HandleFunc("/users/{id}/profile", h.User.UpdateProfile).Methods("PUT", "OPTIONS")
	api.HandleFunc("/users/{id}", h.User.Delete).Methods("DELETE", "OPTIONS")

	api.HandleFunc("/folders", h.Folder.List).Methods("GET", "OPTIONS")
	api.HandleFunc("/folders", h.Folder.Create).Methods("POST", "OPTIONS")
	api.HandleFunc("/folders/{folderId}", h.Folder.Get).Methods("GET", "OPTIONS")
	api.HandleFunc("/folders/{folderId}", h.Folder.Update).Methods("PUT", "OPTIONS")
	api.HandleFunc("/folders/{folderId}", h.Folder.Delete).Methods("DELETE", "OPTIONS")

	const note = "/folders/{folderId}/notes/{noteId}"
	api.HandleFunc("/folders/{folderId}/notes", h.Note.List).Methods("GET", "OPTIONS")
	api.HandleFunc("/folders/{folderId}/notes", h.Note.Create).Methods("POST", "OPTIONS")
	api.HandleFunc(note, h.Note.Get).Methods("GET", "OPTIONS")
	api.HandleFunc(note, h.Note.Update).Methods("PUT", "OPTIONS")
	api.HandleFunc(note, h.Note.Delete).Methods("DELETE", "OPTIONS")
	api.HandleFunc(note+"/images", h.Note.AddImage).Methods("POST", "OPTIONS")
	api.HandleFunc(note+"/images", h.Note.RemoveImage).Methods("DELETE", "OPTIONS")
	api.HandleFunc(note+"/images/reorder", h.Note.ReorderImages).Methods("PUT", "OPTIONS")

	if h.Cache != nil {
		api.HandleFunc("/cache/ping", h.Cache.Ping).Methods("GET")
		api.HandleFunc("/cache/users/{username}", h.Cache.User).Methods("GET")
		api.HandleFunc("/cache/keys", h.Cache.Keys).Methods("GET")
	}

	if h.WS != nil {
		r.HandleFunc("/ws", h.WS.HandleConnection)
	}

	return r
}

func rootHandler(w http.ResponseWriter, r *http.Request) {
	response.Success(w, map[string]interface{}{
		"message": "Boardshoot API",
		"endpoints": map[string]string{
			"/auth/signup":  "POST",
			"/auth/login":   "POST",
			"/auth/profile": "GET",
			"/api/folders":  "GET, POST",
			"/ws":           "GET (websocket)",
		},
	})
}

package bot

import (
	"encoding/json"
	"net/http"
	"strconv"
)

// API Response types
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

type UserStatusResponse struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	Frequency      string `json:"frequency"`
	HasCredentials bool   `json:"has_credentials"`
}

type NotificationResponse struct {
	ID         int64  `json:"id"`
	UserID     int64  `json:"user_id"`
	TargetDate string `json:"target_date"`
	SentAt     string `json:"sent_at"`
}

// SetupAPI registers API routes with Basic Auth
func (b *Bot) SetupAPI() {
	if b.cfg.APIUsername == "" || b.cfg.APIPassword == "" {
		return // API disabled if no credentials
	}

	http.HandleFunc("/api/status", b.basicAuth(b.apiStatus))
	http.HandleFunc("/api/notifications", b.basicAuth(b.apiNotifications))
}

func (b *Bot) basicAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		username, password, ok := r.BasicAuth()
		if !ok || username != b.cfg.APIUsername || password != b.cfg.APIPassword {
			w.Header().Set("WWW-Authenticate", `Basic realm="MealsBot API"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func (b *Bot) jsonResponse(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(APIResponse{Success: true, Data: data})
}

func (b *Bot) jsonError(w http.ResponseWriter, err string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(APIResponse{Success: false, Error: err})
}

// GET /api/status - per-user setup summary, no secrets
func (b *Bot) apiStatus(w http.ResponseWriter, r *http.Request) {
	users, err := b.storage.ListUsers()
	if err != nil {
		b.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	result := []UserStatusResponse{}
	for _, u := range users {
		entry := UserStatusResponse{ID: u.ID, Name: u.Name, Frequency: "never"}
		if settings, err := b.storage.GetSettings(u.ID); err == nil && settings != nil {
			if settings.Frequency != "" {
				entry.Frequency = string(settings.Frequency)
			}
			entry.HasCredentials = settings.HasCredentials()
		}
		result = append(result, entry)
	}

	b.jsonResponse(w, result)
}

// GET /api/notifications?limit=N - recent sent reminders
func (b *Bot) apiNotifications(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			b.jsonError(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	notifications, err := b.storage.ListNotifications(limit)
	if err != nil {
		b.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	result := []NotificationResponse{}
	for _, n := range notifications {
		result = append(result, NotificationResponse{
			ID:         n.ID,
			UserID:     n.UserID,
			TargetDate: n.TargetDate,
			SentAt:     n.SentAt.Format("2006-01-02 15:04:05"),
		})
	}

	b.jsonResponse(w, result)
}

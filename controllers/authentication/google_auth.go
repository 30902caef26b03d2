package authentication

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"gorm.io/gorm"

	"talesoul-backend/apperr"
	"talesoul-backend/config"
	"talesoul-backend/models/users"
)

var stateStore = sessions.NewCookieStore([]byte(config.Getenv("SESSION_SECRET", "talesoul-oauth-state")))

func init() {
	stateStore.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

func googleOauthConfig() *oauth2.Config {
	return &oauth2.Config{
		RedirectURL:  config.Getenv("GOOGLE_REDIRECT_URL", "http://localhost:8080/api/v1/auth/google/callback"),
		ClientID:     config.Getenv("GOOGLE_CLIENT_ID", ""),
		ClientSecret: config.Getenv("GOOGLE_CLIENT_SECRET", ""),
		Scopes: []string{
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}
}

// HandleGoogleLogin starts the Google OAuth flow. The random state lives in a
// short-lived cookie session and is checked on callback.
func HandleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	cfg := googleOauthConfig()
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		apperr.WriteJSON(w, apperr.New(apperr.ValidationError, "google login is not configured"))
		return
	}

	state := uuid.NewString()
	session, _ := stateStore.Get(r, "oauth-state")
	session.Values["state"] = state
	if err := session.Save(r, w); err != nil {
		apperr.WriteJSON(w, err)
		return
	}
	http.Redirect(w, r, cfg.AuthCodeURL(state), http.StatusTemporaryRedirect)
}

type googleUserInfo struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// HandleGoogleCallback finishes the OAuth flow: it verifies the state,
// exchanges the code, upserts the user and issues the same platform token
// local logins get.
func HandleGoogleCallback(w http.ResponseWriter, r *http.Request, db *gorm.DB) {
	session, _ := stateStore.Get(r, "oauth-state")
	expected, _ := session.Values["state"].(string)
	if expected == "" || r.FormValue("state") != expected {
		apperr.WriteJSON(w, apperr.New(apperr.Unauthorized, "invalid oauth state"))
		return
	}

	cfg := googleOauthConfig()
	token, err := cfg.Exchange(r.Context(), r.FormValue("code"))
	if err != nil {
		apperr.WriteJSON(w, apperr.New(apperr.InvalidCredentials, "google code exchange failed"))
		return
	}

	resp, err := cfg.Client(r.Context(), token).Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		apperr.WriteJSON(w, apperr.New(apperr.InvalidCredentials, "fetching google user info failed"))
		return
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		apperr.WriteJSON(w, err)
		return
	}
	var info googleUserInfo
	if err := json.Unmarshal(body, &info); err != nil || info.Email == "" {
		apperr.WriteJSON(w, apperr.New(apperr.InvalidCredentials, "google user info malformed"))
		return
	}

	var user users.User
	if err := db.Where("email = ?", info.Email).First(&user).Error; err != nil {
		user = users.User{
			Email:          info.Email,
			Password:       uuid.NewString(), // unusable; google accounts never log in locally
			FullName:       info.Name,
			Role:           users.RoleUser,
			IsActive:       true,
			Provider:       "google",
			ProfilePicture: info.Picture,
		}
		if err := db.Create(&user).Error; err != nil {
			apperr.WriteJSON(w, err)
			return
		}
	}
	if !user.IsActive {
		apperr.WriteJSON(w, apperr.New(apperr.Unauthorized, "account is deactivated"))
		return
	}

	jwtToken, err := GenerateToken(&user)
	if err != nil {
		apperr.WriteJSON(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, tokenResponse{AccessToken: jwtToken, TokenType: "bearer", User: &user})
}

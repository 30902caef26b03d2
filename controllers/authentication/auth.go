package authentication

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"talesoul-backend/apperr"
	"talesoul-backend/config"
	"talesoul-backend/models/users"
)

var JwtKey = []byte(config.Getenv("JWT_SECRET", "dev-secret-change-me"))

const tokenTTL = 24 * time.Hour

type Claims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.StandardClaims
}

// GenerateToken signs a bearer token for the given user.
func GenerateToken(user *users.User) (string, error) {
	claims := &Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(tokenTTL).Unix(),
			IssuedAt:  time.Now().Unix(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(JwtKey)
}

// ValidateToken extracts and verifies the bearer token on r. A missing,
// malformed or expired token yields Unauthorized; it is never retried with
// the same credential.
func ValidateToken(r *http.Request) (*Claims, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil, apperr.New(apperr.Unauthorized, "authorization header required")
	}

	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return JwtKey, nil
	})
	if err != nil || !token.Valid {
		return nil, apperr.New(apperr.Unauthorized, "invalid or expired token")
	}
	return claims, nil
}

// RequireUser resolves the authenticated, active user behind the request.
func RequireUser(r *http.Request, db *gorm.DB) (*users.User, error) {
	claims, err := ValidateToken(r)
	if err != nil {
		return nil, err
	}
	var user users.User
	if err := db.First(&user, claims.UserID).Error; err != nil {
		return nil, apperr.New(apperr.Unauthorized, "user not found")
	}
	if !user.IsActive {
		return nil, apperr.New(apperr.Unauthorized, "account is deactivated")
	}
	return &user, nil
}

func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	User        *users.User `json:"user,omitempty"`
}

// Register creates a local account and immediately issues a token.
func Register(w http.ResponseWriter, r *http.Request, db *gorm.DB) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperr.WriteJSON(w, apperr.New(apperr.ValidationError, "invalid request body"))
		return
	}
	if req.Email == "" || req.Password == "" || req.FullName == "" {
		apperr.WriteJSON(w, apperr.New(apperr.ValidationError, "email, password and full_name are required"))
		return
	}
	if req.Role == "" {
		req.Role = users.RoleUser
	}
	if req.Role != users.RoleUser && req.Role != users.RoleMentor {
		apperr.WriteJSON(w, apperr.New(apperr.ValidationError, "role must be user or mentor"))
		return
	}

	var existing users.User
	if err := db.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		apperr.WriteJSON(w, apperr.New(apperr.ValidationError, "email already registered"))
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		apperr.WriteJSON(w, err)
		return
	}

	user := users.User{
		Email:    req.Email,
		Password: string(hashed),
		FullName: req.FullName,
		Role:     req.Role,
		IsActive: true,
		Provider: "local",
	}
	if err := db.Create(&user).Error; err != nil {
		apperr.WriteJSON(w, err)
		return
	}

	token, err := GenerateToken(&user)
	if err != nil {
		apperr.WriteJSON(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, tokenResponse{AccessToken: token, TokenType: "bearer", User: &user})
}

// Login exchanges credentials for a bearer token. The identifier may arrive
// as email or username; both name the account email.
func Login(w http.ResponseWriter, r *http.Request, db *gorm.DB) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperr.WriteJSON(w, apperr.New(apperr.ValidationError, "invalid request body"))
		return
	}
	email := req.Email
	if email == "" {
		email = req.Username
	}

	var user users.User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		apperr.WriteJSON(w, apperr.New(apperr.InvalidCredentials, "incorrect email or password"))
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		apperr.WriteJSON(w, apperr.New(apperr.InvalidCredentials, "incorrect email or password"))
		return
	}
	if !user.IsActive {
		apperr.WriteJSON(w, apperr.New(apperr.Unauthorized, "account is deactivated"))
		return
	}

	token, err := GenerateToken(&user)
	if err != nil {
		apperr.WriteJSON(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, tokenResponse{AccessToken: token, TokenType: "bearer"})
}

// Me returns the identity behind the presented token.
func Me(w http.ResponseWriter, r *http.Request, db *gorm.DB) {
	claims, err := ValidateToken(r)
	if err != nil {
		apperr.WriteJSON(w, err)
		return
	}

	var user users.User
	if err := db.Preload("MentorProfile").First(&user, claims.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			apperr.WriteJSON(w, apperr.New(apperr.Unauthorized, "user not found"))
			return
		}
		apperr.WriteJSON(w, err)
		return
	}
	if !user.IsActive {
		apperr.WriteJSON(w, apperr.New(apperr.Unauthorized, "account is deactivated"))
		return
	}
	WriteJSON(w, http.StatusOK, &user)
}

type mentorApplyRequest struct {
	Bio               string  `json:"bio"`
	Expertise         string  `json:"expertise"`
	YearsOfExperience int     `json:"years_of_experience"`
	HourlyRate        float64 `json:"hourly_rate"`
	LinkedinURL       string  `json:"linkedin_url"`
	GithubURL         string  `json:"github_url"`
}

// MentorApply files a mentor application. The profile stays pending until an
// admin approves it; only then is the user listed and bookable.
func MentorApply(w http.ResponseWriter, r *http.Request, db *gorm.DB) {
	user, err := RequireUser(r, db)
	if err != nil {
		apperr.WriteJSON(w, err)
		return
	}

	var req mentorApplyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperr.WriteJSON(w, apperr.New(apperr.ValidationError, "invalid request body"))
		return
	}
	if req.HourlyRate < 0 {
		apperr.WriteJSON(w, apperr.New(apperr.ValidationError, "hourly_rate must not be negative"))
		return
	}

	var existing users.MentorProfile
	if err := db.Where("user_id = ?", user.ID).First(&existing).Error; err == nil {
		apperr.WriteJSON(w, apperr.New(apperr.InvalidTransition, "mentor application already submitted"))
		return
	}

	profile := users.MentorProfile{
		UserID:            user.ID,
		Bio:               req.Bio,
		Expertise:         req.Expertise,
		YearsOfExperience: req.YearsOfExperience,
		HourlyRate:        req.HourlyRate,
		LinkedinURL:       req.LinkedinURL,
		GithubURL:         req.GithubURL,
		Status:            users.MentorStatusPending,
	}
	if err := db.Create(&profile).Error; err != nil {
		apperr.WriteJSON(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, &profile)
}

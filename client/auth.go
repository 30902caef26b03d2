package client

import (
	"net/http"

	"talesoul-backend/models/users"
)

// AuthClient covers /auth endpoints.
type AuthClient struct {
	c *Client
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Role     string `json:"role,omitempty"`
}

// Register creates an account. The issued token is not adopted automatically;
// call Login to establish a session.
func (a *AuthClient) Register(req RegisterRequest) (*users.User, error) {
	var resp struct {
		User *users.User `json:"user"`
	}
	if err := a.c.do(http.MethodPost, "/auth/register", req, &resp); err != nil {
		return nil, err
	}
	return resp.User, nil
}

// Me fetches the identity behind the current token and refreshes the cached
// copy.
func (a *AuthClient) Me() (*users.User, error) {
	var user users.User
	if err := a.c.do(http.MethodGet, "/auth/me", nil, &user); err != nil {
		return nil, err
	}
	a.c.session.setIdentity(&user)
	return &user, nil
}

type MentorApplication struct {
	Bio               string  `json:"bio"`
	Expertise         string  `json:"expertise"`
	YearsOfExperience int     `json:"years_of_experience"`
	HourlyRate        float64 `json:"hourly_rate"`
	LinkedinURL       string  `json:"linkedin_url,omitempty"`
	GithubURL         string  `json:"github_url,omitempty"`
}

// ApplyAsMentor files a mentor application for the logged-in user.
func (a *AuthClient) ApplyAsMentor(req MentorApplication) (*users.MentorProfile, error) {
	var profile users.MentorProfile
	if err := a.c.do(http.MethodPost, "/auth/mentor/apply", req, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

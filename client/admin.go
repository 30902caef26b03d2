package client

import (
	"net/http"

	"talesoul-backend/models/users"
)

// AdminClient covers the admin surface; every call requires an admin token.
type AdminClient struct {
	c *Client
}

// PendingMentors lists mentor applications awaiting review.
func (a *AdminClient) PendingMentors() ([]users.MentorProfile, error) {
	var pending []users.MentorProfile
	if err := a.c.do(http.MethodGet, "/admin/pending-mentors", nil, &pending); err != nil {
		return nil, err
	}
	return pending, nil
}

// ApproveMentor resolves an application; approve=false rejects it.
func (a *AdminClient) ApproveMentor(profileID uint, approve bool) (*users.MentorProfile, error) {
	body := map[string]interface{}{"mentor_profile_id": profileID, "approve": approve}
	var profile users.MentorProfile
	if err := a.c.do(http.MethodPost, "/admin/approve-mentor", body, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// Users lists every account.
func (a *AdminClient) Users() ([]users.User, error) {
	var list []users.User
	if err := a.c.do(http.MethodGet, "/admin/users", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// Stats returns the platform counters.
func (a *AdminClient) Stats() (map[string]int64, error) {
	stats := map[string]int64{}
	if err := a.c.do(http.MethodGet, "/admin/stats", nil, &stats); err != nil {
		return nil, err
	}
	return stats, nil
}

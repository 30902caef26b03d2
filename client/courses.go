package client

import (
	"net/http"
	"strconv"

	"talesoul-backend/models/courses"
)

// CoursesClient covers the course catalogue and enrollments.
type CoursesClient struct {
	c *Client
}

// List returns the published catalogue.
func (cc *CoursesClient) List() ([]courses.Course, error) {
	var list []courses.Course
	if err := cc.c.do(http.MethodGet, "/courses", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// Get fetches one course.
func (cc *CoursesClient) Get(id uint) (*courses.Course, error) {
	var course courses.Course
	if err := cc.c.do(http.MethodGet, pathf("/courses/%d", id), nil, &course); err != nil {
		return nil, err
	}
	return &course, nil
}

type CourseRequest struct {
	Title           string  `json:"title"`
	Description     string  `json:"description,omitempty"`
	Price           float64 `json:"price"`
	DurationMinutes int     `json:"duration_minutes,omitempty"`
	VideoURL        string  `json:"video_url,omitempty"`
	ThumbnailURL    string  `json:"thumbnail_url,omitempty"`
}

// Create adds an unpublished course owned by the logged-in mentor.
func (cc *CoursesClient) Create(req CourseRequest) (*courses.Course, error) {
	var course courses.Course
	if err := cc.c.do(http.MethodPost, "/courses", req, &course); err != nil {
		return nil, err
	}
	return &course, nil
}

// Publish flips a course into the public catalogue.
func (cc *CoursesClient) Publish(id uint) (*courses.Course, error) {
	var course courses.Course
	if err := cc.c.do(http.MethodPost, pathf("/courses/%d/publish", id), nil, &course); err != nil {
		return nil, err
	}
	return &course, nil
}

// MyCourses lists the courses the logged-in mentor teaches.
func (cc *CoursesClient) MyCourses() ([]courses.Course, error) {
	var list []courses.Course
	if err := cc.c.do(http.MethodGet, "/courses/my-courses", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// MyEnrollments lists the logged-in learner's enrollments.
func (cc *CoursesClient) MyEnrollments() ([]courses.Enrollment, error) {
	var list []courses.Enrollment
	if err := cc.c.do(http.MethodGet, "/courses/my-enrollments", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// ReportProgress persists a watch position. Each report fully replaces the
// stored value; use a ProgressTracker to coalesce rapid playback updates
// instead of calling this per tick.
func (cc *CoursesClient) ReportProgress(enrollmentID uint, percentage float64) (*courses.Enrollment, error) {
	path := pathf("/courses/enrollments/%d/progress", enrollmentID) +
		"?progress_percentage=" + strconv.FormatFloat(percentage, 'f', -1, 64)
	var enrollment courses.Enrollment
	if err := cc.c.do(http.MethodPatch, path, nil, &enrollment); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

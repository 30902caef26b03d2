package community

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"talesoul-backend/apperr"
	"talesoul-backend/controllers/authentication"
	"talesoul-backend/models/community"
)

type groupRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IsPrivate   bool   `json:"is_private"`
}

func CreateGroup(w http.ResponseWriter, r *http.Request, db *gorm.DB) {
	if _, err := authentication.RequireUser(r, db); err != nil {
		apperr.WriteJSON(w, err)
		return
	}

	var req groupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperr.WriteJSON(w, apperr.New(apperr.ValidationError, "invalid request body"))
		return
	}
	if req.Name == "" {
		apperr.WriteJSON(w, apperr.New(apperr.ValidationError, "name is required"))
		return
	}

	group := community.Group{Name: req.Name, Description: req.Description, IsPrivate: req.IsPrivate}
	if err := db.Create(&group).Error; err != nil {
		apperr.WriteJSON(w, err)
		return
	}
	authentication.WriteJSON(w, http.StatusCreated, &group)
}

func ListGroups(w http.ResponseWriter, r *http.Request, db *gorm.DB) {
	var groups []community.Group
	if err := db.Where("is_private = ?", false).Order("name").Find(&groups).Error; err != nil {
		apperr.WriteJSON(w, err)
		return
	}
	authentication.WriteJSON(w, http.StatusOK, groups)
}

func GetGroup(w http.ResponseWriter, r *http.Request, db *gorm.DB) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		apperr.WriteJSON(w, apperr.New(apperr.ValidationError, "invalid group id"))
		return
	}
	var group community.Group
	if err := db.First(&group, id).Error; err != nil {
		apperr.WriteJSON(w, apperr.New(apperr.NotFound, "group not found"))
		return
	}
	authentication.WriteJSON(w, http.StatusOK, &group)
}

type postRequest struct {
	GroupID uint   `json:"group_id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

func CreatePost(w http.ResponseWriter, r *http.Request, db *gorm.DB) {
	user, err := authentication.RequireUser(r, db)
	if err != nil {
		apperr.WriteJSON(w, err)
		return
	}

	var req postRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperr.WriteJSON(w, apperr.New(apperr.ValidationError, "invalid request body"))
		return
	}
	if req.Title == "" || req.Content == "" {
		apperr.WriteJSON(w, apperr.New(apperr.ValidationError, "title and content are required"))
		return
	}

	var group community.Group
	if err := db.First(&group, req.GroupID).Error; err != nil {
		apperr.WriteJSON(w, apperr.New(apperr.NotFound, "group not found"))
		return
	}

	post := community.Post{
		GroupID:  req.GroupID,
		AuthorID: user.ID,
		Title:    req.Title,
		Content:  req.Content,
	}
	if err := db.Create(&post).Error; err != nil {
		apperr.WriteJSON(w, err)
		return
	}
	authentication.WriteJSON(w, http.StatusCreated, &post)
}

// ListPosts returns posts newest first. The group_id query parameter is an
// exclusive filter: present means only that group, absent means the full
// unfiltered list. Filters never accumulate.
func ListPosts(w http.ResponseWriter, r *http.Request, db *gorm.DB) {
	query := db.Preload("Author")
	if raw := r.URL.Query().Get("group_id"); raw != "" {
		groupID, err := strconv.Atoi(raw)
		if err != nil {
			apperr.WriteJSON(w, apperr.New(apperr.ValidationError, "invalid group_id"))
			return
		}
		query = query.Where("group_id = ?", groupID)
	}

	var posts []community.Post
	if err := query.Order("created_at desc").Find(&posts).Error; err != nil {
		apperr.WriteJSON(w, err)
		return
	}
	authentication.WriteJSON(w, http.StatusOK, posts)
}

func GetPost(w http.ResponseWriter, r *http.Request, db *gorm.DB) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		apperr.WriteJSON(w, apperr.New(apperr.ValidationError, "invalid post id"))
		return
	}
	var post community.Post
	if err := db.Preload("Author").First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			apperr.WriteJSON(w, apperr.New(apperr.NotFound, "post not found"))
			return
		}
		apperr.WriteJSON(w, err)
		return
	}
	authentication.WriteJSON(w, http.StatusOK, &post)
}

// ListReplies returns a post's replies oldest first, the read order of a
// thread.
func ListReplies(w http.ResponseWriter, r *http.Request, db *gorm.DB) {
	postID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		apperr.WriteJSON(w, apperr.New(apperr.ValidationError, "invalid post id"))
		return
	}

	var replies []community.Reply
	if err := db.Preload("Author").Where("post_id = ?", postID).
		Order("created_at asc").Find(&replies).Error; err != nil {
		apperr.WriteJSON(w, err)
		return
	}
	authentication.WriteJSON(w, http.StatusOK, replies)
}

type replyRequest struct {
	PostID  uint   `json:"post_id"`
	Content string `json:"content"`
}

func CreateReply(w http.ResponseWriter, r *http.Request, db *gorm.DB) {
	user, err := authentication.RequireUser(r, db)
	if err != nil {
		apperr.WriteJSON(w, err)
		return
	}

	var req replyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperr.WriteJSON(w, apperr.New(apperr.ValidationError, "invalid request body"))
		return
	}
	if req.Content == "" {
		apperr.WriteJSON(w, apperr.New(apperr.ValidationError, "content is required"))
		return
	}

	var post community.Post
	if err := db.First(&post, req.PostID).Error; err != nil {
		apperr.WriteJSON(w, apperr.New(apperr.NotFound, "post not found"))
		return
	}

	reply := community.Reply{PostID: req.PostID, AuthorID: user.ID, Content: req.Content}
	if err := db.Create(&reply).Error; err != nil {
		apperr.WriteJSON(w, err)
		return
	}
	authentication.WriteJSON(w, http.StatusCreated, &reply)
}

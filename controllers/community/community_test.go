package community_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	communityctl "talesoul-backend/controllers/community"
	"talesoul-backend/models/community"
	"talesoul-backend/models/users"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&users.User{}, &community.Group{}, &community.Post{}, &community.Reply{},
	))
	return db
}

func seedPosts(t *testing.T, db *gorm.DB) (author users.User, groupA, groupB community.Group) {
	t.Helper()
	author = users.User{Email: "author@example.com", Password: "x", FullName: "Author", Role: users.RoleUser, IsActive: true}
	require.NoError(t, db.Create(&author).Error)
	groupA = community.Group{Name: "Go"}
	groupB = community.Group{Name: "Career"}
	require.NoError(t, db.Create(&groupA).Error)
	require.NoError(t, db.Create(&groupB).Error)
	for i, g := range []community.Group{groupA, groupA, groupB} {
		post := community.Post{GroupID: g.ID, AuthorID: author.ID,
			Title: fmt.Sprintf("post %d", i), Content: "body"}
		require.NoError(t, db.Create(&post).Error)
	}
	return author, groupA, groupB
}

func listPosts(t *testing.T, db *gorm.DB, query string) []community.Post {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/community/posts"+query, nil)
	rec := httptest.NewRecorder()
	communityctl.ListPosts(rec, req, db)
	require.Equal(t, http.StatusOK, rec.Code)
	var posts []community.Post
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &posts))
	return posts
}

func TestListPostsGroupFilterIsExclusive(t *testing.T) {
	db := newTestDB(t)
	_, groupA, _ := seedPosts(t, db)

	filtered := listPosts(t, db, fmt.Sprintf("?group_id=%d", groupA.ID))
	require.Len(t, filtered, 2)
	for _, p := range filtered {
		require.Equal(t, groupA.ID, p.GroupID)
	}

	// Going back to "all posts" returns the full unfiltered list, not the
	// union of whatever was selected before.
	all := listPosts(t, db, "")
	require.Len(t, all, 3)
}

func TestRepliesOrderedOldestFirst(t *testing.T) {
	db := newTestDB(t)
	author, groupA, _ := seedPosts(t, db)

	post := community.Post{GroupID: groupA.ID, AuthorID: author.ID, Title: "thread", Content: "body"}
	require.NoError(t, db.Create(&post).Error)

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		reply := community.Reply{PostID: post.ID, AuthorID: author.ID,
			Content: fmt.Sprintf("reply %d", i), CreatedAt: base.Add(time.Duration(i) * time.Minute)}
		require.NoError(t, db.Create(&reply).Error)
	}

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/community/posts/%d/replies", post.ID), nil)
	req = mux.SetURLVars(req, map[string]string{"id": fmt.Sprint(post.ID)})
	rec := httptest.NewRecorder()
	communityctl.ListReplies(rec, req, db)
	require.Equal(t, http.StatusOK, rec.Code)

	var replies []community.Reply
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &replies))
	require.Len(t, replies, 3)
	for i := 0; i < 3; i++ {
		require.Equal(t, fmt.Sprintf("reply %d", i), replies[i].Content)
	}
}

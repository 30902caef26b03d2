package client

import (
	"net/http"
	"sync"

	"talesoul-backend/models/community"
)

// CommunityClient covers groups, posts and replies. It carries the active
// post filter: selecting a group and selecting "all posts" are mutually
// exclusive, the newer choice always replaces the older one.
type CommunityClient struct {
	c *Client

	mu          sync.Mutex
	activeGroup *uint
}

// SelectGroup scopes subsequent Posts calls to one group.
func (cm *CommunityClient) SelectGroup(groupID uint) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.activeGroup = &groupID
}

// SelectAll clears the group filter; subsequent Posts calls return the full
// unfiltered list.
func (cm *CommunityClient) SelectAll() {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.activeGroup = nil
}

// Groups lists public community groups.
func (cm *CommunityClient) Groups() ([]community.Group, error) {
	var groups []community.Group
	if err := cm.c.do(http.MethodGet, "/community/groups", nil, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

// Posts lists posts under the active filter.
func (cm *CommunityClient) Posts() ([]community.Post, error) {
	cm.mu.Lock()
	path := "/community/posts"
	if cm.activeGroup != nil {
		path = pathf("/community/posts?group_id=%d", *cm.activeGroup)
	}
	cm.mu.Unlock()

	var posts []community.Post
	if err := cm.c.do(http.MethodGet, path, nil, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// Post fetches one post.
func (cm *CommunityClient) Post(id uint) (*community.Post, error) {
	var post community.Post
	if err := cm.c.do(http.MethodGet, pathf("/community/posts/%d", id), nil, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// Replies lists a post's replies oldest first.
func (cm *CommunityClient) Replies(postID uint) ([]community.Reply, error) {
	var replies []community.Reply
	if err := cm.c.do(http.MethodGet, pathf("/community/posts/%d/replies", postID), nil, &replies); err != nil {
		return nil, err
	}
	return replies, nil
}

type PostRequest struct {
	GroupID uint   `json:"group_id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// CreatePost publishes a post authored by the logged-in user.
func (cm *CommunityClient) CreatePost(req PostRequest) (*community.Post, error) {
	var post community.Post
	if err := cm.c.do(http.MethodPost, "/community/posts", req, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// Reply appends to a thread.
func (cm *CommunityClient) Reply(postID uint, content string) (*community.Reply, error) {
	body := map[string]interface{}{"post_id": postID, "content": content}
	var reply community.Reply
	if err := cm.c.do(http.MethodPost, "/community/replies", body, &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}

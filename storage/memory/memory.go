// Package memory implements the storage backend on mutex-guarded maps. It is
// ephemeral: contents live for the duration of the process and are reset only
// through the explicit Reset hook.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"socialfeed/storage"
	"socialfeed/storage/models"
)

type likeKey struct {
	userID string
	postID string
}

type followKey struct {
	followerID  string
	followingID string
}

type Backend struct {
	mu       sync.RWMutex
	users    map[string]models.User
	posts    map[string]models.Post
	comments map[string]models.Comment
	likes    map[likeKey]models.Like
	follows  map[followKey]models.Follow
}

func New() *Backend {
	b := &Backend{}
	b.reset()
	return b
}

// Reset drops all stored data. Test hook; never called on a serving path.
func (b *Backend) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.reset()
}

func (b *Backend) reset() {
	b.users = make(map[string]models.User)
	b.posts = make(map[string]models.Post)
	b.comments = make(map[string]models.Comment)
	b.likes = make(map[likeKey]models.Like)
	b.follows = make(map[followKey]models.Follow)
}

func (b *Backend) CreateUser(_ context.Context, user models.User) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, existing := range b.users {
		if existing.Email == user.Email {
			return &storage.DuplicateIdentityError{Field: "email"}
		}
	}
	for _, existing := range b.users {
		if existing.Username == user.Username {
			return &storage.DuplicateIdentityError{Field: "username"}
		}
	}
	b.users[user.ID] = user
	return nil
}

func (b *Backend) GetUser(_ context.Context, id string) (models.User, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	user, ok := b.users[id]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	return user, nil
}

func (b *Backend) GetUserByEmail(_ context.Context, email string) (models.User, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, user := range b.users {
		if user.Email == email {
			return user, nil
		}
	}
	return models.User{}, storage.ErrNotFound
}

func (b *Backend) GetUserByUsername(_ context.Context, username string) (models.User, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, user := range b.users {
		if user.Username == username {
			return user, nil
		}
	}
	return models.User{}, storage.ErrNotFound
}

func (b *Backend) DeleteUser(_ context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.users[id]; !ok {
		return storage.ErrNotFound
	}
	delete(b.users, id)

	deletedPosts := make(map[string]bool)
	for postID, post := range b.posts {
		if post.AuthorID == id {
			delete(b.posts, postID)
			deletedPosts[postID] = true
		}
	}
	for commentID, comment := range b.comments {
		if comment.AuthorID == id || deletedPosts[comment.PostID] {
			delete(b.comments, commentID)
		}
	}
	for key := range b.likes {
		if key.userID == id || deletedPosts[key.postID] {
			delete(b.likes, key)
		}
	}
	for key := range b.follows {
		if key.followerID == id || key.followingID == id {
			delete(b.follows, key)
		}
	}
	return nil
}

func (b *Backend) SuggestUsers(_ context.Context, viewerID string, limit int) ([]models.UserSummary, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	candidates := make([]models.UserSummary, 0, len(b.users))
	for id, user := range b.users {
		if viewerID != "" {
			if id == viewerID {
				continue
			}
			if _, ok := b.follows[followKey{followerID: viewerID, followingID: id}]; ok {
				continue
			}
		}
		candidates = append(candidates, user.Summary())
	}

	// Username order keeps the result deterministic for a fixed input set.
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Username < candidates[j].Username
	})
	if limit >= 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates, nil
}

func (b *Backend) UserStats(_ context.Context, userID string) (models.UserStats, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var stats models.UserStats
	for key := range b.follows {
		if key.followingID == userID {
			stats.FollowersCount++
		}
		if key.followerID == userID {
			stats.FollowingCount++
		}
	}
	for _, post := range b.posts {
		if post.AuthorID == userID {
			stats.PostsCount++
		}
	}
	return stats, nil
}

func (b *Backend) ListUserIDs(_ context.Context) ([]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	ids := make([]string, 0, len(b.users))
	for id := range b.users {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (b *Backend) CreatePost(_ context.Context, post models.Post) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.users[post.AuthorID]; !ok {
		return storage.ErrNotFound
	}
	b.posts[post.ID] = post
	return nil
}

func (b *Backend) GetPost(_ context.Context, id string) (models.Post, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	post, ok := b.posts[id]
	if !ok {
		return models.Post{}, storage.ErrNotFound
	}
	return post, nil
}

func (b *Backend) CreateComment(_ context.Context, comment models.Comment) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.posts[comment.PostID]; !ok {
		return storage.ErrNotFound
	}
	b.comments[comment.ID] = comment
	return nil
}

func (b *Backend) ListComments(_ context.Context, postID string) ([]models.CommentView, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	views := make([]models.CommentView, 0)
	for _, comment := range b.comments {
		if comment.PostID != postID {
			continue
		}
		view := models.CommentView{Comment: comment}
		if author, ok := b.users[comment.AuthorID]; ok {
			view.AuthorName = author.Name
			view.AuthorAvatar = author.Avatar
		}
		views = append(views, view)
	}

	// Oldest first, opposite of the feed.
	sort.Slice(views, func(i, j int) bool {
		if !views[i].CreatedAt.Equal(views[j].CreatedAt) {
			return views[i].CreatedAt.Before(views[j].CreatedAt)
		}
		return views[i].ID < views[j].ID
	})
	return views, nil
}

func (b *Backend) CountComments(_ context.Context, postID string) (int64, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.countComments(postID), nil
}

func (b *Backend) countComments(postID string) int64 {
	var count int64
	for _, comment := range b.comments {
		if comment.PostID == postID {
			count++
		}
	}
	return count
}

func (b *Backend) ListFeed(_ context.Context, viewerID, scopeUserID string) ([]models.FeedEntry, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	entries := make([]models.FeedEntry, 0, len(b.posts))
	for _, post := range b.posts {
		if scopeUserID != "" && post.AuthorID != scopeUserID {
			continue
		}
		entry := models.FeedEntry{
			Post:          post,
			LikesCount:    b.countLikes(post.ID),
			CommentsCount: b.countComments(post.ID),
		}
		if author, ok := b.users[post.AuthorID]; ok {
			entry.AuthorName = author.Name
			entry.AuthorUsername = author.Username
			entry.AuthorAvatar = author.Avatar
		}
		if viewerID != "" {
			_, entry.IsLiked = b.likes[likeKey{userID: viewerID, postID: post.ID}]
		}
		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].CreatedAt.Equal(entries[j].CreatedAt) {
			return entries[i].CreatedAt.After(entries[j].CreatedAt)
		}
		return entries[i].ID < entries[j].ID
	})
	return entries, nil
}

func (b *Backend) ToggleLike(_ context.Context, userID, postID string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.posts[postID]; !ok {
		return false, storage.ErrNotFound
	}

	key := likeKey{userID: userID, postID: postID}
	if _, ok := b.likes[key]; ok {
		delete(b.likes, key)
		return false, nil
	}
	b.likes[key] = models.Like{
		UserID:    userID,
		PostID:    postID,
		CreatedAt: time.Now().UTC(),
	}
	return true, nil
}

func (b *Backend) CountLikes(_ context.Context, postID string) (int64, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.countLikes(postID), nil
}

func (b *Backend) countLikes(postID string) int64 {
	var count int64
	for key := range b.likes {
		if key.postID == postID {
			count++
		}
	}
	return count
}

func (b *Backend) ToggleFollow(_ context.Context, followerID, followingID string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.users[followingID]; !ok {
		return false, storage.ErrNotFound
	}

	key := followKey{followerID: followerID, followingID: followingID}
	if _, ok := b.follows[key]; ok {
		delete(b.follows, key)
		return false, nil
	}
	b.follows[key] = models.Follow{
		FollowerID:  followerID,
		FollowingID: followingID,
		CreatedAt:   time.Now().UTC(),
	}
	return true, nil
}

func (b *Backend) IsFollowing(_ context.Context, followerID, followingID string) (bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	_, ok := b.follows[followKey{followerID: followerID, followingID: followingID}]
	return ok, nil
}

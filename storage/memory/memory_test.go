package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"socialfeed/storage"
	"socialfeed/storage/models"
)

func seedUser(t *testing.T, b *Backend, id, name, username, email string) models.User {
	t.Helper()
	user := models.User{
		ID:        id,
		Name:      name,
		Username:  username,
		Email:     email,
		CreatedAt: time.Now().UTC(),
	}
	if err := b.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("CreateUser(%s): %v", username, err)
	}
	return user
}

func seedPost(t *testing.T, b *Backend, id, authorID string, createdAt time.Time) models.Post {
	t.Helper()
	post := models.Post{
		ID:        id,
		AuthorID:  authorID,
		Content:   "content of " + id,
		CreatedAt: createdAt,
	}
	if err := b.CreatePost(context.Background(), post); err != nil {
		t.Fatalf("CreatePost(%s): %v", id, err)
	}
	return post
}

func TestCreateUserDuplicateIdentity(t *testing.T) {
	tests := []struct {
		name      string
		username  string
		email     string
		wantField string
	}{
		{"duplicate email", "other", "alice@example.com", "email"},
		{"duplicate username", "alice", "other@example.com", "username"},
		{"both duplicated reports email", "alice", "alice@example.com", "email"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New()
			seedUser(t, b, "u1", "Alice", "alice", "alice@example.com")

			err := b.CreateUser(context.Background(), models.User{
				ID:       "u2",
				Name:     "Other",
				Username: tt.username,
				Email:    tt.email,
			})

			var duplicate *storage.DuplicateIdentityError
			if !errors.As(err, &duplicate) {
				t.Fatalf("CreateUser error = %v, want DuplicateIdentityError", err)
			}
			if duplicate.Field != tt.wantField {
				t.Errorf("duplicate field = %q, want %q", duplicate.Field, tt.wantField)
			}
		})
	}
}

func TestToggleLike(t *testing.T) {
	b := New()
	ctx := context.Background()
	user := seedUser(t, b, "u1", "Alice", "alice", "alice@example.com")
	post := seedPost(t, b, "p1", user.ID, time.Now().UTC())

	liked, err := b.ToggleLike(ctx, user.ID, post.ID)
	if err != nil {
		t.Fatalf("first toggle: %v", err)
	}
	if !liked {
		t.Error("first toggle = false, want true")
	}
	if count, _ := b.CountLikes(ctx, post.ID); count != 1 {
		t.Errorf("likes after first toggle = %d, want 1", count)
	}

	liked, err = b.ToggleLike(ctx, user.ID, post.ID)
	if err != nil {
		t.Fatalf("second toggle: %v", err)
	}
	if liked {
		t.Error("second toggle = true, want false")
	}
	if count, _ := b.CountLikes(ctx, post.ID); count != 0 {
		t.Errorf("likes after second toggle = %d, want 0", count)
	}
}

func TestToggleLikeMissingPost(t *testing.T) {
	b := New()
	seedUser(t, b, "u1", "Alice", "alice", "alice@example.com")

	_, err := b.ToggleLike(context.Background(), "u1", "nope")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("ToggleLike error = %v, want ErrNotFound", err)
	}
}

func TestToggleLikeConcurrent(t *testing.T) {
	b := New()
	ctx := context.Background()
	user := seedUser(t, b, "u1", "Alice", "alice", "alice@example.com")
	post := seedPost(t, b, "p1", user.ID, time.Now().UTC())

	const pairs = 50
	results := make(chan bool, 2*pairs)
	var wg sync.WaitGroup
	for i := 0; i < 2*pairs; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			liked, err := b.ToggleLike(ctx, user.ID, post.ID)
			if err != nil {
				t.Errorf("concurrent toggle: %v", err)
				return
			}
			results <- liked
		}()
	}
	wg.Wait()
	close(results)

	// An even number of atomic flips ends absent, with exactly half of the
	// calls observing the present state.
	var likes, unlikes int
	for liked := range results {
		if liked {
			likes++
		} else {
			unlikes++
		}
	}
	if likes != pairs || unlikes != pairs {
		t.Errorf("toggle outcomes = %d likes / %d unlikes, want %d / %d", likes, unlikes, pairs, pairs)
	}
	if count, _ := b.CountLikes(ctx, post.ID); count != 0 {
		t.Errorf("final like count = %d, want 0", count)
	}
}

func TestToggleFollow(t *testing.T) {
	b := New()
	ctx := context.Background()
	alice := seedUser(t, b, "u1", "Alice", "alice", "alice@example.com")
	bob := seedUser(t, b, "u2", "Bob", "bob", "bob@example.com")

	following, err := b.ToggleFollow(ctx, alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("first toggle: %v", err)
	}
	if !following {
		t.Error("first toggle = false, want true")
	}

	got, err := b.IsFollowing(ctx, alice.ID, bob.ID)
	if err != nil || !got {
		t.Errorf("IsFollowing = (%v, %v), want (true, nil)", got, err)
	}
	if got, _ := b.IsFollowing(ctx, bob.ID, alice.ID); got {
		t.Error("reverse edge reported as following")
	}

	following, err = b.ToggleFollow(ctx, alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("second toggle: %v", err)
	}
	if following {
		t.Error("second toggle = true, want false")
	}
	if got, _ := b.IsFollowing(ctx, alice.ID, bob.ID); got {
		t.Error("edge still present after unfollow")
	}
}

func TestListFeedOrdering(t *testing.T) {
	b := New()
	ctx := context.Background()
	alice := seedUser(t, b, "u1", "Alice", "alice", "alice@example.com")
	bob := seedUser(t, b, "u2", "Bob", "bob", "bob@example.com")

	base := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	seedPost(t, b, "p1", alice.ID, base)
	seedPost(t, b, "p3", bob.ID, base.Add(time.Minute))
	// Same timestamp as p3; id order breaks the tie.
	seedPost(t, b, "p2", alice.ID, base.Add(time.Minute))

	entries, err := b.ListFeed(ctx, "", "")
	if err != nil {
		t.Fatalf("ListFeed: %v", err)
	}

	gotOrder := make([]string, len(entries))
	for i, entry := range entries {
		gotOrder[i] = entry.ID
	}
	wantOrder := []string{"p2", "p3", "p1"}
	if len(gotOrder) != len(wantOrder) {
		t.Fatalf("feed length = %d, want %d", len(gotOrder), len(wantOrder))
	}
	for i := range wantOrder {
		if gotOrder[i] != wantOrder[i] {
			t.Errorf("feed[%d] = %s, want %s", i, gotOrder[i], wantOrder[i])
		}
	}

	if entries[0].AuthorUsername != "alice" {
		t.Errorf("feed[0] author username = %q, want %q", entries[0].AuthorUsername, "alice")
	}
}

func TestListFeedScopeAndViewer(t *testing.T) {
	b := New()
	ctx := context.Background()
	alice := seedUser(t, b, "u1", "Alice", "alice", "alice@example.com")
	bob := seedUser(t, b, "u2", "Bob", "bob", "bob@example.com")
	post := seedPost(t, b, "p1", alice.ID, time.Now().UTC())
	seedPost(t, b, "p2", bob.ID, time.Now().UTC())

	if _, err := b.ToggleLike(ctx, bob.ID, post.ID); err != nil {
		t.Fatalf("ToggleLike: %v", err)
	}

	scoped, err := b.ListFeed(ctx, bob.ID, alice.ID)
	if err != nil {
		t.Fatalf("ListFeed scoped: %v", err)
	}
	if len(scoped) != 1 || scoped[0].ID != "p1" {
		t.Fatalf("scoped feed = %v, want only p1", scoped)
	}
	if !scoped[0].IsLiked {
		t.Error("IsLiked = false for liking viewer, want true")
	}
	if scoped[0].LikesCount != 1 {
		t.Errorf("LikesCount = %d, want 1", scoped[0].LikesCount)
	}

	anonymous, err := b.ListFeed(ctx, "", alice.ID)
	if err != nil {
		t.Fatalf("ListFeed anonymous: %v", err)
	}
	if anonymous[0].IsLiked {
		t.Error("IsLiked = true for anonymous viewer, want false")
	}
}

func TestComments(t *testing.T) {
	b := New()
	ctx := context.Background()
	alice := seedUser(t, b, "u1", "Alice", "alice", "alice@example.com")
	post := seedPost(t, b, "p1", alice.ID, time.Now().UTC())

	base := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	comments := []models.Comment{
		{ID: "c2", PostID: post.ID, AuthorID: alice.ID, Content: "second", CreatedAt: base.Add(time.Minute)},
		{ID: "c1", PostID: post.ID, AuthorID: alice.ID, Content: "first", CreatedAt: base},
	}
	for _, comment := range comments {
		if err := b.CreateComment(ctx, comment); err != nil {
			t.Fatalf("CreateComment(%s): %v", comment.ID, err)
		}
	}

	views, err := b.ListComments(ctx, post.ID)
	if err != nil {
		t.Fatalf("ListComments: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("comment count = %d, want 2", len(views))
	}
	if views[0].ID != "c1" || views[1].ID != "c2" {
		t.Errorf("comment order = [%s %s], want [c1 c2]", views[0].ID, views[1].ID)
	}
	if views[0].AuthorName != "Alice" {
		t.Errorf("comment author name = %q, want %q", views[0].AuthorName, "Alice")
	}

	if count, _ := b.CountComments(ctx, post.ID); count != 2 {
		t.Errorf("CountComments = %d, want 2", count)
	}

	err = b.CreateComment(ctx, models.Comment{ID: "c3", PostID: "nope", AuthorID: alice.ID, Content: "x"})
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("comment on missing post error = %v, want ErrNotFound", err)
	}
}

func TestSuggestUsers(t *testing.T) {
	b := New()
	ctx := context.Background()
	alice := seedUser(t, b, "u1", "Alice", "alice", "alice@example.com")
	bob := seedUser(t, b, "u2", "Bob", "bob", "bob@example.com")
	seedUser(t, b, "u3", "Carol", "carol", "carol@example.com")
	seedUser(t, b, "u4", "Dave", "dave", "dave@example.com")

	if _, err := b.ToggleFollow(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("ToggleFollow: %v", err)
	}

	suggestions, err := b.SuggestUsers(ctx, alice.ID, 10)
	if err != nil {
		t.Fatalf("SuggestUsers: %v", err)
	}
	gotUsernames := make([]string, len(suggestions))
	for i, s := range suggestions {
		gotUsernames[i] = s.Username
	}
	wantUsernames := []string{"carol", "dave"}
	if len(gotUsernames) != len(wantUsernames) {
		t.Fatalf("suggestions = %v, want %v", gotUsernames, wantUsernames)
	}
	for i := range wantUsernames {
		if gotUsernames[i] != wantUsernames[i] {
			t.Errorf("suggestions[%d] = %s, want %s", i, gotUsernames[i], wantUsernames[i])
		}
	}

	limited, err := b.SuggestUsers(ctx, alice.ID, 1)
	if err != nil {
		t.Fatalf("SuggestUsers limited: %v", err)
	}
	if len(limited) != 1 || limited[0].Username != "carol" {
		t.Errorf("limited suggestions = %v, want [carol]", limited)
	}

	anonymous, err := b.SuggestUsers(ctx, "", 10)
	if err != nil {
		t.Fatalf("SuggestUsers anonymous: %v", err)
	}
	if len(anonymous) != 4 {
		t.Errorf("anonymous suggestion count = %d, want 4", len(anonymous))
	}
}

func TestUserStats(t *testing.T) {
	b := New()
	ctx := context.Background()
	alice := seedUser(t, b, "u1", "Alice", "alice", "alice@example.com")
	bob := seedUser(t, b, "u2", "Bob", "bob", "bob@example.com")
	carol := seedUser(t, b, "u3", "Carol", "carol", "carol@example.com")

	seedPost(t, b, "p1", alice.ID, time.Now().UTC())
	seedPost(t, b, "p2", alice.ID, time.Now().UTC())
	if _, err := b.ToggleFollow(ctx, bob.ID, alice.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := b.ToggleFollow(ctx, carol.ID, alice.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := b.ToggleFollow(ctx, alice.ID, bob.ID); err != nil {
		t.Fatal(err)
	}

	stats, err := b.UserStats(ctx, alice.ID)
	if err != nil {
		t.Fatalf("UserStats: %v", err)
	}
	want := models.UserStats{FollowersCount: 2, FollowingCount: 1, PostsCount: 2}
	if stats != want {
		t.Errorf("UserStats = %+v, want %+v", stats, want)
	}
}

func TestDeleteUserCascades(t *testing.T) {
	b := New()
	ctx := context.Background()
	alice := seedUser(t, b, "u1", "Alice", "alice", "alice@example.com")
	bob := seedUser(t, b, "u2", "Bob", "bob", "bob@example.com")

	alicePost := seedPost(t, b, "p1", alice.ID, time.Now().UTC())
	bobPost := seedPost(t, b, "p2", bob.ID, time.Now().UTC())

	if err := b.CreateComment(ctx, models.Comment{ID: "c1", PostID: bobPost.ID, AuthorID: alice.ID, Content: "hi"}); err != nil {
		t.Fatal(err)
	}
	if _, err := b.ToggleLike(ctx, bob.ID, alicePost.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := b.ToggleFollow(ctx, bob.ID, alice.ID); err != nil {
		t.Fatal(err)
	}

	if err := b.DeleteUser(ctx, alice.ID); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}

	if _, err := b.GetUser(ctx, alice.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetUser after delete = %v, want ErrNotFound", err)
	}
	if _, err := b.GetPost(ctx, alicePost.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("deleted user's post still present: %v", err)
	}
	if count, _ := b.CountComments(ctx, bobPost.ID); count != 0 {
		t.Errorf("deleted user's comments still counted: %d", count)
	}
	if got, _ := b.IsFollowing(ctx, bob.ID, alice.ID); got {
		t.Error("follow edge to deleted user still present")
	}

	if err := b.DeleteUser(ctx, alice.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("second delete = %v, want ErrNotFound", err)
	}
}

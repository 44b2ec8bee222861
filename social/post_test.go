package social

import (
	"context"
	"testing"

	"github.com/Luismorlan/rambagiza/model"
	"github.com/Luismorlan/rambagiza/utils"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func createPost(t *testing.T, s *Service, authorID string, title string, v model.Visibility, allowComments bool) *model.Post {
	post, err := s.CreatePost(context.Background(), authorID, PostInput{
		Title:         title,
		Body:          "body of " + title,
		Visibility:    v,
		AllowComments: allowComments,
	})
	require.Nil(t, err)
	return post
}

func titles(posts []model.Post) []string {
	res := []string{}
	for _, p := range posts {
		res = append(res, p.Title)
	}
	return res
}

func countRows(db *gorm.DB, value interface{}) int64 {
	var count int64
	db.Model(value).Count(&count)
	return count
}

func TestCreateAndEditPost(t *testing.T) {
	s, db := newTestService(t)
	ctx := context.Background()
	author := utils.TestCreateUser(t, db, "author")
	other := utils.TestCreateUser(t, db, "other")

	_, err := s.CreatePost(ctx, author.Id, PostInput{Title: " ", Body: "x"})
	assert.Equal(t, ErrEmptyPost, err)
	_, err = s.CreatePost(ctx, author.Id, PostInput{Title: "t", Body: "x", Visibility: "everyone"})
	assert.NotNil(t, err)

	post, err := s.CreatePost(ctx, author.Id, PostInput{Title: "Hello", Body: "World", ImageUrl: "https://cdn/p.png"})
	require.Nil(t, err)
	assert.Equal(t, model.VisibilityPublic, post.Visibility)
	assert.Nil(t, post.LastUpdatedAt)

	_, err = s.EditPost(ctx, post.Id, other.Id, PostInput{Title: "Hacked", Body: "!"})
	assert.Equal(t, ErrNotPostAuthor, err)
	_, err = s.EditPost(ctx, "missing", author.Id, PostInput{Title: "a", Body: "b"})
	assert.Equal(t, ErrPostNotFound, err)

	edited, err := s.EditPost(ctx, post.Id, author.Id, PostInput{
		Title:         "Hello again",
		Body:          "World again",
		Visibility:    model.VisibilityFriends,
		AllowComments: true,
	})
	require.Nil(t, err)
	assert.NotNil(t, edited.LastUpdatedAt)

	fetched, err := s.GetPost(ctx, post.Id, author.Id)
	require.Nil(t, err)
	assert.Equal(t, "Hello again", fetched.Title)
	assert.Equal(t, model.VisibilityFriends, fetched.Visibility)
	assert.Equal(t, "https://cdn/p.png", fetched.ImageUrl)
	assert.True(t, fetched.AllowComments)
	require.NotNil(t, fetched.Author)
	assert.Equal(t, author.Id, fetched.Author.Id)
}

func TestDeletePost(t *testing.T) {
	s, db := newTestService(t)
	ctx := context.Background()
	author := utils.TestCreateUser(t, db, "author")
	fan := utils.TestCreateUser(t, db, "fan")

	post := createPost(t, s, author.Id, "doomed", model.VisibilityPublic, true)
	kept := createPost(t, s, author.Id, "kept", model.VisibilityPublic, true)
	require.Nil(t, s.LikePost(ctx, post.Id, fan.Id))
	require.Nil(t, s.LikePost(ctx, kept.Id, fan.Id))
	_, err := s.CommentPost(ctx, post.Id, fan.Id, "nice")
	require.Nil(t, err)

	assert.Equal(t, ErrNotPostAuthor, s.DeletePost(ctx, post.Id, fan.Id))
	require.Nil(t, s.DeletePost(ctx, post.Id, author.Id))
	assert.Equal(t, ErrPostNotFound, s.DeletePost(ctx, post.Id, author.Id))

	assert.Equal(t, int64(1), countRows(db, &model.Post{}))
	assert.Equal(t, int64(1), countRows(db, &model.Like{}))
	assert.Equal(t, int64(0), countRows(db, &model.Comment{}))
}

func TestListPublicPostsPagination(t *testing.T) {
	s, db := newTestService(t)
	ctx := context.Background()
	author := utils.TestCreateUser(t, db, "author")

	for _, title := range []string{"p1", "p2", "p3"} {
		createPost(t, s, author.Id, title, model.VisibilityPublic, false)
	}
	createPost(t, s, author.Id, "secret", model.VisibilityPrivate, false)
	createPost(t, s, author.Id, "close", model.VisibilityFriends, false)

	page, err := s.ListPublicPosts(ctx, 1)
	require.Nil(t, err)
	assert.Equal(t, int64(3), page.Total)
	assert.Equal(t, 2, page.Pages)
	assert.Len(t, page.Posts, 2)
	assert.False(t, page.HasPrev())
	assert.True(t, page.HasNext())

	second, err := s.ListPublicPosts(ctx, 2)
	require.Nil(t, err)
	assert.Len(t, second.Posts, 1)
	assert.True(t, second.HasPrev())
	assert.False(t, second.HasNext())

	all := append(titles(page.Posts), titles(second.Posts)...)
	assert.ElementsMatch(t, []string{"p1", "p2", "p3"}, all)

	clamped, err := s.ListPublicPosts(ctx, 99)
	require.Nil(t, err)
	assert.Equal(t, 2, clamped.Page)
	clamped, err = s.ListPublicPosts(ctx, -1)
	require.Nil(t, err)
	assert.Equal(t, 1, clamped.Page)
}

func TestListUserPostsVisibility(t *testing.T) {
	s, db := newTestService(t)
	ctx := context.Background()
	author := utils.TestCreateUser(t, db, "author")
	friend := utils.TestCreateUser(t, db, "friend")
	stranger := utils.TestCreateUser(t, db, "stranger")

	createPost(t, s, author.Id, "public", model.VisibilityPublic, false)
	createPost(t, s, author.Id, "private", model.VisibilityPrivate, false)
	createPost(t, s, author.Id, "friends", model.VisibilityFriends, false)
	require.Nil(t, s.SendFriendRequest(ctx, friend.Id, author.Id))
	require.Nil(t, s.AcceptFriend(ctx, author.Id, friend.Id))

	cases := []struct {
		viewer string
		want   []string
	}{
		{author.Id, []string{"public", "private", "friends"}},
		{friend.Id, []string{"public", "friends"}},
		{stranger.Id, []string{"public"}},
		{"", []string{"public"}},
	}
	for _, c := range cases {
		posts, err := s.ListUserPosts(ctx, author.Id, c.viewer)
		require.Nil(t, err)
		got := titles(posts)
		assert.ElementsMatch(t, c.want, got, "viewer %s: %s", c.viewer, cmp.Diff(c.want, got))
	}
}

func TestLikesAndComments(t *testing.T) {
	s, db := newTestService(t)
	ctx := context.Background()
	author := utils.TestCreateUser(t, db, "author")
	fan := utils.TestCreateUser(t, db, "fan")

	open := createPost(t, s, author.Id, "open", model.VisibilityPublic, true)
	closed := createPost(t, s, author.Id, "closed", model.VisibilityPublic, false)
	hidden := createPost(t, s, author.Id, "hidden", model.VisibilityPrivate, true)

	// duplicates are allowed
	require.Nil(t, s.LikePost(ctx, open.Id, fan.Id))
	require.Nil(t, s.LikePost(ctx, open.Id, fan.Id))
	assert.Equal(t, ErrPostNotFound, s.LikePost(ctx, hidden.Id, fan.Id))
	assert.Equal(t, ErrPostNotFound, s.LikePost(ctx, "missing", fan.Id))

	_, err := s.CommentPost(ctx, closed.Id, fan.Id, "hello")
	assert.Equal(t, ErrCommentsDisabled, err)
	_, err = s.CommentPost(ctx, open.Id, fan.Id, "  ")
	assert.Equal(t, ErrEmptyComment, err)
	_, err = s.CommentPost(ctx, open.Id, fan.Id, "first")
	require.Nil(t, err)
	_, err = s.CommentPost(ctx, open.Id, author.Id, "thanks")
	require.Nil(t, err)

	post, err := s.GetPost(ctx, open.Id, fan.Id)
	require.Nil(t, err)
	assert.Len(t, post.Likes, 2)
	require.Len(t, post.Comments, 2)
	bodies := []string{post.Comments[0].Body, post.Comments[1].Body}
	assert.ElementsMatch(t, []string{"first", "thanks"}, bodies)
	for _, c := range post.Comments {
		require.NotNil(t, c.User)
	}
}

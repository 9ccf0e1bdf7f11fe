package blogservice

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/automaatte/platform/internal/authservice"
	"github.com/automaatte/platform/internal/common"
)

func newTestBlogService(t *testing.T) (*BlogService, *sql.DB) {
	db := common.TestDB("file://../../migrations", t)
	return NewBlogService(db, nil), db
}

func seedProfile(t *testing.T, db *sql.DB, name, email string) *authservice.User {
	t.Helper()

	var id string
	err := db.QueryRow("INSERT INTO profiles (name, email) VALUES ($1, $2) RETURNING id", name, email).Scan(&id)
	require.NoError(t, err)

	return &authservice.User{ID: id, Name: name, Email: email, UserType: authservice.UserTypeFree}
}

func TestCreateBlog(t *testing.T) {
	s, db := newTestBlogService(t)
	author := seedProfile(t, db, "author", "author@example.com")
	ctx := context.Background()

	t.Run("defaults to draft without published_at", func(t *testing.T) {
		blog, err := s.CreateBlog(ctx, author, &CreateBlogRequest{
			Title:   "Automation Basics",
			Content: "A primer.",
		})
		require.NoError(t, err)

		assert.Equal(t, StatusDraft, blog.Status)
		assert.Equal(t, "automation-basics", blog.Slug)
		assert.Nil(t, blog.PublishedAt)
		assert.Equal(t, author.ID, blog.Author.ID)
		assert.Equal(t, []string{}, blog.Tags)
	})

	t.Run("published gets published_at", func(t *testing.T) {
		blog, err := s.CreateBlog(ctx, author, &CreateBlogRequest{
			Title:   "Hello, World!",
			Content: "First post.",
			Status:  StatusPublished,
			Tags:    []string{"intro"},
		})
		require.NoError(t, err)

		assert.Equal(t, StatusPublished, blog.Status)
		assert.Equal(t, "hello-world", blog.Slug)
		assert.NotNil(t, blog.PublishedAt)
	})

	t.Run("duplicate slug", func(t *testing.T) {
		_, err := s.CreateBlog(ctx, author, &CreateBlogRequest{
			Title:   "Hello, World!",
			Content: "Same slug.",
		})
		assert.ErrorIs(t, err, ErrDuplicateSlug)
	})

	t.Run("validation", func(t *testing.T) {
		_, err := s.CreateBlog(ctx, author, &CreateBlogRequest{Content: "no title"})
		assert.ErrorAs(t, err, &common.ValidationError{})

		_, err = s.CreateBlog(ctx, author, &CreateBlogRequest{Title: "Bad Status", Content: "x", Status: "pending"})
		assert.ErrorAs(t, err, &common.ValidationError{})
	})

	t.Run("anonymous author", func(t *testing.T) {
		_, err := s.CreateBlog(ctx, nil, &CreateBlogRequest{Title: "Nope", Content: "x"})
		assert.ErrorIs(t, err, ErrAuthRequired)
	})

	t.Run("unknown author", func(t *testing.T) {
		ghost := &authservice.User{ID: "00000000-0000-0000-0000-000000000000"}
		_, err := s.CreateBlog(ctx, ghost, &CreateBlogRequest{Title: "Ghost Post", Content: "x"})
		assert.ErrorIs(t, err, ErrAuthorForeignKey)
	})
}

func TestUpdateBlog(t *testing.T) {
	s, db := newTestBlogService(t)
	author := seedProfile(t, db, "author", "author@example.com")
	ctx := context.Background()

	blog, err := s.CreateBlog(ctx, author, &CreateBlogRequest{
		Title:   "Work In Progress",
		Content: "First draft.",
	})
	require.NoError(t, err)

	t.Run("publishing stamps published_at", func(t *testing.T) {
		status := StatusPublished
		updated, err := s.UpdateBlog(ctx, author, &UpdateBlogRequest{ID: blog.ID, Status: &status})
		require.NoError(t, err)

		assert.Equal(t, StatusPublished, updated.Status)
		assert.NotNil(t, updated.PublishedAt)
		assert.Equal(t, "Work In Progress", updated.Title)
	})

	t.Run("archiving keeps published_at", func(t *testing.T) {
		status := StatusArchived
		updated, err := s.UpdateBlog(ctx, author, &UpdateBlogRequest{ID: blog.ID, Status: &status})
		require.NoError(t, err)

		assert.Equal(t, StatusArchived, updated.Status)
		assert.NotNil(t, updated.PublishedAt)
	})

	t.Run("new title rederives the slug", func(t *testing.T) {
		title := "Finished & Shipped"
		updated, err := s.UpdateBlog(ctx, author, &UpdateBlogRequest{ID: blog.ID, Title: &title})
		require.NoError(t, err)

		assert.Equal(t, "finished-shipped", updated.Slug)
	})

	t.Run("content-only update leaves the rest alone", func(t *testing.T) {
		content := "Final text."
		updated, err := s.UpdateBlog(ctx, author, &UpdateBlogRequest{ID: blog.ID, Content: &content})
		require.NoError(t, err)

		assert.Equal(t, "Final text.", updated.Content)
		assert.Equal(t, "Finished & Shipped", updated.Title)
	})

	t.Run("unknown id", func(t *testing.T) {
		title := "Ghost"
		_, err := s.UpdateBlog(ctx, author, &UpdateBlogRequest{ID: "00000000-0000-0000-0000-000000000000", Title: &title})
		assert.ErrorIs(t, err, ErrRecordNotFound)
	})
}

func TestDeleteBlog(t *testing.T) {
	s, db := newTestBlogService(t)
	author := seedProfile(t, db, "author", "author@example.com")
	ctx := context.Background()

	blog, err := s.CreateBlog(ctx, author, &CreateBlogRequest{Title: "Short Lived", Content: "x"})
	require.NoError(t, err)

	assert.NoError(t, s.DeleteBlog(ctx, blog.ID))
	assert.ErrorIs(t, s.DeleteBlog(ctx, blog.ID), ErrRecordNotFound)
}

func TestListBlogs(t *testing.T) {
	s, db := newTestBlogService(t)
	author := seedProfile(t, db, "author", "author@example.com")
	reader := seedProfile(t, db, "reader", "reader@example.com")
	ctx := context.Background()

	first, err := s.CreateBlog(ctx, author, &CreateBlogRequest{
		Title:   "Alpha Release",
		Content: "Announcing the alpha.",
		Status:  StatusPublished,
		Tags:    []string{"release", "news"},
	})
	require.NoError(t, err)

	second, err := s.CreateBlog(ctx, author, &CreateBlogRequest{
		Title:   "Beta Roadmap",
		Content: "Where the beta is going.",
		Status:  StatusPublished,
		Tags:    []string{"roadmap"},
	})
	require.NoError(t, err)

	_, err = s.CreateBlog(ctx, author, &CreateBlogRequest{
		Title:   "Secret Draft",
		Content: "Not ready yet.",
	})
	require.NoError(t, err)

	t.Run("anonymous default hides drafts", func(t *testing.T) {
		blogs, err := s.ListBlogs(ctx, nil, Filters{})
		require.NoError(t, err)

		assert.Len(t, blogs, 2)
		for _, b := range blogs {
			assert.Equal(t, StatusPublished, b.Status)
		}
	})

	t.Run("tag filter", func(t *testing.T) {
		blogs, err := s.ListBlogs(ctx, nil, Filters{Tags: []string{"roadmap"}})
		require.NoError(t, err)

		assert.Len(t, blogs, 1)
		assert.Equal(t, second.ID, blogs[0].ID)
	})

	t.Run("search", func(t *testing.T) {
		blogs, err := s.ListBlogs(ctx, nil, Filters{Search: "alpha"})
		require.NoError(t, err)

		assert.Len(t, blogs, 1)
		assert.Equal(t, first.ID, blogs[0].ID)
	})

	t.Run("sorting by title", func(t *testing.T) {
		blogs, err := s.ListBlogs(ctx, nil, Filters{SortBy: "title", SortOrder: "asc"})
		require.NoError(t, err)

		require.Len(t, blogs, 2)
		assert.Equal(t, "Alpha Release", blogs[0].Title)
		assert.Equal(t, "Beta Roadmap", blogs[1].Title)
	})

	t.Run("invalid sort column", func(t *testing.T) {
		_, err := s.ListBlogs(ctx, nil, Filters{SortBy: "password"})
		assert.ErrorAs(t, err, &common.ValidationError{})
	})

	t.Run("viewer enrichment", func(t *testing.T) {
		_, err := s.ToggleBlogLike(ctx, reader, first.ID)
		require.NoError(t, err)
		require.NoError(t, s.RateBlog(ctx, reader, second.ID, 4))

		blogs, err := s.ListBlogs(ctx, reader, Filters{})
		require.NoError(t, err)

		byID := make(map[string]Blog, len(blogs))
		for _, b := range blogs {
			byID[b.ID] = b
		}

		assert.True(t, byID[first.ID].UserLiked)
		assert.Nil(t, byID[first.ID].UserRating)
		assert.False(t, byID[second.ID].UserLiked)
		require.NotNil(t, byID[second.ID].UserRating)
		assert.Equal(t, 4, *byID[second.ID].UserRating)
	})
}

func TestGetBlogBySlug(t *testing.T) {
	s, db := newTestBlogService(t)
	author := seedProfile(t, db, "author", "author@example.com")
	reader := seedProfile(t, db, "reader", "reader@example.com")
	ctx := context.Background()

	blog, err := s.CreateBlog(ctx, author, &CreateBlogRequest{
		Title:   "Hello, World!",
		Content: "First post.",
		Status:  StatusPublished,
	})
	require.NoError(t, err)

	t.Run("miss is nil without a view", func(t *testing.T) {
		got, err := s.GetBlogBySlug(ctx, nil, "missing-post")
		require.NoError(t, err)
		assert.Nil(t, got)

		var views int
		require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM blog_views").Scan(&views))
		assert.Equal(t, 0, views)
	})

	t.Run("hit records a view", func(t *testing.T) {
		got, err := s.GetBlogBySlug(ctx, nil, "hello-world")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, blog.ID, got.ID)

		got, err = s.GetBlogBySlug(ctx, nil, "hello-world")
		require.NoError(t, err)
		assert.Equal(t, 1, got.ViewCount)

		var views int
		require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM blog_views WHERE blog_id = $1", blog.ID).Scan(&views))
		assert.Equal(t, 2, views)
	})

	t.Run("draft slug is a miss", func(t *testing.T) {
		_, err := s.CreateBlog(ctx, author, &CreateBlogRequest{Title: "Hidden Gem", Content: "x"})
		require.NoError(t, err)

		got, err := s.GetBlogBySlug(ctx, nil, "hidden-gem")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("viewer enrichment", func(t *testing.T) {
		_, err := s.ToggleBlogLike(ctx, reader, blog.ID)
		require.NoError(t, err)
		require.NoError(t, s.RateBlog(ctx, reader, blog.ID, 5))

		got, err := s.GetBlogBySlug(ctx, reader, "hello-world")
		require.NoError(t, err)

		assert.True(t, got.UserLiked)
		require.NotNil(t, got.UserRating)
		assert.Equal(t, 5, *got.UserRating)
	})
}

func TestToggleBlogLike(t *testing.T) {
	s, db := newTestBlogService(t)
	author := seedProfile(t, db, "author", "author@example.com")
	reader := seedProfile(t, db, "reader", "reader@example.com")
	ctx := context.Background()

	blog, err := s.CreateBlog(ctx, author, &CreateBlogRequest{Title: "Like Me", Content: "x", Status: StatusPublished})
	require.NoError(t, err)

	liked, err := s.ToggleBlogLike(ctx, reader, blog.ID)
	require.NoError(t, err)
	assert.True(t, liked)

	liked, err = s.ToggleBlogLike(ctx, reader, blog.ID)
	require.NoError(t, err)
	assert.False(t, liked)

	// Two toggles cancel out, including the denormalized counter.
	var likeCount int
	require.NoError(t, db.QueryRow("SELECT like_count FROM blogs WHERE id = $1", blog.ID).Scan(&likeCount))
	assert.Equal(t, 0, likeCount)

	t.Run("unknown blog", func(t *testing.T) {
		_, err := s.ToggleBlogLike(ctx, reader, "00000000-0000-0000-0000-000000000000")
		assert.ErrorIs(t, err, ErrRecordNotFound)
	})

	t.Run("anonymous", func(t *testing.T) {
		_, err := s.ToggleBlogLike(ctx, nil, blog.ID)
		assert.ErrorIs(t, err, ErrAuthRequired)
	})
}

func TestRateBlog(t *testing.T) {
	s, db := newTestBlogService(t)
	author := seedProfile(t, db, "author", "author@example.com")
	reader := seedProfile(t, db, "reader", "reader@example.com")
	ctx := context.Background()

	blog, err := s.CreateBlog(ctx, author, &CreateBlogRequest{Title: "Rate Me", Content: "x", Status: StatusPublished})
	require.NoError(t, err)

	t.Run("bounds", func(t *testing.T) {
		assert.ErrorIs(t, s.RateBlog(ctx, reader, blog.ID, 0), ErrInvalidRating)
		assert.ErrorIs(t, s.RateBlog(ctx, reader, blog.ID, 6), ErrInvalidRating)
	})

	t.Run("resubmission updates in place", func(t *testing.T) {
		require.NoError(t, s.RateBlog(ctx, reader, blog.ID, 5))
		require.NoError(t, s.RateBlog(ctx, reader, blog.ID, 3))

		var count, rating int
		require.NoError(t, db.QueryRow("SELECT COUNT(*), MIN(rating) FROM blog_ratings WHERE blog_id = $1 AND user_id = $2", blog.ID, reader.ID).Scan(&count, &rating))
		assert.Equal(t, 1, count)
		assert.Equal(t, 3, rating)

		// The average on the blog row tracks the latest value.
		var avg float64
		require.NoError(t, db.QueryRow("SELECT rating FROM blogs WHERE id = $1", blog.ID).Scan(&avg))
		assert.Equal(t, float64(3), avg)
	})

	t.Run("anonymous", func(t *testing.T) {
		assert.ErrorIs(t, s.RateBlog(ctx, nil, blog.ID, 4), ErrAuthRequired)
	})
}

func TestComments(t *testing.T) {
	s, db := newTestBlogService(t)
	author := seedProfile(t, db, "author", "author@example.com")
	reader := seedProfile(t, db, "reader", "reader@example.com")
	ctx := context.Background()

	blog, err := s.CreateBlog(ctx, author, &CreateBlogRequest{Title: "Discussion", Content: "x", Status: StatusPublished})
	require.NoError(t, err)

	older, err := s.CreateComment(ctx, reader, &CreateCommentRequest{BlogID: blog.ID, Content: "First!"})
	require.NoError(t, err)

	newer, err := s.CreateComment(ctx, reader, &CreateCommentRequest{BlogID: blog.ID, Content: "Second thought."})
	require.NoError(t, err)

	reply, err := s.CreateComment(ctx, author, &CreateCommentRequest{BlogID: blog.ID, ParentID: &older.ID, Content: "Thanks!"})
	require.NoError(t, err)

	// Stored timestamps have second resolution, so separate the two
	// top-level comments explicitly to make the ordering observable.
	_, err = db.Exec("UPDATE blog_comments SET created_at = created_at - INTERVAL '1 minute' WHERE id = $1", older.ID)
	require.NoError(t, err)

	t.Run("top-level newest first with replies oldest first", func(t *testing.T) {
		comments, err := s.ListComments(ctx, nil, blog.ID)
		require.NoError(t, err)

		require.Len(t, comments, 2)
		assert.Equal(t, newer.ID, comments[0].ID)
		assert.Equal(t, older.ID, comments[1].ID)

		assert.Empty(t, comments[0].Replies)
		require.Len(t, comments[1].Replies, 1)
		assert.Equal(t, reply.ID, comments[1].Replies[0].ID)
		assert.Equal(t, "author", comments[1].Replies[0].User.Name)
	})

	t.Run("liked flags cover replies", func(t *testing.T) {
		_, err := s.ToggleCommentLike(ctx, reader, reply.ID)
		require.NoError(t, err)

		comments, err := s.ListComments(ctx, reader, blog.ID)
		require.NoError(t, err)

		var target *Comment
		for i := range comments {
			if comments[i].ID == older.ID {
				target = &comments[i]
			}
		}
		require.NotNil(t, target)
		require.Len(t, target.Replies, 1)
		assert.True(t, target.Replies[0].UserLiked)
		assert.Equal(t, 1, target.Replies[0].LikeCount)
	})

	t.Run("comment count trigger", func(t *testing.T) {
		var count int
		require.NoError(t, db.QueryRow("SELECT comment_count FROM blogs WHERE id = $1", blog.ID).Scan(&count))
		assert.Equal(t, 3, count)
	})

	t.Run("no comments is an empty slice", func(t *testing.T) {
		quiet, err := s.CreateBlog(ctx, author, &CreateBlogRequest{Title: "Quiet", Content: "x", Status: StatusPublished})
		require.NoError(t, err)

		comments, err := s.ListComments(ctx, nil, quiet.ID)
		require.NoError(t, err)
		assert.Equal(t, []Comment{}, comments)
	})
}

func TestCreateCommentPublishesReplyNotification(t *testing.T) {
	db := common.TestDB("file://../../migrations", t)
	producer := &recordingProducer{}
	s := NewBlogService(db, producer)

	author := seedProfile(t, db, "author", "author@example.com")
	reader := seedProfile(t, db, "reader", "reader@example.com")
	ctx := context.Background()

	blog, err := s.CreateBlog(ctx, author, &CreateBlogRequest{Title: "Notify Me", Content: "x", Status: StatusPublished})
	require.NoError(t, err)

	parent, err := s.CreateComment(ctx, author, &CreateCommentRequest{BlogID: blog.ID, Content: "Top level."})
	require.NoError(t, err)
	assert.Empty(t, producer.published)

	_, err = s.CreateComment(ctx, reader, &CreateCommentRequest{BlogID: blog.ID, ParentID: &parent.ID, Content: "A reply."})
	require.NoError(t, err)

	require.Len(t, producer.published, 1)
	assert.Equal(t, common.CommentReplyKey, producer.published[0].key)
	assert.Contains(t, string(producer.published[0].msg), "author@example.com")
	assert.Contains(t, string(producer.published[0].msg), "notify-me")
}

type publishedMessage struct {
	msg []byte
	key common.BindingKey
}

type recordingProducer struct {
	published []publishedMessage
}

func (p *recordingProducer) Publish(ctx context.Context, msg []byte, key common.BindingKey, exchange common.Exchange) error {
	p.published = append(p.published, publishedMessage{msg: msg, key: key})
	return nil
}

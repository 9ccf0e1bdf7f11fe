package blogservice

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"sync"

	"github.com/automaatte/platform/internal/authservice"
	"github.com/automaatte/platform/internal/common"
)

var (
	ErrAuthRequired  = errors.New("authentication required")
	ErrInvalidRating = errors.New("rating must be between 1 and 5")
)

func NewBlogService(db *sql.DB, mb common.MessageProducer) *BlogService {
	return &BlogService{m: newBlogModel(db), mb: mb}
}

type CreateBlogRequest struct {
	Title         string     `json:"title"`
	Content       string     `json:"content"`
	Excerpt       string     `json:"excerpt"`
	FeaturedImage string     `json:"featured_image"`
	Status        BlogStatus `json:"status"`
	Tags          []string   `json:"tags"`
}

// CreateBlog creates a new blog post authored by user. The slug is derived
// from the title, and published_at is set when the initial status is
// published.
func (s *BlogService) CreateBlog(ctx context.Context, user *authservice.User, req *CreateBlogRequest) (*Blog, error) {
	if user.IsAnonymous() {
		return nil, ErrAuthRequired
	}

	if req.Status == "" {
		req.Status = StatusDraft
	}

	v := common.NewValidator()
	validateTitle(v, req.Title)
	validateContent(v, req.Content)
	validateStatus(v, req.Status)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	tags := req.Tags
	if tags == nil {
		tags = []string{}
	}

	id, err := s.m.insert(ctx, &insertBlogParams{
		Title:         req.Title,
		Slug:          Slugify(req.Title),
		Content:       req.Content,
		Excerpt:       req.Excerpt,
		FeaturedImage: req.FeaturedImage,
		AuthorID:      user.ID,
		Status:        req.Status,
		Tags:          tags,
	})
	if err != nil {
		return nil, err
	}

	return s.m.getBlogById(ctx, id)
}

type UpdateBlogRequest struct {
	ID            string      `json:"id"`
	Title         *string     `json:"title"`
	Content       *string     `json:"content"`
	Excerpt       *string     `json:"excerpt"`
	FeaturedImage *string     `json:"featured_image"`
	Status        *BlogStatus `json:"status"`
	Tags          []string    `json:"tags"`
}

// UpdateBlog applies the fields present in req. The slug is re-derived
// only when the title changes, and published_at is stamped when the status
// is set to published. It is never cleared on other transitions.
func (s *BlogService) UpdateBlog(ctx context.Context, user *authservice.User, req *UpdateBlogRequest) (*Blog, error) {
	if user.IsAnonymous() {
		return nil, ErrAuthRequired
	}

	v := common.NewValidator()
	validateID(v, req.ID, "id")
	if req.Title != nil {
		validateTitle(v, *req.Title)
	}
	if req.Content != nil {
		validateContent(v, *req.Content)
	}
	if req.Status != nil {
		validateStatus(v, *req.Status)
	}
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	var slug *string
	if req.Title != nil {
		derived := Slugify(*req.Title)
		slug = &derived
	}

	err := s.m.update(ctx, &updateBlogParams{
		ID:            req.ID,
		Title:         req.Title,
		Slug:          slug,
		Content:       req.Content,
		Excerpt:       req.Excerpt,
		FeaturedImage: req.FeaturedImage,
		Status:        req.Status,
		Tags:          req.Tags,
	})
	if err != nil {
		return nil, err
	}

	return s.m.getBlogById(ctx, req.ID)
}

// DeleteBlog removes the post outright. Ownership is enforced by the
// store's access policy, not here.
func (s *BlogService) DeleteBlog(ctx context.Context, id string) error {
	v := common.NewValidator()
	validateID(v, id, "id")
	if !v.Valid() {
		return v.ValidationError()
	}

	return s.m.deleteBlog(ctx, id)
}

// ListBlogs returns posts matching the filters. Status defaults to
// published so an anonymous listing never surfaces drafts. Authenticated
// callers get user_liked and user_rating filled in via two batched
// lookups keyed by the returned ids.
func (s *BlogService) ListBlogs(ctx context.Context, user *authservice.User, filters Filters) ([]Blog, error) {
	v := common.NewValidator()
	validateFilters(v, &filters)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	if filters.Status == "" {
		filters.Status = StatusPublished
	}
	if filters.SortBy == "" {
		filters.SortBy = "created_at"
	}
	if filters.SortOrder == "" {
		filters.SortOrder = "desc"
	}
	if filters.Limit < 1 {
		filters.Limit = 10
	}

	blogs, err := s.m.getBlogs(ctx, &filters)
	if err != nil {
		return nil, err
	}

	if user.IsAnonymous() || len(blogs) == 0 {
		return blogs, nil
	}

	ids := make([]string, len(blogs))
	for i := range blogs {
		ids[i] = blogs[i].ID
	}

	var (
		wg        sync.WaitGroup
		liked     map[string]bool
		ratings   map[string]int
		likedErr  error
		ratingErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		liked, likedErr = s.m.getLikedBlogIds(ctx, user.ID, ids)
	}()
	go func() {
		defer wg.Done()
		ratings, ratingErr = s.m.getUserRatings(ctx, user.ID, ids)
	}()
	wg.Wait()

	if likedErr != nil {
		return nil, likedErr
	}
	if ratingErr != nil {
		return nil, ratingErr
	}

	for i := range blogs {
		blogs[i].UserLiked = liked[blogs[i].ID]
		if rating, ok := ratings[blogs[i].ID]; ok {
			r := rating
			blogs[i].UserRating = &r
		}
	}

	return blogs, nil
}

// GetBlogBySlug resolves a published post by slug. A miss is a normal
// (nil, nil) return, not an error, and records no view. A hit records a
// view event and, for authenticated callers, fills in the viewer's liked
// and rating state with two concurrent single-row lookups.
func (s *BlogService) GetBlogBySlug(ctx context.Context, user *authservice.User, slug string) (*Blog, error) {
	v := common.NewValidator()
	validateID(v, slug, "slug")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	blog, err := s.m.getBlogBySlug(ctx, slug)
	if err != nil {
		switch {
		case errors.Is(err, ErrRecordNotFound):
			return nil, nil
		default:
			return nil, err
		}
	}

	var viewerID *string
	if !user.IsAnonymous() {
		viewerID = &user.ID
	}

	if err := s.m.insertView(ctx, blog.ID, viewerID); err != nil {
		return nil, err
	}

	if user.IsAnonymous() {
		return blog, nil
	}

	var (
		wg        sync.WaitGroup
		liked     bool
		rating    *int
		likedErr  error
		ratingErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		liked, likedErr = s.m.userLikedBlog(ctx, blog.ID, user.ID)
	}()
	go func() {
		defer wg.Done()
		rating, ratingErr = s.m.userBlogRating(ctx, blog.ID, user.ID)
	}()
	wg.Wait()

	if likedErr != nil {
		return nil, likedErr
	}
	if ratingErr != nil {
		return nil, ratingErr
	}

	blog.UserLiked = liked
	blog.UserRating = rating

	return blog, nil
}

// ToggleBlogLike likes the post if the caller has not liked it, unlikes it
// otherwise, and reports the resulting state.
func (s *BlogService) ToggleBlogLike(ctx context.Context, user *authservice.User, blogID string) (bool, error) {
	if user.IsAnonymous() {
		return false, ErrAuthRequired
	}

	v := common.NewValidator()
	validateID(v, blogID, "blog_id")
	if !v.Valid() {
		return false, v.ValidationError()
	}

	return s.m.toggleBlogLike(ctx, blogID, user.ID)
}

// RateBlog upserts the caller's 1-5 rating for the post.
func (s *BlogService) RateBlog(ctx context.Context, user *authservice.User, blogID string, rating int) error {
	if user.IsAnonymous() {
		return ErrAuthRequired
	}

	if rating < 1 || rating > 5 {
		return ErrInvalidRating
	}

	v := common.NewValidator()
	validateID(v, blogID, "blog_id")
	if !v.Valid() {
		return v.ValidationError()
	}

	return s.m.upsertRating(ctx, blogID, user.ID, rating)
}

// RecordView appends a view event for the post. userID may be nil for
// anonymous views; duplicate rejections from the store are swallowed.
func (s *BlogService) RecordView(ctx context.Context, userID *string, blogID string) error {
	v := common.NewValidator()
	validateID(v, blogID, "blog_id")
	if !v.Valid() {
		return v.ValidationError()
	}

	return s.m.insertView(ctx, blogID, userID)
}

// ListComments returns the post's top-level comments newest first, each
// with its direct replies oldest first. The caller's liked flags are
// resolved with one batched lookup over every returned comment id.
func (s *BlogService) ListComments(ctx context.Context, user *authservice.User, blogID string) ([]Comment, error) {
	v := common.NewValidator()
	validateID(v, blogID, "blog_id")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	comments, err := s.m.getTopLevelComments(ctx, blogID)
	if err != nil {
		return nil, err
	}

	if len(comments) == 0 {
		return []Comment{}, nil
	}

	parentIds := make([]string, len(comments))
	for i := range comments {
		parentIds[i] = comments[i].ID
	}

	replies, err := s.m.getReplies(ctx, parentIds)
	if err != nil {
		return nil, err
	}

	var liked map[string]bool
	if !user.IsAnonymous() {
		ids := parentIds
		for _, group := range replies {
			for i := range group {
				ids = append(ids, group[i].ID)
			}
		}

		liked, err = s.m.getLikedCommentIds(ctx, user.ID, ids)
		if err != nil {
			return nil, err
		}
	}

	for i := range comments {
		comment := &comments[i]
		comment.Replies = replies[comment.ID]
		if comment.Replies == nil {
			comment.Replies = []Comment{}
		}
		comment.UserLiked = liked[comment.ID]
		for j := range comment.Replies {
			comment.Replies[j].UserLiked = liked[comment.Replies[j].ID]
		}
	}

	return comments, nil
}

type CreateCommentRequest struct {
	BlogID   string  `json:"blog_id"`
	ParentID *string `json:"parent_id"`
	Content  string  `json:"content"`
}

// CreateComment inserts a comment authored by user. A reply additionally
// publishes a notification event for the parent comment's author; the
// publish is best-effort and never fails the comment itself.
func (s *BlogService) CreateComment(ctx context.Context, user *authservice.User, req *CreateCommentRequest) (*Comment, error) {
	if user.IsAnonymous() {
		return nil, ErrAuthRequired
	}

	v := common.NewValidator()
	validateID(v, req.BlogID, "blog_id")
	validateContent(v, req.Content)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	id, err := s.m.insertComment(ctx, req.BlogID, user.ID, req.ParentID, req.Content)
	if err != nil {
		return nil, err
	}

	comment, err := s.m.getCommentById(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.ParentID != nil && s.mb != nil {
		s.publishReplyNotification(ctx, *req.ParentID)
	}

	return comment, nil
}

func (s *BlogService) publishReplyNotification(ctx context.Context, parentID string) {
	notification, err := s.m.getReplyNotification(ctx, parentID)
	if err != nil {
		return
	}

	msg, err := json.Marshal(notification)
	if err != nil {
		return
	}

	_ = s.mb.Publish(ctx, msg, common.CommentReplyKey, common.NotifyExchange)
}

// ToggleCommentLike mirrors ToggleBlogLike for comments.
func (s *BlogService) ToggleCommentLike(ctx context.Context, user *authservice.User, commentID string) (bool, error) {
	if user.IsAnonymous() {
		return false, ErrAuthRequired
	}

	v := common.NewValidator()
	validateID(v, commentID, "comment_id")
	if !v.Valid() {
		return false, v.ValidationError()
	}

	return s.m.toggleCommentLike(ctx, commentID, user.ID)
}

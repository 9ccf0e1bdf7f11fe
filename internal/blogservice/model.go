package blogservice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
)

var (
	ErrRecordNotFound   = errors.New("record not found")
	ErrAuthorForeignKey = errors.New("author does not exist")
	ErrDuplicateSlug    = errors.New("duplicate slug")
)

func newBlogModel(db *sql.DB) *BlogModel {
	return &BlogModel{db: db}
}

// pqError is a helper function to check if the error carries the given
// postgres error code, optionally narrowed to a named constraint.
func pqError(err error, code pq.ErrorCode, constraint string) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if pqErr.Code == code && (constraint == "" || pqErr.Constraint == constraint) {
			return true
		}
	}

	return false
}

const (
	codeUniqueViolation     pq.ErrorCode = "23505"
	codeForeignKeyViolation pq.ErrorCode = "23503"
)

const blogColumns = `
	b.id, b.title, b.slug, b.content, COALESCE(b.excerpt, ''), COALESCE(b.featured_image, ''),
	b.status, b.tags, b.view_count, b.like_count, b.comment_count, b.rating, b.rating_count,
	b.published_at, b.created_at, b.updated_at,
	p.id, p.name, p.email, COALESCE(p.avatar_url, '')`

func scanBlog(row interface{ Scan(...any) error }) (*Blog, error) {
	var blog Blog
	err := row.Scan(
		&blog.ID, &blog.Title, &blog.Slug, &blog.Content, &blog.Excerpt, &blog.FeaturedImage,
		&blog.Status, pq.Array(&blog.Tags), &blog.ViewCount, &blog.LikeCount, &blog.CommentCount, &blog.Rating, &blog.RatingCount,
		&blog.PublishedAt, &blog.CreatedAt, &blog.UpdatedAt,
		&blog.Author.ID, &blog.Author.Name, &blog.Author.Email, &blog.Author.AvatarURL,
	)
	if err != nil {
		return nil, err
	}

	if blog.Tags == nil {
		blog.Tags = []string{}
	}

	return &blog, nil
}

func (m *BlogModel) insert(ctx context.Context, blog *insertBlogParams) (string, error) {
	query := `
		INSERT INTO blogs (title, slug, content, excerpt, featured_image, author_id, status, tags, published_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), $6, $7, $8, $9)
		RETURNING id`

	var publishedAt *time.Time
	if blog.Status == StatusPublished {
		now := time.Now()
		publishedAt = &now
	}

	var id string
	err := m.db.QueryRowContext(ctx, query, blog.Title, blog.Slug, blog.Content, blog.Excerpt, blog.FeaturedImage, blog.AuthorID, blog.Status, pq.Array(blog.Tags), publishedAt).Scan(&id)
	if err != nil {
		switch {
		case pqError(err, codeForeignKeyViolation, "blogs_author_id_fkey"):
			return "", ErrAuthorForeignKey
		case pqError(err, codeUniqueViolation, "blogs_slug_key"):
			return "", ErrDuplicateSlug
		default:
			return "", err
		}
	}

	return id, nil
}

type insertBlogParams struct {
	Title         string
	Slug          string
	Content       string
	Excerpt       string
	FeaturedImage string
	AuthorID      string
	Status        BlogStatus
	Tags          []string
}

type updateBlogParams struct {
	ID            string
	Title         *string
	Slug          *string
	Content       *string
	Excerpt       *string
	FeaturedImage *string
	Status        *BlogStatus
	Tags          []string
}

// update applies only the fields present in params. published_at is set
// when the status moves to published and is intentionally never cleared
// on any other transition.
func (m *BlogModel) update(ctx context.Context, params *updateBlogParams) error {
	query := `
		UPDATE blogs
		SET title = COALESCE($1, title),
			slug = COALESCE($2, slug),
			content = COALESCE($3, content),
			excerpt = COALESCE($4, excerpt),
			featured_image = COALESCE($5, featured_image),
			status = COALESCE($6, status),
			tags = COALESCE($7::text[], tags),
			published_at = CASE WHEN $6 = 'published' THEN NOW() ELSE published_at END,
			updated_at = NOW()
		WHERE id = $8`

	var tags any
	if params.Tags != nil {
		tags = pq.Array(params.Tags)
	}

	var status *string
	if params.Status != nil {
		s := string(*params.Status)
		status = &s
	}

	res, err := m.db.ExecContext(ctx, query, params.Title, params.Slug, params.Content, params.Excerpt, params.FeaturedImage, status, tags, params.ID)
	if err != nil {
		switch {
		case pqError(err, codeUniqueViolation, "blogs_slug_key"):
			return ErrDuplicateSlug
		default:
			return err
		}
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrRecordNotFound
	}

	return nil
}

func (m *BlogModel) getBlogById(ctx context.Context, id string) (*Blog, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM blogs b
		JOIN profiles p ON b.author_id = p.id
		WHERE b.id = $1`, blogColumns)

	blog, err := scanBlog(m.db.QueryRowContext(ctx, query, id))
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}

	return blog, nil
}

// getBlogBySlug only resolves published posts; drafts and archived posts
// are not reachable through the slug path.
func (m *BlogModel) getBlogBySlug(ctx context.Context, slug string) (*Blog, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM blogs b
		JOIN profiles p ON b.author_id = p.id
		WHERE b.slug = $1 AND b.status = 'published'`, blogColumns)

	blog, err := scanBlog(m.db.QueryRowContext(ctx, query, slug))
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}

	return blog, nil
}

func (m *BlogModel) deleteBlog(ctx context.Context, id string) error {
	query := `
		DELETE FROM blogs
		WHERE id = $1`

	res, err := m.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrRecordNotFound
	}

	return nil
}

// getBlogs lists posts matching the filters. The WHERE clause is built
// from parameterized fragments only; the sort column has already been
// validated against a whitelist by the service layer.
func (m *BlogModel) getBlogs(ctx context.Context, f *Filters) ([]Blog, error) {
	where := []string{"b.status = $1"}
	args := []any{f.Status}

	if f.AuthorID != "" {
		args = append(args, f.AuthorID)
		where = append(where, fmt.Sprintf("b.author_id = $%d", len(args)))
	}

	if len(f.Tags) > 0 {
		args = append(args, pq.Array(f.Tags))
		where = append(where, fmt.Sprintf("b.tags && $%d", len(args)))
	}

	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		where = append(where, fmt.Sprintf("(b.title ILIKE $%d OR b.content ILIKE $%d)", len(args), len(args)))
	}

	order := "DESC"
	if f.SortOrder == "asc" {
		order = "ASC"
	}

	args = append(args, f.Limit, f.Offset)

	query := fmt.Sprintf(`
		SELECT %s
		FROM blogs b
		JOIN profiles p ON b.author_id = p.id
		WHERE %s
		ORDER BY b.%s %s
		LIMIT $%d OFFSET $%d`, blogColumns, strings.Join(where, " AND "), f.SortBy, order, len(args)-1, len(args))

	rows, err := m.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var blogs []Blog
	for rows.Next() {
		blog, err := scanBlog(rows)
		if err != nil {
			return nil, err
		}
		blogs = append(blogs, *blog)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return blogs, nil
}

// getLikedBlogIds returns the subset of blogIds the user has liked, as a
// set. One query regardless of the number of ids.
func (m *BlogModel) getLikedBlogIds(ctx context.Context, userID string, blogIds []string) (map[string]bool, error) {
	query := `
		SELECT blog_id
		FROM blog_likes
		WHERE user_id = $1 AND blog_id = ANY($2)`

	rows, err := m.db.QueryContext(ctx, query, userID, pq.Array(blogIds))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	liked := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		liked[id] = true
	}

	return liked, rows.Err()
}

// getUserRatings returns the user's own rating per blog id, one query
// regardless of the number of ids.
func (m *BlogModel) getUserRatings(ctx context.Context, userID string, blogIds []string) (map[string]int, error) {
	query := `
		SELECT blog_id, rating
		FROM blog_ratings
		WHERE user_id = $1 AND blog_id = ANY($2)`

	rows, err := m.db.QueryContext(ctx, query, userID, pq.Array(blogIds))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ratings := make(map[string]int)
	for rows.Next() {
		var (
			id     string
			rating int
		)
		if err := rows.Scan(&id, &rating); err != nil {
			return nil, err
		}
		ratings[id] = rating
	}

	return ratings, rows.Err()
}

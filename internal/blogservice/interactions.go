package blogservice

import (
	"context"
	"database/sql"
	"errors"
)

// toggleBlogLike deletes the like row if one exists, otherwise inserts
// one, and reports the resulting liked state. Read-then-write: two clients
// toggling for the same user at once can race, which is accepted since a
// second toggle restores the prior state.
func (m *BlogModel) toggleBlogLike(ctx context.Context, blogID, userID string) (bool, error) {
	var likeID string
	err := m.db.QueryRowContext(ctx, `
		SELECT id
		FROM blog_likes
		WHERE blog_id = $1 AND user_id = $2`, blogID, userID).Scan(&likeID)

	switch {
	case err == nil:
		_, err = m.db.ExecContext(ctx, `DELETE FROM blog_likes WHERE id = $1`, likeID)
		if err != nil {
			return false, err
		}
		return false, nil
	case errors.Is(err, sql.ErrNoRows):
		_, err = m.db.ExecContext(ctx, `
			INSERT INTO blog_likes (blog_id, user_id)
			VALUES ($1, $2)`, blogID, userID)
		if err != nil {
			switch {
			case pqError(err, codeForeignKeyViolation, "blog_likes_blog_id_fkey"):
				return false, ErrRecordNotFound
			default:
				return false, err
			}
		}
		return true, nil
	default:
		return false, err
	}
}

// upsertRating inserts or overwrites the caller's rating for a blog. The
// (blog_id, user_id) unique constraint makes a second submission an
// update, never a second row.
func (m *BlogModel) upsertRating(ctx context.Context, blogID, userID string, rating int) error {
	query := `
		INSERT INTO blog_ratings (blog_id, user_id, rating)
		VALUES ($1, $2, $3)
		ON CONFLICT (blog_id, user_id)
		DO UPDATE SET rating = EXCLUDED.rating, updated_at = NOW()`

	_, err := m.db.ExecContext(ctx, query, blogID, userID, rating)
	if err != nil {
		switch {
		case pqError(err, codeForeignKeyViolation, "blog_ratings_blog_id_fkey"):
			return ErrRecordNotFound
		default:
			return err
		}
	}

	return nil
}

// insertView appends a view event. userID may be nil for anonymous views.
// Duplicate-view rejections from the store are swallowed since they
// represent benign idempotent retries.
func (m *BlogModel) insertView(ctx context.Context, blogID string, userID *string) error {
	query := `
		INSERT INTO blog_views (blog_id, user_id)
		VALUES ($1, $2)`

	_, err := m.db.ExecContext(ctx, query, blogID, userID)
	if err != nil {
		switch {
		case pqError(err, codeUniqueViolation, ""):
			return nil
		case pqError(err, codeForeignKeyViolation, "blog_views_blog_id_fkey"):
			return ErrRecordNotFound
		default:
			return err
		}
	}

	return nil
}

// userLikedBlog reports whether the user has a like row for the blog.
func (m *BlogModel) userLikedBlog(ctx context.Context, blogID, userID string) (bool, error) {
	var exists bool
	err := m.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM blog_likes WHERE blog_id = $1 AND user_id = $2
		)`, blogID, userID).Scan(&exists)

	return exists, err
}

// userBlogRating returns the user's rating for the blog, or nil when the
// user has not rated it.
func (m *BlogModel) userBlogRating(ctx context.Context, blogID, userID string) (*int, error) {
	var rating int
	err := m.db.QueryRowContext(ctx, `
		SELECT rating
		FROM blog_ratings
		WHERE blog_id = $1 AND user_id = $2`, blogID, userID).Scan(&rating)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, nil
		default:
			return nil, err
		}
	}

	return &rating, nil
}

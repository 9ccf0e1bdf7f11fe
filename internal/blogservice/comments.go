package blogservice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

const commentColumns = `
	c.id, c.blog_id, c.parent_id, c.content, c.like_count, c.created_at, c.updated_at,
	p.id, p.name, p.email, COALESCE(p.avatar_url, '')`

func scanComment(row interface{ Scan(...any) error }) (*Comment, error) {
	var comment Comment
	err := row.Scan(
		&comment.ID, &comment.BlogID, &comment.ParentID, &comment.Content, &comment.LikeCount, &comment.CreatedAt, &comment.UpdatedAt,
		&comment.User.ID, &comment.User.Name, &comment.User.Email, &comment.User.AvatarURL,
	)
	if err != nil {
		return nil, err
	}

	return &comment, nil
}

func (m *BlogModel) insertComment(ctx context.Context, blogID, userID string, parentID *string, content string) (string, error) {
	query := `
		INSERT INTO blog_comments (blog_id, user_id, parent_id, content)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	var id string
	err := m.db.QueryRowContext(ctx, query, blogID, userID, parentID, content).Scan(&id)
	if err != nil {
		switch {
		case pqError(err, codeForeignKeyViolation, "blog_comments_blog_id_fkey"):
			return "", ErrRecordNotFound
		case pqError(err, codeForeignKeyViolation, "blog_comments_parent_id_fkey"):
			return "", ErrRecordNotFound
		default:
			return "", err
		}
	}

	return id, nil
}

func (m *BlogModel) getCommentById(ctx context.Context, id string) (*Comment, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM blog_comments c
		JOIN profiles p ON c.user_id = p.id
		WHERE c.id = $1`, commentColumns)

	comment, err := scanComment(m.db.QueryRowContext(ctx, query, id))
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}

	return comment, nil
}

// getTopLevelComments returns the comments without a parent, newest first.
func (m *BlogModel) getTopLevelComments(ctx context.Context, blogID string) ([]Comment, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM blog_comments c
		JOIN profiles p ON c.user_id = p.id
		WHERE c.blog_id = $1 AND c.parent_id IS NULL
		ORDER BY c.created_at DESC`, commentColumns)

	return m.queryComments(ctx, query, blogID)
}

// getReplies returns the direct replies of every parent id in one query,
// oldest first, grouped by parent.
func (m *BlogModel) getReplies(ctx context.Context, parentIds []string) (map[string][]Comment, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM blog_comments c
		JOIN profiles p ON c.user_id = p.id
		WHERE c.parent_id = ANY($1)
		ORDER BY c.created_at ASC`, commentColumns)

	replies, err := m.queryComments(ctx, query, pq.Array(parentIds))
	if err != nil {
		return nil, err
	}

	grouped := make(map[string][]Comment)
	for _, reply := range replies {
		grouped[*reply.ParentID] = append(grouped[*reply.ParentID], reply)
	}

	return grouped, nil
}

func (m *BlogModel) queryComments(ctx context.Context, query string, args ...any) ([]Comment, error) {
	rows, err := m.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []Comment
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, *comment)
	}

	return comments, rows.Err()
}

// getLikedCommentIds returns the subset of commentIds the user has liked.
// Batched like getLikedBlogIds so a comment thread costs one lookup.
func (m *BlogModel) getLikedCommentIds(ctx context.Context, userID string, commentIds []string) (map[string]bool, error) {
	query := `
		SELECT comment_id
		FROM comment_likes
		WHERE user_id = $1 AND comment_id = ANY($2)`

	rows, err := m.db.QueryContext(ctx, query, userID, pq.Array(commentIds))
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

// toggleCommentLike mirrors toggleBlogLike, with the same accepted race.
func (m *BlogModel) toggleCommentLike(ctx context.Context, commentID, userID string) (bool, error) {
	var likeID string
	err := m.db.QueryRowContext(ctx, `
		SELECT id
		FROM comment_likes
		WHERE comment_id = $1 AND user_id = $2`, commentID, userID).Scan(&likeID)

	switch {
	case err == nil:
		_, err = m.db.ExecContext(ctx, `DELETE FROM comment_likes WHERE id = $1`, likeID)
		if err != nil {
			return false, err
		}
		return false, nil
	case errors.Is(err, sql.ErrNoRows):
		_, err = m.db.ExecContext(ctx, `
			INSERT INTO comment_likes (comment_id, user_id)
			VALUES ($1, $2)`, commentID, userID)
		if err != nil {
			switch {
			case pqError(err, codeForeignKeyViolation, "comment_likes_comment_id_fkey"):
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

// getReplyNotification loads what the notify consumer needs to mail the
// parent comment's author about a new reply.
func (m *BlogModel) getReplyNotification(ctx context.Context, parentID string) (*ReplyNotification, error) {
	query := `
		SELECT p.email, p.name, b.title, b.slug
		FROM blog_comments c
		JOIN profiles p ON c.user_id = p.id
		JOIN blogs b ON c.blog_id = b.id
		WHERE c.id = $1`

	var n ReplyNotification
	err := m.db.QueryRowContext(ctx, query, parentID).Scan(&n.Email, &n.Name, &n.BlogTitle, &n.BlogSlug)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}

	return &n, nil
}

package blogservice

import (
	"database/sql"
	"time"

	"github.com/automaatte/platform/internal/common"
)

type BlogStatus string

const (
	StatusDraft     BlogStatus = "draft"
	StatusPublished BlogStatus = "published"
	StatusArchived  BlogStatus = "archived"
)

// Author is the minimal profile projection attached to blogs and comments.
type Author struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

type Blog struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Slug  string `json:"slug"`
	// Content is stored in Markdown format.
	Content       string     `json:"content"`
	Excerpt       string     `json:"excerpt,omitempty"`
	FeaturedImage string     `json:"featured_image,omitempty"`
	Author        Author     `json:"author"`
	Status        BlogStatus `json:"status"`
	Tags          []string   `json:"tags"`
	ViewCount     int        `json:"view_count"`
	LikeCount     int        `json:"like_count"`
	CommentCount  int        `json:"comment_count"`
	Rating        float64    `json:"rating"`
	RatingCount   int        `json:"rating_count"`
	PublishedAt   *time.Time `json:"published_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	// Viewer-specific enrichment, only populated for authenticated callers.
	UserLiked  bool `json:"user_liked"`
	UserRating *int `json:"user_rating,omitempty"`
}

type Comment struct {
	ID        string    `json:"id"`
	BlogID    string    `json:"blog_id"`
	ParentID  *string   `json:"parent_id,omitempty"`
	Content   string    `json:"content"`
	LikeCount int       `json:"like_count"`
	User      Author    `json:"user"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserLiked bool      `json:"user_liked"`
	Replies   []Comment `json:"replies"`
}

// Filters narrows and orders a blog listing. The zero value lists the
// newest published posts.
type Filters struct {
	Status    BlogStatus
	AuthorID  string
	Tags      []string
	Search    string
	SortBy    string
	SortOrder string
	Limit     int
	Offset    int
}

// ReplyNotification is the payload published to the message broker when a
// comment gains a direct reply.
type ReplyNotification struct {
	Email     string `json:"email"`
	Name      string `json:"name"`
	BlogTitle string `json:"blog_title"`
	BlogSlug  string `json:"blog_slug"`
}

type BlogModel struct {
	db *sql.DB
}

type BlogService struct {
	m  *BlogModel
	mb common.MessageProducer
}

// Package transport is the HTTP collaborator of the interaction engine.
// The engine consumes it through the API interface so tests can stand in
// a stub; Client is the real implementation.
package transport

import (
	"context"

	"goorm-board/internal/models"
)

// LikeResult is the server's confirmation of a like toggle.
type LikeResult struct {
	Liked      bool `json:"liked"`
	LikesCount int  `json:"likesCount"`
}

// ViewResult is the server's confirmation of a view increment.
type ViewResult struct {
	ViewsCount int `json:"viewsCount"`
}

// PostPage is one page of the post collection.
type PostPage struct {
	Posts      []models.Post
	Pagination models.Pagination
}

// CommentPage is one page of a post's comment collection.
type CommentPage struct {
	Comments   []models.Comment
	Pagination models.Pagination
}

// PostDraft carries the user-submitted fields of a new or edited post.
type PostDraft struct {
	Title    string          `json:"title"`
	Content  string          `json:"content"`
	Author   string          `json:"author"`
	Section  models.Section  `json:"section"`
	Category models.Category `json:"category"`
	Hashtags []string        `json:"hashtags"`
}

// Credentials identifies a user to the auth endpoints.
type Credentials struct {
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password"`
}

// AuthResult is the server's answer to a successful login or register.
type AuthResult struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// API is the request/response surface the engine depends on. All
// methods surface non-2xx responses as *utils.AppError with code
// TRANSPORT_ERROR and the HTTP status attached.
type API interface {
	ListPosts(ctx context.Context, filters models.PostFilters) (*PostPage, error)
	GetPost(ctx context.Context, id int64) (*models.Post, error)
	CreatePost(ctx context.Context, draft PostDraft) (*models.Post, error)
	UpdatePost(ctx context.Context, id int64, draft PostDraft) (*models.Post, error)
	DeletePost(ctx context.Context, id int64) error
	ToggleLike(ctx context.Context, postID int64) (*LikeResult, error)
	IncrementViews(ctx context.Context, postID int64) (*ViewResult, error)

	ListComments(ctx context.Context, postID int64, page, limit int) (*CommentPage, error)
	CreateComment(ctx context.Context, postID int64, content string, parentID *int64) (*models.Comment, error)
	UpdateComment(ctx context.Context, commentID int64, content string) (*models.Comment, error)
	DeleteComment(ctx context.Context, commentID int64) error
	ToggleCommentLike(ctx context.Context, commentID int64) (*LikeResult, error)

	CurrentUser(ctx context.Context) (*models.User, error)
	GetUser(ctx context.Context, userID int64) (*models.User, error)
	ListUserPosts(ctx context.Context, userID int64, page int) (*PostPage, error)

	Login(ctx context.Context, creds Credentials) (*AuthResult, error)
	Register(ctx context.Context, creds Credentials) (*AuthResult, error)
	Logout(ctx context.Context) error
}

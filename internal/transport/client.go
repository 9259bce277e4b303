package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"goorm-board/internal/models"
	"goorm-board/internal/utils"
)

// Client talks to the board API over HTTP. It is safe for concurrent
// use; the bearer token may be swapped mid-session after login/logout.
type Client struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	token string
}

var _ API = (*Client)(nil)

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http: &http.Client{
			Timeout: timeout,
		},
	}
}

// SetToken installs the bearer token sent with subsequent requests.
// An empty token clears it.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// envelope is the `{data, message, success}` shape every endpoint uses.
type envelope struct {
	Data    json.RawMessage    `json:"data"`
	Message string             `json:"message"`
	Success bool               `json:"success"`
	Page    *models.Pagination `json:"pagination,omitempty"`
}

func (c *Client) makeRequest(ctx context.Context, method, endpoint string, payload any) (*envelope, error) {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, body)
	if err != nil {
		return nil, utils.NewTransportError(0, "failed to build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	c.mu.RLock()
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	c.mu.RUnlock()

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, utils.NewTransportError(0, "request failed", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, utils.NewTransportError(resp.StatusCode, "failed to read response", err)
	}

	var env envelope
	if len(raw) > 0 {
		// A non-JSON error body is tolerated; the status code carries
		// the failure either way.
		_ = json.Unmarshal(raw, &env)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		message := env.Message
		if message == "" {
			message = fmt.Sprintf("%s %s: %s", method, endpoint, resp.Status)
		}
		return nil, utils.NewTransportError(resp.StatusCode, message, nil)
	}

	return &env, nil
}

func decodeData[T any](env *envelope) (*T, error) {
	var out T
	if len(env.Data) == 0 {
		return &out, nil
	}
	if err := json.Unmarshal(env.Data, &out); err != nil {
		return nil, utils.NewTransportError(0, "failed to decode response data", err)
	}
	return &out, nil
}

func (c *Client) ListPosts(ctx context.Context, filters models.PostFilters) (*PostPage, error) {
	params := url.Values{}
	if filters.Category != "" {
		params.Set("category", string(filters.Category))
	}
	if filters.Search != "" {
		params.Set("search", filters.Search)
	}
	if filters.SortBy != "" {
		params.Set("sortBy", string(filters.SortBy))
	}
	if filters.Page > 0 {
		params.Set("page", strconv.Itoa(filters.Page))
	}
	if filters.Limit > 0 {
		params.Set("limit", strconv.Itoa(filters.Limit))
	}

	endpoint := "/posts"
	if query := params.Encode(); query != "" {
		endpoint += "?" + query
	}

	env, err := c.makeRequest(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	posts, err := decodeData[[]models.Post](env)
	if err != nil {
		return nil, err
	}
	page := &PostPage{Posts: *posts}
	if env.Page != nil {
		page.Pagination = *env.Page
	}
	return page, nil
}

func (c *Client) GetPost(ctx context.Context, id int64) (*models.Post, error) {
	env, err := c.makeRequest(ctx, http.MethodGet, fmt.Sprintf("/posts/%d", id), nil)
	if err != nil {
		return nil, err
	}
	return decodeData[models.Post](env)
}

func (c *Client) CreatePost(ctx context.Context, draft PostDraft) (*models.Post, error) {
	env, err := c.makeRequest(ctx, http.MethodPost, "/posts", draft)
	if err != nil {
		return nil, err
	}
	return decodeData[models.Post](env)
}

func (c *Client) UpdatePost(ctx context.Context, id int64, draft PostDraft) (*models.Post, error) {
	env, err := c.makeRequest(ctx, http.MethodPut, fmt.Sprintf("/posts/%d", id), draft)
	if err != nil {
		return nil, err
	}
	return decodeData[models.Post](env)
}

func (c *Client) DeletePost(ctx context.Context, id int64) error {
	_, err := c.makeRequest(ctx, http.MethodDelete, fmt.Sprintf("/posts/%d", id), nil)
	return err
}

func (c *Client) ToggleLike(ctx context.Context, postID int64) (*LikeResult, error) {
	env, err := c.makeRequest(ctx, http.MethodPost, fmt.Sprintf("/posts/%d/like", postID), nil)
	if err != nil {
		return nil, err
	}
	return decodeData[LikeResult](env)
}

func (c *Client) IncrementViews(ctx context.Context, postID int64) (*ViewResult, error) {
	env, err := c.makeRequest(ctx, http.MethodPost, fmt.Sprintf("/posts/%d/view", postID), nil)
	if err != nil {
		return nil, err
	}
	return decodeData[ViewResult](env)
}

func (c *Client) ListComments(ctx context.Context, postID int64, page, limit int) (*CommentPage, error) {
	endpoint := fmt.Sprintf("/posts/%d/comments?page=%d&limit=%d", postID, page, limit)
	env, err := c.makeRequest(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	comments, err := decodeData[[]models.Comment](env)
	if err != nil {
		return nil, err
	}
	out := &CommentPage{Comments: *comments}
	if env.Page != nil {
		out.Pagination = *env.Page
	}
	return out, nil
}

func (c *Client) CreateComment(ctx context.Context, postID int64, content string, parentID *int64) (*models.Comment, error) {
	payload := struct {
		Content         string `json:"content"`
		ParentCommentID *int64 `json:"parentCommentId,omitempty"`
	}{Content: content, ParentCommentID: parentID}

	env, err := c.makeRequest(ctx, http.MethodPost, fmt.Sprintf("/posts/%d/comments", postID), payload)
	if err != nil {
		return nil, err
	}
	return decodeData[models.Comment](env)
}

func (c *Client) UpdateComment(ctx context.Context, commentID int64, content string) (*models.Comment, error) {
	payload := struct {
		Content string `json:"content"`
	}{Content: content}

	env, err := c.makeRequest(ctx, http.MethodPut, fmt.Sprintf("/comments/%d", commentID), payload)
	if err != nil {
		return nil, err
	}
	return decodeData[models.Comment](env)
}

func (c *Client) DeleteComment(ctx context.Context, commentID int64) error {
	_, err := c.makeRequest(ctx, http.MethodDelete, fmt.Sprintf("/comments/%d", commentID), nil)
	return err
}

func (c *Client) ToggleCommentLike(ctx context.Context, commentID int64) (*LikeResult, error) {
	env, err := c.makeRequest(ctx, http.MethodPost, fmt.Sprintf("/comments/%d/like", commentID), nil)
	if err != nil {
		return nil, err
	}
	return decodeData[LikeResult](env)
}

func (c *Client) CurrentUser(ctx context.Context) (*models.User, error) {
	env, err := c.makeRequest(ctx, http.MethodGet, "/user/me", nil)
	if err != nil {
		return nil, err
	}
	return decodeData[models.User](env)
}

func (c *Client) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	env, err := c.makeRequest(ctx, http.MethodGet, fmt.Sprintf("/users/%d", userID), nil)
	if err != nil {
		return nil, err
	}
	return decodeData[models.User](env)
}

func (c *Client) ListUserPosts(ctx context.Context, userID int64, page int) (*PostPage, error) {
	endpoint := fmt.Sprintf("/users/%d/posts?page=%d", userID, page)
	env, err := c.makeRequest(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	posts, err := decodeData[[]models.Post](env)
	if err != nil {
		return nil, err
	}
	out := &PostPage{Posts: *posts}
	if env.Page != nil {
		out.Pagination = *env.Page
	}
	return out, nil
}

func (c *Client) Login(ctx context.Context, creds Credentials) (*AuthResult, error) {
	env, err := c.makeRequest(ctx, http.MethodPost, "/auth/login", creds)
	if err != nil {
		return nil, err
	}
	return decodeData[AuthResult](env)
}

func (c *Client) Register(ctx context.Context, creds Credentials) (*AuthResult, error) {
	env, err := c.makeRequest(ctx, http.MethodPost, "/auth/register", creds)
	if err != nil {
		return nil, err
	}
	return decodeData[AuthResult](env)
}

func (c *Client) Logout(ctx context.Context) error {
	_, err := c.makeRequest(ctx, http.MethodPost, "/auth/logout", nil)
	return err
}

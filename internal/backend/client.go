package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"github.com/me/streamsafe/pkg/model"
)

// AuthHeader is the fixed custom header carrying the opaque platform
// token. The platform does not use a standard bearer scheme.
const AuthHeader = "x-auth-token"

// Client communicates with the StreamSafe platform on behalf of the
// console. Every call is fire-once: no retry, no timeout beyond the
// caller's context. Failures carry the platform's message when the error
// body has one.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a platform API client with connection pooling.
func NewClient(baseURL string, logger *slog.Logger) *Client {
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Transport: transport},
		logger:     logger.With("component", "backend"),
	}
}

// LoginResult is the credential-exchange response: the opaque token plus
// the decoded profile.
type LoginResult struct {
	Token string            `json:"token"`
	User  model.UserProfile `json:"user"`
}

// Login exchanges credentials for a token and profile.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return nil, err
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "/api/auth/login", "", body)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	defer resp.Body.Close()

	var result LoginResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("login: decode response: %w", err)
	}
	return &result, nil
}

// Register creates an account. The platform does not log the new account
// in; the caller is expected to go through Login afterwards.
func (c *Client) Register(ctx context.Context, reg model.Registration) error {
	body, err := json.Marshal(reg)
	if err != nil {
		return err
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "/api/auth/register", "", body)
	if err != nil {
		return fmt.Errorf("register: %w", err)
	}
	resp.Body.Close()
	return nil
}

// ListVideos fetches the tenant's video library, newest first.
func (c *Client) ListVideos(ctx context.Context, token string) ([]model.Video, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/api/videos", token, nil)
	if err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}
	defer resp.Body.Close()

	var videos []model.Video
	if err := json.NewDecoder(resp.Body).Decode(&videos); err != nil {
		return nil, fmt.Errorf("list videos: decode response: %w", err)
	}
	return videos, nil
}

// UploadVideo streams a multipart upload to the platform and returns the
// created record (status processing, progress 0).
func (c *Client) UploadVideo(ctx context.Context, token, title, filename string, file io.Reader) (*model.Video, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile("video", filename)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("upload: read file: %w", err)
	}
	if err := mw.WriteField("title", title); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/videos/upload", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set(AuthHeader, token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upload: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("upload: %w", decodeError(resp))
	}

	var video model.Video
	if err := json.NewDecoder(resp.Body).Decode(&video); err != nil {
		return nil, fmt.Errorf("upload: decode response: %w", err)
	}
	return &video, nil
}

// StreamURL builds the media stream address for a video. The platform
// authenticates stream requests by a token query parameter, not a header.
func (c *Client) StreamURL(videoID, token string) string {
	return c.baseURL + "/api/videos/stream/" + url.PathEscape(videoID) + "?token=" + url.QueryEscape(token)
}

// OpenStream opens the media stream for proxying. The Range header, when
// present, is passed through so seeking keeps working. The caller owns
// the response body.
func (c *Client) OpenStream(ctx context.Context, videoID, token, rangeHeader string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.StreamURL(videoID, token), nil)
	if err != nil {
		return nil, err
	}
	if rangeHeader != "" {
		req.Header.Set("Range", rangeHeader)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("stream: %w", err)
	}
	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		return nil, fmt.Errorf("stream: %w", decodeError(resp))
	}
	return resp, nil
}

// ListOrgUsers fetches the organization's user directory (admin only;
// the platform filters by the caller's organization).
func (c *Client) ListOrgUsers(ctx context.Context, token string) ([]model.OrgUser, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/api/admin/users", token, nil)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer resp.Body.Close()

	var users []model.OrgUser
	if err := json.NewDecoder(resp.Body).Decode(&users); err != nil {
		return nil, fmt.Errorf("list users: decode response: %w", err)
	}
	return users, nil
}

// CreateOrgUser provisions an account in the caller's organization.
func (c *Client) CreateOrgUser(ctx context.Context, token string, user model.NewOrgUser) error {
	body, err := json.Marshal(user)
	if err != nil {
		return err
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "/api/admin/create-user", token, body)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	resp.Body.Close()
	return nil
}

// DeleteOrgUser removes an account from the caller's organization.
func (c *Client) DeleteOrgUser(ctx context.Context, token, userID string) error {
	resp, err := c.doRequest(ctx, http.MethodDelete, "/api/admin/user/"+url.PathEscape(userID), token, nil)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	resp.Body.Close()
	return nil
}

// doRequest executes an HTTP request, attaching the token header when a
// token is present. Responses with status >= 400 are converted to
// *model.APIError carrying the platform's message.
func (c *Client) doRequest(ctx context.Context, method, path, token string, body []byte) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(AuthHeader, token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		return nil, decodeError(resp)
	}

	return resp, nil
}

// decodeError extracts the platform's "msg" field from an error body.
// Bodies without one yield an APIError with only the status code.
func decodeError(resp *http.Response) *model.APIError {
	apiErr := &model.APIError{StatusCode: resp.StatusCode}

	data, err := io.ReadAll(resp.Body)
	if err != nil || len(data) == 0 {
		return apiErr
	}
	// Best effort: non-JSON bodies leave the message empty.
	_ = json.Unmarshal(data, apiErr)
	return apiErr
}

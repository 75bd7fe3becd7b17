package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/petroshong/calofeed-sub001/pkg/errs"
)

// AuthUser GoTrue 用户
type AuthUser struct {
	ID               string         `json:"id"`
	Email            string         `json:"email"`
	EmailConfirmedAt string         `json:"email_confirmed_at"`
	UserMetadata     map[string]any `json:"user_metadata"`
}

// AuthResponse 登录与刷新返回
type AuthResponse struct {
	AccessToken  string    `json:"access_token"`
	TokenType    string    `json:"token_type"`
	ExpiresIn    int       `json:"expires_in"`
	ExpiresAt    int64     `json:"expires_at"`
	RefreshToken string    `json:"refresh_token"`
	User         *AuthUser `json:"user"`
}

// Expiry 优先用 expires_at，没有时按 expires_in 推算
func (r *AuthResponse) Expiry(now time.Time) time.Time {
	if r.ExpiresAt > 0 {
		return time.Unix(r.ExpiresAt, 0)
	}
	return now.Add(time.Duration(r.ExpiresIn) * time.Second)
}

// SignUp 注册；开启邮箱验证时只返回用户，没有会话
func (c *Client) SignUp(ctx context.Context, email, password string, metadata map[string]any) (*AuthUser, *AuthResponse, error) {
	resp, err := c.authPost(ctx, "/signup", map[string]any{
		"email":    email,
		"password": password,
		"data":     metadata,
	}, "")
	if err != nil {
		return nil, nil, err
	}
	res := resp.Result()
	if res.Get("access_token").Exists() {
		var ar AuthResponse
		if err := json.Unmarshal(resp.Body, &ar); err != nil {
			return nil, nil, errs.Unknown("decode signup response", err)
		}
		return ar.User, &ar, nil
	}
	raw := res.Raw
	if u := res.Get("user"); u.Exists() {
		raw = u.Raw
	}
	var user AuthUser
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return nil, nil, errs.Unknown("decode signup response", err)
	}
	return &user, nil, nil
}

func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*AuthResponse, error) {
	resp, err := c.authPost(ctx, "/token?grant_type=password", map[string]string{
		"email":    email,
		"password": password,
	}, "")
	if err != nil {
		return nil, err
	}
	return decodeAuth(resp)
}

func (c *Client) RefreshSession(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	resp, err := c.authPost(ctx, "/token?grant_type=refresh_token", map[string]string{
		"refresh_token": refreshToken,
	}, "")
	if err != nil {
		return nil, err
	}
	return decodeAuth(resp)
}

func (c *Client) GetUser(ctx context.Context, accessToken string) (*AuthUser, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	var user AuthUser
	if err := json.Unmarshal(resp.Body, &user); err != nil {
		return nil, errs.Unknown("decode user", err)
	}
	return &user, nil
}

func (c *Client) Logout(ctx context.Context, accessToken string) error {
	_, err := c.authPost(ctx, "/logout", nil, accessToken)
	return err
}

// Recover 发送重置密码邮件
func (c *Client) Recover(ctx context.Context, email string) error {
	_, err := c.authPost(ctx, "/recover", map[string]string{"email": email}, "")
	return err
}

func (c *Client) authPost(ctx context.Context, path string, payload any, accessToken string) (*Response, error) {
	var body []byte
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, errs.Unknown("encode request", err)
		}
		body = raw
	}
	req, err := c.newRequest(ctx, http.MethodPost, c.baseURL+"/auth/v1"+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}
	return c.do(req)
}

func decodeAuth(resp *Response) (*AuthResponse, error) {
	var ar AuthResponse
	if err := json.Unmarshal(resp.Body, &ar); err != nil {
		return nil, errs.Unknown("decode auth response", err)
	}
	if ar.AccessToken == "" {
		return nil, errs.Auth("no session returned", nil)
	}
	return &ar, nil
}

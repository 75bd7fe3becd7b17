package supabase

import (
	"context"
	"errors"
	"sync"

	"github.com/petroshong/calofeed-sub001/backend"
	"github.com/petroshong/calofeed-sub001/pkg/errs"
	"github.com/petroshong/calofeed-sub001/pkg/jwt"
	"github.com/petroshong/calofeed-sub001/pkg/localstore"
	"github.com/petroshong/calofeed-sub001/pkg/log"
	sb "github.com/petroshong/calofeed-sub001/pkg/supabase"
	"github.com/petroshong/calofeed-sub001/types"
	"go.uber.org/zap"
)

// GetSession 读取本地保存的会话，快过期时先刷新
func (b *Backend) GetSession(ctx context.Context) (*types.Session, error) {
	s := b.storedSession()
	if s == nil {
		return nil, nil
	}
	if !s.Expired(b.now(), refreshLeeway) {
		return s, nil
	}
	ar, err := b.api.RefreshSession(ctx, s.RefreshToken)
	if err != nil {
		if errors.Is(err, errs.ErrAuth) || errors.Is(err, errs.ErrValidation) {
			log.L.Info("stored session can no longer be refreshed", zap.Error(err))
			b.clearSession()
			return nil, nil
		}
		return nil, err
	}
	fresh := b.toSession(ar)
	b.saveSession(fresh)
	b.emit(types.AuthTokenRefreshed, fresh)
	return fresh, nil
}

func (b *Backend) SignIn(ctx context.Context, email, password string) (*types.Session, error) {
	ar, err := b.api.SignInWithPassword(ctx, email, password)
	if err != nil {
		return nil, err
	}
	s := b.toSession(ar)
	b.saveSession(s)
	b.emit(types.AuthSignedIn, s)
	return s, nil
}

func (b *Backend) SignUp(ctx context.Context, req types.SignUpRequest) (*types.AuthUser, *types.Session, error) {
	user, ar, err := b.api.SignUp(ctx, req.Email, req.Password, map[string]any{
		"username":     req.Username,
		"display_name": req.DisplayName,
	})
	if err != nil {
		return nil, nil, err
	}
	au := toAuthUser(user)
	if ar == nil {
		return au, nil, nil
	}
	s := b.toSession(ar)
	b.saveSession(s)
	b.emit(types.AuthSignedIn, s)
	return au, s, nil
}

// SignOut 本地会话总是清除，远端失败只记录
func (b *Backend) SignOut(ctx context.Context) error {
	s := b.storedSession()
	b.clearSession()
	var err error
	if s != nil {
		err = b.api.Logout(ctx, s.AccessToken)
		if err != nil {
			log.L.Warn("remote sign out failed", zap.Error(err))
		}
	}
	b.emit(types.AuthSignedOut, nil)
	return err
}

func (b *Backend) OnAuthStateChange(h backend.AuthHandler) backend.Unsubscriber {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.listeners[id] = h
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.listeners, id)
			b.mu.Unlock()
		})
	}
}

func (b *Backend) GetProfile(ctx context.Context, userID string) (*types.User, error) {
	var row profileRow
	err := b.api.From(tableProfiles).Select("*").Eq("id", userID).Single().Execute(ctx, &row)
	if err != nil {
		// 单行查询没有结果时后端返回 406
		if errs.KindOf(err) == errs.KindValidation {
			return nil, errs.NotFound("profile %s not found", userID)
		}
		return nil, err
	}
	return row.user(), nil
}

func (b *Backend) CreateProfile(ctx context.Context, user types.User) error {
	return b.api.From(tableProfiles).Insert(ctx, newProfileRow(user), nil)
}

func (b *Backend) UpdateProfile(ctx context.Context, userID string, patch types.UserPatch) (*types.User, error) {
	var rows []profileRow
	if err := b.api.From(tableProfiles).Eq("id", userID).Update(ctx, profileColumns(patch), &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errs.NotFound("profile %s not found", userID)
	}
	return rows[0].user(), nil
}

func (b *Backend) CheckUsernameAvailable(ctx context.Context, username string) (bool, error) {
	var rows []struct {
		ID string `json:"id"`
	}
	if err := b.api.From(tableProfiles).Select("id").Eq("username", username).Limit(1).Execute(ctx, &rows); err != nil {
		return false, err
	}
	return len(rows) == 0, nil
}

func (b *Backend) ResetPassword(ctx context.Context, email string) error {
	return b.api.Recover(ctx, email)
}

func (b *Backend) toSession(ar *sb.AuthResponse) *types.Session {
	exp := ar.Expiry(b.now())
	if ar.ExpiresAt == 0 && ar.ExpiresIn == 0 {
		if t, err := jwt.ExpiresAt(ar.AccessToken); err == nil {
			exp = t
		}
	}
	return &types.Session{
		AccessToken:  ar.AccessToken,
		RefreshToken: ar.RefreshToken,
		ExpiresAt:    exp,
		User:         *toAuthUser(ar.User),
	}
}

func toAuthUser(u *sb.AuthUser) *types.AuthUser {
	if u == nil {
		return &types.AuthUser{}
	}
	return &types.AuthUser{
		ID:             u.ID,
		Email:          u.Email,
		EmailConfirmed: u.EmailConfirmedAt != "",
		Metadata:       u.UserMetadata,
	}
}

func (b *Backend) storedSession() *types.Session {
	s := localstore.Get[*types.Session](b.local, sessionKey, nil)
	if s == nil || s.AccessToken == "" {
		return nil
	}
	return s
}

func (b *Backend) saveSession(s *types.Session) {
	b.api.SetAccessToken(s.AccessToken)
	if err := localstore.Set(b.local, sessionKey, s); err != nil {
		log.L.Warn("persist session failed", zap.Error(err))
	}
}

func (b *Backend) clearSession() {
	b.api.SetAccessToken("")
	if err := b.local.Remove(sessionKey); err != nil {
		log.L.Warn("clear session failed", zap.Error(err))
	}
}

// emit 不持锁调用监听方
func (b *Backend) emit(event types.AuthEvent, s *types.Session) {
	b.mu.Lock()
	handlers := make([]backend.AuthHandler, 0, len(b.listeners))
	for _, h := range b.listeners {
		handlers = append(handlers, h)
	}
	b.mu.Unlock()
	for _, h := range handlers {
		h(event, s)
	}
}

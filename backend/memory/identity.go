package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/petroshong/calofeed-sub001/backend"
	"github.com/petroshong/calofeed-sub001/pkg/errs"
	"github.com/petroshong/calofeed-sub001/pkg/jwt"
	"github.com/petroshong/calofeed-sub001/pkg/log"
	"github.com/petroshong/calofeed-sub001/types"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func (b *Backend) GetSession(ctx context.Context) (*types.Session, error) {
	b.mu.Lock()
	if b.session == nil {
		b.mu.Unlock()
		return nil, nil
	}
	if !b.session.Expired(b.now(), 0) {
		s := *b.session
		b.mu.Unlock()
		return &s, nil
	}
	sess, err := b.mint(b.session.User)
	if err != nil {
		b.mu.Unlock()
		return nil, errs.Unknown("refresh session", err)
	}
	b.session = sess
	handlers := b.handlers()
	b.mu.Unlock()

	s := *sess
	emit(handlers, types.AuthTokenRefreshed, &s)
	return &s, nil
}

func (b *Backend) SignIn(ctx context.Context, email, password string) (*types.Session, error) {
	b.mu.Lock()
	acc, ok := b.accounts[strings.ToLower(email)]
	if !ok || bcrypt.CompareHashAndPassword(acc.hash, []byte(password)) != nil {
		b.mu.Unlock()
		return nil, errs.Auth("invalid login credentials", nil)
	}
	sess, err := b.mint(types.AuthUser{ID: acc.id, Email: acc.email, EmailConfirmed: true, Metadata: acc.metadata})
	if err != nil {
		b.mu.Unlock()
		return nil, errs.Unknown("sign in", err)
	}
	b.session = sess
	handlers := b.handlers()
	b.mu.Unlock()

	s := *sess
	emit(handlers, types.AuthSignedIn, &s)
	return &s, nil
}

// SignUp 内存后端直接确认邮箱，但不自动登录
func (b *Backend) SignUp(ctx context.Context, req types.SignUpRequest) (*types.AuthUser, *types.Session, error) {
	email := strings.ToLower(req.Email)
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), b.bcryptCost)
	if err != nil {
		return nil, nil, errs.Validation("password cannot be used", map[string]string{"password": err.Error()})
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.accounts[email]; ok {
		return nil, nil, errs.Validation("email is already registered", map[string]string{"email": "is already registered"})
	}
	acc := &account{
		id:    uuid.NewString(),
		email: email,
		hash:  hash,
		metadata: map[string]any{
			"username":     req.Username,
			"display_name": req.DisplayName,
		},
	}
	b.accounts[email] = acc
	log.L.Info("memory account created", zap.String("user_id", acc.id))
	return &types.AuthUser{ID: acc.id, Email: acc.email, EmailConfirmed: true, Metadata: acc.metadata}, nil, nil
}

func (b *Backend) SignOut(ctx context.Context) error {
	b.mu.Lock()
	had := b.session != nil
	b.session = nil
	handlers := b.handlers()
	b.mu.Unlock()

	if had {
		emit(handlers, types.AuthSignedOut, nil)
	}
	return nil
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
	b.mu.RLock()
	defer b.mu.RUnlock()
	u, ok := b.profiles[userID]
	if !ok {
		return nil, errs.NotFound("profile %s not found", userID)
	}
	return u.Clone(), nil
}

func (b *Backend) CreateProfile(ctx context.Context, user types.User) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.profiles[user.ID]; ok {
		return errs.Validation("profile already exists", nil)
	}
	if b.usernameTaken(user.Username, user.ID) {
		return errs.Validation("username is already taken", map[string]string{"username": "is already taken"})
	}
	now := b.now()
	user.CreatedAt, user.UpdatedAt = now, now
	if user.Badges == nil {
		user.Badges = []types.Badge{}
	}
	b.profiles[user.ID] = user
	return nil
}

func (b *Backend) UpdateProfile(ctx context.Context, userID string, patch types.UserPatch) (*types.User, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	u, ok := b.profiles[userID]
	if !ok {
		return nil, errs.NotFound("profile %s not found", userID)
	}
	if patch.Username != nil && b.usernameTaken(*patch.Username, userID) {
		return nil, errs.Validation("username is already taken", map[string]string{"username": "is already taken"})
	}
	u = patch.Apply(u)
	u.UpdatedAt = b.now()
	b.profiles[userID] = u
	return u.Clone(), nil
}

func (b *Backend) CheckUsernameAvailable(ctx context.Context, username string) (bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return !b.usernameTaken(username, ""), nil
}

// ResetPassword 不暴露邮箱是否存在
func (b *Backend) ResetPassword(ctx context.Context, email string) error {
	b.mu.RLock()
	_, ok := b.accounts[strings.ToLower(email)]
	b.mu.RUnlock()
	if ok {
		log.L.Info("memory password reset requested", zap.String("email", email))
	}
	return nil
}

func (b *Backend) usernameTaken(username, exceptID string) bool {
	for id, u := range b.profiles {
		if id != exceptID && strings.EqualFold(u.Username, username) {
			return true
		}
	}
	return false
}

func (b *Backend) mint(user types.AuthUser) (*types.Session, error) {
	access, exp, err := jwt.GenerateToken(b.secret, user.ID, user.Email, jwt.TypeAccess, b.ttl)
	if err != nil {
		return nil, err
	}
	return &types.Session{
		AccessToken:  access,
		RefreshToken: uuid.NewString(),
		ExpiresAt:    exp,
		User:         user,
	}, nil
}

func (b *Backend) handlers() []backend.AuthHandler {
	out := make([]backend.AuthHandler, 0, len(b.listeners))
	for _, h := range b.listeners {
		out = append(out, h)
	}
	return out
}

func emit(handlers []backend.AuthHandler, event types.AuthEvent, sess *types.Session) {
	for _, h := range handlers {
		h(event, sess)
	}
}

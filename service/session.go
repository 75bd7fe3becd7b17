package service

import (
	"context"
	"sync"
	"time"

	"github.com/petroshong/calofeed-sub001/backend"
	"github.com/petroshong/calofeed-sub001/pkg/errs"
	"github.com/petroshong/calofeed-sub001/pkg/log"
	"github.com/petroshong/calofeed-sub001/pkg/validate"
	"github.com/petroshong/calofeed-sub001/types"
	"go.uber.org/zap"
)

type SessionState string

const (
	StateUnauthenticated SessionState = "unauthenticated"
	StateAuthenticating  SessionState = "authenticating"
	StateAuthenticated   SessionState = "authenticated"
)

// StateListener user 为当前资料的副本，可能为 nil
type StateListener func(state SessionState, userID string, user *types.User)

// Viewer 当前登录用户
type Viewer interface {
	UserID() string
	CurrentUser() *types.User
}

var _ ISessionService = (*SessionService)(nil)

type ISessionService interface {
	Viewer
	Bootstrap(ctx context.Context) error
	Login(ctx context.Context, req types.LoginRequest) (*types.SessionView, error)
	SignUp(ctx context.Context, req types.SignUpRequest) (*types.SignUpResult, error)
	Logout(ctx context.Context)
	UpdateUser(ctx context.Context, patch types.UserPatch) (*types.User, error)
	RefreshProfile(ctx context.Context) (*types.User, error)
	ResetPassword(ctx context.Context, email string) error
	View() types.SessionView
	State() SessionState
	Observe(fn StateListener) func()
	ApplyLocal(fn func(u *types.User))
	Close()
}

// SessionService 身份状态机：未登录、登录中、已登录
type SessionService struct {
	Identity backend.Identity

	mu        sync.Mutex
	state     SessionState
	session   *types.Session
	user      *types.User
	gen       uint64 // 每次登录、登出递增，过期的异步结果据此丢弃
	closed    bool
	unsub     backend.Unsubscriber
	listeners map[int]StateListener
	nextID    int
}

func NewSessionService(identity backend.Identity) *SessionService {
	return &SessionService{
		Identity:  identity,
		state:     StateUnauthenticated,
		listeners: make(map[int]StateListener),
	}
}

// Bootstrap 恢复已有会话，资料拉取失败时仍保持已登录
func (s *SessionService) Bootstrap(ctx context.Context) error {
	s.mu.Lock()
	if s.unsub == nil && !s.closed {
		s.unsub = s.Identity.OnAuthStateChange(s.onAuthChange)
	}
	gen := s.gen
	s.mu.Unlock()

	sess, err := s.Identity.GetSession(ctx)
	if err != nil {
		log.L.Warn("restore session failed", zap.Error(err))
		s.setUnauthenticated(gen)
		return err
	}
	if sess == nil {
		s.setUnauthenticated(gen)
		return nil
	}
	s.setAuthenticated(gen, sess)
	if _, err := s.loadProfile(ctx, gen, sess.User.ID); err != nil {
		log.L.Warn("load profile failed", zap.String("user_id", sess.User.ID), zap.Error(err))
	}
	return nil
}

// Login 成功状态由身份变更回调写入
func (s *SessionService) Login(ctx context.Context, req types.LoginRequest) (*types.SessionView, error) {
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	gen := s.transition(StateAuthenticating)
	sess, err := s.Identity.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		s.setUnauthenticated(gen)
		if errs.KindOf(err) == errs.KindNetwork {
			return nil, err
		}
		return nil, errs.Auth("invalid email or password", err)
	}
	// 回调可能已经写入，这里重复写入是幂等的
	s.setAuthenticated(gen, sess)
	if _, err := s.loadProfile(ctx, gen, sess.User.ID); err != nil {
		log.L.Warn("load profile failed", zap.String("user_id", sess.User.ID), zap.Error(err))
	}
	view := s.View()
	return &view, nil
}

// SignUp 用户名被占用时在创建账号之前拒绝
func (s *SessionService) SignUp(ctx context.Context, req types.SignUpRequest) (*types.SignUpResult, error) {
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	ok, err := s.Identity.CheckUsernameAvailable(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errs.Validation("username is already taken", map[string]string{"username": "is already taken"})
	}

	au, sess, err := s.Identity.SignUp(ctx, req)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	profile := types.User{
		ID:          au.ID,
		Email:       req.Email,
		Username:    req.Username,
		DisplayName: req.DisplayName,
		Goals:       types.DefaultGoals(),
		Badges:      []types.Badge{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	res := &types.SignUpResult{UserID: au.ID, NeedsVerification: sess == nil}
	if err := s.Identity.CreateProfile(ctx, profile); err != nil {
		log.L.Warn("create profile failed", zap.String("user_id", au.ID), zap.Error(err))
	} else {
		res.ProfileCreated = true
	}
	if res.NeedsVerification {
		res.Message = "Check your email to confirm your account"
	} else {
		res.Message = "Account created"
		s.mu.Lock()
		if res.ProfileCreated && s.session != nil && s.session.User.ID == au.ID {
			s.user = profile.Clone()
		}
		s.mu.Unlock()
	}
	return res, nil
}

// Logout 远端失败只记录，本地总是回到未登录
func (s *SessionService) Logout(ctx context.Context) {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.mu.Unlock()
	s.setUnauthenticated(gen)
	if err := s.Identity.SignOut(ctx); err != nil {
		log.L.Warn("remote sign out failed", zap.Error(err))
	}
}

func (s *SessionService) UpdateUser(ctx context.Context, patch types.UserPatch) (*types.User, error) {
	cmd := &ProfileUpdate{Patch: patch}
	return cmd.Execute(ctx, s)
}

func (s *SessionService) RefreshProfile(ctx context.Context) (*types.User, error) {
	s.mu.Lock()
	gen := s.gen
	var uid string
	if s.session != nil {
		uid = s.session.User.ID
	}
	s.mu.Unlock()
	if uid == "" {
		return nil, errs.Auth("not signed in", nil)
	}
	return s.loadProfile(ctx, gen, uid)
}

func (s *SessionService) ResetPassword(ctx context.Context, email string) error {
	if err := validate.Struct(types.ResetPasswordRequest{Email: email}); err != nil {
		return err
	}
	return s.Identity.ResetPassword(ctx, email)
}

func (s *SessionService) UserID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateAuthenticated || s.session == nil {
		return ""
	}
	return s.session.User.ID
}

func (s *SessionService) CurrentUser() *types.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateAuthenticated {
		return nil
	}
	return s.user.Clone()
}

func (s *SessionService) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *SessionService) View() types.SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := types.SessionView{State: string(s.state)}
	if s.state == StateAuthenticated {
		v.User = s.user.Clone()
		v.NeedsProfile = s.user == nil
	}
	return v
}

// Observe 注册状态监听，返回取消函数
func (s *SessionService) Observe(fn StateListener) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

// ApplyLocal 只修改本地资料，不提交远端
func (s *SessionService) ApplyLocal(fn func(u *types.User)) {
	s.mu.Lock()
	if s.user == nil || s.closed {
		s.mu.Unlock()
		return
	}
	u := s.user.Clone()
	fn(u)
	s.user = u
	s.mu.Unlock()
}

// Close 之后到达的结果一律丢弃
func (s *SessionService) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	unsub := s.unsub
	s.unsub = nil
	s.listeners = make(map[int]StateListener)
	s.mu.Unlock()
	if unsub != nil {
		unsub()
	}
}

func (s *SessionService) onAuthChange(event types.AuthEvent, sess *types.Session) {
	s.mu.Lock()
	gen := s.gen
	s.mu.Unlock()
	switch event {
	case types.AuthSignedIn, types.AuthTokenRefreshed, types.AuthUserUpdated:
		if sess != nil {
			s.setAuthenticated(gen, sess)
		}
	case types.AuthSignedOut:
		s.setUnauthenticated(gen)
	}
}

// transition 开始新一轮登录或登出
func (s *SessionService) transition(state SessionState) uint64 {
	s.mu.Lock()
	if s.closed {
		gen := s.gen
		s.mu.Unlock()
		return gen
	}
	s.gen++
	gen := s.gen
	changed := s.state != state
	s.state = state
	s.mu.Unlock()
	if changed {
		s.notify(state, "", nil)
	}
	return gen
}

func (s *SessionService) setAuthenticated(gen uint64, sess *types.Session) {
	s.mu.Lock()
	if s.closed || gen != s.gen {
		s.mu.Unlock()
		return
	}
	prevID := ""
	if s.session != nil {
		prevID = s.session.User.ID
	}
	changed := s.state != StateAuthenticated || prevID != sess.User.ID
	if s.user != nil && s.user.ID != sess.User.ID {
		s.user = nil
	}
	cp := *sess
	s.session = &cp
	s.state = StateAuthenticated
	user := s.user.Clone()
	s.mu.Unlock()
	if changed {
		s.notify(StateAuthenticated, sess.User.ID, user)
	}
}

func (s *SessionService) setUnauthenticated(gen uint64) {
	s.mu.Lock()
	if s.closed || gen != s.gen {
		s.mu.Unlock()
		return
	}
	changed := s.state != StateUnauthenticated || s.session != nil
	s.state = StateUnauthenticated
	s.session = nil
	s.user = nil
	s.mu.Unlock()
	if changed {
		s.notify(StateUnauthenticated, "", nil)
	}
}

// loadProfile 拉取资料，结果只在会话未变化时写入
func (s *SessionService) loadProfile(ctx context.Context, gen uint64, userID string) (*types.User, error) {
	u, err := s.Identity.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	if s.closed || gen != s.gen || s.session == nil || s.session.User.ID != userID {
		s.mu.Unlock()
		return u, nil
	}
	s.user = u.Clone()
	s.mu.Unlock()
	return u, nil
}

func (s *SessionService) notify(state SessionState, userID string, user *types.User) {
	s.mu.Lock()
	fns := make([]StateListener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn(state, userID, user)
	}
}

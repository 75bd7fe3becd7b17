package service

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/petroshong/calofeed-sub001/backend"
	"github.com/petroshong/calofeed-sub001/backend/memory"
	"github.com/petroshong/calofeed-sub001/config"
	"github.com/petroshong/calofeed-sub001/pkg/errs"
	"github.com/petroshong/calofeed-sub001/pkg/localstore"
	"github.com/petroshong/calofeed-sub001/types"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type testEnv struct {
	backend *memory.Backend
	store   localstore.Store
	session *SessionService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	be := memory.New(&config.Jwt{Secret: "test", ExpiresSecs: 3600}, memory.WithBcryptCost(bcrypt.MinCost))
	s := NewSessionService(be)
	t.Cleanup(s.Close)
	return &testEnv{backend: be, store: localstore.NewMemory(), session: s}
}

// register 新建账号并以该账号登录
func (e *testEnv) register(t *testing.T, email, username string) string {
	t.Helper()
	ctx := context.Background()
	res, err := e.session.SignUp(ctx, types.SignUpRequest{
		Email:       email,
		Password:    "password1",
		Username:    username,
		DisplayName: username,
	})
	require.NoError(t, err)
	_, err = e.session.Login(ctx, types.LoginRequest{Email: email, Password: "password1"})
	require.NoError(t, err)
	require.Equal(t, res.UserID, e.session.UserID())
	return res.UserID
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// flakyIdentity 按需让资料读写失败或阻塞，并统计注册调用
type flakyIdentity struct {
	backend.Identity
	failUpdate  bool
	failProfile bool
	// profileGate 非空时 GetProfile 先通知 profileAsked，再等到 gate 关闭
	profileGate  chan struct{}
	profileAsked chan struct{}
	signUps      atomic.Int32
}

var _ backend.Identity = (*flakyIdentity)(nil)

func (f *flakyIdentity) UpdateProfile(ctx context.Context, userID string, patch types.UserPatch) (*types.User, error) {
	if f.failUpdate {
		return nil, errs.Network("profile service unreachable", nil)
	}
	return f.Identity.UpdateProfile(ctx, userID, patch)
}

func (f *flakyIdentity) GetProfile(ctx context.Context, userID string) (*types.User, error) {
	if f.profileGate != nil {
		f.profileAsked <- struct{}{}
		<-f.profileGate
	}
	if f.failProfile {
		return nil, errs.Network("profile service unreachable", nil)
	}
	return f.Identity.GetProfile(ctx, userID)
}

func (f *flakyIdentity) SignUp(ctx context.Context, req types.SignUpRequest) (*types.AuthUser, *types.Session, error) {
	f.signUps.Add(1)
	return f.Identity.SignUp(ctx, req)
}

// flakyStore 点赞与收藏写远端失败
type flakyStore struct {
	backend.Store
}

var _ backend.Store = (*flakyStore)(nil)

func (f *flakyStore) SetLike(ctx context.Context, userID, mealID string, liked bool) error {
	return errs.Network("store unreachable", nil)
}

func (f *flakyStore) SetBookmark(ctx context.Context, userID, mealID string, bookmarked bool) error {
	return errs.Network("store unreachable", nil)
}

// recordingPusher 记录推送的消息
type recordingPusher struct {
	ch chan types.PushMessage
}

var _ Pusher = (*recordingPusher)(nil)

func newRecordingPusher() *recordingPusher {
	return &recordingPusher{ch: make(chan types.PushMessage, 16)}
}

func (p *recordingPusher) Push(userID string, msg types.PushMessage) int {
	p.ch <- msg
	return 1
}

package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/petroshong/calofeed-sub001/pkg/errs"
	"github.com/petroshong/calofeed-sub001/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_LoginAndLogout(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	var (
		mu     sync.Mutex
		states []SessionState
	)
	stop := env.session.Observe(func(state SessionState, _ string, _ *types.User) {
		mu.Lock()
		states = append(states, state)
		mu.Unlock()
	})
	defer stop()

	uid := env.register(t, "ann@example.com", "ann")
	assert.Equal(t, StateAuthenticated, env.session.State())
	view := env.session.View()
	require.NotNil(t, view.User)
	assert.Equal(t, uid, view.User.ID)
	assert.False(t, view.NeedsProfile)

	env.session.Logout(ctx)
	assert.Equal(t, StateUnauthenticated, env.session.State())
	assert.Empty(t, env.session.UserID())
	assert.Nil(t, env.session.CurrentUser())

	mu.Lock()
	defer mu.Unlock()
	assert.Contains(t, states, StateAuthenticating)
	assert.Equal(t, StateUnauthenticated, states[len(states)-1])
}

func TestSession_LoginWrongPassword(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.register(t, "ann@example.com", "ann")
	env.session.Logout(ctx)

	_, err := env.session.Login(ctx, types.LoginRequest{Email: "ann@example.com", Password: "nope"})
	require.ErrorIs(t, err, errs.ErrAuth)
	assert.Equal(t, StateUnauthenticated, env.session.State())
}

func TestSession_SignUpTakenUsernameRejectedFirst(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	id := &flakyIdentity{Identity: env.backend}
	s := NewSessionService(id)
	defer s.Close()

	_, err := s.SignUp(ctx, types.SignUpRequest{Email: "ann@example.com", Password: "password1", Username: "ann", DisplayName: "Ann"})
	require.NoError(t, err)
	require.EqualValues(t, 1, id.signUps.Load())

	_, err = s.SignUp(ctx, types.SignUpRequest{Email: "other@example.com", Password: "password1", Username: "ann", DisplayName: "Other"})
	require.ErrorIs(t, err, errs.ErrValidation)
	assert.Equal(t, "is already taken", errs.FieldsOf(err)["username"])
	assert.EqualValues(t, 1, id.signUps.Load())
}

func TestSession_SignUpValidation(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.session.SignUp(context.Background(), types.SignUpRequest{Email: "bad", Password: "short", Username: "a b"})
	require.ErrorIs(t, err, errs.ErrValidation)
	fields := errs.FieldsOf(err)
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "password")
}

func TestSession_UpdateUserFailureRestoresBio(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	id := &flakyIdentity{Identity: env.backend}
	s := NewSessionService(id)
	defer s.Close()

	_, err := s.SignUp(ctx, types.SignUpRequest{Email: "ann@example.com", Password: "password1", Username: "ann", DisplayName: "Ann"})
	require.NoError(t, err)
	_, err = s.Login(ctx, types.LoginRequest{Email: "ann@example.com", Password: "password1"})
	require.NoError(t, err)

	bio := "first"
	_, err = s.UpdateUser(ctx, types.UserPatch{Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, "first", s.CurrentUser().Bio)

	id.failUpdate = true
	next := "second"
	_, err = s.UpdateUser(ctx, types.UserPatch{Bio: &next})
	require.ErrorIs(t, err, errs.ErrNetwork)
	assert.Equal(t, "first", s.CurrentUser().Bio)
}

func TestSession_UpdateUserRequiresSession(t *testing.T) {
	env := newTestEnv(t)
	bio := "x"
	_, err := env.session.UpdateUser(context.Background(), types.UserPatch{Bio: &bio})
	assert.ErrorIs(t, err, errs.ErrAuth)
}

func TestSession_BootstrapRestoresRemoteSession(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	uid := env.register(t, "ann@example.com", "ann")

	restored := NewSessionService(env.backend)
	defer restored.Close()
	require.NoError(t, restored.Bootstrap(ctx))
	assert.Equal(t, uid, restored.UserID())
	require.NotNil(t, restored.CurrentUser())
	assert.Equal(t, "ann", restored.CurrentUser().Username)
}

func TestSession_BootstrapWithoutProfileStaysSignedIn(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	uid := env.register(t, "ann@example.com", "ann")

	id := &flakyIdentity{Identity: env.backend, failProfile: true}
	restored := NewSessionService(id)
	defer restored.Close()

	require.NoError(t, restored.Bootstrap(ctx))
	assert.Equal(t, StateAuthenticated, restored.State())
	assert.Equal(t, uid, restored.UserID())
	assert.Nil(t, restored.CurrentUser())
	assert.True(t, restored.View().NeedsProfile)
}

func TestSession_ProfileArrivingAfterCloseIsDropped(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.register(t, "ann@example.com", "ann")

	id := &flakyIdentity{
		Identity:     env.backend,
		profileGate:  make(chan struct{}),
		profileAsked: make(chan struct{}, 1),
	}
	restored := NewSessionService(id)

	done := make(chan error, 1)
	go func() { done <- restored.Bootstrap(ctx) }()

	select {
	case <-id.profileAsked:
	case <-time.After(2 * time.Second):
		t.Fatal("profile was never requested")
	}
	restored.Close()
	close(id.profileGate)
	require.NoError(t, <-done)

	assert.Nil(t, restored.CurrentUser())
}

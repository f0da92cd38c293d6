package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"

	"restaurant-frontend/internal/domain"
	"restaurant-frontend/internal/repository/slot"
)

// State is the authentication state of one profile.
type State string

const (
	StateUnauthenticated State = "unauthenticated"
	StateAuthenticating  State = "authenticating"
	StateAuthenticated   State = "authenticated"
)

// ErrSuperseded is returned by a login whose result was overtaken by a logout
// or a newer login.
var ErrSuperseded = errors.New("login superseded")

type slotRepo interface {
	Get(ctx context.Context, profileID, slot string) (string, error)
	Put(ctx context.Context, profileID, slot, value string) error
	Delete(ctx context.Context, profileID, slot string) error
}

type userLookup interface {
	UserByEmail(ctx context.Context, email string) (*domain.User, error)
}

type authenticator interface {
	Login(ctx context.Context, email, password string) (string, error)
}

type bearer interface {
	SetToken(token string)
	ClearToken()
}

type noticeSink interface {
	Push(n domain.Notice)
}

// Deps are the collaborators of a Binding.
type Deps struct {
	ProfileID string
	Slots     slotRepo
	Users     userLookup
	Auth      authenticator
	Bearer    bearer
	Notices   noticeSink
	Decoder   Decoder
	Logger    *log.Logger
}

// Binding owns the authenticated identity of one browser profile. It is the
// only component that ends a cart's life: logout notifies subscribers, which
// clear themselves. Login and rehydration never touch the cart.
type Binding struct {
	deps Deps

	mu        sync.Mutex
	state     State
	session   *domain.Session
	gen       uint64
	listeners []func(context.Context)
}

// NewBinding returns an unauthenticated Binding.
func NewBinding(deps Deps) *Binding {
	if deps.Logger == nil {
		deps.Logger = log.New(io.Discard, "", 0)
	}
	if deps.Decoder.now == nil {
		deps.Decoder = NewDecoder("", nil)
	}
	return &Binding{deps: deps, state: StateUnauthenticated}
}

// OnLogout registers fn to run after every logout.
func (b *Binding) OnLogout(fn func(context.Context)) {
	b.mu.Lock()
	b.listeners = append(b.listeners, fn)
	b.mu.Unlock()
}

// State returns the current state.
func (b *Binding) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Current returns the live session. A session whose credential has expired is
// torn down on the spot and reported as absent.
func (b *Binding) Current(ctx context.Context) (domain.Session, bool) {
	b.mu.Lock()
	s := b.session
	b.mu.Unlock()
	if s == nil {
		return domain.Session{}, false
	}
	if !s.Live(b.deps.Decoder.now()) {
		b.Expire(ctx)
		return domain.Session{}, false
	}
	return *s, true
}

// Rehydrate restores the session from the stored credential. Having no stored
// credential is not an error. Any failure discards the credential, pushes a
// session-expired notice and leaves the profile unauthenticated.
func (b *Binding) Rehydrate(ctx context.Context) error {
	raw, err := b.deps.Slots.Get(ctx, b.deps.ProfileID, slot.Credential)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		b.deps.Logger.Printf("session: read credential profile=%s error=%v", b.deps.ProfileID, err)
		return nil
	}

	if _, err := b.establish(ctx, raw, false); err != nil {
		b.deps.Logger.Printf("session: rehydrate profile=%s error=%v", b.deps.ProfileID, err)
		if !errors.Is(err, ErrSuperseded) {
			b.notify(domain.NoticeWarning, domain.MsgSessionExpired)
		}
		return err
	}
	return nil
}

// Login validates credential, resolves the user and persists the credential.
// On failure nothing is persisted, any previously stored credential is
// dropped and the profile stays unauthenticated.
func (b *Binding) Login(ctx context.Context, credential string) (domain.Session, error) {
	return b.establish(ctx, credential, true)
}

// LoginWithPassword obtains a credential from the API and logs in with it.
func (b *Binding) LoginWithPassword(ctx context.Context, email, password string) (domain.Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return domain.Session{}, fmt.Errorf("%w: email and password required", ErrInvalidCredential)
	}
	if b.deps.Auth == nil {
		return domain.Session{}, errors.New("password login unavailable")
	}
	token, err := b.deps.Auth.Login(ctx, email, password)
	if err != nil {
		return domain.Session{}, fmt.Errorf("login: %w", err)
	}
	return b.establish(ctx, token, true)
}

// Logout clears the session, the stored credential and the bearer token, then
// notifies logout subscribers.
func (b *Binding) Logout(ctx context.Context) {
	b.mu.Lock()
	b.gen++
	b.session = nil
	b.state = StateUnauthenticated
	listeners := append([]func(context.Context){}, b.listeners...)
	b.mu.Unlock()

	b.deps.Bearer.ClearToken()
	b.dropCredential(ctx)
	for _, fn := range listeners {
		fn(ctx)
	}
	b.deps.Logger.Printf("session: logout profile=%s", b.deps.ProfileID)
}

// Expire tears an authenticated session down after an expiry was detected
// (locally or by an API 401). Unlike Logout it does not notify subscribers, so
// the cart survives. It is a no-op while unauthenticated or authenticating:
// failures during login are reported by the login itself.
func (b *Binding) Expire(ctx context.Context) {
	b.mu.Lock()
	if b.state != StateAuthenticated {
		b.mu.Unlock()
		return
	}
	b.gen++
	b.session = nil
	b.state = StateUnauthenticated
	b.mu.Unlock()

	b.deps.Bearer.ClearToken()
	b.dropCredential(ctx)
	b.notify(domain.NoticeWarning, domain.MsgSessionExpired)
	b.deps.Logger.Printf("session: expired profile=%s", b.deps.ProfileID)
}

func (b *Binding) establish(ctx context.Context, credential string, persist bool) (domain.Session, error) {
	b.mu.Lock()
	b.gen++
	gen := b.gen
	b.session = nil
	b.state = StateAuthenticating
	b.mu.Unlock()
	b.deps.Bearer.ClearToken()

	fail := func(err error) (domain.Session, error) {
		b.mu.Lock()
		current := b.gen == gen
		if current {
			b.state = StateUnauthenticated
		}
		b.mu.Unlock()
		if !current {
			return domain.Session{}, ErrSuperseded
		}
		b.deps.Bearer.ClearToken()
		b.dropCredential(ctx)
		return domain.Session{}, err
	}

	decoded, err := b.deps.Decoder.Decode(credential)
	if err != nil {
		return fail(err)
	}
	credential = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(credential), "Bearer "))

	b.deps.Bearer.SetToken(credential)
	user, err := b.deps.Users.UserByEmail(ctx, decoded.Email)
	if err != nil {
		return fail(fmt.Errorf("resolve user %s: %w", decoded.Email, err))
	}

	sess := domain.Session{
		UserID:     user.ID,
		Email:      decoded.Email,
		Role:       decoded.Role,
		Credential: credential,
		ExpiresAt:  decoded.ExpiresAt,
	}
	if user.Email != "" {
		sess.Email = user.Email
	}
	if role, ok := domain.ParseRole(user.Role); ok {
		sess.Role = role
	}

	b.mu.Lock()
	if b.gen != gen {
		b.mu.Unlock()
		return domain.Session{}, ErrSuperseded
	}
	b.session = &sess
	b.state = StateAuthenticated
	b.mu.Unlock()

	if persist {
		if err := b.deps.Slots.Put(ctx, b.deps.ProfileID, slot.Credential, credential); err != nil {
			b.deps.Logger.Printf("session: persist credential profile=%s error=%v", b.deps.ProfileID, err)
		}
	}
	b.deps.Logger.Printf("session: authenticated profile=%s user=%s role=%s", b.deps.ProfileID, sess.UserID, sess.Role)
	return sess, nil
}

func (b *Binding) dropCredential(ctx context.Context) {
	if err := b.deps.Slots.Delete(ctx, b.deps.ProfileID, slot.Credential); err != nil {
		b.deps.Logger.Printf("session: remove credential profile=%s error=%v", b.deps.ProfileID, err)
	}
}

func (b *Binding) notify(level domain.NoticeLevel, msg string) {
	if b.deps.Notices != nil {
		b.deps.Notices.Push(domain.Notice{Level: level, Message: msg})
	}
}

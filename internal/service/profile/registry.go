package profile

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"
	"time"

	"restaurant-frontend/internal/apiclient"
	"restaurant-frontend/internal/domain"
	"restaurant-frontend/internal/repository/slot"
	"restaurant-frontend/internal/service/cart"
	"restaurant-frontend/internal/service/checkout"
	"restaurant-frontend/internal/service/notice"
	"restaurant-frontend/internal/service/session"
)

// Profile is everything the server keeps for one browser profile.
type Profile struct {
	ID       string
	Cart     *cart.Store
	Session  *session.Binding
	Client   *apiclient.Client
	Notices  *notice.Inbox
	Checkout *checkout.Orchestrator

	lastSeen time.Time
	inUse    int
}

// Options configure a Registry.
type Options struct {
	Slots   slot.Repository
	API     *apiclient.Client
	Decoder session.Decoder
	Logger  *log.Logger
	Now     func() time.Time
}

type entry struct {
	ready   chan struct{}
	profile *Profile
}

// Registry builds profiles on first use and keeps them in memory. Evicted
// profiles are rebuilt from their slots on the next request.
type Registry struct {
	opts Options

	mu      sync.Mutex
	entries map[string]*entry
}

// NewRegistry returns an empty Registry.
func NewRegistry(opts Options) *Registry {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard, "", 0)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Registry{opts: opts, entries: make(map[string]*entry)}
}

// Get returns the profile for id, loading its cart and rehydrating its session
// the first time it is seen. Concurrent first requests share one load. The
// profile is held until Release and is not evicted meanwhile.
func (r *Registry) Get(ctx context.Context, id string) *Profile {
	r.mu.Lock()
	e, ok := r.entries[id]
	if !ok {
		e = &entry{ready: make(chan struct{})}
		r.entries[id] = e
	}
	r.mu.Unlock()

	if !ok {
		e.profile = r.build(ctx, id)
		close(e.ready)
	} else {
		<-e.ready
	}

	r.mu.Lock()
	e.profile.lastSeen = r.opts.Now()
	e.profile.inUse++
	r.mu.Unlock()
	return e.profile
}

// Release ends a hold taken by Get and restarts the profile's idle clock.
func (r *Registry) Release(p *Profile) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.inUse > 0 {
		p.inUse--
	}
	p.lastSeen = r.opts.Now()
}

// Len reports how many profiles are held in memory.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Evict drops unheld profiles not seen for longer than idle and returns how
// many were dropped.
func (r *Registry) Evict(idle time.Duration) int {
	cutoff := r.opts.Now().Add(-idle)
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, e := range r.entries {
		select {
		case <-e.ready:
		default:
			continue
		}
		if e.profile.inUse == 0 && e.profile.lastSeen.Before(cutoff) {
			delete(r.entries, id)
			n++
		}
	}
	return n
}

// RunJanitor evicts idle profiles every interval until ctx is done.
func (r *Registry) RunJanitor(ctx context.Context, interval, idle time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := r.Evict(idle); n > 0 {
				r.opts.Logger.Printf("profile: evicted %d idle profiles", n)
			}
		}
	}
}

func (r *Registry) build(ctx context.Context, id string) *Profile {
	p := &Profile{
		ID:      id,
		Client:  r.opts.API.Clone(),
		Notices: notice.NewInbox(0),
	}
	p.Cart = cart.Load(ctx, r.opts.Slots, id, r.opts.Logger)
	p.Session = session.NewBinding(session.Deps{
		ProfileID: id,
		Slots:     r.opts.Slots,
		Users:     p.Client,
		Auth:      p.Client,
		Bearer:    p.Client,
		Notices:   p.Notices,
		Decoder:   r.opts.Decoder,
		Logger:    r.opts.Logger,
	})
	p.Session.OnLogout(p.Cart.OnSessionEnded)
	p.Client.SetObserver(&observer{profile: p})
	p.Checkout = checkout.NewOrchestrator(p.Client, p.Cart, p.Session, r.opts.Logger)

	if err := p.Session.Rehydrate(ctx); err != nil {
		r.opts.Logger.Printf("profile: %s starts unauthenticated: %v", id, err)
	}
	return p
}

// observer turns API failures into session expiry and toasts.
type observer struct {
	profile *Profile
}

func (o *observer) OnAPIError(ctx context.Context, err *apiclient.Error) {
	switch {
	case errors.Is(err, apiclient.ErrUnauthorized):
		o.profile.Session.Expire(ctx)
	case errors.Is(err, apiclient.ErrForbidden):
		o.profile.Notices.Push(domain.Notice{Level: domain.NoticeError, Message: domain.MsgPermissionDenied})
	}
}

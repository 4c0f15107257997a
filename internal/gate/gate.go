// Package gate is the client-side registration gate: it decides whether a
// connected wallet sees the registration form or the claim action.
//
// All transitions run on one goroutine fed by a channel, so events for a
// session are applied one at a time. Network calls run on their own
// goroutines and report back through the same channel tagged with a
// sequence number; a response whose sequence is no longer current is
// dropped.
package gate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"nftgate/pkg/platform/privacy"
)

// API is the Registration API as seen by the gate.
type API interface {
	Status(ctx context.Context, walletAddress string) (bool, error)
	Register(ctx context.Context, reg Registration) error
}

// Claimer performs the claim action for a registered wallet.
type Claimer interface {
	Claim(ctx context.Context, walletAddress string) error
}

// Messages shown after failed network calls.
const (
	MessageStatusFailed   = "Could not check registration status. Try again."
	MessageRegisterFailed = "Registration failed. Try again."
)

const DefaultRequestTimeout = 15 * time.Second

// State is an immutable snapshot of the gate.
type State struct {
	Phase       Phase
	Wallet      string
	Message     string
	Form        Form
	FieldErrors map[string]string
}

// Transition describes one applied state change.
type Transition struct {
	From  Phase
	To    Phase
	Cause string
	State State
}

// Observer receives transitions on the gate goroutine, before State()
// reflects them. It must return promptly and must not call back into the
// gate synchronously.
type Observer func(Transition)

type Gate struct {
	api       API
	claimer   Claimer
	logger    *slog.Logger
	timeout   time.Duration
	observers []Observer

	events chan any
	quit   chan struct{}
	done   chan struct{}
	once   sync.Once

	ctx      context.Context
	cancel   context.CancelFunc
	inflight sync.WaitGroup

	// Loop-owned.
	current State
	seq     uint64

	// session lives while the gate stays Registered for one wallet; claims
	// run under it and are cancelled when the gate leaves that state.
	session       context.Context
	cancelSession context.CancelFunc

	mu       sync.RWMutex
	snapshot State
	changed  chan struct{}
}

type Option func(*Gate)

func WithClaimer(c Claimer) Option {
	return func(g *Gate) {
		g.claimer = c
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(g *Gate) {
		g.logger = logger
	}
}

func WithRequestTimeout(d time.Duration) Option {
	return func(g *Gate) {
		if d > 0 {
			g.timeout = d
		}
	}
}

func WithObserver(o Observer) Option {
	return func(g *Gate) {
		if o != nil {
			g.observers = append(g.observers, o)
		}
	}
}

// New starts a gate in Disconnected. Call Close to stop it.
func New(api API, opts ...Option) *Gate {
	g := &Gate{
		api:     api,
		logger:  slog.Default(),
		timeout: DefaultRequestTimeout,
		events:  make(chan any),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
		changed: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.ctx, g.cancel = context.WithCancel(context.Background())
	go g.run()
	return g
}

// events

type connectEvent struct{ wallet string }

type disconnectEvent struct{}

type retryEvent struct{ reply chan error }

type submitEvent struct {
	form  Form
	reply chan error
}

type claimEvent struct{ reply chan claimReply }

type claimReply struct {
	wallet  string
	session context.Context
	err     error
}

type statusResult struct {
	seq        uint64
	wallet     string
	registered bool
	err        error
}

type registerResult struct {
	seq    uint64
	wallet string
	err    error
}

// Connect reports a connected wallet. Connecting a different address while
// connected is an address change and re-checks status; reconnecting the
// current address is a no-op unless the gate is in Error.
func (g *Gate) Connect(walletAddress string) error {
	return g.send(connectEvent{wallet: strings.TrimSpace(walletAddress)})
}

// Disconnect returns the gate to Disconnected from any state, discarding
// form data, messages and any in-flight response.
func (g *Gate) Disconnect() error {
	return g.send(disconnectEvent{})
}

// Retry re-enters CheckingStatus from Error.
func (g *Gate) Retry() error {
	reply := make(chan error, 1)
	if err := g.send(retryEvent{reply: reply}); err != nil {
		return err
	}
	return <-reply
}

// Submit validates form locally and, when valid, starts the registration
// call. A *FormError leaves the gate in NeedsRegistration with field
// messages set. While a submission is in flight it returns ErrSubmitInProgress.
func (g *Gate) Submit(form Form) error {
	reply := make(chan error, 1)
	if err := g.send(submitEvent{form: form, reply: reply}); err != nil {
		return err
	}
	return <-reply
}

// Claim invokes the Claimer for the connected wallet. Only allowed in
// Registered; a disconnect or address change cancels the claim's context
// and the call reports ErrClaimNotAllowed.
func (g *Gate) Claim(ctx context.Context) error {
	reply := make(chan claimReply, 1)
	if err := g.send(claimEvent{reply: reply}); err != nil {
		return err
	}
	r := <-reply
	if r.err != nil {
		return r.err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(r.session, cancel)
	defer stop()

	err := g.claimer.Claim(ctx, r.wallet)
	if r.session.Err() != nil {
		if err == nil {
			err = context.Cause(r.session)
		}
		return fmt.Errorf("%w: wallet left Registered during claim: %w", ErrClaimNotAllowed, err)
	}
	return err
}

// State returns the latest snapshot.
func (g *Gate) State() State {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.snapshot
}

// Await blocks until the gate reaches one of phases or ctx ends.
func (g *Gate) Await(ctx context.Context, phases ...Phase) (State, error) {
	for {
		g.mu.RLock()
		st, changed := g.snapshot, g.changed
		g.mu.RUnlock()
		for _, p := range phases {
			if st.Phase == p {
				return st, nil
			}
		}
		select {
		case <-changed:
		case <-ctx.Done():
			return st, ctx.Err()
		case <-g.done:
			return st, ErrClosed
		}
	}
}

// Close stops the gate, cancels in-flight calls and waits for them to return.
func (g *Gate) Close() {
	g.once.Do(func() {
		close(g.quit)
		<-g.done
		g.cancel()
		g.inflight.Wait()
	})
}

func (g *Gate) send(ev any) error {
	select {
	case g.events <- ev:
		return nil
	case <-g.quit:
		return ErrClosed
	}
}

func (g *Gate) run() {
	defer close(g.done)
	for {
		select {
		case <-g.quit:
			return
		case ev := <-g.events:
			g.handle(ev)
		}
	}
}

func (g *Gate) handle(ev any) {
	switch e := ev.(type) {
	case connectEvent:
		g.onConnect(e.wallet)
	case disconnectEvent:
		g.seq++
		g.apply(State{Phase: Disconnected}, "wallet disconnected")
	case retryEvent:
		if g.current.Phase != Error {
			e.reply <- ErrNotRetryable
			return
		}
		g.startStatusCheck(g.current.Wallet, "retry")
		e.reply <- nil
	case submitEvent:
		e.reply <- g.onSubmit(e.form)
	case claimEvent:
		switch {
		case g.current.Phase != Registered:
			e.reply <- claimReply{err: ErrClaimNotAllowed}
		case g.claimer == nil:
			e.reply <- claimReply{err: ErrNoClaimer}
		default:
			e.reply <- claimReply{wallet: g.current.Wallet, session: g.session}
		}
	case statusResult:
		g.onStatusResult(e)
	case registerResult:
		g.onRegisterResult(e)
	}
}

func (g *Gate) onConnect(wallet string) {
	if wallet == "" {
		g.seq++
		g.apply(State{Phase: Disconnected}, "empty wallet address")
		return
	}
	if wallet == g.current.Wallet && g.current.Phase != Disconnected && g.current.Phase != Error {
		return
	}
	cause := "wallet connected"
	if g.current.Phase != Disconnected && wallet != g.current.Wallet {
		cause = "wallet address changed"
	}
	g.startStatusCheck(wallet, cause)
}

func (g *Gate) startStatusCheck(wallet, cause string) {
	g.seq++
	seq := g.seq
	g.apply(State{Phase: CheckingStatus, Wallet: wallet}, cause)

	g.goCall(func(ctx context.Context) any {
		registered, err := g.api.Status(ctx, wallet)
		return statusResult{seq: seq, wallet: wallet, registered: registered, err: err}
	})
}

func (g *Gate) onStatusResult(r statusResult) {
	if !g.isCurrent(r.seq, r.wallet, CheckingStatus) {
		g.logger.Debug("discarding stale status response", "wallet", privacy.MaskWallet(r.wallet))
		return
	}
	switch {
	case r.err != nil:
		g.logger.Warn("registration status check failed", "wallet", privacy.MaskWallet(r.wallet), "error", r.err)
		g.apply(State{Phase: Error, Wallet: r.wallet, Message: MessageStatusFailed}, "status check failed")
	case r.registered:
		g.apply(State{Phase: Registered, Wallet: r.wallet}, "already registered")
	default:
		g.apply(State{Phase: NeedsRegistration, Wallet: r.wallet}, "not registered")
	}
}

func (g *Gate) onSubmit(raw Form) error {
	switch g.current.Phase {
	case Submitting:
		return ErrSubmitInProgress
	case NeedsRegistration:
	default:
		return ErrNotAccepting
	}

	form := raw.Normalize()
	if fields := form.Validate(); fields != nil {
		next := g.current
		next.Form = form
		next.FieldErrors = fields
		next.Message = ""
		g.apply(next, "form invalid")
		return &FormError{Fields: fields}
	}

	g.seq++
	seq := g.seq
	wallet := g.current.Wallet
	g.apply(State{Phase: Submitting, Wallet: wallet, Form: form}, "form submitted")

	reg := form.registration(wallet)
	g.goCall(func(ctx context.Context) any {
		return registerResult{seq: seq, wallet: wallet, err: g.api.Register(ctx, reg)}
	})
	return nil
}

func (g *Gate) onRegisterResult(r registerResult) {
	if !g.isCurrent(r.seq, r.wallet, Submitting) {
		g.logger.Debug("discarding stale register response", "wallet", privacy.MaskWallet(r.wallet))
		return
	}
	form := g.current.Form

	var rejected *RejectedError
	switch {
	case r.err == nil:
		g.apply(State{Phase: Registered, Wallet: r.wallet}, "registered")
	case errors.Is(r.err, ErrAlreadyRegistered):
		g.apply(State{Phase: Registered, Wallet: r.wallet}, "already registered")
	case errors.As(r.err, &rejected):
		g.apply(State{Phase: NeedsRegistration, Wallet: r.wallet, Form: form, Message: rejected.Message}, "registration rejected")
	default:
		g.logger.Warn("registration submit failed", "wallet", privacy.MaskWallet(r.wallet), "error", r.err)
		g.apply(State{Phase: NeedsRegistration, Wallet: r.wallet, Form: form, Message: MessageRegisterFailed}, "registration failed")
	}
}

// isCurrent reports whether a response still belongs to the latest request
// for the connected wallet.
func (g *Gate) isCurrent(seq uint64, wallet string, phase Phase) bool {
	return seq == g.seq && wallet == g.current.Wallet && g.current.Phase == phase
}

func (g *Gate) goCall(call func(ctx context.Context) any) {
	g.inflight.Add(1)
	go func() {
		defer g.inflight.Done()
		ctx, cancel := context.WithTimeout(g.ctx, g.timeout)
		defer cancel()
		result := call(ctx)
		select {
		case g.events <- result:
		case <-g.quit:
		}
	}()
}

func (g *Gate) apply(next State, cause string) {
	prev := g.current
	g.current = next

	if next.Phase != prev.Phase || next.Wallet != prev.Wallet {
		if g.cancelSession != nil {
			g.cancelSession()
			g.cancelSession = nil
		}
		if next.Phase == Registered {
			g.session, g.cancelSession = context.WithCancel(g.ctx)
		}
	}

	// Observers run before the snapshot is published, so anyone woken by
	// Await has already been preceded by every observer call.
	if prev.Phase != next.Phase || prev.Wallet != next.Wallet {
		t := Transition{From: prev.Phase, To: next.Phase, Cause: cause, State: next}
		for _, o := range g.observers {
			o(t)
		}
	}

	g.mu.Lock()
	g.snapshot = next
	close(g.changed)
	g.changed = make(chan struct{})
	g.mu.Unlock()
}

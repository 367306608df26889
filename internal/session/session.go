package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"getmytext-cli/internal/editor"
	"getmytext-cli/internal/model"
)

// Field is the editable surface. It is only ever read.
type Field interface {
	Value() (string, error)
}

// API is the subset of the server client the session needs.
type API interface {
	Update(ctx context.Context, id model.DocID, content string) error
	CreateShare(ctx context.Context, id model.DocID) (string, error)
	CreateBurn(ctx context.Context, id model.DocID) (string, error)
}

// Surface receives UI effects. All methods are called from the session loop;
// Alert is expected to block until the user has seen the message.
type Surface interface {
	Alert(message string)
	IndicatorChanged(visible bool)
	ModalChanged(visible bool, url string)
	OpenTab(url string) error
}

type Options struct {
	Interval       time.Duration
	Decay          time.Duration
	RequestTimeout time.Duration
	Logger         *slog.Logger
}

const (
	DefaultInterval       = time.Second
	DefaultDecay          = time.Second
	DefaultRequestTimeout = 10 * time.Second
)

// State is a point-in-time copy of the session's observable state.
type State struct {
	Acknowledged     string
	InFlight         bool
	Dirty            bool
	IndicatorVisible bool
	ModalVisible     bool
	ModalURL         string
	LastSavedAt      time.Time
}

// Session keeps one document in sync with a Field. Everything that touches the
// autosave, indicator and modal state runs on the session's own goroutine.
type Session struct {
	id      model.DocID
	field   Field
	api     API
	surface Surface
	opts    Options
	logger  *slog.Logger

	autosave    *editor.Autosave
	indicator   editor.Indicator
	modal       editor.Modal
	lastSavedAt time.Time

	ticker   *time.Ticker
	decay    *time.Timer
	decaySeq uint64

	calls chan func()

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
	workers sync.WaitGroup
}

// New reads the field once; that value is the initial acknowledged content.
func New(id model.DocID, field Field, api API, surface Surface, opts Options) (*Session, error) {
	if id == "" {
		return nil, errors.New("session: empty document identifier")
	}
	if field == nil || api == nil || surface == nil {
		return nil, errors.New("session: field, api and surface are required")
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Decay <= 0 {
		opts.Decay = DefaultDecay
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = DefaultRequestTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	initial, err := field.Value()
	if err != nil {
		return nil, err
	}
	return &Session{
		id:       id,
		field:    field,
		api:      api,
		surface:  surface,
		opts:     opts,
		logger:   logger.With("doc", string(id)),
		autosave: editor.NewAutosave(initial),
		calls:    make(chan func()),
	}, nil
}

func (s *Session) ID() model.DocID { return s.id }

// Start begins polling. It returns an error if the session is already running.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return errors.New("session: already running")
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	s.running = true

	s.ticker = time.NewTicker(s.opts.Interval)
	s.decay = time.NewTimer(s.opts.Decay)
	s.decay.Stop()

	go s.run(ctx, s.done)
	return nil
}

// Stop ends polling and tears down both timers. Requests already sent run to
// completion but their results are dropped. Stop is safe to call repeatedly.
func (s *Session) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	cancel()
	<-done
}

// Wait blocks until every request started by the session has returned.
func (s *Session) Wait() { s.workers.Wait() }

// Share requests a persistent share link and opens it in a new tab.
func (s *Session) Share() { s.post(func() { s.issue(editor.LinkShare) }) }

// Burn requests a burn-after-read link and shows it in the modal.
func (s *Session) Burn() { s.post(func() { s.issue(editor.LinkBurn) }) }

// CloseModal is the modal's explicit close control.
func (s *Session) CloseModal() {
	s.post(func() {
		if s.modal.Close() {
			s.surface.ModalChanged(false, "")
		}
	})
}

// ClickModal delivers a pointer interaction to the modal.
func (s *Session) ClickModal(target editor.ClickTarget) {
	s.post(func() {
		if s.modal.Click(target) {
			s.surface.ModalChanged(false, "")
		}
	})
}

// State returns a copy of the current state. It is safe to call from any goroutine.
func (s *Session) State() State {
	reply := make(chan State, 1)
	if s.post(func() { reply <- s.snapshot() }) {
		return <-reply
	}
	// Not running. The loop may still be winding down after Stop, so wait
	// for it to exit before reading its state from here.
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()
	if done != nil {
		<-done
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *Session) snapshot() State {
	return State{
		Acknowledged:     s.autosave.Acknowledged(),
		InFlight:         s.autosave.InFlight(),
		Dirty:            s.autosave.Dirty(),
		IndicatorVisible: s.indicator.Visible(),
		ModalVisible:     s.modal.Visible(),
		ModalURL:         s.modal.Href(),
		LastSavedAt:      s.lastSavedAt,
	}
}

// post runs fn on the session goroutine. It reports false when the session is
// not running (fn is dropped).
func (s *Session) post(fn func()) bool {
	s.mu.Lock()
	running, done := s.running, s.done
	s.mu.Unlock()
	if !running {
		return false
	}
	select {
	case s.calls <- fn:
		return true
	case <-done:
		return false
	}
}

func (s *Session) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	defer s.ticker.Stop()
	defer s.decay.Stop()

	s.logger.Debug("session started", "interval", s.opts.Interval, "decay", s.opts.Decay)
	for {
		select {
		case <-ctx.Done():
			s.autosave.Abandon()
			s.logger.Debug("session stopped")
			return
		case <-s.ticker.C:
			s.tick()
		case <-s.decay.C:
			if s.indicator.Expire(s.decaySeq) {
				s.surface.IndicatorChanged(false)
			}
		case fn := <-s.calls:
			fn()
		}
	}
}

func (s *Session) tick() {
	current, err := s.field.Value()
	if err != nil {
		s.logger.Warn("read field", "err", err)
		return
	}
	req, ok := s.autosave.Tick(current)
	if !ok {
		return
	}
	s.logger.Debug("dispatching save", "seq", req.Seq, "bytes", len(req.Content))
	s.spawn(func(ctx context.Context) func() {
		err := s.api.Update(ctx, s.id, req.Content)
		return func() { s.resolveSave(req, err) }
	})
}

func (s *Session) resolveSave(req editor.SaveRequest, err error) {
	res := s.autosave.Resolve(req, err)
	switch res.Kind {
	case editor.ResolutionSaved:
		s.lastSavedAt = time.Now()
		s.logger.Debug("update successful", "seq", req.Seq)
		s.decaySeq = s.indicator.Show()
		s.decay.Reset(s.opts.Decay)
		s.surface.IndicatorChanged(true)
	case editor.ResolutionRejected:
		s.surface.Alert(res.Message)
	case editor.ResolutionFailed:
		s.logger.Warn("update failed", "seq", req.Seq, "err", res.Err)
	case editor.ResolutionStale:
		s.logger.Debug("ignoring stale save response", "seq", req.Seq)
	}
}

func (s *Session) issue(kind editor.LinkKind) {
	s.spawn(func(ctx context.Context) func() {
		var url string
		var err error
		if kind == editor.LinkBurn {
			url, err = s.api.CreateBurn(ctx, s.id)
		} else {
			url, err = s.api.CreateShare(ctx, s.id)
		}
		return func() { s.routeLink(kind, url, err) }
	})
}

func (s *Session) routeLink(kind editor.LinkKind, url string, err error) {
	switch route := editor.RouteLink(kind, url, err); route.Action {
	case editor.LinkOpenTab:
		if err := s.surface.OpenTab(route.URL); err != nil {
			s.logger.Warn("open share link", "url", route.URL, "err", err)
		}
	case editor.LinkShowModal:
		s.modal.Show(route.URL)
		s.surface.ModalChanged(true, s.modal.Href())
	case editor.LinkAlert:
		s.surface.Alert(route.Message)
	case editor.LinkLogOnly:
		s.logger.Warn("create link failed", "kind", kind.String(), "err", route.Err)
	}
}

// spawn runs a request off the loop and posts its continuation back. The
// request gets its own timeout and is not cancelled by Stop.
func (s *Session) spawn(call func(ctx context.Context) func()) {
	s.workers.Add(1)
	go func() {
		defer s.workers.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.opts.RequestTimeout)
		defer cancel()
		cont := call(ctx)
		s.post(cont)
	}()
}

package service

import (
	"context"
	"errors"
	"fmt"
	"playstore-predictor/internal/dto"
	"playstore-predictor/internal/model"
	"playstore-predictor/internal/repository"
	"playstore-predictor/pkg/logger"
	"playstore-predictor/pkg/utils"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	goValidator "github.com/go-playground/validator/v10"
)

type PredictionViewOptions struct {
	// HistoryLimit caps the history window.
	HistoryLimit int
	// SettleDelay is waited after a prediction whose response carries no row
	// id, giving the service's asynchronous insert time to commit.
	SettleDelay time.Duration
	// AckTimeout bounds the wait for a row id returned by the service to
	// become readable. Zero disables the read-your-write wait.
	AckTimeout time.Duration
}

// PredictionView is the controller behind one prediction page. It owns the
// draft, the latest confirmed result, the history window, loading flags and
// the last error, and it owns its change subscription for as long as it is
// mounted.
//
// All state transitions happen under mu and publish a new snapshot. Store and
// service calls run outside the lock.
type PredictionView struct {
	id            string
	opts          PredictionViewOptions
	log           *logger.Logger
	validator     *goValidator.Validate
	historyRepo   repository.PredictionHistoryRepository
	predictionAPI repository.PredictionAPIRepository
	feed          repository.ChangeFeed
	sleep         func(ctx context.Context, d time.Duration) error

	mu              sync.Mutex
	state           dto.ViewState
	priceSet        bool
	fetchIssued     uint64
	fetchApplied    uint64
	fetchesInFlight int
	watchers        map[uint64]chan dto.ViewState
	nextWatcher     uint64

	lifeCtx    context.Context
	lifeCancel context.CancelFunc
	tasks      sync.WaitGroup

	mountMu  sync.Mutex
	mounted  bool
	closed   bool
	sub      repository.Subscription
	pumpDone chan struct{}
}

func NewPredictionView(
	id string,
	opts PredictionViewOptions,
	log *logger.Logger,
	validator *goValidator.Validate,
	historyRepo repository.PredictionHistoryRepository,
	predictionAPI repository.PredictionAPIRepository,
	feed repository.ChangeFeed,
) *PredictionView {
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = 50
	}
	lifeCtx, cancel := context.WithCancel(context.Background())
	return &PredictionView{
		id:            id,
		opts:          opts,
		log:           log.With(logger.StringField("view_id", id)),
		validator:     validator,
		historyRepo:   historyRepo,
		predictionAPI: predictionAPI,
		feed:          feed,
		sleep:         sleepContext,
		state: dto.ViewState{
			Draft:   dto.NewDraft(),
			History: []dto.PredictionResult{},
		},
		watchers:   make(map[uint64]chan dto.ViewState),
		lifeCtx:    lifeCtx,
		lifeCancel: cancel,
	}
}

func (v *PredictionView) ID() string {
	return v.id
}

// State returns the current snapshot.
func (v *PredictionView) State() dto.ViewState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state.Clone()
}

// Watch streams snapshots, starting with the current one. A slow reader only
// sees the newest snapshot. The channel is closed by the returned cancel
// func or by Unmount.
func (v *PredictionView) Watch() (<-chan dto.ViewState, func()) {
	v.mu.Lock()
	defer v.mu.Unlock()

	ch := make(chan dto.ViewState, 1)
	if v.closed {
		close(ch)
		return ch, func() {}
	}
	id := v.nextWatcher
	v.nextWatcher++
	v.watchers[id] = ch
	ch <- v.state.Clone()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			v.mu.Lock()
			defer v.mu.Unlock()
			if w, ok := v.watchers[id]; ok {
				delete(v.watchers, id)
				close(w)
			}
		})
	}
}

// publish must be called with mu held.
func (v *PredictionView) publish() {
	v.state.Version++
	snapshot := v.state.Clone()
	for _, ch := range v.watchers {
		select {
		case ch <- snapshot:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- snapshot
		}
	}
}

// UpdateField merges one field into the draft.
func (v *PredictionView) UpdateField(name, value string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	next, err := ApplyField(Draft{Input: v.state.Draft, PriceSet: v.priceSet}, name, value)
	if err != nil {
		return err
	}
	v.state.Draft = next.Input
	v.state.PriceSet = next.PriceSet
	v.priceSet = next.PriceSet
	v.publish()
	return nil
}

// Submit sends the current draft and blocks until the flow completes.
func (v *PredictionView) Submit(ctx context.Context) error {
	draft, err := v.beginSubmit(nil, false)
	if err != nil {
		return err
	}
	return v.runSubmit(ctx, draft)
}

// SubmitPrediction sends an explicit draft and blocks until the flow
// completes. A Free draft is sent with price 0.
func (v *PredictionView) SubmitPrediction(ctx context.Context, input dto.PredictionInput) error {
	draft, err := v.beginSubmit(&Draft{Input: input, PriceSet: true}, false)
	if err != nil {
		return err
	}
	return v.runSubmit(ctx, draft)
}

// SubmitAsync validates and enters the submitting state synchronously, then
// finishes the flow in the background, bound to the view's lifetime.
func (v *PredictionView) SubmitAsync() error {
	draft, err := v.beginSubmit(nil, true)
	if err != nil {
		return err
	}
	v.goTask(func() {
		_ = v.runSubmit(v.lifeCtx, draft)
	})
	return nil
}

// beginSubmit performs the Idle → Submitting transition. explicit nil means
// the current draft. reserveTask registers a background task while the view
// is known to be open, so Unmount waits for it.
func (v *PredictionView) beginSubmit(explicit *Draft, reserveTask bool) (dto.PredictionInput, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed {
		return dto.PredictionInput{}, ErrViewClosed
	}
	if v.state.Submitting {
		return dto.PredictionInput{}, ErrSubmitInProgress
	}

	draft := Draft{Input: v.state.Draft, PriceSet: v.priceSet}
	if explicit != nil {
		draft = *explicit
	}
	draft = normalize(draft)

	if err := ValidateDraft(v.validator, draft); err != nil {
		msg := err.Error()
		v.state.Error = &msg
		v.publish()
		return dto.PredictionInput{}, err
	}

	if reserveTask {
		v.tasks.Add(1)
	}
	v.state.Error = nil
	v.state.Latest = nil
	v.state.Submitting = true
	v.publish()
	return draft.Input, nil
}

func (v *PredictionView) runSubmit(ctx context.Context, input dto.PredictionInput) error {
	defer func() {
		v.mu.Lock()
		v.state.Submitting = false
		v.publish()
		v.mu.Unlock()
	}()

	v.log.InfoContext(ctx, "Submitting prediction",
		logger.StringField("category", input.Category),
		logger.StringField("app_type", string(input.AppType)))

	result, err := v.predictionAPI.Predict(ctx, input)
	if err != nil {
		v.log.WarnContext(ctx, "Prediction request failed", logger.ErrorField(err))
		v.setError(err.Error())
		return err
	}

	if err := v.settle(ctx, result); err != nil {
		v.setError(fmt.Sprintf("Prediction submitted but waiting for it to be saved failed: %v", err))
		return err
	}

	return v.FetchHistory(ctx)
}

func (v *PredictionView) setError(msg string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state.Error = &msg
	v.publish()
}

// settle waits until the submitted row can be read back. With a row id from
// the service it polls for that row; otherwise it waits SettleDelay.
func (v *PredictionView) settle(ctx context.Context, result *dto.PredictionResult) error {
	if result != nil && result.ID != nil && v.opts.AckTimeout > 0 {
		err := v.awaitRow(ctx, *result.ID)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		v.log.WarnContext(ctx, "Submitted row not visible before ack timeout, fetching anyway",
			logger.Int64Field("row_id", *result.ID),
			logger.ErrorField(err))
		return nil
	}
	return v.sleep(ctx, v.opts.SettleDelay)
}

var errRowNotVisible = errors.New("row not visible yet")

func (v *PredictionView) awaitRow(ctx context.Context, id int64) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 50 * time.Millisecond
	policy.MaxInterval = time.Second
	policy.MaxElapsedTime = v.opts.AckTimeout

	operation := func() error {
		row, err := v.historyRepo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if row == nil {
			return errRowNotVisible
		}
		return nil
	}
	return backoff.Retry(operation, backoff.WithContext(policy, ctx))
}

// FetchHistory reads the history window and applies it unless a fetch issued
// later has already been applied. HistoryLoading stays true while any fetch
// is in flight and is false once all of them have returned.
func (v *PredictionView) FetchHistory(ctx context.Context) error {
	v.mu.Lock()
	v.fetchIssued++
	seq := v.fetchIssued
	v.fetchesInFlight++
	v.state.HistoryLoading = true
	v.state.Error = nil
	v.publish()
	v.mu.Unlock()

	rows, err := v.historyRepo.ListRecent(ctx, v.opts.HistoryLimit)

	v.mu.Lock()
	defer v.mu.Unlock()
	v.fetchesInFlight--
	v.state.HistoryLoading = v.fetchesInFlight > 0

	if seq <= v.fetchApplied {
		v.log.DebugContext(ctx, "Discarding superseded history fetch",
			logger.Field("seq", seq),
			logger.Field("applied", v.fetchApplied))
		v.publish()
		return nil
	}
	v.fetchApplied = seq

	if err != nil {
		v.log.ErrorContext(ctx, "Failed to fetch prediction history", logger.ErrorField(err))
		msg := fmt.Sprintf("Failed to load prediction history: %v", err)
		v.state.Error = &msg
		v.state.History = []dto.PredictionResult{}
		v.publish()
		return fmt.Errorf("fetch prediction history: %w", err)
	}

	history := model.ToResults(rows)
	v.state.History = history
	if len(history) > 0 {
		latest := history[0]
		v.state.Latest = &latest
	}
	v.publish()
	return nil
}

// OnChangeNotification runs one history fetch.
func (v *PredictionView) OnChangeNotification(ctx context.Context) {
	_ = v.FetchHistory(ctx)
}

// Mount subscribes to the change feed and performs the initial fetch. Each
// notification starts its own fetch. The subscription is released if Mount
// fails after acquiring it.
func (v *PredictionView) Mount(ctx context.Context) (err error) {
	v.mountMu.Lock()
	defer v.mountMu.Unlock()

	if v.closed {
		return ErrViewClosed
	}
	if v.mounted {
		return nil
	}

	sub, err := v.feed.Subscribe(ctx)
	if err != nil {
		return fmt.Errorf("subscribe to prediction changes: %w", err)
	}
	defer func() {
		if err != nil {
			_ = sub.Close()
		}
	}()

	if err := ctx.Err(); err != nil {
		return err
	}

	v.sub = sub
	v.pumpDone = make(chan struct{})
	v.mounted = true
	go v.pump(sub, v.pumpDone)

	v.log.InfoContext(ctx, "Prediction view mounted")
	_ = v.FetchHistory(ctx)
	return nil
}

func (v *PredictionView) pump(sub repository.Subscription, done chan struct{}) {
	defer close(done)
	for event := range sub.C() {
		v.log.Debug("Change notification received", logger.StringField("op", event.Op))
		v.spawn(func() {
			v.OnChangeNotification(v.lifeCtx)
		})
	}
}

func (v *PredictionView) spawn(fn func()) {
	v.tasks.Add(1)
	v.goTask(fn)
}

// goTask runs fn for a task already added to v.tasks.
func (v *PredictionView) goTask(fn func()) {
	utils.GoSafe(v.log, func() {
		defer v.tasks.Done()
		fn()
	})
}

// Unmount releases the subscription, cancels background work and waits for
// it to finish, then closes all watchers. It is safe to call more than once
// and on a view that was never mounted.
func (v *PredictionView) Unmount() error {
	v.mountMu.Lock()
	defer v.mountMu.Unlock()

	if v.closed {
		return nil
	}

	v.mu.Lock()
	v.closed = true
	v.mu.Unlock()

	v.lifeCancel()

	var err error
	if v.mounted {
		err = v.sub.Close()
		<-v.pumpDone
		v.mounted = false
	}
	v.tasks.Wait()

	v.mu.Lock()
	for id, ch := range v.watchers {
		delete(v.watchers, id)
		close(ch)
	}
	v.mu.Unlock()

	v.log.Info("Prediction view unmounted")
	return err
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

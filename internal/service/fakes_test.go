package service

import (
	"context"
	"errors"
	"playstore-predictor/internal/dto"
	"playstore-predictor/internal/model"
	"playstore-predictor/internal/repository"
	"sync"
)

type fakeHistoryRepo struct {
	mu        sync.Mutex
	rows      []model.PredictionHistory
	listErr   error
	listCalls int
	// gates, when set, are consumed one per ListRecent call; the call waits
	// on its gate before reading rows.
	gates   []chan struct{}
	findSeq []*model.PredictionHistory
	finds   int
	created []*model.PredictionHistory
}

func (f *fakeHistoryRepo) ListRecent(ctx context.Context, limit int) ([]model.PredictionHistory, error) {
	f.mu.Lock()
	call := f.listCalls
	f.listCalls++
	var gate chan struct{}
	if call < len(f.gates) {
		gate = f.gates[call]
	}
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	rows := f.rows
	if len(rows) > limit {
		rows = rows[:limit]
	}
	out := make([]model.PredictionHistory, len(rows))
	copy(out, rows)
	return out, nil
}

func (f *fakeHistoryRepo) FindByID(ctx context.Context, id int64) (*model.PredictionHistory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.finds < len(f.findSeq) {
		row := f.findSeq[f.finds]
		f.finds++
		return row, nil
	}
	f.finds++
	for i := range f.rows {
		if f.rows[i].ID == id {
			row := f.rows[i]
			return &row, nil
		}
	}
	return nil, nil
}

func (f *fakeHistoryRepo) Create(ctx context.Context, row *model.PredictionHistory) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	row.ID = int64(len(f.created) + 1)
	f.created = append(f.created, row)
	return nil
}

func (f *fakeHistoryRepo) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls
}

func (f *fakeHistoryRepo) setRows(rows []model.PredictionHistory) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows = rows
}

func (f *fakeHistoryRepo) setListErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listErr = err
}

type fakePredictionAPI struct {
	mu       sync.Mutex
	result   *dto.PredictionResult
	err      error
	received []dto.PredictionInput
	block    chan struct{}
	// onPredict runs after the request is recorded, before returning.
	onPredict func()
}

func (f *fakePredictionAPI) Predict(ctx context.Context, input dto.PredictionInput) (*dto.PredictionResult, error) {
	f.mu.Lock()
	f.received = append(f.received, input)
	block := f.block
	hook := f.onPredict
	f.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if hook != nil {
		hook()
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if f.result == nil {
		return &dto.PredictionResult{PredictionInput: input}, nil
	}
	res := *f.result
	return &res, nil
}

func (f *fakePredictionAPI) Ping(ctx context.Context) error { return nil }

func (f *fakePredictionAPI) requests() []dto.PredictionInput {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]dto.PredictionInput, len(f.received))
	copy(out, f.received)
	return out
}

type fakeSubscription struct {
	ch     chan dto.ChangeEvent
	once   sync.Once
	mu     sync.Mutex
	closed bool
}

func (s *fakeSubscription) C() <-chan dto.ChangeEvent { return s.ch }

func (s *fakeSubscription) Close() error {
	s.once.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()
		close(s.ch)
	})
	return nil
}

func (s *fakeSubscription) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

type fakeFeed struct {
	mu   sync.Mutex
	subs []*fakeSubscription
	err  error
}

func (f *fakeFeed) Subscribe(ctx context.Context) (repository.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	sub := &fakeSubscription{ch: make(chan dto.ChangeEvent, 64)}
	f.subs = append(f.subs, sub)
	return sub, nil
}

func (f *fakeFeed) last() *fakeSubscription {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.subs) == 0 {
		return nil
	}
	return f.subs[len(f.subs)-1]
}

var errStoreDown = errors.New("dial tcp 10.0.0.5:5432: connect: network is unreachable")

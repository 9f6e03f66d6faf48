package dto

// ViewState is an immutable snapshot of one prediction view. Version grows by
// one on every state transition.
type ViewState struct {
	Version        uint64             `json:"version"`
	Draft          PredictionInput    `json:"draft"`
	PriceSet       bool               `json:"price_set"`
	Latest         *PredictionResult  `json:"latest"`
	History        []PredictionResult `json:"history"`
	Submitting     bool               `json:"submitting"`
	HistoryLoading bool               `json:"history_loading"`
	Error          *string            `json:"error"`
}

// Clone copies the slices and pointers so the snapshot can leave the lock.
func (s ViewState) Clone() ViewState {
	out := s
	if s.Latest != nil {
		latest := *s.Latest
		out.Latest = &latest
	}
	if s.History != nil {
		out.History = make([]PredictionResult, len(s.History))
		copy(out.History, s.History)
	}
	if s.Error != nil {
		msg := *s.Error
		out.Error = &msg
	}
	return out
}

type OpenViewResponse struct {
	ID    string    `json:"id"`
	State ViewState `json:"state"`
}

type UpdateFieldRequest struct {
	Name  string `json:"name" validate:"required"`
	Value string `json:"value"`
}

package dto

// ChangeEvent is one change notification on the prediction_history table.
type ChangeEvent struct {
	Op string `json:"op"`
	ID *int64 `json:"id,omitempty"`
}

// QueueMessage travels from the predictor to the uploader.
type QueueMessage struct {
	Action string            `json:"action"`
	Data   *PredictionResult `json:"data,omitempty"`
}

package common

const (
	TablePredictionHistory = "prediction_history"
)

// ChannelPredictionHistoryChanges is the NOTIFY channel of the
// prediction_history trigger in migrations/000002.
const ChannelPredictionHistoryChanges = "prediction_history_changes"

// Queue actions exchanged between the predictor and the uploader.
const (
	ActionSavePrediction = "save_prediction"
)

// Change operations carried by the prediction_history trigger payload. Resync
// is synthesized by the hub after a listener reconnect.
const (
	ChangeOpInsert = "INSERT"
	ChangeOpUpdate = "UPDATE"
	ChangeOpDelete = "DELETE"
	ChangeOpResync = "RESYNC"
)

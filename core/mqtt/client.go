package mqtt

import (
	"time"

	"github.com/kilianp07/trailcast/core/model"
)

// PredictionMessage is the payload published after every estimate.
// Prediction is nil when the track was too short.
type PredictionMessage struct {
	ID         string            `json:"id"`
	Timestamp  time.Time         `json:"timestamp"`
	TrackLen   int               `json:"track_len"`
	Predicted  bool              `json:"predicted"`
	Prediction *model.Prediction `json:"prediction,omitempty"`
}

// Publisher pushes estimates to subscribers of the prediction topic.
type Publisher interface {
	// PublishPrediction sends msg and returns the message identifier,
	// generating one when msg.ID is empty.
	PublishPrediction(msg PredictionMessage) (id string, err error)
}

// ObservationHandler receives observations decoded from the broker.
type ObservationHandler func(obs model.Observation)

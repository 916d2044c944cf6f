package mqtt

import (
	"fmt"
	"sync"

	coremqtt "github.com/kilianp07/trailcast/core/mqtt"
)

// Publisher mirrors the core mqtt.Publisher interface.
type Publisher = coremqtt.Publisher

// MockPublisher records published predictions. It is used in tests.
type MockPublisher struct {
	Messages []coremqtt.PredictionMessage
	Fail     bool
	mu       sync.Mutex
	seq      int
}

// NewMockPublisher creates a new MockPublisher.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

// PublishPrediction stores msg or returns an error if configured to fail.
func (m *MockPublisher) PublishPrediction(msg coremqtt.PredictionMessage) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail {
		return "", fmt.Errorf("publish failed")
	}
	m.seq++
	if msg.ID == "" {
		msg.ID = fmt.Sprintf("pred-%d", m.seq)
	}
	m.Messages = append(m.Messages, msg)
	return msg.ID, nil
}

// Published returns a copy of the recorded messages.
func (m *MockPublisher) Published() []coremqtt.PredictionMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]coremqtt.PredictionMessage(nil), m.Messages...)
}

package records

import "time"

// Event kinds published after a successful change
const (
	EventCreated = "created"
	EventUpdated = "updated"
	EventDeleted = "deleted"
)

// Event tells listeners that the listing changed
type Event struct {
	Kind      string    `json:"kind"`
	RecordID  string    `json:"recordId"`
	Timestamp time.Time `json:"timestamp"`
}

// Notifier receives change events; it must not block
type Notifier interface {
	Notify(Event)
}

// WithNotifier publishes change events to n
func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

func (s *Service) notify(kind, id string) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(Event{Kind: kind, RecordID: id, Timestamp: time.Now().UTC()})
}

package market

import "time"

// EventType identifies a Market state change.
type EventType string

const (
	EventAccountChanged EventType = "account_changed"
	EventLoadingChanged EventType = "loading_changed"
	EventListingCreated EventType = "listing_created"
	EventPurchased      EventType = "purchased"
	EventResold         EventType = "resold"
	// EventReset follows a failed action; subscribers drop transient UI
	// state and refetch.
	EventReset EventType = "reset"
)

// Event is published to subscribers after every state change.
type Event struct {
	Type     EventType `json:"type"`
	Account  string    `json:"account,omitempty"`
	Loading  bool      `json:"loading"`
	TokenID  int64     `json:"token_id,omitempty"`
	TokenURI string    `json:"token_uri,omitempty"`
	Error    string    `json:"error,omitempty"`
	Time     time.Time `json:"time"`
}

const subscriberBuffer = 16

// Subscribe returns a channel of state-change events and a func that
// unsubscribes and closes it. Slow subscribers miss events rather than
// blocking the Market.
func (m *Market) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)

	m.subMu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = ch
	m.subMu.Unlock()

	var once bool
	return ch, func() {
		m.subMu.Lock()
		defer m.subMu.Unlock()
		if once {
			return
		}
		once = true
		delete(m.subs, id)
		close(ch)
	}
}

func (m *Market) publish(ev Event) {
	if ev.Time.IsZero() {
		ev.Time = time.Now()
	}

	m.subMu.RLock()
	defer m.subMu.RUnlock()
	for _, ch := range m.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

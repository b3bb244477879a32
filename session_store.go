package mq

import "time"

// PendingPublish tracks an outgoing QoS 1 PUBLISH awaiting PUBACK.
type PendingPublish struct {
	PacketID uint16
	Topic    string
	Payload  []byte
	QoS      uint8
	Retain   bool
	Dup      bool
	SentAt   time.Time
}

// PendingUnsubscribe tracks an outgoing UNSUBSCRIBE awaiting UNSUBACK.
type PendingUnsubscribe struct {
	PacketID uint16
	Topics   []string
	Dup      bool
	SentAt   time.Time
}

// Subscription records one topic filter this client believes it is
// subscribed to, and the handler to invoke for matching PUBLISH packets.
// MessageID is the packet identifier of the SUBSCRIBE that requested it;
// AcknowledgedQoS and Acknowledged are only meaningful once the matching
// SUBACK has arrived and recorded the QoS the broker actually granted,
// which may be lower than the one requested.
type Subscription struct {
	Filter          string
	QoS             uint8
	Handler         MessageHandler
	MessageID       uint16
	AcknowledgedQoS uint8
	Acknowledged    bool
}

// SessionStore owns the client's in-flight and subscription state: pending
// publishes and unsubscribes awaiting acknowledgement, and the set of
// active topic subscriptions used to dispatch inbound PUBLISH packets.
//
// All methods are called from the single goroutine driving the client's
// event loop; implementations do not need to guard against concurrent
// calls from this package. A custom implementation might back this with
// disk storage to survive a process restart, but the default memoryStore
// keeps everything in memory for the lifetime of the connection.
type SessionStore interface {
	AddPendingPublish(p *PendingPublish)
	GetPendingPublish(packetID uint16) (*PendingPublish, bool)
	RemovePendingPublish(packetID uint16)
	PendingPublishes() []*PendingPublish

	AddPendingUnsubscribe(u *PendingUnsubscribe)
	GetPendingUnsubscribe(packetID uint16) (*PendingUnsubscribe, bool)
	RemovePendingUnsubscribe(packetID uint16)
	PendingUnsubscribes() []*PendingUnsubscribe

	AddSubscription(sub *Subscription)
	RemoveSubscription(filter string)
	Subscriptions() []*Subscription

	// SubscriptionsByMessageID returns every subscription requested by the
	// SUBSCRIBE carrying messageID, so a SUBACK can be paired back to them.
	SubscriptionsByMessageID(messageID uint16) []*Subscription

	// HasPacketID reports whether packetID is currently claimed by a
	// pending publish or unsubscribe, so the identifier allocator can skip
	// it on wraparound.
	HasPacketID(packetID uint16) bool

	// Reset discards all pending publishes, pending unsubscribes and
	// subscriptions. Called when a clean session connect succeeds.
	Reset()
}

// memoryStore is the default in-memory SessionStore.
type memoryStore struct {
	publishes    map[uint16]*PendingPublish
	unsubscribes map[uint16]*PendingUnsubscribe
	subs         []*Subscription
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		publishes:    make(map[uint16]*PendingPublish),
		unsubscribes: make(map[uint16]*PendingUnsubscribe),
	}
}

func (m *memoryStore) AddPendingPublish(p *PendingPublish) {
	m.publishes[p.PacketID] = p
}

func (m *memoryStore) GetPendingPublish(packetID uint16) (*PendingPublish, bool) {
	p, ok := m.publishes[packetID]
	return p, ok
}

func (m *memoryStore) RemovePendingPublish(packetID uint16) {
	delete(m.publishes, packetID)
}

func (m *memoryStore) PendingPublishes() []*PendingPublish {
	out := make([]*PendingPublish, 0, len(m.publishes))
	for _, p := range m.publishes {
		out = append(out, p)
	}
	return out
}

func (m *memoryStore) AddPendingUnsubscribe(u *PendingUnsubscribe) {
	m.unsubscribes[u.PacketID] = u
}

func (m *memoryStore) GetPendingUnsubscribe(packetID uint16) (*PendingUnsubscribe, bool) {
	u, ok := m.unsubscribes[packetID]
	return u, ok
}

func (m *memoryStore) RemovePendingUnsubscribe(packetID uint16) {
	delete(m.unsubscribes, packetID)
}

func (m *memoryStore) PendingUnsubscribes() []*PendingUnsubscribe {
	out := make([]*PendingUnsubscribe, 0, len(m.unsubscribes))
	for _, u := range m.unsubscribes {
		out = append(out, u)
	}
	return out
}

func (m *memoryStore) AddSubscription(sub *Subscription) {
	for i, existing := range m.subs {
		if existing.Filter == sub.Filter {
			m.subs[i] = sub
			return
		}
	}
	m.subs = append(m.subs, sub)
}

func (m *memoryStore) RemoveSubscription(filter string) {
	for i, existing := range m.subs {
		if existing.Filter == filter {
			m.subs = append(m.subs[:i], m.subs[i+1:]...)
			return
		}
	}
}

func (m *memoryStore) Subscriptions() []*Subscription {
	return m.subs
}

func (m *memoryStore) SubscriptionsByMessageID(messageID uint16) []*Subscription {
	var out []*Subscription
	for _, sub := range m.subs {
		if sub.MessageID == messageID {
			out = append(out, sub)
		}
	}
	return out
}

func (m *memoryStore) HasPacketID(packetID uint16) bool {
	if _, ok := m.publishes[packetID]; ok {
		return true
	}
	_, ok := m.unsubscribes[packetID]
	return ok
}

func (m *memoryStore) Reset() {
	m.publishes = make(map[uint16]*PendingPublish)
	m.unsubscribes = make(map[uint16]*PendingUnsubscribe)
	m.subs = nil
}

// Package consumers pkg/consumers/relay.go
package consumers

import (
	"encoding/json"
	"log"
	"time"

	"golang.org/x/time/rate"

	"github.com/HughKantsime/printfarm/pkg/events"
)

const (
	relayName  = "relay"
	relayTTL   = 60 * time.Second
	pruneEvery = 30 * time.Second
)

// Relay copies every bus event into the durable relay table so other
// processes can poll them by id. Rows older than the TTL are pruned on
// the write path, throttled so a chatty fleet does not delete per event.
type Relay struct {
	store RelayStore
	ttl   time.Duration

	pruneGate rate.Sometimes
	now       func() time.Time
}

// NewRelay builds the relay consumer.
func NewRelay(store RelayStore) *Relay {
	return &Relay{
		store:     store,
		ttl:       relayTTL,
		pruneGate: rate.Sometimes{Interval: pruneEvery},
		now:       time.Now,
	}
}

// Attach subscribes to everything; the relay is the cross-process tap.
func (r *Relay) Attach(bus *events.Bus) {
	bus.Subscribe(events.TypeWildcard, relayName, r.onEvent)
}

// Detach removes the subscription.
func (r *Relay) Detach(bus *events.Bus) {
	bus.Unsubscribe(events.TypeWildcard, relayName)
}

func (r *Relay) onEvent(evt events.Event) {
	payload, err := json.Marshal(evt)
	if err != nil {
		log.Printf("Relay: failed to marshal %s event: %v", evt.Type, err)
		return
	}

	if _, err := r.store.AppendRelayEvent(evt.Type, string(payload), evt.Time); err != nil {
		log.Printf("Relay: failed to append %s event: %v", evt.Type, err)
		return
	}

	r.pruneGate.Do(r.prune)
}

func (r *Relay) prune() {
	cutoff := r.now().Add(-r.ttl)

	pruned, err := r.store.PruneRelayEvents(cutoff)
	if err != nil {
		log.Printf("Relay: prune failed: %v", err)
		return
	}

	if pruned > 0 {
		log.Printf("Relay: pruned %d expired events", pruned)
	}
}

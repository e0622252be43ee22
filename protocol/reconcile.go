package protocol

import (
	"sync"
	"time"
)

// pendingSnapshot is one joiner waiting on a peer's GAME_STATE_UPDATE.
type pendingSnapshot struct {
	joinerID string
	timer    *time.Timer
}

// reconciler pairs late joiners with the peer asked to supply a game
// snapshot. Entries resolve when the provider answers, cancel when the
// joiner disappears, and fall back after a bounded wait so a silent
// provider cannot stall the joiner forever.
type reconciler struct {
	timeout time.Duration

	mu         sync.Mutex
	byProvider map[string][]*pendingSnapshot
	byJoiner   map[string]string
}

func newReconciler(timeout time.Duration) *reconciler {
	return &reconciler{
		timeout:    timeout,
		byProvider: make(map[string][]*pendingSnapshot),
		byJoiner:   make(map[string]string),
	}
}

// begin registers joiner as waiting on provider. fallback runs if no
// snapshot arrives within the timeout while the joiner is still waiting.
func (rc *reconciler) begin(providerID, joinerID string, fallback func()) {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	p := &pendingSnapshot{joinerID: joinerID}
	p.timer = time.AfterFunc(rc.timeout, func() {
		if rc.cancel(joinerID) {
			fallback()
		}
	})
	rc.byProvider[providerID] = append(rc.byProvider[providerID], p)
	rc.byJoiner[joinerID] = providerID
}

// resolve pops every joiner waiting on provider.
func (rc *reconciler) resolve(providerID string) []string {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	pending := rc.byProvider[providerID]
	if len(pending) == 0 {
		return nil
	}
	delete(rc.byProvider, providerID)

	joiners := make([]string, 0, len(pending))
	for _, p := range pending {
		p.timer.Stop()
		delete(rc.byJoiner, p.joinerID)
		joiners = append(joiners, p.joinerID)
	}
	return joiners
}

// cancel removes a joiner's pending entry, reporting whether one existed.
func (rc *reconciler) cancel(joinerID string) bool {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	providerID, ok := rc.byJoiner[joinerID]
	if !ok {
		return false
	}
	delete(rc.byJoiner, joinerID)

	pending := rc.byProvider[providerID]
	for i, p := range pending {
		if p.joinerID == joinerID {
			p.timer.Stop()
			pending = append(pending[:i], pending[i+1:]...)
			break
		}
	}
	if len(pending) == 0 {
		delete(rc.byProvider, providerID)
	} else {
		rc.byProvider[providerID] = pending
	}
	return true
}

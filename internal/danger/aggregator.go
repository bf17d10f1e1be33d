// Package danger implements the consecutive-match escalation rule engine fed
// by an external diagnostic-array subscriber: for each configured rule, track
// consecutive matching observations and escalate exactly once per assertion.
package danger

import (
	"fmt"
	"sync"
	"time"

	"github.com/osu-uwrt/opboxlink/internal/frame"
)

// Notifier is the narrow interface the aggregator escalates through; a Link
// Engine's SendNotification method satisfies it.
type Notifier interface {
	SendNotification(kind frame.NotificationType, sensor, description string, timeout time.Duration) (bool, error)
}

// Rule configures one escalation: when DiagnosticName reports TargetLevel for
// MinConsecutive observations in a row, escalate at EscalationSeverity.
type Rule struct {
	DiagnosticName     string
	TargetLevel        string
	MinConsecutive     int
	EscalationSeverity frame.NotificationType
}

type ruleState struct {
	rule      Rule
	streak    int
	escalated bool
}

// AckTimeout bounds how long an escalation notification waits for its ack.
const AckTimeout = 500 * time.Millisecond

// Aggregator evaluates a configured set of Rules against a stream of
// (diagnostic_name, level) observations, escalating through a Notifier.
type Aggregator struct {
	notifier Notifier

	mu    sync.Mutex
	rules map[string][]*ruleState
}

// New constructs an Aggregator from rules, keyed internally by diagnostic
// name for O(1) dispatch per observation.
func New(notifier Notifier, rules []Rule) *Aggregator {
	a := &Aggregator{notifier: notifier, rules: make(map[string][]*ruleState)}
	for _, r := range rules {
		a.rules[r.DiagnosticName] = append(a.rules[r.DiagnosticName], &ruleState{rule: r})
	}
	return a
}

// Observe feeds one (diagnostic_name, level) observation through every rule
// registered for that diagnostic. Any non-matching observation resets the
// rule's streak and re-arms its escalation latch.
func (a *Aggregator) Observe(diagnosticName, level string) error {
	a.mu.Lock()
	states := a.rules[diagnosticName]
	var toFire []Rule
	for _, st := range states {
		if level == st.rule.TargetLevel {
			st.streak++
			if st.streak >= st.rule.MinConsecutive && !st.escalated {
				st.escalated = true
				toFire = append(toFire, st.rule)
			}
		} else {
			st.streak = 0
			st.escalated = false
		}
	}
	a.mu.Unlock()

	for _, r := range toFire {
		message := fmt.Sprintf("%s sustained %s for %d consecutive reports", r.DiagnosticName, r.TargetLevel, r.MinConsecutive)
		if _, err := a.notifier.SendNotification(r.EscalationSeverity, r.DiagnosticName, message, AckTimeout); err != nil {
			return fmt.Errorf("danger: escalate %s: %w", r.DiagnosticName, err)
		}
	}
	return nil
}

package matcher

import (
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/louishp/marathon/sched"
)

// ScalarReason classifies one scalar dimension's outcome for diagnostics.
type ScalarReason int

const (
	ScalarSatisfied ScalarReason = iota

	// A qualifying entry or aggregate exists but offers too little.
	ScalarInsufficient

	// No entry under the name passed the role and type filters, or the
	// name is missing from the offer entirely.
	ScalarAbsent
)

// ScalarDiag is one dimension's match state, rendered uniformly for all
// four scalar dimensions whether they held or not.
type ScalarDiag struct {
	Name      string
	Reason    ScalarReason
	Requested float64
	Offered   float64
}

func (d ScalarDiag) String() string {
	switch d.Reason {
	case ScalarSatisfied:
		return fmt.Sprintf("%s SATISFIED (%v <= %v)", d.Name, d.Requested, d.Offered)
	case ScalarInsufficient:
		return fmt.Sprintf("%s NOT SATISFIED (%v > %v)", d.Name, d.Requested, d.Offered)
	default:
		return fmt.Sprintf("%s NOT AVAILABLE in offer", d.Name)
	}
}

// NoMatch is the structured diagnostic produced when an offer cannot
// satisfy an app. Successful matches produce nothing.
type NoMatch struct {
	OfferID  string
	Hostname string
	AppID    string

	Scalars          []ScalarDiag
	PortsUnavailable bool
	Violated         []sched.Constraint
}

// DiagnosticSink receives a NoMatch for every failed match attempt.
// Rendering to text happens here, at the boundary; the matcher itself only
// builds the structured record.
type DiagnosticSink interface {
	NoMatch(NoMatch)
}

// logSink renders diagnostics to the process log.
type logSink struct{}

func (logSink) NoMatch(nm NoMatch) {
	lines := make([]string, 0, len(nm.Scalars)+2)
	for _, d := range nm.Scalars {
		lines = append(lines, d.String())
	}
	if nm.PortsUnavailable {
		lines = append(lines, "ports NOT SATISFIED")
	}
	for _, c := range nm.Violated {
		lines = append(lines, fmt.Sprintf("constraint %s VIOLATED", c))
	}
	log.WithFields(log.Fields{
		"offerID": nm.OfferID,
		"host":    nm.Hostname,
		"appID":   nm.AppID,
	}).Info("Offer does not match app: ", strings.Join(lines, "; "))
}

func scalarDiag(name string, match *ScalarMatch) ScalarDiag {
	if match == nil {
		return ScalarDiag{Name: name, Reason: ScalarAbsent}
	}
	reason := ScalarSatisfied
	if !match.Matches() {
		reason = ScalarInsufficient
	}
	return ScalarDiag{
		Name:      name,
		Reason:    reason,
		Requested: match.Requested,
		Offered:   match.Offered,
	}
}

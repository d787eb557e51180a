// Package constraints evaluates an app's placement constraints against a
// resource offer and the app's currently running tasks.
package constraints

import (
	"regexp"
	"strconv"

	mesos "github.com/mesos/mesos-go/api/v0/mesosproto"
	log "github.com/sirupsen/logrus"

	"github.com/louishp/marathon/sched"
)

// FieldHostname selects the offer's hostname rather than a slave attribute.
const FieldHostname = "hostname"

// Evaluator decides whether one constraint permits placing a task on the
// offer, given the app's running tasks. Implementations must be safe for
// concurrent use.
type Evaluator interface {
	Matches(tasks []*sched.Task, offer *mesos.Offer, c sched.Constraint) bool
}

// NewEvaluator returns the standard field-operator evaluator.
func NewEvaluator() Evaluator {
	return &evaluator{}
}

type evaluator struct{}

func (e *evaluator) Matches(tasks []*sched.Task, offer *mesos.Offer, c sched.Constraint) bool {
	offerVal, ok := offerFieldValue(offer, c.Field)
	if !ok {
		// An offer that doesn't carry the field can never satisfy a
		// constraint on it.
		return false
	}

	switch c.Operator {
	case sched.Unique:
		for _, t := range tasks {
			if v, ok := taskFieldValue(t, c.Field); ok && v == offerVal {
				return false
			}
		}
		return true

	case sched.Cluster:
		if c.Value != "" {
			return offerVal == c.Value
		}
		// No pinned value: cluster around wherever the first task landed.
		for _, t := range tasks {
			if v, ok := taskFieldValue(t, c.Field); ok {
				return v == offerVal
			}
		}
		return true

	case sched.Like:
		return matchRegexp(c, offerVal)

	case sched.Unlike:
		if !regexpValid(c) {
			return false
		}
		return !matchRegexp(c, offerVal)
	}
	return false
}

func matchRegexp(c sched.Constraint, val string) bool {
	re, err := regexp.Compile(c.Value)
	if err != nil {
		log.WithFields(log.Fields{
			"constraint": c.String(),
		}).Warn("Constraint value is not a valid regexp")
		return false
	}
	return re.MatchString(val)
}

func regexpValid(c sched.Constraint) bool {
	_, err := regexp.Compile(c.Value)
	if err != nil {
		log.WithFields(log.Fields{
			"constraint": c.String(),
		}).Warn("Constraint value is not a valid regexp")
	}
	return err == nil
}

func offerFieldValue(offer *mesos.Offer, field string) (string, bool) {
	if field == FieldHostname {
		return offer.GetHostname(), true
	}
	for _, a := range offer.GetAttributes() {
		if a.GetName() != field {
			continue
		}
		switch a.GetType() {
		case mesos.Value_TEXT:
			return a.GetText().GetValue(), true
		case mesos.Value_SCALAR:
			return strconv.FormatFloat(a.GetScalar().GetValue(), 'f', -1, 64), true
		}
	}
	return "", false
}

func taskFieldValue(t *sched.Task, field string) (string, bool) {
	if field == FieldHostname {
		return t.Host, true
	}
	v, ok := t.Attributes[field]
	return v, ok
}

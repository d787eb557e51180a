// Package sched provides definitions for Marathon applications, their
// resource demand, and the tasks running on the cluster.
package sched

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// RoleWildcard is the unreserved Mesos role. Resources advertised without an
// explicit reservation carry this role.
const RoleWildcard = "*"

// AppDefinition is the application the client asked us to run. The resource
// fields are the demand one instance places on an offer.
type AppDefinition struct {
	ID        string
	Cmd       string
	Instances int

	CPUs float64
	Mem  float64
	// Disk and GPUs default to zero, meaning "not requested".
	Disk float64
	GPUs float64

	// Ports the app wants allocated from the offer's port ranges.
	Ports []uint32

	Constraints []Constraint
}

// Task is one running (or staging) instance of an app on a slave.
type Task struct {
	ID      string
	AppID   string
	SlaveID string
	Host    string
	Ports   []uint32

	// Slave attributes captured at launch, used by constraint evaluation.
	Attributes map[string]string

	Status    Status
	StartedAt time.Time
}

// Status for Tasks
type Status int

const (
	// Waiting for an offer that matches.
	Unscheduled Status = iota

	// Launched on a slave, not yet confirmed running.
	Staging

	// Confirmed running by a status update.
	Running

	// Reached a terminal state (finished, failed, killed or lost).
	Terminal
)

func (s Status) String() string {
	asString := [4]string{"Unscheduled", "Staging", "Running", "Terminal"}
	return asString[s]
}

// ConstraintOperator restricts how a Constraint's field is compared.
type ConstraintOperator int

const (
	// Every task of the app must see a distinct field value.
	Unique ConstraintOperator = iota

	// All tasks of the app must share one field value (the constraint's
	// value when set, otherwise whatever the first task landed on).
	Cluster

	// The offer's field value must match the constraint's regexp.
	Like

	// The offer's field value must not match the constraint's regexp.
	Unlike
)

func (o ConstraintOperator) String() string {
	asString := [4]string{"UNIQUE", "CLUSTER", "LIKE", "UNLIKE"}
	return asString[o]
}

// Constraint is one placement restriction declared by an app. Field is
// "hostname" or a slave attribute name.
type Constraint struct {
	Field    string
	Operator ConstraintOperator
	Value    string
}

func (c Constraint) String() string {
	if c.Value == "" {
		return fmt.Sprintf("%s:%s", c.Field, c.Operator)
	}
	return fmt.Sprintf("%s:%s:%s", c.Field, c.Operator, c.Value)
}

// ParseOperator reads the wire form used in app definitions ("UNIQUE",
// "CLUSTER", "LIKE", "UNLIKE").
func ParseOperator(s string) (ConstraintOperator, error) {
	switch s {
	case "UNIQUE":
		return Unique, nil
	case "CLUSTER":
		return Cluster, nil
	case "LIKE":
		return Like, nil
	case "UNLIKE":
		return Unlike, nil
	}
	return 0, errors.Errorf("unknown constraint operator %q", s)
}

// ParseConstraint reads the ["field", "OPERATOR", "value"?] form app
// definitions declare constraints in.
func ParseConstraint(fields []string) (Constraint, error) {
	if len(fields) < 2 || len(fields) > 3 {
		return Constraint{}, errors.Errorf("constraint needs [field, operator, value?], got %v", fields)
	}
	op, err := ParseOperator(fields[1])
	if err != nil {
		return Constraint{}, err
	}
	c := Constraint{Field: fields[0], Operator: op}
	if len(fields) == 3 {
		c.Value = fields[2]
	}
	return c, nil
}

// RoleSet is the set of Mesos roles the scheduler may consume resources
// from. Immutable once built; safe for concurrent reads.
type RoleSet map[string]struct{}

// NewRoleSet builds a RoleSet. With no roles given the scheduler only
// consumes unreserved (wildcard role) resources.
func NewRoleSet(roles ...string) RoleSet {
	rs := make(RoleSet, len(roles))
	for _, r := range roles {
		rs[r] = struct{}{}
	}
	if len(rs) == 0 {
		rs[RoleWildcard] = struct{}{}
	}
	return rs
}

// Accepts returns whether resources owned by role may be consumed.
func (rs RoleSet) Accepts(role string) bool {
	_, ok := rs[role]
	return ok
}

func (rs RoleSet) String() string {
	roles := make([]string, 0, len(rs))
	for r := range rs {
		roles = append(roles, r)
	}
	sort.Strings(roles)
	return strings.Join(roles, ",")
}

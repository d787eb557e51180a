// Package matcher decides whether a Mesos resource offer can satisfy one
// instance of an app's declared demand, and if so which offered entries,
// under which roles, satisfy which dimension.
package matcher

import (
	"fmt"

	mesos "github.com/mesos/mesos-go/api/v0/mesosproto"

	"github.com/louishp/marathon/sched"
	"github.com/louishp/marathon/sched/constraints"
)

// TaskSnapshot realizes the app's currently running tasks. Realization may
// be expensive (it reads shared scheduler state), so the combinator calls
// it at most once per match attempt, and only once every cheaper dimension
// already holds.
type TaskSnapshot func() []*sched.Task

// PortMatcher satisfies the app's port demand from the offer's range
// resources, or reports that it cannot. Consumed as a black box.
type PortMatcher func(app *sched.AppDefinition, offer *mesos.Offer, roles sched.RoleSet) ([]*mesos.Value_Range, bool)

// ResourceMatch binds each demand dimension of a single (offer, app)
// pairing to the role that satisfies it. It is produced only when every
// dimension holds, and has no lifecycle beyond the call that produced it;
// task-launch bookkeeping is the caller's problem.
type ResourceMatch struct {
	CPURole  string
	MemRole  string
	DiskRole string
	GPURole  string
	Ports    []*mesos.Value_Range
}

// Matcher combines the scalar matchers, the port matcher and the
// constraint evaluator with all-or-nothing semantics. It is stateless and
// safe for concurrent use.
type Matcher struct {
	ports       PortMatcher
	constraints constraints.Evaluator
	sink        DiagnosticSink
}

// New builds a Matcher. A nil sink logs diagnostics via the process log.
func New(ports PortMatcher, evaluator constraints.Evaluator, sink DiagnosticSink) *Matcher {
	if sink == nil {
		sink = logSink{}
	}
	return &Matcher{ports: ports, constraints: evaluator, sink: sink}
}

// MatchResources decides whether offer satisfies one instance of app.
// Returns nil when any dimension fails; unsatisfiability is never an
// error. Panics on a negative requirement, which indicates a caller bug
// rather than an offer that merely cannot be satisfied right now.
//
// Evaluation order: the four scalar dimensions first (all evaluated, so
// the diagnostic covers each uniformly), then ports, then constraints.
// The task snapshot is realized at most once, and only if constraint
// evaluation is actually reached with at least one constraint declared.
func (m *Matcher) MatchResources(offer *mesos.Offer, app *sched.AppDefinition, tasks TaskSnapshot, roles sched.RoleSet) *ResourceMatch {
	checkDemand(app)
	index := indexResources(offer)

	cpuMatch := matchScalar(index, NameCPUs, app.CPUs, roles)
	memMatch := matchScalar(index, NameMem, app.Mem, roles)
	diskMatch := zeroScalarMatch(NameDisk)
	if app.Disk > 0 {
		diskMatch = matchScalar(index, NameDisk, app.Disk, roles)
	}
	gpuMatch := zeroScalarMatch(GPUCorePrefix)
	if app.GPUs > 0 {
		gpuMatch = matchAggregatedScalar(index, GPUCorePrefix, app.GPUs, roles)
	}

	dims := []struct {
		name  string
		match *ScalarMatch
	}{
		{NameCPUs, cpuMatch},
		{NameMem, memMatch},
		{NameDisk, diskMatch},
		{GPUCorePrefix, gpuMatch},
	}
	satisfied := true
	diags := make([]ScalarDiag, 0, len(dims))
	for _, d := range dims {
		diags = append(diags, scalarDiag(d.name, d.match))
		if d.match == nil || !d.match.Matches() {
			satisfied = false
		}
	}
	if !satisfied {
		m.sink.NoMatch(m.noMatch(offer, app, diags, false, nil))
		return nil
	}

	portRanges, portsOK := m.ports(app, offer, roles)
	if !portsOK {
		m.sink.NoMatch(m.noMatch(offer, app, diags, true, nil))
		return nil
	}

	if len(app.Constraints) > 0 {
		running := tasks()
		var violated []sched.Constraint
		for _, c := range app.Constraints {
			if !m.constraints.Matches(running, offer, c) {
				violated = append(violated, c)
			}
		}
		if len(violated) > 0 {
			m.sink.NoMatch(m.noMatch(offer, app, diags, false, violated))
			return nil
		}
	}

	cpuRole, _ := cpuMatch.MatchingRole()
	memRole, _ := memMatch.MatchingRole()
	diskRole, _ := diskMatch.MatchingRole()
	gpuRole, _ := gpuMatch.MatchingRole()
	return &ResourceMatch{
		CPURole:  cpuRole,
		MemRole:  memRole,
		DiskRole: diskRole,
		GPURole:  gpuRole,
		Ports:    portRanges,
	}
}

func (m *Matcher) noMatch(offer *mesos.Offer, app *sched.AppDefinition, diags []ScalarDiag, portsUnavailable bool, violated []sched.Constraint) NoMatch {
	return NoMatch{
		OfferID:          offer.GetId().GetValue(),
		Hostname:         offer.GetHostname(),
		AppID:            app.ID,
		Scalars:          diags,
		PortsUnavailable: portsUnavailable,
		Violated:         violated,
	}
}

func checkDemand(app *sched.AppDefinition) {
	if app.CPUs < 0 || app.Mem < 0 || app.Disk < 0 || app.GPUs < 0 {
		panic(fmt.Sprintf("malformed resource demand for app %q: negative requirement", app.ID))
	}
}

package matcher

import (
	"testing"

	"github.com/gogo/protobuf/proto"
	mesos "github.com/mesos/mesos-go/api/v0/mesosproto"
	"github.com/mesos/mesos-go/api/v0/mesosutil"

	"github.com/louishp/marathon/sched"
)

func scalarResource(name string, value float64, role string) *mesos.Resource {
	r := mesosutil.NewScalarResource(name, value)
	if role != "" {
		r.Role = proto.String(role)
	}
	return r
}

func rangesResource(name string, begin, end uint64, role string) *mesos.Resource {
	r := mesosutil.NewRangesResource(name, []*mesos.Value_Range{mesosutil.NewValueRange(begin, end)})
	if role != "" {
		r.Role = proto.String(role)
	}
	return r
}

func makeOffer(id string, resources ...*mesos.Resource) *mesos.Offer {
	return &mesos.Offer{
		Id:        mesosutil.NewOfferID(id),
		Hostname:  proto.String("slave1.test"),
		Resources: resources,
	}
}

func Test_MatchScalar_AbsentResource(t *testing.T) {
	index := indexResources(makeOffer("o1", scalarResource("mem", 1024, "")))
	if m := matchScalar(index, NameCPUs, 1, sched.NewRoleSet()); m != nil {
		t.Errorf("Expected no match for a resource absent from the offer, got %+v", m)
	}
}

func Test_MatchScalar_RoleFiltering(t *testing.T) {
	index := indexResources(makeOffer("o1", scalarResource("cpus", 8, "prod")))
	if m := matchScalar(index, NameCPUs, 1, sched.NewRoleSet()); m != nil {
		t.Errorf("An entry under a disallowed role must never be selected, got %+v", m)
	}
}

func Test_MatchScalar_IgnoresRangeTypedEntries(t *testing.T) {
	index := indexResources(makeOffer("o1", rangesResource("cpus", 1, 4, "")))
	if m := matchScalar(index, NameCPUs, 1, sched.NewRoleSet()); m != nil {
		t.Errorf("A range-typed entry under a scalar name must never be a candidate, got %+v", m)
	}
}

func Test_MatchScalar_BestRoleSelection(t *testing.T) {
	index := indexResources(makeOffer("o1",
		scalarResource("cpus", 3, "prod"),
		scalarResource("cpus", 5, "dev"),
	))
	m := matchScalar(index, NameCPUs, 4, sched.NewRoleSet("prod", "dev"))
	if m == nil {
		t.Fatalf("Expected a match from the best-offered entry")
	}
	if !m.Matches() {
		t.Errorf("Requirement 4 should be satisfied by the entry offering 5: %+v", m)
	}
	if role, ok := m.MatchingRole(); !ok || role != "dev" {
		t.Errorf("Expected the maximum-offered entry's role dev, got %q (ok=%v)", role, ok)
	}
}

func Test_MatchScalar_InsufficientQuantity(t *testing.T) {
	index := indexResources(makeOffer("o1", scalarResource("cpus", 4, "")))
	m := matchScalar(index, NameCPUs, 8, sched.NewRoleSet())
	if m == nil {
		t.Fatalf("A qualifying entry exists; expected a ScalarMatch reporting it")
	}
	if m.Matches() {
		t.Errorf("Requirement 8 should not be satisfied by 4: %+v", m)
	}
	if role, ok := m.MatchingRole(); ok {
		t.Errorf("MatchingRole must yield nothing for an unsatisfied dimension, got %q", role)
	}
}

func Test_MatchScalar_EpsilonTolerance(t *testing.T) {
	index := indexResources(makeOffer("o1", scalarResource("cpus", 2, "")))
	m := matchScalar(index, NameCPUs, 2.0000001, sched.NewRoleSet())
	if m == nil || !m.Matches() {
		t.Errorf("Comparison within epsilon should be treated as satisfied: %+v", m)
	}
}

func Test_MatchAggregatedScalar_SumsAcceptedEntries(t *testing.T) {
	index := indexResources(makeOffer("o1",
		scalarResource("gpu_core_0", 1, ""),
		scalarResource("gpu_core_1", 1, "gpu"),
		scalarResource("gpu_core_2", 1, "locked"),
	))
	roles := sched.NewRoleSet(sched.RoleWildcard, "gpu")

	m := matchAggregatedScalar(index, GPUCorePrefix, 2, roles)
	if !m.Matches() {
		t.Errorf("Requirement 2 should be satisfied by summing the two allowed cores: %+v", m)
	}
	if m.Offered != 2 {
		t.Errorf("Expected aggregate of 2 across accepted roles, got %v", m.Offered)
	}
	if role, ok := m.MatchingRole(); !ok || role != RolePooled {
		t.Errorf("Aggregate matches must carry the pooled sentinel role, got %q", role)
	}

	if m := matchAggregatedScalar(index, GPUCorePrefix, 3, roles); m.Matches() {
		t.Errorf("Requirement 3 must not be satisfied by an aggregate of 2: %+v", m)
	}
}

func Test_MatchAggregatedScalar_EmptyOfferYieldsZero(t *testing.T) {
	index := indexResources(makeOffer("o1", scalarResource("cpus", 4, "")))
	m := matchAggregatedScalar(index, GPUCorePrefix, 1, sched.NewRoleSet())
	if m == nil {
		t.Fatalf("The aggregator always produces a value")
	}
	if m.Offered != 0 || m.Matches() {
		t.Errorf("Summation over zero matching entries should offer zero: %+v", m)
	}
}

func Test_ZeroScalarMatch(t *testing.T) {
	m := zeroScalarMatch(NameDisk)
	if !m.Matches() {
		t.Errorf("A zero requirement is trivially satisfied")
	}
	if role, ok := m.MatchingRole(); !ok || role != "" {
		t.Errorf("A zero-requirement dimension must report an empty role, got %q (ok=%v)", role, ok)
	}
}

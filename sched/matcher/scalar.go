package matcher

import (
	"math"
	"strings"

	mesos "github.com/mesos/mesos-go/api/v0/mesosproto"

	"github.com/louishp/marathon/sched"
)

// Resource names Mesos advertises for the scalar dimensions we match.
const (
	NameCPUs = "cpus"
	NameMem  = "mem"
	NameDisk = "disk"

	// GPU cores are advertised one scalar entry per physical core, named
	// with this prefix ("gpu_core_0", "gpu_core_1", ...).
	GPUCorePrefix = "gpu_core"
)

// RolePooled marks a dimension satisfied by summing entries across roles.
// Kept distinct from the wildcard role so downstream accounting never
// mistakes the aggregate for a claim on a single unreserved entry.
const RolePooled = "pooled"

// resourceEpsilon guards scalar comparisons; Mesos uses fixed point
// precision internally.
const resourceEpsilon = 0.0009

func lessThanOrEqual(f1, f2 float64) bool {
	v := f1 - f2
	if math.Abs(v) < resourceEpsilon {
		return true
	}
	return v < 0
}

// ScalarMatch records one dimension's requirement against the best quantity
// the offer could put up, and which role owns that quantity.
type ScalarMatch struct {
	Name      string
	Requested float64
	Offered   float64
	Role      string
}

// Matches reports whether the offered quantity covers the requirement.
func (s *ScalarMatch) Matches() bool {
	return lessThanOrEqual(s.Requested, s.Offered)
}

// MatchingRole yields the owning role, but only for a satisfied dimension.
// This is the sole channel through which a successful match surfaces its
// role for resource accounting.
func (s *ScalarMatch) MatchingRole() (string, bool) {
	if !s.Matches() {
		return "", false
	}
	return s.Role, true
}

// matchScalar selects the single best-offered scalar entry under name whose
// role is accepted. Returns nil when the name is absent from the offer or
// no entry passes the role and type filters; absence is not an error.
// Among entries tied for the maximum, the choice is unspecified.
func matchScalar(index resourceIndex, name string, requested float64, roles sched.RoleSet) *ScalarMatch {
	var best *mesos.Resource
	for _, r := range index[name] {
		if r.GetType() != mesos.Value_SCALAR || !roles.Accepts(r.GetRole()) {
			continue
		}
		if best == nil || r.GetScalar().GetValue() > best.GetScalar().GetValue() {
			best = r
		}
	}
	if best == nil {
		return nil
	}
	return &ScalarMatch{
		Name:      name,
		Requested: requested,
		Offered:   best.GetScalar().GetValue(),
		Role:      best.GetRole(),
	}
}

// matchAggregatedScalar sums scalar entries with accepted roles across
// every bucket whose name carries the prefix, normalizing a fragmented
// resource into one synthetic comparison. Always yields a value: summing
// over zero matching entries correctly offers zero.
func matchAggregatedScalar(index resourceIndex, prefix string, requested float64, roles sched.RoleSet) *ScalarMatch {
	total := 0.0
	for name, bucket := range index {
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		for _, r := range bucket {
			if r.GetType() != mesos.Value_SCALAR || !roles.Accepts(r.GetRole()) {
				continue
			}
			total += r.GetScalar().GetValue()
		}
	}
	return &ScalarMatch{
		Name:      prefix,
		Requested: requested,
		Offered:   total,
		Role:      RolePooled,
	}
}

// zeroScalarMatch is the fixed result for a dimension the app never asked
// for: trivially satisfied, no role attributed, no offer scan.
func zeroScalarMatch(name string) *ScalarMatch {
	return &ScalarMatch{Name: name}
}

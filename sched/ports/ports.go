// Package ports selects task ports from the port ranges a resource offer
// advertises.
package ports

import (
	mesos "github.com/mesos/mesos-go/api/v0/mesosproto"
	"github.com/mesos/mesos-go/api/v0/mesosutil"

	"github.com/louishp/marathon/sched"
)

// NamePorts is the range resource Mesos advertises ports under.
const NamePorts = "ports"

// Match picks as many ports as the app requests from the offer's "ports"
// range entries under accepted roles, walking entries in offer order.
// Returns the picked ports re-packed as compact ranges, or false when the
// offer cannot cover the request. An app requesting no ports trivially
// matches with no ranges.
func Match(app *sched.AppDefinition, offer *mesos.Offer, roles sched.RoleSet) ([]*mesos.Value_Range, bool) {
	want := len(app.Ports)
	if want == 0 {
		return nil, true
	}

	picked := make([]uint64, 0, want)
	for _, r := range offer.GetResources() {
		if r.GetName() != NamePorts || r.GetType() != mesos.Value_RANGES || !roles.Accepts(r.GetRole()) {
			continue
		}
		for _, vr := range r.GetRanges().GetRange() {
			for p := vr.GetBegin(); p <= vr.GetEnd() && len(picked) < want; p++ {
				picked = append(picked, p)
			}
			if len(picked) == want {
				break
			}
		}
		if len(picked) == want {
			break
		}
	}
	if len(picked) < want {
		return nil, false
	}
	return packRanges(picked), true
}

// packRanges compacts an ascending run of ports into contiguous ranges.
func packRanges(ports []uint64) []*mesos.Value_Range {
	var out []*mesos.Value_Range
	begin, end := ports[0], ports[0]
	for _, p := range ports[1:] {
		if p == end+1 {
			end = p
			continue
		}
		out = append(out, mesosutil.NewValueRange(begin, end))
		begin, end = p, p
	}
	return append(out, mesosutil.NewValueRange(begin, end))
}

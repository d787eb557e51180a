package matcher

import (
	mesos "github.com/mesos/mesos-go/api/v0/mesosproto"
)

// resourceIndex groups an offer's resource entries by name. Entries sharing
// a name (the same resource fragmented across roles, or individual gpu
// cores) land in one bucket. No role or type filtering happens here; that
// is the matchers' job.
type resourceIndex map[string][]*mesos.Resource

func indexResources(offer *mesos.Offer) resourceIndex {
	index := make(resourceIndex, len(offer.GetResources()))
	for _, r := range offer.GetResources() {
		index[r.GetName()] = append(index[r.GetName()], r)
	}
	return index
}

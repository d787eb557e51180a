// Package scheduler implements the mesos-go scheduler callbacks around the
// match core: offers in, matched apps tracked, everything else declined.
package scheduler

import (
	"strconv"
	"time"

	"github.com/gogo/protobuf/proto"
	mesos "github.com/mesos/mesos-go/api/v0/mesosproto"
	bindings "github.com/mesos/mesos-go/api/v0/scheduler"
	uuid "github.com/nu7hatch/gouuid"
	log "github.com/sirupsen/logrus"

	"github.com/louishp/marathon/common/stats"
	"github.com/louishp/marathon/sched"
	"github.com/louishp/marathon/sched/driver"
	"github.com/louishp/marathon/sched/matcher"
)

// AppSource provides the apps currently wanting instances.
type AppSource interface {
	Apps() []*sched.AppDefinition
}

// StaticApps is an AppSource over a fixed list.
type StaticApps []*sched.AppDefinition

func (s StaticApps) Apps() []*sched.AppDefinition { return s }

// Launcher consumes a successful match. Implementations return the task to
// track, or nil when nothing was launched (the offer is then declined).
type Launcher interface {
	Launch(drv bindings.SchedulerDriver, offer *mesos.Offer, app *sched.AppDefinition, match *matcher.ResourceMatch) (*sched.Task, error)
}

// logLauncher reports matches without launching anything.
type logLauncher struct{}

func (logLauncher) Launch(drv bindings.SchedulerDriver, offer *mesos.Offer, app *sched.AppDefinition, match *matcher.ResourceMatch) (*sched.Task, error) {
	log.WithFields(log.Fields{
		"app":      app.ID,
		"offer":    offer.GetId().GetValue(),
		"hostname": offer.GetHostname(),
		"cpuRole":  match.CPURole,
		"memRole":  match.MemRole,
	}).Info("Matched offer (dry run, not launching)")
	return nil, nil
}

type MesosScheduler struct {
	matcher  *matcher.Matcher
	apps     AppSource
	launcher Launcher
	registry *TaskRegistry
	idStore  driver.FrameworkIDStore
	roles    sched.RoleSet

	// Filter attached to declines, so unusable offers stay away a while.
	refuseSeconds float64

	stat stats.StatsReceiver
}

func NewMesosScheduler(
	m *matcher.Matcher,
	apps AppSource,
	launcher Launcher,
	registry *TaskRegistry,
	idStore driver.FrameworkIDStore,
	roles sched.RoleSet,
	refuseSeconds float64,
	stat stats.StatsReceiver,
) *MesosScheduler {
	if launcher == nil {
		launcher = logLauncher{}
	}
	if registry == nil {
		registry = NewTaskRegistry()
	}
	if stat == nil {
		stat = stats.NilStatsReceiver()
	}
	return &MesosScheduler{
		matcher:       m,
		apps:          apps,
		launcher:      launcher,
		registry:      registry,
		idStore:       idStore,
		roles:         roles,
		refuseSeconds: refuseSeconds,
		stat:          stat,
	}
}

func (s *MesosScheduler) Registry() *TaskRegistry { return s.registry }

func (s *MesosScheduler) Registered(drv bindings.SchedulerDriver, fid *mesos.FrameworkID, mi *mesos.MasterInfo) {
	s.idStore.Set(fid.GetValue())
	s.stat.Counter(stats.SchedulerRegistrationsCounter).Inc(1)
	log.WithFields(log.Fields{
		"frameworkId": fid.GetValue(),
		"master":      mi.GetHostname(),
	}).Info("Framework registered")
}

func (s *MesosScheduler) Reregistered(drv bindings.SchedulerDriver, mi *mesos.MasterInfo) {
	s.stat.Counter(stats.SchedulerRegistrationsCounter).Inc(1)
	log.WithFields(log.Fields{
		"master": mi.GetHostname(),
	}).Info("Framework re-registered")
}

func (s *MesosScheduler) Disconnected(drv bindings.SchedulerDriver) {
	s.stat.Counter(stats.SchedulerDisconnectsCounter).Inc(1)
	log.Warn("Disconnected from master")
}

func (s *MesosScheduler) ResourceOffers(drv bindings.SchedulerDriver, offers []*mesos.Offer) {
	s.stat.Counter(stats.SchedulerOffersReceivedCounter).Inc(int64(len(offers)))
	apps := s.apps.Apps()

	for _, offer := range offers {
		if !s.handleOffer(drv, offer, apps) {
			s.stat.Counter(stats.SchedulerOffersDeclinedCounter).Inc(1)
			s.decline(drv, offer)
		}
	}
	s.stat.Gauge(stats.SchedulerRunningTasksGauge).Update(int64(s.registry.CountAll()))
}

// handleOffer tries the offer against each app that still wants instances
// and reports whether the offer was consumed.
func (s *MesosScheduler) handleOffer(drv bindings.SchedulerDriver, offer *mesos.Offer, apps []*sched.AppDefinition) bool {
	defer s.stat.Latency(stats.SchedulerMatchLatency_ms).Time().Stop()

	for _, app := range apps {
		if s.registry.CountActive(app.ID) >= app.Instances {
			continue
		}
		match := s.matcher.MatchResources(offer, app, s.registry.SnapshotFunc(app.ID), s.roles)
		if match == nil {
			s.stat.Counter(stats.SchedulerNoMatchesCounter).Inc(1)
			continue
		}
		s.stat.Counter(stats.SchedulerMatchesCounter).Inc(1)

		task, err := s.launcher.Launch(drv, offer, app, match)
		if err != nil {
			log.WithFields(log.Fields{
				"app":   app.ID,
				"offer": offer.GetId().GetValue(),
				"err":   err,
			}).Error("Launch failed")
			return false
		}
		if task == nil {
			return false
		}
		s.registry.Track(task)
		return true
	}
	return false
}

func (s *MesosScheduler) decline(drv bindings.SchedulerDriver, offer *mesos.Offer) {
	filters := &mesos.Filters{RefuseSeconds: proto.Float64(s.refuseSeconds)}
	if _, err := drv.DeclineOffer(offer.GetId(), filters); err != nil {
		log.WithFields(log.Fields{
			"offer": offer.GetId().GetValue(),
			"err":   err,
		}).Warn("Decline failed")
	}
}

func (s *MesosScheduler) OfferRescinded(drv bindings.SchedulerDriver, offerID *mesos.OfferID) {
	log.WithFields(log.Fields{"offer": offerID.GetValue()}).Debug("Offer rescinded")
}

func (s *MesosScheduler) StatusUpdate(drv bindings.SchedulerDriver, status *mesos.TaskStatus) {
	s.stat.Counter(stats.SchedulerStatusUpdatesCounter).Inc(1)
	s.registry.Record(status)
	s.stat.Gauge(stats.SchedulerRunningTasksGauge).Update(int64(s.registry.CountAll()))
	log.WithFields(log.Fields{
		"task":  status.GetTaskId().GetValue(),
		"state": status.GetState().String(),
	}).Debug("Status update")
}

func (s *MesosScheduler) FrameworkMessage(drv bindings.SchedulerDriver, eid *mesos.ExecutorID, sid *mesos.SlaveID, msg string) {
	log.WithFields(log.Fields{
		"executor": eid.GetValue(),
		"slave":    sid.GetValue(),
	}).Debug("Framework message: ", msg)
}

func (s *MesosScheduler) SlaveLost(drv bindings.SchedulerDriver, sid *mesos.SlaveID) {
	log.WithFields(log.Fields{"slave": sid.GetValue()}).Warn("Slave lost")
}

func (s *MesosScheduler) ExecutorLost(drv bindings.SchedulerDriver, eid *mesos.ExecutorID, sid *mesos.SlaveID, code int) {
	log.WithFields(log.Fields{
		"executor": eid.GetValue(),
		"slave":    sid.GetValue(),
		"code":     code,
	}).Warn("Executor lost")
}

func (s *MesosScheduler) Error(drv bindings.SchedulerDriver, message string) {
	log.Error("Scheduler driver error: ", message)
}

// NewTask builds the bookkeeping record for a task about to launch on the
// offer's agent.
func NewTask(app *sched.AppDefinition, offer *mesos.Offer) *sched.Task {
	id, _ := uuid.NewV4()
	return &sched.Task{
		ID:         app.ID + "." + id.String(),
		AppID:      app.ID,
		SlaveID:    offer.GetSlaveId().GetValue(),
		Host:       offer.GetHostname(),
		Attributes: attributeMap(offer),
		Status:     sched.Staging,
		StartedAt:  time.Now(),
	}
}

func formatScalar(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func attributeMap(offer *mesos.Offer) map[string]string {
	if len(offer.GetAttributes()) == 0 {
		return nil
	}
	out := make(map[string]string, len(offer.GetAttributes()))
	for _, attr := range offer.GetAttributes() {
		switch attr.GetType() {
		case mesos.Value_TEXT:
			out[attr.GetName()] = attr.GetText().GetValue()
		case mesos.Value_SCALAR:
			out[attr.GetName()] = formatScalar(attr.GetScalar().GetValue())
		}
	}
	return out
}

// Package driver assembles the framework identity presented to the Mesos
// master and constructs the scheduler driver around it.
package driver

import (
	"io/ioutil"
	"strings"
	"sync"

	"github.com/cenkalti/backoff"
	"github.com/gogo/protobuf/proto"
	mesos "github.com/mesos/mesos-go/api/v0/mesosproto"
	"github.com/mesos/mesos-go/api/v0/mesosutil"
	bindings "github.com/mesos/mesos-go/api/v0/scheduler"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Settings carries everything needed to register with a master.
type Settings struct {
	// Master address, e.g. "127.0.0.1:5050" or "zk://host:2181/mesos".
	Master string

	Name            string
	User            string
	Role            string
	FailoverTimeout float64 // seconds
	Checkpoint      bool

	// Optional hostname/webui advertised to the master.
	Hostname string
	WebUIURL string

	// Credential. Principal without SecretFile registers unauthenticated
	// but still stamps the principal on the framework info.
	Principal  string
	SecretFile string

	// Offer gpu_core resources to this framework.
	GPUResources bool
}

// FrameworkIDStore persists the framework id across re-registrations so a
// restart resumes the prior framework instead of registering a new one.
type FrameworkIDStore interface {
	Get() (id string, ok bool)
	Set(id string)
}

func NewInMemoryIDStore() FrameworkIDStore {
	return &inMemoryIDStore{}
}

type inMemoryIDStore struct {
	mu sync.Mutex
	id string
}

func (s *inMemoryIDStore) Get() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id, s.id != ""
}

func (s *inMemoryIDStore) Set(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.id = id
}

// NewFrameworkInfo builds the registration payload. The role is omitted
// entirely when empty so the master applies its default, and a prior
// framework id from the store turns registration into failover.
func NewFrameworkInfo(s Settings, store FrameworkIDStore) *mesos.FrameworkInfo {
	info := &mesos.FrameworkInfo{
		Name:            proto.String(s.Name),
		User:            proto.String(s.User),
		FailoverTimeout: proto.Float64(s.FailoverTimeout),
		Checkpoint:      proto.Bool(s.Checkpoint),
	}
	if s.Role != "" {
		info.Role = proto.String(s.Role)
	}
	if s.Hostname != "" {
		info.Hostname = proto.String(s.Hostname)
	}
	if s.WebUIURL != "" {
		info.WebuiUrl = proto.String(s.WebUIURL)
	}
	if s.Principal != "" {
		info.Principal = proto.String(s.Principal)
	}
	if store != nil {
		if id, ok := store.Get(); ok {
			info.Id = mesosutil.NewFrameworkID(id)
		}
	}

	killing := mesos.FrameworkInfo_Capability_TASK_KILLING_STATE
	info.Capabilities = []*mesos.FrameworkInfo_Capability{
		{Type: &killing},
	}
	if s.GPUResources {
		gpu := mesos.FrameworkInfo_Capability_GPU_RESOURCES
		info.Capabilities = append(info.Capabilities,
			&mesos.FrameworkInfo_Capability{Type: &gpu})
	}
	return info
}

// NewCredential loads the secret for the configured principal. Returns nil
// when no secret file is configured.
func NewCredential(s Settings) (*mesos.Credential, error) {
	if s.SecretFile == "" {
		return nil, nil
	}
	secret, err := ioutil.ReadFile(s.SecretFile)
	if err != nil {
		return nil, errors.Wrapf(err, "reading mesos secret file %s", s.SecretFile)
	}
	return &mesos.Credential{
		Principal: proto.String(s.Principal),
		Secret:    proto.String(strings.TrimSpace(string(secret))),
	}, nil
}

// NewDriver constructs the mesos-go scheduler driver for the given callback
// implementation.
func NewDriver(s Settings, sched bindings.Scheduler, store FrameworkIDStore) (bindings.SchedulerDriver, error) {
	cred, err := NewCredential(s)
	if err != nil {
		return nil, err
	}
	config := bindings.DriverConfig{
		Scheduler:  sched,
		Framework:  NewFrameworkInfo(s, store),
		Master:     s.Master,
		Credential: cred,
	}
	drv, err := bindings.NewMesosSchedulerDriver(config)
	if err != nil {
		return nil, errors.Wrap(err, "constructing scheduler driver")
	}
	return drv, nil
}

// RunDriver runs driver instances produced by makeDriver until one stops
// cleanly, backing off exponentially between failed attempts. A stopped
// driver cannot be reused, hence the factory.
func RunDriver(makeDriver func() (bindings.SchedulerDriver, error)) error {
	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = 0
	return backoff.Retry(func() error {
		drv, err := makeDriver()
		if err != nil {
			return backoff.Permanent(err)
		}
		status, err := drv.Run()
		if err != nil {
			log.WithFields(log.Fields{
				"status": status.String(),
				"err":    err,
			}).Error("Scheduler driver exited, will retry")
			return err
		}
		if status == mesos.Status_DRIVER_STOPPED {
			return nil
		}
		log.WithFields(log.Fields{
			"status": status.String(),
		}).Error("Scheduler driver aborted, will retry")
		return errors.Errorf("driver exited with status %s", status.String())
	}, b)
}

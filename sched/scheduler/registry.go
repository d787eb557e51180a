package scheduler

import (
	"strings"
	"sync"

	mesos "github.com/mesos/mesos-go/api/v0/mesosproto"

	"github.com/louishp/marathon/sched"
	"github.com/louishp/marathon/sched/matcher"
)

// TaskRegistry is the in-memory view of tasks this framework has launched,
// keyed app id -> task id. It backs the running-task snapshots handed to the
// match core, so reads return copies.
type TaskRegistry struct {
	mu    sync.Mutex
	tasks map[string]map[string]*sched.Task
}

func NewTaskRegistry() *TaskRegistry {
	return &TaskRegistry{tasks: make(map[string]map[string]*sched.Task)}
}

// Track adds a task the scheduler just launched (or decided to launch).
func (r *TaskRegistry) Track(t *sched.Task) {
	r.mu.Lock()
	defer r.mu.Unlock()
	byID, ok := r.tasks[t.AppID]
	if !ok {
		byID = make(map[string]*sched.Task)
		r.tasks[t.AppID] = byID
	}
	copied := *t
	byID[t.ID] = &copied
}

// Record applies a master status update. Terminal states drop the task.
func (r *TaskRegistry) Record(status *mesos.TaskStatus) {
	taskID := status.GetTaskId().GetValue()
	appID := appIDFor(taskID)

	r.mu.Lock()
	defer r.mu.Unlock()
	byID, ok := r.tasks[appID]
	if !ok {
		return
	}
	task, ok := byID[taskID]
	if !ok {
		return
	}

	next := statusFromState(status.GetState())
	if next == sched.Terminal {
		delete(byID, taskID)
		if len(byID) == 0 {
			delete(r.tasks, appID)
		}
		return
	}
	task.Status = next
}

// ActiveFor returns copies of the app's staging and running tasks.
func (r *TaskRegistry) ActiveFor(appID string) []*sched.Task {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*sched.Task
	for _, task := range r.tasks[appID] {
		copied := *task
		out = append(out, &copied)
	}
	return out
}

func (r *TaskRegistry) CountActive(appID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tasks[appID])
}

func (r *TaskRegistry) CountAll() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, byID := range r.tasks {
		n += len(byID)
	}
	return n
}

// SnapshotFunc defers the registry read until (and unless) the match core
// actually needs the running-task view.
func (r *TaskRegistry) SnapshotFunc(appID string) matcher.TaskSnapshot {
	return func() []*sched.Task {
		return r.ActiveFor(appID)
	}
}

// Task ids are formed as "<appID>.<uuid>"; app ids may themselves contain
// dots, uuids do not contain unescaped ones past the last separator.
func appIDFor(taskID string) string {
	if i := strings.LastIndex(taskID, "."); i >= 0 {
		return taskID[:i]
	}
	return taskID
}

func statusFromState(state mesos.TaskState) sched.Status {
	switch state {
	case mesos.TaskState_TASK_STAGING, mesos.TaskState_TASK_STARTING:
		return sched.Staging
	case mesos.TaskState_TASK_RUNNING:
		return sched.Running
	default:
		return sched.Terminal
	}
}

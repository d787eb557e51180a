package scheduler

import (
	"testing"

	mesos "github.com/mesos/mesos-go/api/v0/mesosproto"
	"github.com/mesos/mesos-go/api/v0/mesosutil"

	"github.com/louishp/marathon/sched"
)

func taskStatus(taskID string, state mesos.TaskState) *mesos.TaskStatus {
	return &mesos.TaskStatus{
		TaskId: mesosutil.NewTaskID(taskID),
		State:  &state,
	}
}

func Test_Registry_Lifecycle(t *testing.T) {
	r := NewTaskRegistry()
	r.Track(&sched.Task{ID: "web.1", AppID: "web", Host: "host1", Status: sched.Staging})

	if n := r.CountActive("web"); n != 1 {
		t.Fatalf("Expected one active task, got %d", n)
	}

	r.Record(taskStatus("web.1", mesos.TaskState_TASK_RUNNING))
	tasks := r.ActiveFor("web")
	if len(tasks) != 1 || tasks[0].Status != sched.Running {
		t.Errorf("Expected the task running, got %+v", tasks)
	}

	r.Record(taskStatus("web.1", mesos.TaskState_TASK_FINISHED))
	if n := r.CountActive("web"); n != 0 {
		t.Errorf("A terminal update must drop the task, still have %d", n)
	}
}

func Test_Registry_SnapshotIsolation(t *testing.T) {
	r := NewTaskRegistry()
	r.Track(&sched.Task{ID: "web.1", AppID: "web", Host: "host1", Status: sched.Running})

	snapshot := r.ActiveFor("web")
	snapshot[0].Host = "mutated"

	if fresh := r.ActiveFor("web"); fresh[0].Host != "host1" {
		t.Errorf("Mutating a snapshot must not leak into the registry, got %q", fresh[0].Host)
	}
}

func Test_Registry_UnknownTaskIgnored(t *testing.T) {
	r := NewTaskRegistry()
	r.Record(taskStatus("ghost.1", mesos.TaskState_TASK_RUNNING))
	if n := r.CountAll(); n != 0 {
		t.Errorf("An update for an untracked task must be ignored, got %d", n)
	}
}

func Test_AppIDFor_DottedAppIDs(t *testing.T) {
	if got := appIDFor("prod.web.4796b354-42f8-4e42-9a8b-47ce6d07ae5c"); got != "prod.web" {
		t.Errorf("Expected prod.web, got %q", got)
	}
}

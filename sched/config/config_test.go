package config_test

import (
	"encoding/json"
	"testing"

	"github.com/louishp/marathon/sched"
	"github.com/louishp/marathon/sched/config"
)

const configText = `{
	"Framework": {
		"Type": "default",
		"Name": "marathon-prod",
		"User": "marathon",
		"Role": "prod",
		"FailoverTimeout": 3600,
		"Checkpoint": true,
		"GPUResources": true
	},
	"Mesos": {
		"Type": "default",
		"Master": "zk://zk1:2181/mesos",
		"AcceptedRoles": ["*", "prod"],
		"RefuseSeconds": 30
	},
	"Apps": {
		"Type": "static",
		"Apps": [
			{
				"ID": "web",
				"Cmd": "./serve",
				"Instances": 3,
				"CPUs": 2,
				"Mem": 1024,
				"Ports": [0],
				"Constraints": [["hostname", "UNIQUE"], ["rack", "CLUSTER", "rack-1"]]
			}
		]
	},
	"Report": {
		"Type": "default",
		"HttpAddr": ""
	}
}`

func TestParse(t *testing.T) {
	cfg, err := config.DefaultParser().Parse([]byte(configText))
	if err != nil {
		t.Fatalf("Error parsing config: %v", err)
	}

	settings, err := cfg.Framework.Create()
	if err != nil {
		t.Fatalf("Error creating framework settings: %v", err)
	}
	if settings.Name != "marathon-prod" || settings.Role != "prod" || !settings.GPUResources {
		t.Errorf("Framework settings not parsed: %+v", settings)
	}

	ms, err := cfg.Mesos.Create()
	if err != nil {
		t.Fatalf("Error creating mesos settings: %v", err)
	}
	if ms.Master != "zk://zk1:2181/mesos" || ms.RefuseSeconds != 30 || len(ms.AcceptedRoles) != 2 {
		t.Errorf("Mesos settings not parsed: %+v", ms)
	}

	apps, err := cfg.Apps.Create()
	if err != nil {
		t.Fatalf("Error creating app source: %v", err)
	}
	list := apps.Apps()
	if len(list) != 1 || list[0].ID != "web" || list[0].Instances != 3 {
		t.Fatalf("App list not parsed: %+v", list)
	}
	if len(list[0].Constraints) != 2 || list[0].Constraints[0].Operator != sched.Unique {
		t.Errorf("Constraints not parsed: %+v", list[0].Constraints)
	}
	if list[0].Constraints[1].String() != "rack:CLUSTER:rack-1" {
		t.Errorf("Unexpected constraint: %v", list[0].Constraints[1])
	}
}

func TestConfigRoundtrip(t *testing.T) {
	p := config.DefaultParser()
	cfg, err := p.Parse([]byte(configText))
	if err != nil {
		t.Fatalf("Error parsing before: %v", err)
	}

	bytes, err := json.Marshal(&cfg)
	if err != nil {
		t.Fatalf("Error encoding Config to json: %v.", err)
	}

	again, err := p.Parse(bytes)
	if err != nil {
		t.Fatalf("Error re-parsing marshaled config: %v", err)
	}
	settings, _ := again.Framework.Create()
	if settings.Name != "marathon-prod" {
		t.Errorf("Round-trip lost framework settings: %+v", settings)
	}
	ms, _ := again.Mesos.Create()
	if ms.Master != "zk://zk1:2181/mesos" {
		t.Errorf("Round-trip lost mesos settings: %+v", ms)
	}
}

func TestDefaultJSON(t *testing.T) {
	p := config.DefaultParser()
	data, err := p.DefaultJSON()
	if err != nil {
		t.Fatalf("Error generating default json: %v", err)
	}
	if _, err := p.Parse(data); err != nil {
		t.Fatalf("Default json must parse: %v", err)
	}
}

func TestCreate(t *testing.T) {
	app, err := config.DefaultParser().Create([]byte(configText))
	if err != nil {
		t.Fatalf("Error creating scheduler: %v", err)
	}
	if app.Scheduler == nil || app.IDStore == nil {
		t.Errorf("Incomplete scheduler app: %+v", app)
	}
	if app.Settings.Master != "zk://zk1:2181/mesos" {
		t.Errorf("Master not threaded into driver settings: %+v", app.Settings)
	}
}

func TestUnknownSectionType(t *testing.T) {
	_, err := config.DefaultParser().Parse([]byte(`{"Apps": {"Type": "zookeeper"}}`))
	if err == nil {
		t.Fatalf("An unknown section type must fail parsing")
	}
}

func TestBadConstraint(t *testing.T) {
	text := `{"Apps": {"Type": "static", "Apps": [{"ID": "web", "Constraints": [["hostname"]]}]}}`
	cfg, err := config.DefaultParser().Parse([]byte(text))
	if err != nil {
		t.Fatalf("Error parsing config: %v", err)
	}
	if _, err := cfg.Apps.Create(); err == nil {
		t.Fatalf("A malformed constraint must fail app creation")
	}
}

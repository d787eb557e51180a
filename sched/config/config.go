// Package config parses the scheduler's JSON configuration and builds the
// runnable scheduler from it.
package config

import (
	"encoding/json"

	bindings "github.com/mesos/mesos-go/api/v0/scheduler"
	"github.com/pkg/errors"

	"github.com/louishp/marathon/common/stats"
	"github.com/louishp/marathon/sched"
	"github.com/louishp/marathon/sched/constraints"
	"github.com/louishp/marathon/sched/driver"
	"github.com/louishp/marathon/sched/matcher"
	"github.com/louishp/marathon/sched/ports"
	"github.com/louishp/marathon/sched/scheduler"
)

// Config is the top-level configuration for the scheduler. It defines how to
// create each of our (configurable) dependencies and then wires the
// scheduler together.
type Config struct {
	Framework FrameworkConfig
	Mesos     MesosConfig
	Apps      AppsConfig
	Report    ReportConfig
}

// MesosSettings is the master-facing half of the configuration: where to
// register and how to consume offers.
type MesosSettings struct {
	Master        string
	AcceptedRoles []string
	RefuseSeconds float64
}

type FrameworkConfig interface {
	Create() (driver.Settings, error)
}

type MesosConfig interface {
	Create() (MesosSettings, error)
}

type AppsConfig interface {
	Create() (scheduler.AppSource, error)
}

type ReportConfig interface {
	Create() (stats.StatsReceiver, error)
}

// SchedulerApp is the fully wired scheduler, ready to run against a master.
type SchedulerApp struct {
	Settings  driver.Settings
	Scheduler *scheduler.MesosScheduler
	IDStore   driver.FrameworkIDStore
	Stat      stats.StatsReceiver
}

// Run drives registration and offer handling until the driver stops cleanly.
func (a *SchedulerApp) Run() error {
	return driver.RunDriver(func() (bindings.SchedulerDriver, error) {
		return driver.NewDriver(a.Settings, a.Scheduler, a.IDStore)
	})
}

// Create builds the scheduler (or returns an error describing why it couldn't).
func (c *Config) Create() (*SchedulerApp, error) {
	settings, err := c.Framework.Create()
	if err != nil {
		return nil, err
	}

	ms, err := c.Mesos.Create()
	if err != nil {
		return nil, err
	}
	settings.Master = ms.Master

	apps, err := c.Apps.Create()
	if err != nil {
		return nil, err
	}

	stat, err := c.Report.Create()
	if err != nil {
		return nil, err
	}

	idStore := driver.NewInMemoryIDStore()
	m := matcher.New(ports.Match, constraints.NewEvaluator(), nil)
	sch := scheduler.NewMesosScheduler(
		m,
		apps,
		nil,
		scheduler.NewTaskRegistry(),
		idStore,
		sched.NewRoleSet(ms.AcceptedRoles...),
		ms.RefuseSeconds,
		stat.Scope("scheduler"),
	)

	return &SchedulerApp{
		Settings:  settings,
		Scheduler: sch,
		IDStore:   idStore,
		Stat:      stat,
	}, nil
}

// Config sections parsed from JSON. Each should parse into an empty string or
// a JSON object with a "type" field which picks the config to parse it as.
type topLevelConfig struct {
	Framework json.RawMessage
	Mesos     json.RawMessage
	Apps      json.RawMessage
	Report    json.RawMessage
}

type typeConfig struct {
	Type string
}

var emptyJson = []byte("{}")

func parseType(data json.RawMessage) (string, []byte) {
	if len(data) == 0 {
		return "", emptyJson
	}

	var t typeConfig
	if err := json.Unmarshal(data, &t); err != nil {
		return "", emptyJson
	}
	return t.Type, data
}

// Parser holds how to parse our configs. For each configurable dependency it
// holds options keyed by the section's "type" field. A missing section looks
// up the empty string, so defaults live at Parser.Foo[""].
type Parser struct {
	Framework map[string]FrameworkConfig
	Mesos     map[string]MesosConfig
	Apps      map[string]AppsConfig
	Report    map[string]ReportConfig
}

// Create parses and creates in one step.
func (p *Parser) Create(configText []byte) (*SchedulerApp, error) {
	c, err := p.Parse(configText)
	if err != nil {
		return nil, err
	}
	return c.Create()
}

// DefaultJSON generates the JSON config that results from the empty string;
// useful for showing a complete configuration.
func (p *Parser) DefaultJSON() ([]byte, error) {
	i, err := p.Parse(nil)
	if err != nil {
		return nil, err
	}
	return json.Marshal(i)
}

func (p *Parser) Parse(configText []byte) (*Config, error) {
	if len(configText) == 0 {
		configText = emptyJson
	}
	var cfg topLevelConfig
	if err := json.Unmarshal(configText, &cfg); err != nil {
		return nil, errors.Wrap(err, "couldn't parse top-level config")
	}

	r := &Config{}

	// For each section: parse its type, find the matching FooConfig,
	// unmarshal into it, set it on the result.

	frameworkType, frameworkData := parseType(cfg.Framework)
	frameworkConfig, ok := p.Framework[frameworkType]
	if !ok {
		return nil, errors.Errorf("no parser for framework type %s", frameworkType)
	}
	if err := json.Unmarshal(frameworkData, &frameworkConfig); err != nil {
		return nil, errors.Wrapf(err, "couldn't parse Framework (config: %s; type: %s)", frameworkData, frameworkType)
	}
	r.Framework = frameworkConfig

	mesosType, mesosData := parseType(cfg.Mesos)
	mesosConfig, ok := p.Mesos[mesosType]
	if !ok {
		return nil, errors.Errorf("no parser for mesos type %s", mesosType)
	}
	if err := json.Unmarshal(mesosData, &mesosConfig); err != nil {
		return nil, errors.Wrapf(err, "couldn't parse Mesos (config: %s; type: %s)", mesosData, mesosType)
	}
	r.Mesos = mesosConfig

	appsType, appsData := parseType(cfg.Apps)
	appsConfig, ok := p.Apps[appsType]
	if !ok {
		return nil, errors.Errorf("no parser for apps type %s", appsType)
	}
	if err := json.Unmarshal(appsData, &appsConfig); err != nil {
		return nil, errors.Wrapf(err, "couldn't parse Apps (config: %s; type: %s)", appsData, appsType)
	}
	r.Apps = appsConfig

	reportType, reportData := parseType(cfg.Report)
	reportConfig, ok := p.Report[reportType]
	if !ok {
		return nil, errors.Errorf("no parser for report type %s", reportType)
	}
	if err := json.Unmarshal(reportData, &reportConfig); err != nil {
		return nil, errors.Wrapf(err, "couldn't parse Report (config: %s; type: %s)", reportData, reportType)
	}
	r.Report = reportConfig

	return r, nil
}

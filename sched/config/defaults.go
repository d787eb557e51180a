package config

import (
	"github.com/louishp/marathon/common/endpoints"
	"github.com/louishp/marathon/common/stats"
	"github.com/louishp/marathon/sched"
	"github.com/louishp/marathon/sched/driver"
	"github.com/louishp/marathon/sched/scheduler"
)

func DefaultParser() *Parser {
	return &Parser{
		Framework: map[string]FrameworkConfig{
			"default": &DefaultFrameworkConfig{},
			"": &DefaultFrameworkConfig{
				Type:            "default",
				Name:            "marathon",
				User:            "root",
				FailoverTimeout: 604800,
				Checkpoint:      true,
			},
		},
		Mesos: map[string]MesosConfig{
			"default": &DefaultMesosConfig{},
			"": &DefaultMesosConfig{
				Type:          "default",
				Master:        "127.0.0.1:5050",
				RefuseSeconds: 5,
			},
		},
		Apps: map[string]AppsConfig{
			"static": &StaticAppsConfig{},
			"":       &StaticAppsConfig{Type: "static"},
		},
		Report: map[string]ReportConfig{
			"default": &DefaultReportConfig{},
			"": &DefaultReportConfig{
				Type:     "default",
				HttpAddr: "localhost:9091",
			},
		},
	}
}

type DefaultFrameworkConfig struct {
	Type            string
	Name            string
	User            string
	Role            string
	FailoverTimeout float64
	Checkpoint      bool
	Principal       string
	SecretFile      string
	WebUIURL        string
	GPUResources    bool
}

func (c *DefaultFrameworkConfig) Create() (driver.Settings, error) {
	return driver.Settings{
		Name:            c.Name,
		User:            c.User,
		Role:            c.Role,
		FailoverTimeout: c.FailoverTimeout,
		Checkpoint:      c.Checkpoint,
		Principal:       c.Principal,
		SecretFile:      c.SecretFile,
		WebUIURL:        c.WebUIURL,
		GPUResources:    c.GPUResources,
	}, nil
}

type DefaultMesosConfig struct {
	Type          string
	Master        string
	AcceptedRoles []string
	RefuseSeconds float64
}

func (c *DefaultMesosConfig) Create() (MesosSettings, error) {
	return MesosSettings{
		Master:        c.Master,
		AcceptedRoles: c.AcceptedRoles,
		RefuseSeconds: c.RefuseSeconds,
	}, nil
}

// StaticAppsConfig declares the app list inline in the config.
type StaticAppsConfig struct {
	Type string
	Apps []AppConfig
}

type AppConfig struct {
	ID          string
	Cmd         string
	Instances   int
	CPUs        float64
	Mem         float64
	Disk        float64
	GPUs        float64
	Ports       []uint32
	Constraints [][]string
}

func (c *StaticAppsConfig) Create() (scheduler.AppSource, error) {
	apps := make(scheduler.StaticApps, 0, len(c.Apps))
	for _, a := range c.Apps {
		app := &sched.AppDefinition{
			ID:        a.ID,
			Cmd:       a.Cmd,
			Instances: a.Instances,
			CPUs:      a.CPUs,
			Mem:       a.Mem,
			Disk:      a.Disk,
			GPUs:      a.GPUs,
			Ports:     a.Ports,
		}
		for _, fields := range a.Constraints {
			constraint, err := sched.ParseConstraint(fields)
			if err != nil {
				return nil, err
			}
			app.Constraints = append(app.Constraints, constraint)
		}
		apps = append(apps, app)
	}
	return apps, nil
}

type DefaultReportConfig struct {
	Type     string
	HttpAddr string
}

func (c *DefaultReportConfig) Create() (stats.StatsReceiver, error) {
	if c.HttpAddr == "" {
		return stats.NilStatsReceiver(), nil
	}
	stat := endpoints.MakeStatsReceiver("marathon")
	go endpoints.NewAdminServer(c.HttpAddr, stat).Serve()
	return stat, nil
}

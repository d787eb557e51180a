package main

import (
	"flag"
	"io/ioutil"

	log "github.com/sirupsen/logrus"

	"github.com/louishp/marathon/common/stats"
	"github.com/louishp/marathon/sched/config"
)

var master = flag.String("master", "", "Mesos master address, overrides the config.")
var cfgText = flag.String("config", "", "Scheduler configuration JSON.")
var cfgFile = flag.String("config_file", "", "Path to scheduler configuration JSON.")
var printDefault = flag.Bool("print_default_config", false, "Print the default configuration and exit.")

func main() {
	log.Info("Starting Marathon Scheduler")
	flag.Parse()

	parser := config.DefaultParser()
	if *printDefault {
		data, err := parser.DefaultJSON()
		if err != nil {
			log.Fatal("Error rendering default config: ", err)
		}
		log.Info(string(data))
		return
	}

	text := []byte(*cfgText)
	if *cfgFile != "" {
		data, err := ioutil.ReadFile(*cfgFile)
		if err != nil {
			log.Fatal("Error reading config file: ", err)
		}
		text = data
	}

	app, err := parser.Create(text)
	if err != nil {
		log.Fatal("Error configuring scheduler: ", err)
	}
	if *master != "" {
		app.Settings.Master = *master
	}

	stats.ReportServerRestart(
		app.Stat,
		stats.SchedulerServerStartedGauge,
		stats.DefaultStartupGaugeSpikeLen)

	log.WithFields(log.Fields{
		"master":    app.Settings.Master,
		"framework": app.Settings.Name,
	}).Info("Connecting to master")

	if err := app.Run(); err != nil {
		log.Fatal("Scheduler exited: ", err)
	}
	log.Info("Scheduler stopped cleanly")
}

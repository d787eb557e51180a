package stats

/*
This file defines all the metrics being collected. As new metrics are added please follow this pattern.
*/

const (
	/************************* Scheduler metrics ****************************/
	/*
		the number of resource offers received from the master
	*/
	SchedulerOffersReceivedCounter = "offersReceivedCounter"

	/*
		the number of offers declined because no app could use them
	*/
	SchedulerOffersDeclinedCounter = "offersDeclinedCounter"

	/*
		the number of successful offer/app matches
	*/
	SchedulerMatchesCounter = "matchesCounter"

	/*
		the number of offer/app match attempts that produced nothing
	*/
	SchedulerNoMatchesCounter = "noMatchesCounter"

	/*
		amount of time spent matching one offer against the app list
	*/
	SchedulerMatchLatency_ms = "matchLatency_ms"

	/*
		the number of tasks currently tracked as running
	*/
	SchedulerRunningTasksGauge = "runningTasksGauge"

	/*
		the number of task status updates received from the master
	*/
	SchedulerStatusUpdatesCounter = "statusUpdatesCounter"

	/*
		the number of times the framework (re)registered with a master
	*/
	SchedulerRegistrationsCounter = "registrationsCounter"

	/*
		the number of times the driver disconnected from the master
	*/
	SchedulerDisconnectsCounter = "disconnectsCounter"

	/*
		record the start of the scheduler server
	*/
	SchedulerServerStartedGauge = "schedulerStartGauge"

	/*
		the uptime of the scheduler server in ms
	*/
	SchedulerUptime_ms = "schedulerUptimeGauge_ms"
)

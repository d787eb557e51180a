package sched

import (
	"fmt"
	"math/rand"

	"github.com/leanovate/gopter"

	"github.com/louishp/marathon/tests/testhelpers"
)

// Generates a random AppDefinition with the given id and bounded demand.
func GenRandomApp(id string, rng *rand.Rand) *AppDefinition {
	return &AppDefinition{
		ID:        id,
		Cmd:       fmt.Sprintf("sleep %d", rng.Intn(1000)),
		Instances: rng.Intn(5) + 1,
		CPUs:      float64(rng.Intn(8)) + 0.1,
		Mem:       float64(rng.Intn(4096)) + 32,
	}
}

// Generates a random AppDefinition
func GenApp() *AppDefinition {
	rng := testhelpers.NewRand()
	return GenRandomApp(testhelpers.GenAppID(), rng)
}

// Generates a random running Task for the given app on the given host.
func GenRandomTask(appID, host string, rng *rand.Rand) *Task {
	return &Task{
		ID:      fmt.Sprintf("%s.%s", appID, testhelpers.GenRandomAlphaNumericString(rng)),
		AppID:   appID,
		Host:    host,
		SlaveID: fmt.Sprintf("slave-%s", testhelpers.GenRandomAlphaNumericString(rng)),
		Status:  Running,
	}
}

// Wrapper function that Generates an AppDefinition for Property Based Tests
func GopterGenApp() gopter.Gen {
	return func(genParams *gopter.GenParameters) *gopter.GenResult {
		id := fmt.Sprintf("app-%s", testhelpers.GenRandomAlphaNumericString(genParams.Rng))
		app := GenRandomApp(id, genParams.Rng)
		return gopter.NewGenResult(app, gopter.NoShrinker)
	}
}

// Wrapper function that Generates a Constraint for Property Based Tests
func GopterGenConstraint() gopter.Gen {
	fields := []string{"hostname", "rack", "zone", "gpu_gen"}
	operators := []ConstraintOperator{Unique, Cluster, Like, Unlike}
	return func(genParams *gopter.GenParameters) *gopter.GenResult {
		c := Constraint{
			Field:    fields[genParams.Rng.Intn(len(fields))],
			Operator: operators[genParams.Rng.Intn(len(operators))],
		}
		if genParams.Rng.Intn(2) == 0 {
			c.Value = testhelpers.GenRandomAlphaNumericString(genParams.Rng)
		}
		return gopter.NewGenResult(c, gopter.NoShrinker)
	}
}

// +build property_test

package sched

import (
	"reflect"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/prop"
	"github.com/luci/go-render/render"
	log "github.com/sirupsen/logrus"
)

func Test_ConstraintRenderParse(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 1000
	properties := gopter.NewProperties(parameters)

	properties.Property("Render and Parse Constraint", prop.ForAll(
		func(c Constraint) bool {
			parsed, err := ParseConstraint(strings.Split(c.String(), ":"))
			if err != nil {
				log.Info("Unexpected Error Occurred when Parsing Constraint ", err)
				return false
			}
			if !reflect.DeepEqual(c, parsed) {
				log.Info("Mismatch: ", render.Render(c), " vs ", render.Render(parsed))
				return false
			}
			return true
		},
		GopterGenConstraint(),
	))

	properties.TestingRun(t)
}

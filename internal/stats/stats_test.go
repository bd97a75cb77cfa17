package stats

import (
	"expvar"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewStatsUpdater(t *testing.T) {
	su := NewStatsUpdater("linguaroom-stats-test")
	assert.NotNil(t, su, "expected StatsUpdater to be non-nil")
	assert.NotNil(t, su.updateChan, "expected updateChan to be initialized")
	assert.NotNil(t, su.vars.Get("Uptime"), "expected Uptime metric to be initialized")

	su.RegisterMetric("TestMetric")
	metric := su.vars.Get("TestMetric")
	assert.NotNil(t, metric, "expected registered metric to be present")
	assert.IsType(t, &expvar.Int{}, metric, "expected registered metric to be an expvar.Int")
}

package trade

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"riskgrid/pkg/engine"
	"riskgrid/pkg/result"
)

func TestDefaultPricingRulesCoverage(t *testing.T) {
	rules := DefaultPricingRules()

	for _, m := range []engine.Measure{engine.MeasurePresentValue, engine.MeasurePV01, engine.MeasureParRate} {
		fn, failure := rules.Lookup(TypeTermDeposit, m)
		assert.Nil(t, failure, "term deposit should support %s", m)
		assert.NotNil(t, fn)
	}

	fn, failure := rules.Lookup(TypeFxForward, engine.MeasurePresentValue)
	assert.Nil(t, failure)
	assert.NotNil(t, fn)
}

func TestDefaultPricingRulesUnsupported(t *testing.T) {
	rules := DefaultPricingRules()

	_, failure := rules.Lookup(TypeFxForward, engine.MeasurePV01)
	assert.NotNil(t, failure)
	assert.Equal(t, result.UnsupportedMeasure, failure.Reason)

	_, failure = rules.Lookup("Swaption", engine.MeasurePresentValue)
	assert.NotNil(t, failure)
	assert.Equal(t, result.UnsupportedMeasure, failure.Reason)
}

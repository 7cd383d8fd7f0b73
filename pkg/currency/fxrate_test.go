package currency

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewFxRateValidation(t *testing.T) {
	_, err := NewFxRate(NewPair(EUR, USD), 0)
	assert.Error(t, err)

	_, err = NewFxRate(NewPair(EUR, USD), -1.1)
	assert.Error(t, err)

	_, err = NewFxRate(NewPair(USD, USD), 1.2)
	assert.Error(t, err)

	r, err := NewFxRate(NewPair(USD, USD), 1)
	assert.NoError(t, err)
	assert.Equal(t, 1.0, r.Rate)
}

func TestRateForInvertsDirection(t *testing.T) {
	r, err := NewFxRate(NewPair(EUR, USD), 1.25)
	assert.NoError(t, err)

	fwd, err := r.RateFor(EUR, USD)
	assert.NoError(t, err)
	assert.Equal(t, 1.25, fwd)

	inv, err := r.RateFor(USD, EUR)
	assert.NoError(t, err)
	assert.InDelta(t, 0.8, inv, 1e-12)

	_, err = r.RateFor(EUR, JPY)
	assert.Error(t, err)
}

func TestInverseIsReciprocal(t *testing.T) {
	r, _ := NewFxRate(NewPair(GBP, USD), 1.6)
	inv := r.Inverse()
	assert.Equal(t, NewPair(USD, GBP), inv.Pair)
	assert.InDelta(t, 1/1.6, inv.Rate, 1e-12)
	assert.InDelta(t, r.Rate, inv.Inverse().Rate, 1e-12)
}

func TestCrossTriangulation(t *testing.T) {
	// rate(GBP,EUR) must equal rate(GBP,USD) * rate(USD,EUR).
	gbpUsd, _ := NewFxRate(NewPair(GBP, USD), 1.6)
	eurUsd, _ := NewFxRate(NewPair(EUR, USD), 1.25)

	cross, err := Cross(gbpUsd, eurUsd, USD)
	assert.NoError(t, err)
	assert.Equal(t, NewPair(GBP, EUR), cross.Pair)
	assert.InDelta(t, 1.6/1.25, cross.Rate, 1e-12)

	// The reverse orientation is the reciprocal.
	reverse, err := Cross(eurUsd, gbpUsd, USD)
	assert.NoError(t, err)
	assert.Equal(t, NewPair(EUR, GBP), reverse.Pair)
	assert.InDelta(t, 1/cross.Rate, reverse.Rate, 1e-12)
}

func TestCrossRejectsBadInput(t *testing.T) {
	gbpUsd, _ := NewFxRate(NewPair(GBP, USD), 1.6)
	eurUsd, _ := NewFxRate(NewPair(EUR, USD), 1.25)

	_, err := Cross(gbpUsd, eurUsd, JPY)
	assert.Error(t, err)

	// Same non-shared currency on both sides is an identity, not a cross.
	gbpUsd2, _ := NewFxRate(NewPair(GBP, USD), 1.61)
	_, err = Cross(gbpUsd, gbpUsd2, USD)
	assert.Error(t, err)
}

func TestAmountArithmetic(t *testing.T) {
	a := NewAmount(USD, 100)
	b := NewAmount(USD, 25)

	sum, err := a.Plus(b)
	assert.NoError(t, err)
	assert.Equal(t, 125.0, sum.Value)

	_, err = a.Plus(NewAmount(EUR, 1))
	assert.Error(t, err)

	assert.Equal(t, -100.0, a.Negated().Value)
	assert.Equal(t, 250.0, a.MultipliedBy(2.5).Value)
}

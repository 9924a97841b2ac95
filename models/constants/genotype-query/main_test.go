package genotypeQuery

import (
	"testing"

	"varsearch/api/models/constants"

	"github.com/stretchr/testify/assert"
)

func TestPredicateAcceptance(t *testing.T) {
	cases := []struct {
		symbol   constants.GenotypeMatch
		accepted []int
		rejected []int
	}{
		{REF_REF, []int{0}, []int{-1, 1, 2}},
		{REF_ALT, []int{1}, []int{-1, 0, 2}},
		{ALT_ALT, []int{2}, []int{-1, 0, 1}},
		{HAS_ALT, []int{1, 2}, []int{-1, 0}},
		{HAS_REF, []int{0, 1}, []int{-1, 2}},
		{NOT_MISSING, []int{0, 1, 2}, []int{-1}},
		{MISSING, []int{-1}, []int{0, 1, 2}},
	}

	for _, c := range cases {
		predicate, err := PredicateFor(c.symbol)
		assert.NoError(t, err)

		for _, numAlt := range c.accepted {
			assert.True(t, predicate.Accepts(numAlt), "%s should accept %d", c.symbol, numAlt)
		}
		for _, numAlt := range c.rejected {
			assert.False(t, predicate.Accepts(numAlt), "%s should reject %d", c.symbol, numAlt)
		}
	}
}

func TestPredicateForUnknownSymbol(t *testing.T) {
	_, err := PredicateFor(constants.GenotypeMatch("het_or_whatever"))
	assert.Error(t, err)

	_, err = PredicateFor(UNCALLED)
	assert.Error(t, err)
}

func TestCastToGenotypeMatch(t *testing.T) {
	symbol, err := CastToGenotypeMatch("REF_ALT")
	assert.NoError(t, err)
	assert.Equal(t, REF_ALT, symbol)

	symbol, err = CastToGenotypeMatch("")
	assert.NoError(t, err)
	assert.Equal(t, UNCALLED, symbol)

	_, err = CastToGenotypeMatch("homozygous")
	assert.Error(t, err)
}

package genotypeQuery

import (
	"errors"
	"strings"

	"varsearch/api/models/constants"
)

const (
	UNCALLED constants.GenotypeMatch = ""

	REF_REF constants.GenotypeMatch = "ref_ref"
	REF_ALT constants.GenotypeMatch = "ref_alt"
	ALT_ALT constants.GenotypeMatch = "alt_alt"

	HAS_ALT constants.GenotypeMatch = "has_alt"
	HAS_REF constants.GenotypeMatch = "has_ref"

	NOT_MISSING constants.GenotypeMatch = "not_missing"
	MISSING     constants.GenotypeMatch = "missing"
)

// AltCountPredicate is the numeric alt-allele-count constraint a genotype
// match symbol translates to. Exactly one of the three forms is set.
type AltCountPredicate struct {
	Exact *int
	In    []int
	Gte   *int
}

func intPtr(i int) *int { return &i }

var altCountPredicates = map[constants.GenotypeMatch]AltCountPredicate{
	REF_REF: {Exact: intPtr(0)},
	REF_ALT: {Exact: intPtr(1)},
	ALT_ALT: {Exact: intPtr(2)},

	HAS_ALT: {Gte: intPtr(1)},
	HAS_REF: {In: []int{0, 1}},

	NOT_MISSING: {Gte: intPtr(0)},
	MISSING:     {Exact: intPtr(-1)},
}

func CastToGenotypeMatch(text string) (constants.GenotypeMatch, error) {
	switch strings.ToLower(text) {
	case "":
		return UNCALLED, nil
	case "ref_ref":
		return REF_REF, nil
	case "ref_alt":
		return REF_ALT, nil
	case "alt_alt":
		return ALT_ALT, nil
	case "has_alt":
		return HAS_ALT, nil
	case "has_ref":
		return HAS_REF, nil
	case "not_missing":
		return NOT_MISSING, nil
	case "missing":
		return MISSING, nil
	default:
		return UNCALLED, errors.New("unable to parse genotype match symbol")
	}
}

// PredicateFor returns the alt-count constraint for a genotype match symbol.
func PredicateFor(symbol constants.GenotypeMatch) (AltCountPredicate, error) {
	predicate, found := altCountPredicates[symbol]
	if !found {
		return AltCountPredicate{}, errors.New("no alt-count predicate for genotype match symbol: " + string(symbol))
	}
	return predicate, nil
}

// Accepts reports whether the given alt-allele count satisfies the predicate.
func (p AltCountPredicate) Accepts(numAlt int) bool {
	if p.Exact != nil {
		return numAlt == *p.Exact
	}
	if p.Gte != nil {
		return numAlt >= *p.Gte
	}
	for _, allowed := range p.In {
		if numAlt == allowed {
			return true
		}
	}
	return false
}

package elasticsearch

import (
	"encoding/json"
	"strings"
	"testing"

	"varsearch/api/models/constants"
	"varsearch/api/models/schemas"

	"github.com/stretchr/testify/assert"
)

func flattenedScope(sampleIds ...string) *SearchScope {
	scope := &SearchScope{
		Index:       "test_index",
		IsNested:    false,
		IndexFields: map[string]bool{},
	}
	for _, sampleId := range sampleIds {
		scope.Pairs = append(scope.Pairs, IndividualSample{IndividualId: sampleId, SampleId: sampleId})
		scope.ConsideredSampleIds = append(scope.ConsideredSampleIds, sampleId)
	}
	return scope
}

func nestedScope(sampleIds ...string) *SearchScope {
	scope := flattenedScope(sampleIds...)
	scope.IsNested = true
	return scope
}

// renders the body to JSON and back so assertions see the same shapes the
// engine would
func renderBody(t *testing.T, criteria *SearchCriteria, scope *SearchScope) map[string]interface{} {
	body, err := BuildVariantSearchBody(criteria, scope)
	assert.NoError(t, err)

	payload, err := json.Marshal(body)
	assert.NoError(t, err)

	var rendered map[string]interface{}
	assert.NoError(t, json.Unmarshal(payload, &rendered))
	return rendered
}

func filterClauses(t *testing.T, rendered map[string]interface{}) []interface{} {
	boolQuery := rendered["query"].(map[string]interface{})["bool"].(map[string]interface{})
	clauses, ok := boolQuery["filter"].([]interface{})
	assert.True(t, ok)
	return clauses
}

func renderedJson(t *testing.T, rendered map[string]interface{}) string {
	payload, err := json.Marshal(rendered)
	assert.NoError(t, err)
	return string(payload)
}

func TestBodyRequestsLimitPlusOneHits(t *testing.T) {
	criteria := &SearchCriteria{MaxResults: 5000}
	rendered := renderBody(t, criteria, flattenedScope())

	assert.Equal(t, float64(5001), rendered["size"])
}

func TestGenotypeFilterFlattened(t *testing.T) {
	criteria := &SearchCriteria{
		GenotypeFilter: schemas.GenotypeFilter{
			"NA12878": constants.GenotypeMatch("ref_alt"),
			"NA12891": constants.GenotypeMatch("has_alt"),
		},
		MaxResults: 100,
	}
	rendered := renderBody(t, criteria, flattenedScope("NA12878", "NA12891"))
	renderedText := renderedJson(t, rendered)

	// exact alt count renders a term, gte renders a range, on encoded
	// per-sample fields
	assert.Contains(t, renderedText, `"term":{"NA12878_num_alt":1}`)
	assert.Contains(t, renderedText, `"NA12891_num_alt":{"gte":1}`)
}

func TestGenotypeFilterNestedUsesHasChild(t *testing.T) {
	criteria := &SearchCriteria{
		GenotypeFilter: schemas.GenotypeFilter{
			"NA12878": constants.GenotypeMatch("ref_ref"),
		},
		MaxResults: 100,
	}
	rendered := renderBody(t, criteria, nestedScope("NA12878"))
	renderedText := renderedJson(t, rendered)

	assert.Contains(t, renderedText, `"has_child"`)
	assert.Contains(t, renderedText, `"type":"genotype"`)
	assert.Contains(t, renderedText, `"sample_id":"NA12878"`)
	assert.Contains(t, renderedText, `"term":{"num_alt":0}`)
	assert.Contains(t, renderedText, `"inner_hits"`)
}

func TestNestedTrioGenotypeFilterBuildsOneHasChild(t *testing.T) {
	criteria := &SearchCriteria{
		GenotypeFilter: schemas.GenotypeFilter{
			"NA12878": constants.GenotypeMatch("ref_alt"),
			"NA12891": constants.GenotypeMatch("alt_alt"),
		},
		MaxResults: 100,
	}
	rendered := renderBody(t, criteria, nestedScope("NA12878", "NA12891", "NA12892"))
	renderedText := renderedJson(t, rendered)

	// the engine rejects sibling inner_hits blocks under the same child
	// type, so the per-sample clauses must OR inside a single has_child
	assert.Equal(t, 1, strings.Count(renderedText, `"has_child"`))
	assert.Equal(t, 1, strings.Count(renderedText, `"inner_hits"`))
	assert.Contains(t, renderedText, `"min_children":3`)

	// inner hits cover the unconstrained family member too
	assert.Contains(t, renderedText, `"sample_id":"NA12892"`)
	assert.Contains(t, renderedText, `"term":{"num_alt":1}`)
	assert.Contains(t, renderedText, `"term":{"num_alt":2}`)
}

func TestNestedScopeRequiresEveryConsideredSample(t *testing.T) {
	criteria := &SearchCriteria{
		QualityFilter: &schemas.QualityFilter{MinGQ: 20},
		RequireAlt:    true,
		MaxResults:    100,
	}
	rendered := renderBody(t, criteria, nestedScope("NA12878", "NA12891"))
	renderedText := renderedJson(t, rendered)

	// every considered sample needs a qualifying child document
	assert.Contains(t, renderedText, `"min_children":2`)
	assert.Equal(t, 1, strings.Count(renderedText, `"inner_hits"`))

	// the at-least-one-alt child query carries the quality thresholds too
	assert.Equal(t, 2, strings.Count(renderedText, `"gq":{"gte":20}`))
	assert.Contains(t, renderedText, `"num_alt":{"gte":1}`)
}

func TestHasRefRendersInClause(t *testing.T) {
	criteria := &SearchCriteria{
		GenotypeFilter: schemas.GenotypeFilter{
			"NA12878": constants.GenotypeMatch("has_ref"),
		},
		MaxResults: 100,
	}
	rendered := renderBody(t, criteria, flattenedScope("NA12878"))
	renderedText := renderedJson(t, rendered)

	// {0, 1} renders as a should-of-terms with minimum_should_match 1
	assert.Contains(t, renderedText, `"term":{"NA12878_num_alt":0}`)
	assert.Contains(t, renderedText, `"term":{"NA12878_num_alt":1}`)
	assert.Contains(t, renderedText, `"minimum_should_match":1`)
}

func TestAlleleBalanceBypassesNonHets(t *testing.T) {
	criteria := &SearchCriteria{
		QualityFilter: &schemas.QualityFilter{MinAB: 25},
		MaxResults:    100,
	}
	rendered := renderBody(t, criteria, flattenedScope("NA12878"))
	renderedText := renderedJson(t, rendered)

	// the AB threshold only conditions hets: must_not(num_alt = 1) OR ab >= 0.25
	assert.Contains(t, renderedText, `"must_not":[{"term":{"NA12878_num_alt":1}}]`)
	assert.Contains(t, renderedText, `"NA12878_ab":{"gte":0.25}`)
}

func TestMinGQAppliesPerSample(t *testing.T) {
	criteria := &SearchCriteria{
		QualityFilter: &schemas.QualityFilter{MinGQ: 20},
		MaxResults:    100,
	}
	rendered := renderBody(t, criteria, flattenedScope("NA12878", "NA12891"))
	renderedText := renderedJson(t, rendered)

	assert.Contains(t, renderedText, `"NA12878_gq":{"gte":20}`)
	assert.Contains(t, renderedText, `"NA12891_gq":{"gte":20}`)
}

func TestQualityIgnoredWithoutSampleScope(t *testing.T) {
	criteria := &SearchCriteria{
		QualityFilter: &schemas.QualityFilter{MinAB: 25, MinGQ: 20},
		MaxResults:    100,
	}
	rendered := renderBody(t, criteria, flattenedScope())
	renderedText := renderedJson(t, rendered)

	assert.NotContains(t, renderedText, `"gte":0.25`)
	assert.NotContains(t, renderedText, `"gte":20`)
}

func TestVcfFilterExcludesFailingVariants(t *testing.T) {
	criteria := &SearchCriteria{
		QualityFilter: &schemas.QualityFilter{VcfFilter: "pass"},
		MaxResults:    100,
	}
	rendered := renderBody(t, criteria, flattenedScope())
	renderedText := renderedJson(t, rendered)

	assert.Contains(t, renderedText, `"must_not":[{"exists":{"field":"filters"}}]`)
}

func TestRequireAltInScope(t *testing.T) {
	criteria := &SearchCriteria{RequireAlt: true, MaxResults: 100}
	rendered := renderBody(t, criteria, flattenedScope("NA12878", "NA12891"))
	renderedText := renderedJson(t, rendered)

	assert.Contains(t, renderedText, `"NA12878_num_alt":{"gte":1}`)
	assert.Contains(t, renderedText, `"NA12891_num_alt":{"gte":1}`)
	assert.Contains(t, renderedText, `"minimum_should_match":1`)
}

func TestClinvarExpansionOrsWithVepTerms(t *testing.T) {
	criteria := &SearchCriteria{
		VariantFilter: &schemas.VariantFilter{
			SOAnnotations: []string{"missense_variant", "pathogenic"},
		},
		MaxResults: 100,
	}
	rendered := renderBody(t, criteria, flattenedScope())
	renderedText := renderedJson(t, rendered)

	assert.Contains(t, renderedText, `"transcriptConsequenceTerms":["missense_variant"]`)
	assert.Contains(t, renderedText, `"clinvar_clinical_significance":["Pathogenic","Pathogenic/Likely_pathogenic"]`)
}

func TestHgmdTermsRequireStaff(t *testing.T) {
	criteria := &SearchCriteria{
		VariantFilter: &schemas.VariantFilter{
			SOAnnotations: []string{"disease_causing"},
		},
		IsStaff:    true,
		MaxResults: 100,
	}
	rendered := renderBody(t, criteria, flattenedScope())
	renderedText := renderedJson(t, rendered)
	assert.Contains(t, renderedText, `"hgmd_class":["DM"]`)

	// without the staff flag the same term is treated as a plain VEP term
	criteria.IsStaff = false
	rendered = renderBody(t, criteria, flattenedScope())
	renderedText = renderedJson(t, rendered)
	assert.NotContains(t, renderedText, `"hgmd_class"`)
	assert.Contains(t, renderedText, `"transcriptConsequenceTerms":["disease_causing"]`)
}

func TestIntergenicVariantMatchesMissingConsequences(t *testing.T) {
	criteria := &SearchCriteria{
		VariantFilter: &schemas.VariantFilter{
			SOAnnotations: []string{"intergenic_variant"},
		},
		MaxResults: 100,
	}
	rendered := renderBody(t, criteria, flattenedScope())
	renderedText := renderedJson(t, rendered)

	assert.Contains(t, renderedText, `"transcriptConsequenceTerms":["intergenic_variant"]`)
	assert.Contains(t, renderedText, `"must_not":[{"exists":{"field":"transcriptConsequenceTerms"}}]`)
}

func TestGeneIncludeAndExclude(t *testing.T) {
	include := &SearchCriteria{
		VariantFilter: &schemas.VariantFilter{Genes: []string{"ENSG00000001"}},
		MaxResults:    100,
	}
	renderedText := renderedJson(t, renderBody(t, include, flattenedScope()))
	assert.Contains(t, renderedText, `"terms":{"geneIds":["ENSG00000001"]}`)
	assert.NotContains(t, renderedText, `"must_not":[{"terms"`)

	exclude := &SearchCriteria{
		VariantFilter: &schemas.VariantFilter{Genes: []string{"ENSG00000001"}, ExcludeGenes: true},
		MaxResults:    100,
	}
	renderedText = renderedJson(t, renderBody(t, exclude, flattenedScope()))
	assert.Contains(t, renderedText, `"must_not":[{"terms":{"geneIds":["ENSG00000001"]}}]`)
}

func TestRegionsRenderAsXPosRanges(t *testing.T) {
	criteria := &SearchCriteria{
		VariantFilter: &schemas.VariantFilter{
			Locations: []schemas.Region{
				{Raw: "1:100-200"},
				{XStart: 2000000050, XEnd: 2000000060},
			},
		},
		MaxResults: 100,
	}
	renderedText := renderedJson(t, renderBody(t, criteria, flattenedScope()))

	assert.Contains(t, renderedText, `"xpos":{"gte":1000000100,"lte":1000000200}`)
	assert.Contains(t, renderedText, `"xpos":{"gte":2000000050,"lte":2000000060}`)
}

func TestMalformedRegionFailsTranslation(t *testing.T) {
	criteria := &SearchCriteria{
		VariantFilter: &schemas.VariantFilter{
			Locations: []schemas.Region{{Raw: "not-a-region"}},
		},
		MaxResults: 100,
	}
	_, err := BuildVariantSearchBody(criteria, flattenedScope())
	assert.Error(t, err)
}

func TestFrequencyCeilingPassesAbsentFields(t *testing.T) {
	criteria := &SearchCriteria{
		VariantFilter: &schemas.VariantFilter{
			RefFreqs: []schemas.PopulationFrequency{{Population: "gnomad_exomes", Max: 0.01}},
		},
		MaxResults: 100,
	}
	renderedText := renderedJson(t, renderBody(t, criteria, flattenedScope()))

	// one range-or-absent clause per physical field
	assert.Contains(t, renderedText, `"gnomad_exomes_AF_POPMAX":{"lte":0.01}`)
	assert.Contains(t, renderedText, `"gnomad_exomes_AF_POPMAX_OR_GLOBAL":{"lte":0.01}`)
	assert.Contains(t, renderedText, `"must_not":[{"exists":{"field":"gnomad_exomes_AF_POPMAX"}}]`)
}

func TestUnknownPopulationIsSkipped(t *testing.T) {
	criteria := &SearchCriteria{
		VariantFilter: &schemas.VariantFilter{
			RefFreqs: []schemas.PopulationFrequency{{Population: "some_future_callset", Max: 0.01}},
		},
		MaxResults: 100,
	}
	rendered := renderBody(t, criteria, flattenedScope())

	// clause list contains nothing for the unknown slug
	assert.Len(t, filterClauses(t, rendered), 0)
}

func TestHomHemiCeilingCoversBothFields(t *testing.T) {
	criteria := &SearchCriteria{
		VariantFilter: &schemas.VariantFilter{
			RefHomHemi: []schemas.PopulationCount{{Population: "gnomad_genomes", Max: 3}},
		},
		MaxResults: 100,
	}
	renderedText := renderedJson(t, renderBody(t, criteria, flattenedScope()))

	assert.Contains(t, renderedText, `"gnomad_genomes_Hom":{"lte":3}`)
	assert.Contains(t, renderedText, `"gnomad_genomes_Hemi":{"lte":3}`)
}

func TestVariantIdFilter(t *testing.T) {
	criteria := &SearchCriteria{
		VariantIdFilter: []string{"1-100-A-T", "2-200-G-C"},
		MaxResults:      100,
	}
	renderedText := renderedJson(t, renderBody(t, criteria, flattenedScope()))

	assert.Contains(t, renderedText, `"terms":{"variantId":["1-100-A-T","2-200-G-C"]}`)
}

package schemas

import (
	"strings"
	"testing"

	"varsearch/api/models/constants"

	"github.com/stretchr/testify/assert"
)

func TestCacheKeyIsDeterministic(t *testing.T) {
	variantFilter := &VariantFilter{
		Genes:         []string{"ENSG00000001", "ENSG00000002"},
		SOAnnotations: []string{"missense_variant"},
	}
	genotypeFilter := GenotypeFilter{
		"NA12878": constants.GenotypeMatch("ref_alt"),
		"NA12891": constants.GenotypeMatch("ref_ref"),
	}
	qualityFilter := &QualityFilter{MinAB: 25, MinGQ: 20}

	first := CacheKey("proj1", "fam1", variantFilter, genotypeFilter, qualityFilter, nil, []string{"NA12878"}, false)
	second := CacheKey("proj1", "fam1", variantFilter, genotypeFilter, qualityFilter, nil, []string{"NA12878"}, false)

	assert.Equal(t, first, second)
	assert.True(t, strings.HasPrefix(first, "Variants___proj1___fam1___"))
}

func TestCacheKeyChangesWithInputs(t *testing.T) {
	base := CacheKey("proj1", "fam1", nil, nil, nil, nil, nil, false)

	otherFamily := CacheKey("proj1", "fam2", nil, nil, nil, nil, nil, false)
	assert.NotEqual(t, base, otherFamily)

	withVariantIds := CacheKey("proj1", "fam1", nil, nil, nil, []string{"1-100-A-T"}, nil, false)
	assert.NotEqual(t, base, withVariantIds)

	withAllConsequences := CacheKey("proj1", "fam1", nil, nil, nil, nil, nil, true)
	assert.NotEqual(t, base, withAllConsequences)
}

func TestRegionResolve(t *testing.T) {
	xstart, xend, err := Region{Raw: "2:50-60"}.Resolve()
	assert.NoError(t, err)
	assert.Equal(t, int64(2000000050), xstart)
	assert.Equal(t, int64(2000000060), xend)

	xstart, xend, err = Region{XStart: 1000000001, XEnd: 1000000009}.Resolve()
	assert.NoError(t, err)
	assert.Equal(t, int64(1000000001), xstart)
	assert.Equal(t, int64(1000000009), xend)

	_, _, err = Region{XStart: 500, XEnd: 400}.Resolve()
	assert.Error(t, err)
}

func TestAddGeneDeduplicates(t *testing.T) {
	filter := &VariantFilter{}
	filter.AddGene("ENSG00000001")
	filter.AddGene("ENSG00000001")
	filter.AddGene("ENSG00000002")

	assert.Equal(t, []string{"ENSG00000001", "ENSG00000002"}, filter.Genes)
}

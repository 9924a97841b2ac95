package annotationGroup

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClinvarSignificanceTerms(t *testing.T) {
	terms, err := ClinvarSignificanceTerms("pathogenic")
	assert.NoError(t, err)
	assert.ElementsMatch(t, []string{"Pathogenic", "Pathogenic/Likely_pathogenic"}, terms)

	terms, err = ClinvarSignificanceTerms("likely_benign")
	assert.NoError(t, err)
	assert.ElementsMatch(t, []string{"Likely_benign", "Benign/Likely_benign"}, terms)

	terms, err = ClinvarSignificanceTerms("vus_or_conflicting")
	assert.NoError(t, err)
	assert.Contains(t, terms, "Uncertain_significance")
	assert.Contains(t, terms, "not_provided")

	_, err = ClinvarSignificanceTerms("splice_region_variant")
	assert.Error(t, err)
}

func TestHgmdClassCodes(t *testing.T) {
	codes, err := HgmdClassCodes("disease_causing")
	assert.NoError(t, err)
	assert.Equal(t, []string{"DM"}, codes)

	codes, err = HgmdClassCodes("likely_disease_causing")
	assert.NoError(t, err)
	assert.Equal(t, []string{"DM?"}, codes)

	codes, err = HgmdClassCodes("hgmd_other")
	assert.NoError(t, err)
	assert.ElementsMatch(t, []string{"DP", "DFP", "FP", "FTV"}, codes)

	_, err = HgmdClassCodes("benign")
	assert.Error(t, err)
}

func TestGroupChildrenStaffGating(t *testing.T) {
	publicGroups := GroupChildren(false)
	assert.Contains(t, publicGroups, "clinvar")
	assert.NotContains(t, publicGroups, "hgmd")

	staffGroups := GroupChildren(true)
	assert.Contains(t, staffGroups, "clinvar")
	assert.Contains(t, staffGroups, "hgmd")
}

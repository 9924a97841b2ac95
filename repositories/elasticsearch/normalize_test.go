package elasticsearch

import (
	"testing"

	genomeBuild "varsearch/api/models/constants/genome-build"
	"varsearch/api/models/indexes"
	"varsearch/api/services/registry"

	"github.com/stretchr/testify/assert"
)

type fakeLiftover struct {
	chrom string
	pos   int64
	ok    bool
}

func (f *fakeLiftover) ToGrch37(chrom string, pos int64) (string, int64, bool) {
	return f.chrom, f.pos, f.ok
}
func (f *fakeLiftover) ToGrch38(chrom string, pos int64) (string, int64, bool) {
	return f.chrom, f.pos, f.ok
}

func grch37Project() *registry.Project {
	return &registry.Project{
		ProjectId:     "proj1",
		GenomeVersion: genomeBuild.GRCh37,
	}
}

func flattenedHit(sampleFields map[string]interface{}) map[string]interface{} {
	source := map[string]interface{}{
		"variantId": "1-100-A-T",
		"contig":    "1",
		"start":     float64(100),
		"end":       float64(100),
		"xpos":      float64(1000000100),
		"ref":       "A",
		"alt":       "T",
		"geneIds":   []interface{}{"ENSG00000001"},
		"sortedTranscriptConsequences": `[
			{"gene_id": "ENSG00000001", "gene_symbol": "TTN", "major_consequence": "missense_variant"},
			{"gene_id": "ENSG00000002", "gene_symbol": "BRCA1", "major_consequence": "intron_variant"},
			{"gene_id": "ENSG00000001", "gene_symbol": "TTN", "major_consequence": "intron_variant"}
		]`,
	}
	for field, value := range sampleFields {
		source[field] = value
	}
	return map[string]interface{}{"_source": source}
}

func TestNormalizeFlattenedGenotypes(t *testing.T) {
	scope := flattenedScope("NA12878", "NA12891")
	hit := flattenedHit(map[string]interface{}{
		"NA12878_num_alt": float64(1),
		"NA12878_ab":      0.48,
		"NA12878_gq":      float64(99),
		"NA12891_num_alt": float64(0),
	})

	variants, err := NormalizeSearchHits([]map[string]interface{}{hit}, scope,
		grch37Project(), "fam1", false, nil, nil)
	assert.NoError(t, err)
	assert.Len(t, variants, 1)

	variant := variants[0]
	assert.Equal(t, "1-100-A-T", variant.VariantId)
	assert.Equal(t, int64(1000000100), variant.XPos)
	assert.Equal(t, "snp", variant.VarType)

	het := variant.Genotypes["NA12878"]
	assert.Equal(t, 1, het.NumAlt)
	assert.Equal(t, "pass", het.Filter)
	assert.Equal(t, []string{"A", "T"}, het.Alleles)
	assert.NotNil(t, het.Ab)
	assert.InDelta(t, 0.48, *het.Ab, 0.0001)

	homRef := variant.Genotypes["NA12891"]
	assert.Equal(t, 0, homRef.NumAlt)
	assert.Equal(t, []string{"A", "A"}, homRef.Alleles)
}

func TestNormalizeAbsentSampleGetsMissingSentinel(t *testing.T) {
	scope := flattenedScope("NA12878", "NA12892")
	hit := flattenedHit(map[string]interface{}{
		"NA12878_num_alt": float64(2),
	})

	variants, err := NormalizeSearchHits([]map[string]interface{}{hit}, scope,
		grch37Project(), "", false, nil, nil)
	assert.NoError(t, err)

	missing := variants[0].Genotypes["NA12892"]
	assert.Equal(t, -1, missing.NumAlt)
	assert.Empty(t, missing.Alleles)

	homAlt := variants[0].Genotypes["NA12878"]
	assert.Equal(t, []string{"T", "T"}, homAlt.Alleles)
}

func TestNormalizeStoredMissingSentinel(t *testing.T) {
	scope := flattenedScope("NA12878")
	hit := flattenedHit(map[string]interface{}{
		"NA12878_num_alt": float64(-1),
	})

	variants, err := NormalizeSearchHits([]map[string]interface{}{hit}, scope,
		grch37Project(), "", false, nil, nil)
	assert.NoError(t, err)
	assert.Equal(t, -1, variants[0].Genotypes["NA12878"].NumAlt)
}

func TestNormalizeRejectsUnexpectedNumAlt(t *testing.T) {
	scope := flattenedScope("NA12878")
	hit := flattenedHit(map[string]interface{}{
		"NA12878_num_alt": float64(3),
	})

	_, err := NormalizeSearchHits([]map[string]interface{}{hit}, scope,
		grch37Project(), "", false, nil, nil)
	assert.Error(t, err)
}

func TestNormalizeNestedInnerHits(t *testing.T) {
	scope := nestedScope("NA12878")
	hit := flattenedHit(nil)
	hit["inner_hits"] = map[string]interface{}{
		"genotype": map[string]interface{}{
			"hits": map[string]interface{}{
				"hits": []interface{}{
					map[string]interface{}{
						"_source": map[string]interface{}{
							"sample_id": "NA12878",
							"num_alt":   float64(1),
							"gq":        float64(60),
						},
					},
				},
			},
		},
	}

	variants, err := NormalizeSearchHits([]map[string]interface{}{hit}, scope,
		grch37Project(), "fam1", false, nil, nil)
	assert.NoError(t, err)

	genotype := variants[0].Genotypes["NA12878"]
	assert.Equal(t, 1, genotype.NumAlt)
	assert.NotNil(t, genotype.Gq)
	assert.Equal(t, float64(60), *genotype.Gq)
}

func TestWorstVepIndexPerGene(t *testing.T) {
	scope := flattenedScope()
	hit := flattenedHit(nil)
	hit["_source"].(map[string]interface{})["geneIds"] = []interface{}{
		"ENSG00000001", "ENSG00000002", "ENSG00000003",
	}

	variants, err := NormalizeSearchHits([]map[string]interface{}{hit}, scope,
		grch37Project(), "", false, nil, nil)
	assert.NoError(t, err)

	worst := variants[0].Annotation.WorstVepIndexPerGene
	// entries are pre-sorted worst first, so the first occurrence wins
	assert.Equal(t, 0, *worst["ENSG00000001"])
	assert.Equal(t, 1, *worst["ENSG00000002"])

	// hit-level genes without a consequence entry stay present, unmatched
	assert.Contains(t, worst, "ENSG00000003")
	assert.Nil(t, worst["ENSG00000003"])
}

func TestVariantFilterStatusReachesEveryGenotype(t *testing.T) {
	scope := flattenedScope("NA12878", "NA12892")
	hit := flattenedHit(map[string]interface{}{
		"NA12878_num_alt": float64(1),
		"filters":         []interface{}{"VQSRTrancheSNP99.90to99.95", "lowDP"},
	})

	variants, err := NormalizeSearchHits([]map[string]interface{}{hit}, scope,
		grch37Project(), "fam1", false, nil, nil)
	assert.NoError(t, err)

	variant := variants[0]
	assert.Equal(t, "VQSRTrancheSNP99.90to99.95,lowDP", variant.Genotypes["NA12878"].Filter)

	// the status also lands on samples absent from the hit
	assert.Equal(t, "VQSRTrancheSNP99.90to99.95,lowDP", variant.Genotypes["NA12892"].Filter)
}

func TestPerBuildCoords(t *testing.T) {
	scope := flattenedScope()
	hit := flattenedHit(nil)

	variants, err := NormalizeSearchHits([]map[string]interface{}{hit}, scope,
		grch37Project(), "", false, &fakeLiftover{chrom: "1", pos: 200, ok: true}, nil)
	assert.NoError(t, err)

	extras := variants[0].Extras
	// native build gets the variant id verbatim, the other gets lifted coords
	assert.NotNil(t, extras.Grch37Coords)
	assert.Equal(t, "1-100-A-T", *extras.Grch37Coords)
	assert.NotNil(t, extras.Grch38Coords)
	assert.Equal(t, "1-200-A-T", *extras.Grch38Coords)
}

func TestPerBuildCoordsWithoutMapping(t *testing.T) {
	scope := flattenedScope()
	hit := flattenedHit(nil)

	variants, err := NormalizeSearchHits([]map[string]interface{}{hit}, scope,
		grch37Project(), "", false, &fakeLiftover{ok: false}, nil)
	assert.NoError(t, err)

	extras := variants[0].Extras
	assert.NotNil(t, extras.Grch37Coords)
	assert.Nil(t, extras.Grch38Coords)
}

func TestHgmdFieldsAreStaffOnly(t *testing.T) {
	scope := flattenedScope()
	hit := flattenedHit(map[string]interface{}{
		"hgmd_class":     "DM",
		"hgmd_accession": "CM123456",
	})

	asStaff, err := NormalizeSearchHits([]map[string]interface{}{hit}, scope,
		grch37Project(), "", true, nil, nil)
	assert.NoError(t, err)
	assert.NotNil(t, asStaff[0].Extras.HgmdClass)
	assert.Equal(t, "DM", *asStaff[0].Extras.HgmdClass)
	assert.NotNil(t, asStaff[0].Extras.HgmdAccession)

	asPublic, err := NormalizeSearchHits([]map[string]interface{}{hit}, scope,
		grch37Project(), "", false, nil, nil)
	assert.NoError(t, err)
	assert.Nil(t, asPublic[0].Extras.HgmdClass)
	assert.Nil(t, asPublic[0].Extras.HgmdAccession)
}

func TestFreqsDistinguishAbsentFromZero(t *testing.T) {
	scope := flattenedScope()
	scope.IndexFields = map[string]bool{"topmed_AF": true}

	// the field exists in the index but not on this hit: 0.0, not nil
	hit := flattenedHit(nil)

	variants, err := NormalizeSearchHits([]map[string]interface{}{hit}, scope,
		grch37Project(), "", false, nil, nil)
	assert.NoError(t, err)

	freqs := variants[0].Freqs
	assert.NotNil(t, freqs["topmed"])
	assert.Equal(t, 0.0, *freqs["topmed"])

	// populations the index never had stay nil
	assert.Nil(t, freqs["exac_v3"])
}

func TestOrigAltAllelesKeepLastToken(t *testing.T) {
	scope := flattenedScope()
	hit := flattenedHit(map[string]interface{}{
		"originalAltAlleles": []interface{}{"1-100-A-TTG", "1-100-A-C"},
	})

	variants, err := NormalizeSearchHits([]map[string]interface{}{hit}, scope,
		grch37Project(), "", false, nil, nil)
	assert.NoError(t, err)

	assert.Equal(t, []string{"TTG", "C"}, variants[0].Extras.OrigAltAlleles)
}

func TestGeneNamesComeFromVepAnnotation(t *testing.T) {
	scope := flattenedScope()
	hit := flattenedHit(nil)

	variants, err := NormalizeSearchHits([]map[string]interface{}{hit}, scope,
		grch37Project(), "", false, nil, nil)
	assert.NoError(t, err)

	assert.Equal(t, "TTN", variants[0].Extras.GeneNames["ENSG00000001"])
	assert.Equal(t, "BRCA1", variants[0].Extras.GeneNames["ENSG00000002"])
}

type fakeGeneProvider struct {
	summaries map[string]indexes.GeneSummary
	fail      bool
}

func (f *fakeGeneProvider) GetGeneSummaries(geneIds []string) (map[string]indexes.GeneSummary, error) {
	if f.fail {
		return nil, assert.AnError
	}
	return f.summaries, nil
}

func TestGeneSummaryDecoration(t *testing.T) {
	scope := flattenedScope()
	hit := flattenedHit(nil)

	provider := &fakeGeneProvider{summaries: map[string]indexes.GeneSummary{
		"ENSG00000001": {GeneId: "ENSG00000001", Symbol: "TTN"},
	}}

	variants, err := NormalizeSearchHits([]map[string]interface{}{hit}, scope,
		grch37Project(), "", false, nil, provider)
	assert.NoError(t, err)
	assert.Equal(t, "TTN", variants[0].Extras.Genes["ENSG00000001"].Symbol)
}

func TestGeneSummaryFailureIsTolerated(t *testing.T) {
	scope := flattenedScope()
	hit := flattenedHit(nil)

	variants, err := NormalizeSearchHits([]map[string]interface{}{hit}, scope,
		grch37Project(), "", false, nil, &fakeGeneProvider{fail: true})
	assert.NoError(t, err)
	assert.Len(t, variants, 1)
}

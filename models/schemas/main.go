package schemas

import (
	"encoding/json"
	"fmt"

	"varsearch/api/models/constants"
	"varsearch/api/models/constants/chromosome"
)

/*
	Plain data-only filter objects constructed per request from user
	input; immutable for the duration of a search.
*/

// Region is one genomic location constraint, given either as a raw
// "chrom:start-end" string or as an already-resolved xpos pair.
type Region struct {
	Raw    string `json:"raw,omitempty"`
	XStart int64  `json:"xstart,omitempty"`
	XEnd   int64  `json:"xend,omitempty"`
}

// Resolve normalizes the region to an xpos pair, parsing the raw string
// form when present.
func (r Region) Resolve() (int64, int64, error) {
	if r.Raw != "" {
		return chromosome.ParseRegion(r.Raw)
	}
	if r.XStart == 0 || r.XEnd == 0 || r.XEnd < r.XStart {
		return 0, 0, fmt.Errorf("invalid region bounds: [%d, %d]", r.XStart, r.XEnd)
	}
	return r.XStart, r.XEnd, nil
}

type PopulationFrequency struct {
	Population string  `json:"population"`
	Max        float64 `json:"max"`
}

type PopulationCount struct {
	Population string `json:"population"`
	Max        int    `json:"max"`
}

// VariantFilter is the user-specified variant-level filter criteria.
// The gene list is either strictly inclusive or strictly exclusive,
// toggled by ExcludeGenes, never both.
type VariantFilter struct {
	Locations     []Region              `json:"locations,omitempty"`
	SOAnnotations []string              `json:"so_annotations,omitempty"`
	Genes         []string              `json:"genes,omitempty"`
	ExcludeGenes  bool                  `json:"exclude_genes,omitempty"`
	RefFreqs      []PopulationFrequency `json:"ref_freqs,omitempty"`
	RefACs        []PopulationCount     `json:"ref_acs,omitempty"`
	RefHomHemi    []PopulationCount     `json:"ref_hom_hemi,omitempty"`
}

// AddGene appends a gene to the inclusive gene list.
func (f *VariantFilter) AddGene(geneId string) {
	for _, existing := range f.Genes {
		if existing == geneId {
			return
		}
	}
	f.Genes = append(f.Genes, geneId)
}

// GenotypeFilter maps an individual id to a genotype constraint symbol
// (ref_ref, ref_alt, alt_alt, has_alt, has_ref, not_missing, missing).
type GenotypeFilter map[string]constants.GenotypeMatch

// QualityFilter holds per-genotype quality thresholds. MinAB is expressed
// 0-100 and normalized to a fraction at translation time. VcfFilter, when
// set, excludes entries that failed the variant-level quality filter flag.
type QualityFilter struct {
	MinAB     float64 `json:"min_ab,omitempty"`
	MinGQ     int     `json:"min_gq,omitempty"`
	VcfFilter string  `json:"vcf_filter,omitempty"`
}

// cacheKeyPayload fixes the field order of the fingerprint serialization;
// encoding/json emits struct fields in declaration order, which makes the
// key deterministic for identical inputs.
type cacheKeyPayload struct {
	VariantFilter          *VariantFilter `json:"variant_filter"`
	GenotypeFilter         GenotypeFilter `json:"genotype_filter"`
	QualityFilter          *QualityFilter `json:"quality_filter"`
	VariantIdFilter        []string       `json:"variant_id_filter"`
	IndivsToConsider       []string       `json:"indivs_to_consider"`
	IncludeAllConsequences bool           `json:"include_all_consequences"`
}

// CacheKey builds the deterministic fingerprint under which a search's
// normalized results are cached. Liftover outcomes are intentionally not
// part of the fingerprint.
func CacheKey(projectId string, familyId string,
	variantFilter *VariantFilter, genotypeFilter GenotypeFilter, qualityFilter *QualityFilter,
	variantIdFilter []string, indivsToConsider []string, includeAllConsequences bool) string {

	payload, _ := json.Marshal(cacheKeyPayload{
		VariantFilter:          variantFilter,
		GenotypeFilter:         genotypeFilter,
		QualityFilter:          qualityFilter,
		VariantIdFilter:        variantIdFilter,
		IndivsToConsider:       indivsToConsider,
		IncludeAllConsequences: includeAllConsequences,
	})

	return fmt.Sprintf("Variants___%s___%s___%s", projectId, familyId, string(payload))
}

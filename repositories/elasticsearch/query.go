package elasticsearch

import (
	"fmt"

	annotationGroup "varsearch/api/models/constants/annotation-group"
	genotypeQuery "varsearch/api/models/constants/genotype-query"
	"varsearch/api/models/constants/population"
	"varsearch/api/models/schemas"
	"varsearch/api/utils"
)

// SearchCriteria is everything the translator needs to render one search
// body: the filter objects plus the already-resolved sample scope.
type SearchCriteria struct {
	VariantFilter   *schemas.VariantFilter
	GenotypeFilter  schemas.GenotypeFilter
	QualityFilter   *schemas.QualityFilter
	VariantIdFilter []string
	RequireAlt      bool
	IsStaff         bool
	MaxResults      int
}

// BuildVariantSearchBody translates filter criteria into an Elasticsearch
// request body. All clauses land in the bool filter context; scoring is
// irrelevant and engine order is preserved for the caller.
func BuildVariantSearchBody(criteria *SearchCriteria, scope *SearchScope) (map[string]interface{}, error) {
	filter := []map[string]interface{}{}

	if len(criteria.VariantIdFilter) > 0 {
		filter = append(filter, map[string]interface{}{
			"terms": map[string]interface{}{"variantId": criteria.VariantIdFilter},
		})
	}

	quality := criteria.QualityFilter
	if quality != nil && quality.VcfFilter != "" {
		// the pipeline stores nothing for passing variants
		filter = append(filter, map[string]interface{}{
			"bool": map[string]interface{}{
				"must_not": []map[string]interface{}{
					{"exists": map[string]interface{}{"field": "filters"}},
				},
			},
		})
	}

	genotypeClauses, err := buildGenotypeClauses(criteria, scope)
	if err != nil {
		return nil, err
	}
	filter = append(filter, genotypeClauses...)

	if criteria.VariantFilter != nil {
		variantClauses, err := buildVariantFilterClauses(criteria.VariantFilter, criteria.IsStaff)
		if err != nil {
			return nil, err
		}
		filter = append(filter, variantClauses...)
	}

	return map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"filter": filter,
			},
		},
		"size": criteria.MaxResults + 1,
	}, nil
}

func buildGenotypeClauses(criteria *SearchCriteria, scope *SearchScope) ([]map[string]interface{}, error) {
	predicates := map[string]genotypeQuery.AltCountPredicate{}
	for individualId, symbol := range criteria.GenotypeFilter {
		if symbol == genotypeQuery.UNCALLED {
			continue
		}
		predicate, err := genotypeQuery.PredicateFor(symbol)
		if err != nil {
			return nil, err
		}
		predicates[scope.SampleId(individualId)] = predicate
	}

	// per-genotype quality only applies when the search is scoped to a
	// known set of samples
	quality := criteria.QualityFilter
	if quality != nil && len(predicates) == 0 && len(scope.ConsideredSampleIds) == 0 {
		quality = nil
	}

	return scope.strategy().GenotypeClauses(scope, predicates, quality, criteria.RequireAlt), nil
}

func buildVariantFilterClauses(variantFilter *schemas.VariantFilter, isStaff bool) ([]map[string]interface{}, error) {
	clauses := []map[string]interface{}{}

	if len(variantFilter.SOAnnotations) > 0 {
		annotationClause, err := buildAnnotationClause(variantFilter.SOAnnotations, isStaff)
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, annotationClause)
	}

	if len(variantFilter.Genes) > 0 {
		geneTerms := map[string]interface{}{
			"terms": map[string]interface{}{"geneIds": variantFilter.Genes},
		}
		if variantFilter.ExcludeGenes {
			clauses = append(clauses, map[string]interface{}{
				"bool": map[string]interface{}{
					"must_not": []map[string]interface{}{geneTerms},
				},
			})
		} else {
			clauses = append(clauses, geneTerms)
		}
	}

	if len(variantFilter.Locations) > 0 {
		regionRanges := []map[string]interface{}{}
		for _, region := range variantFilter.Locations {
			xstart, xend, err := region.Resolve()
			if err != nil {
				return nil, err
			}
			regionRanges = append(regionRanges, map[string]interface{}{
				"range": map[string]interface{}{
					"xpos": map[string]interface{}{"gte": xstart, "lte": xend},
				},
			})
		}
		clauses = append(clauses, map[string]interface{}{
			"bool": map[string]interface{}{
				"should":               regionRanges,
				"minimum_should_match": 1,
			},
		})
	}

	for _, refFreq := range variantFilter.RefFreqs {
		fields, known := population.FrequencyFields[refFreq.Population]
		if !known {
			fmt.Printf("Skipping unexpected population frequency filter: %s\n", refFreq.Population)
			continue
		}
		for _, field := range fields {
			clauses = append(clauses, rangeOrAbsentClause(field, refFreq.Max))
		}
	}
	for _, refAc := range variantFilter.RefACs {
		fields, known := population.AlleleCountFields[refAc.Population]
		if !known {
			fmt.Printf("Skipping unexpected population allele-count filter: %s\n", refAc.Population)
			continue
		}
		for _, field := range fields {
			clauses = append(clauses, rangeOrAbsentClause(field, refAc.Max))
		}
	}
	for _, refHomHemi := range variantFilter.RefHomHemi {
		homFields, homKnown := population.HomCountFields[refHomHemi.Population]
		hemiFields, hemiKnown := population.HemiCountFields[refHomHemi.Population]
		if !homKnown && !hemiKnown {
			fmt.Printf("Skipping unexpected population hom/hemi filter: %s\n", refHomHemi.Population)
			continue
		}
		for _, field := range homFields {
			clauses = append(clauses, rangeOrAbsentClause(field, refHomHemi.Max))
		}
		for _, field := range hemiFields {
			clauses = append(clauses, rangeOrAbsentClause(field, refHomHemi.Max))
		}
	}

	return clauses, nil
}

// buildAnnotationClause renders the consequence-term filter, expanding the
// synthetic clinvar/hgmd/intergenic terms onto their own fields and OR-ing
// them with the plain VEP terms.
func buildAnnotationClause(soAnnotations []string, isStaff bool) (map[string]interface{}, error) {
	groupChildren := annotationGroup.GroupChildren(isStaff)

	vepTerms := []string{}
	clinvarTerms := []string{}
	hgmdTerms := []string{}
	includeIntergenic := false

	for _, annotation := range soAnnotations {
		if utils.StringInSlice(annotation, groupChildren["clinvar"]) {
			expanded, err := annotationGroup.ClinvarSignificanceTerms(annotation)
			if err != nil {
				return nil, err
			}
			clinvarTerms = append(clinvarTerms, expanded...)
		} else if utils.StringInSlice(annotation, groupChildren["hgmd"]) {
			expanded, err := annotationGroup.HgmdClassCodes(annotation)
			if err != nil {
				return nil, err
			}
			hgmdTerms = append(hgmdTerms, expanded...)
		} else if annotation == "intergenic_variant" {
			// purely intergenic variants carry no transcript consequences
			includeIntergenic = true
			vepTerms = append(vepTerms, annotation)
		} else {
			vepTerms = append(vepTerms, annotation)
		}
	}

	should := []map[string]interface{}{}
	if len(vepTerms) > 0 {
		should = append(should, map[string]interface{}{
			"terms": map[string]interface{}{"transcriptConsequenceTerms": vepTerms},
		})
	}
	if includeIntergenic {
		should = append(should, map[string]interface{}{
			"bool": map[string]interface{}{
				"must_not": []map[string]interface{}{
					{"exists": map[string]interface{}{"field": "transcriptConsequenceTerms"}},
				},
			},
		})
	}
	if len(clinvarTerms) > 0 {
		should = append(should, map[string]interface{}{
			"terms": map[string]interface{}{"clinvar_clinical_significance": clinvarTerms},
		})
	}
	if len(hgmdTerms) > 0 {
		should = append(should, map[string]interface{}{
			"terms": map[string]interface{}{"hgmd_class": hgmdTerms},
		})
	}

	return map[string]interface{}{
		"bool": map[string]interface{}{
			"should":               should,
			"minimum_should_match": 1,
		},
	}, nil
}

// rangeOrAbsentClause passes documents whose field is at or below the
// ceiling, or that lack the field outright. Indices predating a reference
// population simply never store it.
func rangeOrAbsentClause(field string, max interface{}) map[string]interface{} {
	return map[string]interface{}{
		"bool": map[string]interface{}{
			"should": []map[string]interface{}{
				{"range": map[string]interface{}{field: map[string]interface{}{"lte": max}}},
				{"bool": map[string]interface{}{
					"must_not": []map[string]interface{}{
						{"exists": map[string]interface{}{"field": field}},
					},
				}},
			},
			"minimum_should_match": 1,
		},
	}
}

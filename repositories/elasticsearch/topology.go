package elasticsearch

import (
	"sort"
	"strings"

	genotypeQuery "varsearch/api/models/constants/genotype-query"
	"varsearch/api/models/schemas"
	"varsearch/api/utils"

	"github.com/mitchellh/mapstructure"
)

// QueryStrategy renders genotype-level query clauses and extracts
// per-sample fields from hits, for one index topology. Nested indices
// store genotypes as child documents joined through "join_field";
// flattened indices store them as "<encoded sample id>_num_alt" style
// top-level fields.
type QueryStrategy interface {
	GenotypeClauses(scope *SearchScope, predicates map[string]genotypeQuery.AltCountPredicate,
		quality *schemas.QualityFilter, requireAlt bool) []map[string]interface{}
	SampleFields(hit map[string]interface{}, sampleId string) map[string]interface{}
}

type nestedStrategy struct{}

type flattenedStrategy struct{}

// -- nested topology --------------------------------------------------------

func (s *nestedStrategy) GenotypeClauses(scope *SearchScope, predicates map[string]genotypeQuery.AltCountPredicate,
	quality *schemas.QualityFilter, requireAlt bool) []map[string]interface{} {

	clauses := []map[string]interface{}{}

	if len(predicates) > 0 {
		// one has_child over all requested samples: inner hits come back
		// for every family member, even those without a genotype constraint
		genotypeSampleIds := scope.ConsideredSampleIds
		if len(genotypeSampleIds) == 0 {
			genotypeSampleIds = sortedPredicateSampleIds(predicates)
		}

		sampleClauses := []map[string]interface{}{}
		for _, sampleId := range genotypeSampleIds {
			sampleFilter := []map[string]interface{}{
				{"term": map[string]interface{}{"sample_id": sampleId}},
			}
			sampleFilter = append(sampleFilter, nestedQualityClauses(quality)...)
			if predicate, constrained := predicates[sampleId]; constrained {
				sampleFilter = append(sampleFilter, renderAltCountClause("num_alt", predicate))
			}
			sampleClauses = append(sampleClauses, map[string]interface{}{
				"bool": map[string]interface{}{"filter": sampleFilter},
			})
		}

		clauses = append(clauses, hasChildGenotype(map[string]interface{}{
			"bool": map[string]interface{}{
				"should":               sampleClauses,
				"minimum_should_match": 1,
			},
		}, len(genotypeSampleIds), len(genotypeSampleIds)))
		return clauses
	}

	if len(scope.ConsideredSampleIds) > 0 {
		childFilter := []map[string]interface{}{
			{"terms": map[string]interface{}{"sample_id": scope.ConsideredSampleIds}},
		}
		childFilter = append(childFilter, nestedQualityClauses(quality)...)

		if requireAlt {
			// at least one considered sample must carry an alt allele and
			// itself pass the quality thresholds
			altFilter := append([]map[string]interface{}{
				{"range": map[string]interface{}{"num_alt": map[string]interface{}{"gte": 1}}},
			}, childFilter...)
			clauses = append(clauses, hasChildGenotype(map[string]interface{}{
				"bool": map[string]interface{}{"filter": altFilter},
			}, 0, 0))
		}

		// every considered sample must have a qualifying child document;
		// inner hits for all of them regardless of genotype
		clauses = append(clauses, hasChildGenotype(map[string]interface{}{
			"bool": map[string]interface{}{"filter": childFilter},
		}, len(scope.ConsideredSampleIds), len(scope.ConsideredSampleIds)))
		return clauses
	}

	// no genotype scoping at all, still pull the child documents along
	clauses = append(clauses, hasChildGenotype(map[string]interface{}{"match_all": map[string]interface{}{}}, 0, maxInnerHits))
	return clauses
}

func (s *nestedStrategy) SampleFields(hit map[string]interface{}, sampleId string) map[string]interface{} {
	innerHits, ok := hit["inner_hits"].(map[string]interface{})
	if !ok {
		return nil
	}
	genotype, ok := innerHits["genotype"].(map[string]interface{})
	if !ok {
		return nil
	}

	var inner struct {
		Hits struct {
			Hits []struct {
				Source map[string]interface{} `mapstructure:"_source"`
			} `mapstructure:"hits"`
		} `mapstructure:"hits"`
	}
	if err := mapstructure.Decode(genotype, &inner); err != nil {
		return nil
	}
	for _, childHit := range inner.Hits.Hits {
		if childHit.Source["sample_id"] == sampleId {
			return childHit.Source
		}
	}
	return nil
}

// hasChildGenotype wraps a child-document query. A zero minChildren leaves
// the engine default; a zero innerHitsSize omits the inner-hits projection,
// which at most one clause per body may carry for a given child type.
func hasChildGenotype(query map[string]interface{}, minChildren int, innerHitsSize int) map[string]interface{} {
	hasChild := map[string]interface{}{
		"type":  "genotype",
		"query": query,
	}
	if minChildren > 0 {
		hasChild["min_children"] = minChildren
	}
	if innerHitsSize > 0 {
		hasChild["inner_hits"] = map[string]interface{}{"size": innerHitsSize}
	}
	return map[string]interface{}{"has_child": hasChild}
}

func nestedQualityClauses(quality *schemas.QualityFilter) []map[string]interface{} {
	clauses := []map[string]interface{}{}
	if quality == nil {
		return clauses
	}
	if quality.MinAB > 0 {
		// allele balance only conditions hets; hom ref/alt calls pass
		clauses = append(clauses, map[string]interface{}{
			"bool": map[string]interface{}{
				"should": []map[string]interface{}{
					{"bool": map[string]interface{}{
						"must_not": []map[string]interface{}{
							{"term": map[string]interface{}{"num_alt": 1}},
						},
					}},
					{"range": map[string]interface{}{"ab": map[string]interface{}{"gte": quality.MinAB / 100}}},
				},
				"minimum_should_match": 1,
			},
		})
	}
	if quality.MinGQ > 0 {
		clauses = append(clauses, map[string]interface{}{
			"range": map[string]interface{}{"gq": map[string]interface{}{"gte": quality.MinGQ}},
		})
	}
	return clauses
}

// -- flattened topology -----------------------------------------------------

func (s *flattenedStrategy) GenotypeClauses(scope *SearchScope, predicates map[string]genotypeQuery.AltCountPredicate,
	quality *schemas.QualityFilter, requireAlt bool) []map[string]interface{} {

	clauses := []map[string]interface{}{}

	if len(predicates) > 0 {
		for _, sampleId := range sortedPredicateSampleIds(predicates) {
			clauses = append(clauses,
				renderAltCountClause(utils.SampleFieldName(sampleId, "num_alt"), predicates[sampleId]))
		}
	} else if requireAlt && len(scope.ConsideredSampleIds) > 0 {
		altRanges := []map[string]interface{}{}
		for _, sampleId := range scope.ConsideredSampleIds {
			altRanges = append(altRanges, map[string]interface{}{
				"range": map[string]interface{}{
					utils.SampleFieldName(sampleId, "num_alt"): map[string]interface{}{"gte": 1},
				},
			})
		}
		clauses = append(clauses, map[string]interface{}{
			"bool": map[string]interface{}{
				"should":               altRanges,
				"minimum_should_match": 1,
			},
		})
	}

	if quality != nil && len(scope.ConsideredSampleIds) > 0 {
		for _, sampleId := range scope.ConsideredSampleIds {
			if quality.MinAB > 0 {
				numAltField := utils.SampleFieldName(sampleId, "num_alt")
				abField := utils.SampleFieldName(sampleId, "ab")
				clauses = append(clauses, map[string]interface{}{
					"bool": map[string]interface{}{
						"should": []map[string]interface{}{
							{"bool": map[string]interface{}{
								"must_not": []map[string]interface{}{
									{"term": map[string]interface{}{numAltField: 1}},
								},
							}},
							{"range": map[string]interface{}{abField: map[string]interface{}{"gte": quality.MinAB / 100}}},
						},
						"minimum_should_match": 1,
					},
				})
			}
			if quality.MinGQ > 0 {
				gqField := utils.SampleFieldName(sampleId, "gq")
				clauses = append(clauses, map[string]interface{}{
					"range": map[string]interface{}{gqField: map[string]interface{}{"gte": quality.MinGQ}},
				})
			}
		}
	}

	return clauses
}

func (s *flattenedStrategy) SampleFields(hit map[string]interface{}, sampleId string) map[string]interface{} {
	source, ok := hit["_source"].(map[string]interface{})
	if !ok {
		return nil
	}
	prefix := utils.EncodeSampleId(sampleId) + "_"
	fields := map[string]interface{}{}
	for fieldName, value := range source {
		if strings.HasPrefix(fieldName, prefix) {
			fields[strings.TrimPrefix(fieldName, prefix)] = value
		}
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}

// -- shared rendering -------------------------------------------------------

func renderAltCountClause(field string, predicate genotypeQuery.AltCountPredicate) map[string]interface{} {
	if predicate.Exact != nil {
		return map[string]interface{}{"term": map[string]interface{}{field: *predicate.Exact}}
	}
	if predicate.Gte != nil {
		return map[string]interface{}{
			"range": map[string]interface{}{field: map[string]interface{}{"gte": *predicate.Gte}},
		}
	}
	terms := []map[string]interface{}{}
	for _, value := range predicate.In {
		terms = append(terms, map[string]interface{}{"term": map[string]interface{}{field: value}})
	}
	return map[string]interface{}{
		"bool": map[string]interface{}{
			"should":               terms,
			"minimum_should_match": 1,
		},
	}
}

func sortedPredicateSampleIds(predicates map[string]genotypeQuery.AltCountPredicate) []string {
	sampleIds := make([]string, 0, len(predicates))
	for sampleId := range predicates {
		sampleIds = append(sampleIds, sampleId)
	}
	sort.Strings(sampleIds)
	return sampleIds
}

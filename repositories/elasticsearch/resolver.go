package elasticsearch

import (
	"fmt"
	"sort"
	"strings"

	"varsearch/api/models"
	"varsearch/api/models/schemas"
	"varsearch/api/services/registry"
	"varsearch/api/utils"

	"github.com/Jeffail/gabs"
	es7 "github.com/elastic/go-elasticsearch/v7"
)

type IndividualSample struct {
	IndividualId string
	SampleId     string
}

// SearchScope is the resolved execution context of one search: the ordered
// individual-to-sample mapping, the physical index name/pattern to query,
// and the document topology of that index.
type SearchScope struct {
	Pairs []IndividualSample

	// sample ids mapped from the indivs-to-consider subset, in subset
	// order; empty for project-wide searches with no genotype scope
	ConsideredSampleIds []string

	Index       string
	IsNested    bool
	IndexFields map[string]bool
}

// SampleId resolves an individual id through the scope's pairs, falling
// back to the individual id itself.
func (s *SearchScope) SampleId(individualId string) string {
	for _, pair := range s.Pairs {
		if pair.IndividualId == individualId {
			return pair.SampleId
		}
	}
	return individualId
}

func (s *SearchScope) strategy() QueryStrategy {
	if s.IsNested {
		return &nestedStrategy{}
	}
	return &flattenedStrategy{}
}

// ResolveSearchScope maps the abstract (project, family, individual-set)
// query scope onto concrete per-individual sample ids and the physical
// index name(s) holding their genotype data.
func ResolveSearchScope(cfg *models.Config, es *es7.Client, reg registry.Registry,
	projectId string, familyId string,
	indivsToConsider []string, genotypeFilter schemas.GenotypeFilter) (*SearchScope, error) {

	var (
		project *registry.Project
		index   string
		err     error
	)

	if familyId == "" {
		project, err = reg.GetProject(projectId)
		if err != nil {
			return nil, err
		}
		index = project.ElasticsearchIndex
		fmt.Printf("Searching in project index: %s\n", index)
	} else {
		var family *registry.Family
		project, family, err = reg.GetFamily(projectId, familyId)
		if err != nil {
			return nil, err
		}
		index = family.ElasticsearchIndex
		fmt.Printf("Searching in family index: %s\n", index)
	}

	// a genotype filter without an explicit scope implies its individuals
	if len(indivsToConsider) == 0 && len(genotypeFilter) > 0 && familyId == "" {
		for individualId := range genotypeFilter {
			indivsToConsider = append(indivsToConsider, individualId)
		}
		sort.Strings(indivsToConsider)
	}

	individuals, err := reg.Individuals(projectId, familyId, indivsToConsider)
	if err != nil {
		return nil, err
	}
	if familyId != "" && len(indivsToConsider) == 0 {
		for _, individual := range individuals {
			indivsToConsider = append(indivsToConsider, individual.IndivId)
		}
	}

	individualIds := make([]string, 0, len(individuals))
	for _, individual := range individuals {
		individualIds = append(individualIds, individual.IndivId)
	}
	samples := reg.LoadedVariantCallSamples(individualIds)

	esIndices := []string{}
	for _, name := range strings.Split(index, ",") {
		esIndices = append(esIndices, strings.TrimRight(name, "*"))
	}

	scope := &SearchScope{Index: index, IndexFields: map[string]bool{}}
	for _, individual := range individuals {
		sampleId := ""
		// most-recently-loaded sample whose index belongs to the scope
		for _, sample := range samples {
			if sample.IndividualId != individual.IndivId {
				continue
			}
			if hasAnyPrefix(sample.ElasticsearchIndex, esIndices) {
				sampleId = sample.SampleId
				break
			}
		}
		if sampleId == "" {
			// legacy/simple deployments index under the individual id
			sampleId = individual.IndivId
		}
		scope.Pairs = append(scope.Pairs, IndividualSample{IndividualId: individual.IndivId, SampleId: sampleId})
	}

	fmt.Printf("Resolved individual-sample map as: %v\n", scope.Pairs)

	mappings, err := GetIndexMappings(cfg, es, index+"*")
	if err != nil {
		return nil, err
	}

	if mappings.Exists(index, "mappings", "properties", "join_field") {
		// Nested indices are not sharded, so all samples live in the
		// single index as-is.
		scope.IsNested = true
		fmt.Printf("matching indices: %s\n", index)
	} else if familyId != "" && len(scope.Pairs) > 0 {
		matchingIndices := resolveFlattenedIndices(scope, mappings)
		if len(matchingIndices) == 0 {
			// Missing data: log and fall through to an unscoped pattern,
			// which legitimately returns zero results.
			fmt.Printf("Error: no index holds genotype fields for any sample of family %s (pattern %s)\n", familyId, index)
			scope.Index = index + "*"
		} else {
			scope.Index = strings.Join(matchingIndices, ",")
			fmt.Printf("matching indices: %s\n", scope.Index)
		}
	} else {
		scope.Index = index + "*"
	}

	if len(scope.IndexFields) == 0 {
		mergeAllIndexFields(scope, mappings)
	}

	for _, individualId := range indivsToConsider {
		scope.ConsideredSampleIds = append(scope.ConsideredSampleIds, scope.SampleId(individualId))
	}

	return scope, nil
}

// resolveFlattenedIndices probes each candidate sample's encoded
// "<sample>_num_alt" field name against every index in the mapping.
// Deliberate limitation carried over from the previous implementation:
// scanning stops at the first sample that matches any index, assuming one
// shard holds all of a family's samples; individuals genuinely spanning
// multiple physical indices are not gathered across shards.
func resolveFlattenedIndices(scope *SearchScope, mappings *gabs.Container) []string {
	var matchingIndices []string

	indexMappings, _ := mappings.ChildrenMap()
	for _, pair := range scope.Pairs {
		numAltField := utils.SampleFieldName(pair.SampleId, "num_alt")
		for indexName, indexMapping := range indexMappings {
			if indexMapping.Exists("mappings", "properties", numAltField) {
				matchingIndices = append(matchingIndices, indexName)
				mergeFieldNames(scope, indexMapping)
			}
		}
		if len(matchingIndices) > 0 {
			break
		}
	}

	sort.Strings(matchingIndices)
	return matchingIndices
}

func mergeAllIndexFields(scope *SearchScope, mappings *gabs.Container) {
	indexMappings, _ := mappings.ChildrenMap()
	for _, indexMapping := range indexMappings {
		mergeFieldNames(scope, indexMapping)
	}
}

func mergeFieldNames(scope *SearchScope, indexMapping *gabs.Container) {
	properties := indexMapping.Search("mappings", "properties")
	if properties == nil {
		return
	}
	fields, _ := properties.ChildrenMap()
	for fieldName := range fields {
		scope.IndexFields[fieldName] = true
	}
}

func hasAnyPrefix(value string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if prefix != "" && strings.HasPrefix(value, prefix) {
			return true
		}
	}
	return false
}

package variants

import (
	"fmt"
	"sync"

	esRepo "varsearch/api/repositories/elasticsearch"
)

// GetVariantsOverview aggregates coarse distributions across the variant
// indices, one bucket query per dimension, fanned out in parallel.
func (s *VariantService) GetVariantsOverview() map[string]interface{} {
	resultsMap := map[string]interface{}{}
	resultsMux := sync.RWMutex{}

	index := s.Config.Api.VariantIndexPattern

	var wg sync.WaitGroup
	callGetBucketsByKeyword := func(key string, keyword string, _wg *sync.WaitGroup) {
		defer _wg.Done()

		results, bucketsError := esRepo.GetVariantsBucketsByKeyword(s.Config, s.Es, index, keyword)
		if bucketsError != nil {
			resultsMux.Lock()
			defer resultsMux.Unlock()

			resultsMap[key] = map[string]interface{}{
				"error": "Something went wrong. Please contact the administrator!",
			}
			return
		}

		// retrieve aggregations.items.buckets
		bucketsMapped := []interface{}{}
		if aggs, aggsOk := results["aggregations"]; aggsOk {
			aggsMapped := aggs.(map[string]interface{})

			if items, itemsOk := aggsMapped["items"]; itemsOk {
				itemsMapped := items.(map[string]interface{})

				if buckets, bucketsOk := itemsMapped["buckets"]; bucketsOk {
					bucketsMapped = buckets.([]interface{})
				}
			}
		}

		individualKeyMap := map[string]interface{}{}
		// push results bucket to slice
		for _, bucket := range bucketsMapped {
			doc_key := fmt.Sprint(bucket.(map[string]interface{})["key"]) // ensure strings and numbers are expressed as strings
			doc_count := bucket.(map[string]interface{})["doc_count"]

			individualKeyMap[doc_key] = doc_count
		}

		resultsMux.Lock()
		resultsMap[key] = individualKeyMap
		resultsMux.Unlock()
	}

	// get distribution of chromosomes
	wg.Add(1)
	go callGetBucketsByKeyword("chromosomes", "contig.keyword", &wg)

	// get distribution of variant types
	wg.Add(1)
	go callGetBucketsByKeyword("variantTypes", "transcriptConsequenceTerms.keyword", &wg)

	// get distribution of clinvar significance
	wg.Add(1)
	go callGetBucketsByKeyword("clinvarSignificance", "clinvar_clinical_significance.keyword", &wg)

	wg.Wait()

	return resultsMap
}

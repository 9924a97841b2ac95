package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"varsearch/api/models"
	"varsearch/api/utils"

	"github.com/Jeffail/gabs"
	es7 "github.com/elastic/go-elasticsearch/v7"
	"github.com/mitchellh/mapstructure"
)

// Inner-hit ceiling when a nested-topology search returns genotypes for
// every sample of a variant rather than a constrained subset.
const maxInnerHits = 100

type SearchResult struct {
	// raw hit objects, engine order preserved; each carries _id, _source
	// and (nested topology) inner_hits
	Hits  []map[string]interface{}
	Total int
}

// GetIndexMappings fetches the field-mapping metadata for every index
// matching the pattern. The response shape is index-name keyed, navigated
// with gabs since index names are dynamic.
func GetIndexMappings(cfg *models.Config, es *es7.Client, indexPattern string) (*gabs.Container, error) {
	res, err := es.Indices.GetMapping(
		es.Indices.GetMapping.WithContext(context.Background()),
		es.Indices.GetMapping.WithIndex(indexPattern),
	)
	if err != nil {
		fmt.Printf("Error getting index mappings: %s\n", err)
		return nil, err
	}
	defer res.Body.Close()

	resultString := res.String()
	if cfg.Debug {
		fmt.Println(resultString)
	}

	// Known bug: response comes back with a preceding '[200 OK] ' which needs trimming
	bracketString, jsonBodyString := utils.GetLeadingStringInBetweenSquareBrackets(resultString)
	if !strings.Contains(bracketString, "200") {
		return nil, fmt.Errorf("failed to get index mappings for %s : got '%s'", indexPattern, bracketString)
	}

	parsed, parseErr := gabs.ParseJSON([]byte(jsonBodyString))
	if parseErr != nil {
		fmt.Printf("Error parsing index mappings response: %s\n", parseErr)
		return nil, parseErr
	}

	return parsed, nil
}

// ExecuteVariantSearch runs the query body against the index pattern and
// decodes the raw hits. The body is expected to request
// maxResultsLimit + 1 hits; when the engine reports more total matches
// than that, the whole search fails as over-broad before any hit is
// looked at.
func ExecuteVariantSearch(cfg *models.Config, es *es7.Client,
	index string, query map[string]interface{}, maxResultsLimit int) (*SearchResult, error) {

	// encode the query
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(query); err != nil {
		log.Printf("Error encoding query: %s\n", err)
		return nil, err
	}

	if cfg.Debug {
		// view the outbound elasticsearch query
		myString := string(buf.Bytes()[:])
		fmt.Println(myString)
	}

	fmt.Printf("Query Start: %s\n", time.Now())

	// Perform the search request.
	res, searchErr := es.Search(
		es.Search.WithContext(context.Background()),
		es.Search.WithIndex(index),
		es.Search.WithBody(&buf),
		es.Search.WithTrackTotalHits(true),
		es.Search.WithPretty(),
	)
	if searchErr != nil {
		fmt.Printf("Error getting response: %s\n", searchErr)
		return nil, searchErr
	}

	defer res.Body.Close()

	resultString := res.String()
	if cfg.Debug {
		fmt.Println(resultString)
	}

	// Declared an empty interface
	result := make(map[string]interface{})

	// Unmarshal or Decode the JSON to the interface.
	// Known bug: response comes back with a preceding '[200 OK] ' which needs trimming
	bracketString, jsonBodyString := utils.GetLeadingStringInBetweenSquareBrackets(resultString)
	if !strings.Contains(bracketString, "200") {
		return nil, fmt.Errorf("failed to search variants : got '%s'", bracketString)
	}

	umErr := json.Unmarshal([]byte(jsonBodyString), &result)
	if umErr != nil {
		fmt.Printf("Error unmarshalling response: %s\n", umErr)
		return nil, umErr
	}

	fmt.Printf("Query End: %s\n", time.Now())

	searchResult := &SearchResult{}

	hitsWrapper, ok := result["hits"].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("malformed search response: missing hits")
	}

	// ES7 reports total as {"value": N, "relation": "eq"}
	if totalWrapper, totalOk := hitsWrapper["total"].(map[string]interface{}); totalOk {
		if value, valueOk := totalWrapper["value"].(float64); valueOk {
			searchResult.Total = int(value)
		}
	}

	if searchResult.Total > maxResultsLimit+1 {
		return nil, fmt.Errorf("this search matched too many variants (%d), please set additional filters and try again", searchResult.Total)
	}

	docsHits := hitsWrapper["hits"]
	allDocHits := []map[string]interface{}{}
	mapstructure.Decode(docsHits, &allDocHits)
	searchResult.Hits = allDocHits

	fmt.Printf("Found %d docs!\n", len(searchResult.Hits))

	return searchResult, nil
}

// GetVariantsBucketsByKeyword aggregates distinct values of the keyword
// field across the given index pattern (used by the overview endpoint).
func GetVariantsBucketsByKeyword(cfg *models.Config, es *es7.Client, index string, keyword string) (map[string]interface{}, error) {
	// begin building the request body.
	var buf bytes.Buffer
	aggMap := map[string]interface{}{
		"size": "0",
		"aggs": map[string]interface{}{
			"items": map[string]interface{}{
				"terms": map[string]interface{}{
					"field": keyword,
					"size":  "10000", // increases the number of buckets returned (default is 10)
					"order": map[string]string{
						"_key": "asc",
					},
				},
			},
		},
	}

	// encode the query
	if err := json.NewEncoder(&buf).Encode(aggMap); err != nil {
		log.Printf("Error encoding aggMap: %s\n", err)
		return nil, err
	}

	if cfg.Debug {
		// view the outbound elasticsearch query
		myString := string(buf.Bytes()[:])
		fmt.Println(myString)
	}

	// Perform the search request.
	res, searchErr := es.Search(
		es.Search.WithContext(context.Background()),
		es.Search.WithIndex(index),
		es.Search.WithBody(&buf),
		es.Search.WithTrackTotalHits(true),
		es.Search.WithPretty(),
	)
	if searchErr != nil {
		fmt.Printf("Error getting response: %s\n", searchErr)
		return nil, searchErr
	}

	defer res.Body.Close()

	resultString := res.String()
	if cfg.Debug {
		fmt.Println(resultString)
	}

	// Declared an empty interface
	result := make(map[string]interface{})

	// Unmarshal or Decode the JSON to the interface.
	// Known bug: response comes back with a preceding '[200 OK] ' which needs trimming
	bracketString, jsonBodyString := utils.GetLeadingStringInBetweenSquareBrackets(resultString)
	if !strings.Contains(bracketString, "200") {
		return nil, fmt.Errorf("failed to get buckets by keyword: got '%s'", bracketString)
	}
	umErr := json.Unmarshal([]byte(jsonBodyString), &result)
	if umErr != nil {
		fmt.Printf("Error unmarshalling response: %s\n", umErr)
		return nil, umErr
	}

	fmt.Printf("Query End: %s\n", time.Now())

	return result, nil
}

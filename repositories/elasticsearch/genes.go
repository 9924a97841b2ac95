package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"varsearch/api/models"
	"varsearch/api/models/indexes"
	"varsearch/api/utils"

	es7 "github.com/elastic/go-elasticsearch/v7"
	"github.com/mitchellh/mapstructure"
)

const genesIndex = "genes"

// EsGeneSummaryProvider looks gene display metadata up from the shared
// "genes" index.
type EsGeneSummaryProvider struct {
	Config *models.Config
	Es     *es7.Client
}

func (p *EsGeneSummaryProvider) GetGeneSummaries(geneIds []string) (map[string]indexes.GeneSummary, error) {
	// begin building the request body.
	var buf bytes.Buffer
	query := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"filter": []map[string]interface{}{
					{"terms": map[string]interface{}{"gene_id": geneIds}},
				},
			},
		},
		"size": len(geneIds),
	}

	// encode the query
	if err := json.NewEncoder(&buf).Encode(query); err != nil {
		log.Printf("Error encoding gene summary query: %s\n", err)
		return nil, err
	}

	if p.Config.Debug {
		// view the outbound elasticsearch query
		myString := string(buf.Bytes()[:])
		fmt.Println(myString)
	}

	// Perform the search request.
	res, searchErr := p.Es.Search(
		p.Es.Search.WithContext(context.Background()),
		p.Es.Search.WithIndex(genesIndex),
		p.Es.Search.WithBody(&buf),
		p.Es.Search.WithTrackTotalHits(true),
		p.Es.Search.WithPretty(),
	)
	if searchErr != nil {
		fmt.Printf("Error getting gene summary response: %s\n", searchErr)
		return nil, searchErr
	}
	defer res.Body.Close()

	resultString := res.String()
	if p.Config.Debug {
		fmt.Println(resultString)
	}

	// Known bug: response comes back with a preceding '[200 OK] ' which needs trimming
	bracketString, jsonBodyString := utils.GetLeadingStringInBetweenSquareBrackets(resultString)
	if !strings.Contains(bracketString, "200") {
		return nil, fmt.Errorf("failed to look up gene summaries : got '%s'", bracketString)
	}

	result := make(map[string]interface{})
	umErr := json.Unmarshal([]byte(jsonBodyString), &result)
	if umErr != nil {
		fmt.Printf("Error unmarshalling gene summary response: %s\n", umErr)
		return nil, umErr
	}

	summaries := map[string]indexes.GeneSummary{}
	for _, hit := range extractHits(result) {
		source, ok := hit["_source"].(map[string]interface{})
		if !ok {
			continue
		}
		var summary indexes.GeneSummary
		if err := mapstructure.Decode(source, &summary); err != nil {
			fmt.Printf("Error decoding gene summary document: %s\n", err)
			continue
		}
		summaries[summary.GeneId] = summary
	}

	return summaries, nil
}

// GetGeneDocumentsByTermWildcard searches the genes index by a wildcarded
// symbol/name term, sorted by position.
func GetGeneDocumentsByTermWildcard(cfg *models.Config, es *es7.Client,
	term string, size int) ([]indexes.GeneSummary, error) {

	// Nomenclature Search Term
	nomenclatureStringTerm := fmt.Sprintf("*%s*", term)

	var buf bytes.Buffer
	query := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"filter": []map[string]interface{}{{
					"bool": map[string]interface{}{
						"should": []map[string]interface{}{
							{
								"query_string": map[string]interface{}{
									"fields": []string{"symbol"},
									"query":  nomenclatureStringTerm,
								},
							},
							{
								"query_string": map[string]interface{}{
									"fields": []string{"name"},
									"query":  nomenclatureStringTerm,
								},
							},
						},
						"minimum_should_match": 1,
					},
				}},
			},
		},
		"size": size,
		"sort": []map[string]interface{}{
			{
				"chrom.keyword": map[string]interface{}{
					"order": "asc",
				},
			},
			{
				"start": map[string]interface{}{
					"order": "asc",
				},
			},
		},
	}

	// encode the query
	if err := json.NewEncoder(&buf).Encode(query); err != nil {
		log.Printf("Error encoding gene search query: %s\n", err)
		return nil, err
	}

	if cfg.Debug {
		// view the outbound elasticsearch query
		myString := string(buf.Bytes()[:])
		fmt.Println(myString)
	}

	// Perform the search request.
	searchRes, searchErr := es.Search(
		es.Search.WithContext(context.Background()),
		es.Search.WithIndex(genesIndex),
		es.Search.WithBody(&buf),
		es.Search.WithTrackTotalHits(true),
		es.Search.WithPretty(),
	)
	if searchErr != nil {
		fmt.Printf("Error getting gene search response: %s\n", searchErr)
		return nil, searchErr
	}
	defer searchRes.Body.Close()

	resultString := searchRes.String()
	if cfg.Debug {
		fmt.Println(resultString)
	}

	// Known bug: response comes back with a preceding '[200 OK] ' which needs trimming
	bracketString, jsonBodyString := utils.GetLeadingStringInBetweenSquareBrackets(resultString)
	if !strings.Contains(bracketString, "200") {
		return nil, fmt.Errorf("failed to search genes for '%s' : got '%s'", term, bracketString)
	}

	result := make(map[string]interface{})
	umErr := json.Unmarshal([]byte(jsonBodyString), &result)
	if umErr != nil {
		fmt.Printf("Error unmarshalling gene search response: %s\n", umErr)
		return nil, umErr
	}

	genes := []indexes.GeneSummary{}
	for _, hit := range extractHits(result) {
		source, ok := hit["_source"].(map[string]interface{})
		if !ok {
			continue
		}
		var summary indexes.GeneSummary
		if err := mapstructure.Decode(source, &summary); err != nil {
			fmt.Printf("Error decoding gene search document: %s\n", err)
			continue
		}
		genes = append(genes, summary)
	}

	return genes, nil
}

func extractHits(result map[string]interface{}) []map[string]interface{} {
	outer, ok := result["hits"].(map[string]interface{})
	if !ok {
		return nil
	}
	rawHits, ok := outer["hits"].([]interface{})
	if !ok {
		return nil
	}
	hits := make([]map[string]interface{}, 0, len(rawHits))
	for _, rawHit := range rawHits {
		if hit, ok := rawHit.(map[string]interface{}); ok {
			hits = append(hits, hit)
		}
	}
	return hits
}

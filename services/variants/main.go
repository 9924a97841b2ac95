package variants

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"varsearch/api/models"
	"varsearch/api/models/constants/chromosome"
	"varsearch/api/models/indexes"
	"varsearch/api/models/schemas"
	esRepo "varsearch/api/repositories/elasticsearch"
	"varsearch/api/services/cache"
	"varsearch/api/services/liftover"
	"varsearch/api/services/registry"

	es7 "github.com/elastic/go-elasticsearch/v7"
	"golang.org/x/sync/errgroup"
)

// User identifies the requesting account; staff accounts see privileged
// annotation fields and the internal filter taxonomy.
type User struct {
	Id      string
	IsStaff bool
}

// VariantPoint addresses a single variant by its identity triple.
type VariantPoint struct {
	XPos int64
	Ref  string
	Alt  string
}

// SearchInput is one fully-specified variant search. FamilyId empty means
// a project-wide search. MaxResultsLimit zero falls back to the configured
// default.
type SearchInput struct {
	ProjectId string
	FamilyId  string

	VariantFilter   *schemas.VariantFilter
	GenotypeFilter  schemas.GenotypeFilter
	QualityFilter   *schemas.QualityFilter
	VariantIdFilter []string

	IndivsToConsider       []string
	IncludeAllConsequences bool

	// when no explicit genotype filter is present, constrain the search
	// to variants where at least one considered sample carries an alt
	RequireAltInScope bool

	User            *User
	MaxResultsLimit int
}

// VariantService is the single entry point of the variant search layer.
// One instance is shared by all requests.
type VariantService struct {
	Config   *models.Config
	Es       *es7.Client
	Registry registry.Registry
	Cache    *cache.ResultCache
	Liftover liftover.Liftover
	Genes    esRepo.GeneSummaryProvider
}

func NewVariantService(cfg *models.Config, es *es7.Client, reg registry.Registry,
	resultCache *cache.ResultCache, lift liftover.Liftover, genes esRepo.GeneSummaryProvider) *VariantService {

	return &VariantService{
		Config:   cfg,
		Es:       es,
		Registry: reg,
		Cache:    resultCache,
		Liftover: lift,
		Genes:    genes,
	}
}

func (s *VariantService) isStaff(user *User) bool {
	return user != nil && user.IsStaff
}

func (s *VariantService) maxResults(input *SearchInput) int {
	if input.MaxResultsLimit > 0 {
		return input.MaxResultsLimit
	}
	return s.Config.Api.VariantQueryLimit
}

// SearchVariants runs one search end to end: cache probe, scope
// resolution, query translation, execution, normalization, cache fill.
// Results come back in engine order.
func (s *VariantService) SearchVariants(ctx context.Context, input *SearchInput) ([]*indexes.Variant, error) {
	fingerprint := schemas.CacheKey(input.ProjectId, input.FamilyId,
		input.VariantFilter, input.GenotypeFilter, input.QualityFilter,
		input.VariantIdFilter, input.IndivsToConsider, input.IncludeAllConsequences)

	if cached, found := s.Cache.Get(ctx, fingerprint); found {
		var variants []*indexes.Variant
		if err := json.Unmarshal(cached, &variants); err == nil {
			fmt.Printf("[%s] - cache hit for %s\n", time.Now(), fingerprint)
			return variants, nil
		}
		fmt.Printf("Warning: discarding undecodable cached result for %s\n", fingerprint)
	}

	variants, err := s.searchUncached(input)
	if err != nil {
		return nil, err
	}

	if payload, marshalErr := json.Marshal(variants); marshalErr == nil {
		s.Cache.Put(ctx, fingerprint, payload)
	}

	return variants, nil
}

func (s *VariantService) searchUncached(input *SearchInput) ([]*indexes.Variant, error) {
	scope, err := esRepo.ResolveSearchScope(s.Config, s.Es, s.Registry,
		input.ProjectId, input.FamilyId, input.IndivsToConsider, input.GenotypeFilter)
	if err != nil {
		return nil, err
	}

	var project *registry.Project
	if input.FamilyId == "" {
		project, err = s.Registry.GetProject(input.ProjectId)
	} else {
		project, _, err = s.Registry.GetFamily(input.ProjectId, input.FamilyId)
	}
	if err != nil {
		return nil, err
	}

	criteria := &esRepo.SearchCriteria{
		VariantFilter:   input.VariantFilter,
		GenotypeFilter:  input.GenotypeFilter,
		QualityFilter:   input.QualityFilter,
		VariantIdFilter: input.VariantIdFilter,
		RequireAlt:      input.RequireAltInScope && len(input.GenotypeFilter) == 0,
		IsStaff:         s.isStaff(input.User),
		MaxResults:      s.maxResults(input),
	}

	body, err := esRepo.BuildVariantSearchBody(criteria, scope)
	if err != nil {
		return nil, err
	}

	result, err := esRepo.ExecuteVariantSearch(s.Config, s.Es, scope.Index, body, criteria.MaxResults)
	if err != nil {
		return nil, err
	}

	return esRepo.NormalizeSearchHits(result.Hits, scope, project, input.FamilyId,
		s.isStaff(input.User), s.Liftover, s.Genes)
}

// GetVariants streams search results over a channel, closed when the
// underlying result set is exhausted. The sequence is single-pass.
func (s *VariantService) GetVariants(ctx context.Context, input *SearchInput) (<-chan *indexes.Variant, error) {
	scoped := *input
	scoped.RequireAltInScope = true

	variants, err := s.SearchVariants(ctx, &scoped)
	if err != nil {
		return nil, err
	}

	out := make(chan *indexes.Variant)
	go func() {
		defer close(out)
		for _, variant := range variants {
			select {
			case out <- variant:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// GetSingleVariant fetches one variant by its identity triple, with the
// full (unfiltered) consequence annotation. Missing variants come back as
// nil without error; more than one match for a triple is an error.
func (s *VariantService) GetSingleVariant(ctx context.Context, user *User,
	projectId string, familyId string, point VariantPoint) (*indexes.Variant, error) {

	chrom, pos, err := chromosome.GetChrPos(point.XPos)
	if err != nil {
		return nil, err
	}
	if chrom == "M" {
		chrom = "MT"
	}

	variantId := fmt.Sprintf("%s-%d-%s-%s", chrom, pos, point.Ref, point.Alt)

	input := &SearchInput{
		ProjectId:              projectId,
		FamilyId:               familyId,
		VariantIdFilter:        []string{variantId},
		IncludeAllConsequences: true,
		User:                   user,
	}

	variants, err := s.SearchVariants(ctx, input)
	if err != nil {
		return nil, err
	}

	if len(variants) == 0 {
		return nil, nil
	}
	if len(variants) > 1 {
		return nil, fmt.Errorf("found %d variants for id %s, expected at most 1", len(variants), variantId)
	}
	return variants[0], nil
}

// GetMultipleVariants fetches a batch of variants by identity triples,
// preserving request length and order; unknown triples yield nil entries.
func (s *VariantService) GetMultipleVariants(ctx context.Context, user *User,
	projectId string, familyId string, points []VariantPoint) ([]*indexes.Variant, error) {

	results := make([]*indexes.Variant, len(points))

	g, groupCtx := errgroup.WithContext(ctx)
	for i, point := range points {
		i, point := i, point
		g.Go(func() error {
			variant, err := s.GetSingleVariant(groupCtx, user, projectId, familyId, point)
			if err != nil {
				return err
			}
			results[i] = variant
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// GetVariantsInProjectForGene searches a whole project constrained to one
// gene, on top of the caller's variant filter.
func (s *VariantService) GetVariantsInProjectForGene(ctx context.Context, user *User,
	projectId string, geneId string, variantFilter *schemas.VariantFilter) ([]*indexes.Variant, error) {

	geneFilter := schemas.VariantFilter{}
	if variantFilter != nil {
		geneFilter = *variantFilter
		geneFilter.Genes = append([]string{}, variantFilter.Genes...)
	}
	geneFilter.ExcludeGenes = false
	geneFilter.AddGene(geneId)

	input := &SearchInput{
		ProjectId:         projectId,
		VariantFilter:     &geneFilter,
		RequireAltInScope: false,
		User:              user,
		MaxResultsLimit:   s.Config.Api.GeneSearchLimit,
	}

	return s.SearchVariants(ctx, input)
}

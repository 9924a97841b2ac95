package variants

import (
	"fmt"
	"net/http"
	"time"

	"varsearch/api/contexts"
	genotypeQuery "varsearch/api/models/constants/genotype-query"
	"varsearch/api/models/dtos"
	"varsearch/api/models/dtos/errors"
	"varsearch/api/models/schemas"
	variantsService "varsearch/api/services/variants"

	"github.com/google/uuid"
	"github.com/labstack/echo"
)

func VariantsSearch(c echo.Context) error {
	fmt.Printf("[%s] - VariantsSearch hit!\n", time.Now())
	vc := c.(*contexts.VarSearchContext)

	var request dtos.VariantSearchRequestDto
	if err := c.Bind(&request); err != nil {
		return c.JSON(http.StatusBadRequest, errors.CreateSimpleBadRequest("Error parsing search request! Check your input"))
	}
	if len(request.ProjectId) == 0 {
		return c.JSON(http.StatusBadRequest, errors.CreateSimpleBadRequest("Missing 'projectId' in search request!"))
	}

	input, inputErr := searchInputFromRequest(&request, vc.User)
	if inputErr != nil {
		return c.JSON(http.StatusBadRequest, errors.CreateSimpleBadRequest(inputErr.Error()))
	}

	results, searchErr := vc.VariantService.SearchVariants(c.Request().Context(), input)
	if searchErr != nil {
		return c.JSON(http.StatusInternalServerError, errors.CreateSimpleInternalServerError(searchErr.Error()))
	}

	fmt.Printf("Found %d variants!\n", len(results))

	return c.JSON(http.StatusOK, dtos.VariantsResponseDto{
		Status:  200,
		Message: "Success",
		QueryId: uuid.New().String(),
		Count:   len(results),
		Results: results,
	})
}

func VariantsGetSingle(c echo.Context) error {
	fmt.Printf("[%s] - VariantsGetSingle hit!\n", time.Now())
	vc := c.(*contexts.VarSearchContext)

	point := variantsService.VariantPoint{XPos: vc.XPos, Ref: vc.Ref, Alt: vc.Alt}

	variant, err := vc.VariantService.GetSingleVariant(c.Request().Context(), vc.User,
		vc.ProjectId, vc.FamilyId, point)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errors.CreateSimpleInternalServerError(err.Error()))
	}
	if variant == nil {
		return c.JSON(http.StatusNotFound, errors.CreateSimpleNotFound(
			fmt.Sprintf("No variant found at xpos %d with ref '%s' and alt '%s'", vc.XPos, vc.Ref, vc.Alt)))
	}

	return c.JSON(http.StatusOK, dtos.SingleVariantResponseDto{
		Status:  200,
		Message: "Success",
		QueryId: uuid.New().String(),
		Result:  variant,
	})
}

func VariantsGetBatch(c echo.Context) error {
	fmt.Printf("[%s] - VariantsGetBatch hit!\n", time.Now())
	vc := c.(*contexts.VarSearchContext)

	var request dtos.VariantBatchRequestDto
	if err := c.Bind(&request); err != nil {
		return c.JSON(http.StatusBadRequest, errors.CreateSimpleBadRequest("Error parsing batch request! Check your input"))
	}
	if len(request.ProjectId) == 0 {
		return c.JSON(http.StatusBadRequest, errors.CreateSimpleBadRequest("Missing 'projectId' in batch request!"))
	}

	points := make([]variantsService.VariantPoint, 0, len(request.Variants))
	for _, rawPoint := range request.Variants {
		points = append(points, variantsService.VariantPoint{
			XPos: rawPoint.XPos,
			Ref:  rawPoint.Ref,
			Alt:  rawPoint.Alt,
		})
	}

	results, err := vc.VariantService.GetMultipleVariants(c.Request().Context(), vc.User,
		request.ProjectId, request.FamilyId, points)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errors.CreateSimpleInternalServerError(err.Error()))
	}

	return c.JSON(http.StatusOK, dtos.VariantsResponseDto{
		Status:  200,
		Message: "Success",
		QueryId: uuid.New().String(),
		Count:   len(results),
		Results: results,
	})
}

func VariantsGetByGene(c echo.Context) error {
	fmt.Printf("[%s] - VariantsGetByGene hit!\n", time.Now())
	vc := c.(*contexts.VarSearchContext)

	geneId := c.Param("geneId")
	if len(geneId) == 0 {
		return c.JSON(http.StatusBadRequest, errors.CreateSimpleBadRequest("Missing 'geneId' path parameter for querying!"))
	}

	// an optional variant filter rides along in the body
	var request dtos.VariantSearchRequestDto
	_ = c.Bind(&request)

	results, err := vc.VariantService.GetVariantsInProjectForGene(c.Request().Context(), vc.User,
		vc.ProjectId, geneId, request.VariantFilter)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errors.CreateSimpleInternalServerError(err.Error()))
	}

	fmt.Printf("Found %d variants for gene %s!\n", len(results), geneId)

	return c.JSON(http.StatusOK, dtos.VariantsResponseDto{
		Status:  200,
		Message: "Success",
		QueryId: uuid.New().String(),
		Count:   len(results),
		Results: results,
	})
}

func GetVariantsOverview(c echo.Context) error {
	fmt.Printf("[%s] - GetVariantsOverview hit!\n", time.Now())
	vc := c.(*contexts.VarSearchContext)

	resultsMap := vc.VariantService.GetVariantsOverview()

	return c.JSON(http.StatusOK, resultsMap)
}

func searchInputFromRequest(request *dtos.VariantSearchRequestDto, user *variantsService.User) (*variantsService.SearchInput, error) {
	genotypeFilter := schemas.GenotypeFilter{}
	for individualId, rawSymbol := range request.GenotypeFilter {
		symbol, err := genotypeQuery.CastToGenotypeMatch(rawSymbol)
		if err != nil {
			return nil, fmt.Errorf("unrecognized genotype filter '%s' for individual %s", rawSymbol, individualId)
		}
		if symbol != genotypeQuery.UNCALLED {
			genotypeFilter[individualId] = symbol
		}
	}

	requireAlt := true
	if request.RequireAltInScope != nil {
		requireAlt = *request.RequireAltInScope
	}

	return &variantsService.SearchInput{
		ProjectId:              request.ProjectId,
		FamilyId:               request.FamilyId,
		VariantFilter:          request.VariantFilter,
		GenotypeFilter:         genotypeFilter,
		QualityFilter:          request.QualityFilter,
		VariantIdFilter:        request.VariantIdFilter,
		IndivsToConsider:       request.IndivsToConsider,
		IncludeAllConsequences: request.IncludeAllConsequences,
		RequireAltInScope:      requireAlt,
		User:                   user,
	}, nil
}

package genes

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"varsearch/api/contexts"
	"varsearch/api/models/dtos"
	"varsearch/api/models/dtos/errors"
	esRepo "varsearch/api/repositories/elasticsearch"

	"github.com/labstack/echo"
)

func GenesGetByNomenclatureWildcard(c echo.Context) error {
	fmt.Printf("[%s] - GenesGetByNomenclatureWildcard hit!\n", time.Now())
	vc := c.(*contexts.VarSearchContext)
	cfg := vc.Config
	es := vc.Es7Client

	// Name search term
	term := c.QueryParam("term")
	if len(term) == 0 {
		return c.JSON(http.StatusBadRequest, errors.CreateSimpleBadRequest("Missing 'term' query parameter for querying!"))
	}

	// Size
	var (
		size        int = 25
		sizeCastErr error
	)
	if len(c.QueryParam("size")) > 0 {
		sizeQP := c.QueryParam("size")
		size, sizeCastErr = strconv.Atoi(sizeQP)
		if sizeCastErr != nil {
			size = 25
		}
	}

	fmt.Printf("Executing wildcard genes search for term %s (max size: %d)\n", term, size)

	// Execute
	docs, geneErr := esRepo.GetGeneDocumentsByTermWildcard(cfg, es, term, size)
	if geneErr != nil {
		return c.JSON(http.StatusInternalServerError, errors.CreateSimpleInternalServerError("Something went wrong... Please contact the administrator!"))
	}

	fmt.Printf("Found %d docs!\n", len(docs))

	return c.JSON(http.StatusOK, dtos.GenesResponseDto{
		Status:  200,
		Message: "Success",
		Term:    term,
		Count:   len(docs),
		Results: docs,
	})
}

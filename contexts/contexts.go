package contexts

import (
	"varsearch/api/models"
	variantsService "varsearch/api/services/variants"

	es7 "github.com/elastic/go-elasticsearch/v7"
	"github.com/labstack/echo"
)

type (
	// "Helper" Context to pass into routes that need
	//  an elasticsearch client and other variables
	VarSearchContext struct {
		echo.Context
		Es7Client      *es7.Client
		Config         *models.Config
		VariantService *variantsService.VariantService

		// attributes calibrated by middleware
		ProjectId string
		FamilyId  string
		XPos      int64
		Ref       string
		Alt       string
		User      *variantsService.User
	}
)

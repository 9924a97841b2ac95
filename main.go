package main

import (
	"varsearch/api/contexts"
	vsm "varsearch/api/middleware"
	"varsearch/api/models"
	serviceInfo "varsearch/api/models/constants/service-info"
	esRepo "varsearch/api/repositories/elasticsearch"
	"varsearch/api/services/cache"
	"varsearch/api/services/liftover"
	"varsearch/api/services/maintenance"
	"varsearch/api/services/registry"
	variantsService "varsearch/api/services/variants"
	"varsearch/api/utils"

	genesMvc "varsearch/api/mvc/genes"
	variantsMvc "varsearch/api/mvc/variants"

	"time"

	"fmt"
	"net/http"
	"os"

	"github.com/kelseyhightower/envconfig"
	"github.com/labstack/echo"
	"github.com/labstack/echo/middleware"
)

func main() {
	// Gather environment variables
	var cfg models.Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	fmt.Printf("Using : \n"+

		"\tDebug : %t \n\n"+

		"\tRegistry Path : %s \n"+
		"\tVariant Query Limit : %d\n"+
		"\tGene Search Limit : %d\n"+
		"\tVariant Index Pattern : %s\n"+
		"\tElasticsearch Url : %s \n"+
		"\tElasticsearch Username : %s\n\n"+

		"\tRedis Url : %s\n\n"+

		"\tGRCh37->GRCh38 Chain Url : %s\n"+
		"\tGRCh38->GRCh37 Chain Url : %s\n\n"+

		"Running on Port : %s\n",

		cfg.Debug,
		cfg.Api.RegistryPath,
		cfg.Api.VariantQueryLimit,
		cfg.Api.GeneSearchLimit,
		cfg.Api.VariantIndexPattern,
		cfg.Elasticsearch.Url, cfg.Elasticsearch.Username,
		cfg.Redis.Url,
		cfg.Liftover.Grch37To38ChainUrl,
		cfg.Liftover.Grch38To37ChainUrl,
		cfg.Api.Port)
	// --

	// Instantiate Server
	e := echo.New()

	// Service Connections:
	// -- Elasticsearch
	es := utils.CreateEsConnection(&cfg)

	// Service Singletons
	reg, regErr := registry.NewFileRegistry(cfg.Api.RegistryPath)
	if regErr != nil {
		fmt.Println(regErr)
		os.Exit(2)
	}
	resultCache := cache.NewResultCache(&cfg)
	lift := liftover.NewService(&cfg)
	genes := &esRepo.EsGeneSummaryProvider{Config: &cfg, Es: es}
	vs := variantsService.NewVariantService(&cfg, es, reg, resultCache, lift, genes)
	maintenance.NewMaintenanceService(es, &cfg, reg)

	// Configure Server
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{echo.GET, echo.PUT, echo.POST, echo.DELETE},
	}))

	// -- Override handlers with "custom VarSearch" context
	//		to be able to provide variables and global singletons
	e.Use(func(h echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cc := &contexts.VarSearchContext{
				Context:        c,
				Es7Client:      es,
				Config:         &cfg,
				VariantService: vs,
			}
			return h(cc)
		}
	})

	// Global Middleware
	e.Use(vsm.CalibrateUserAttribute)

	// Begin MVC Routes
	// -- Root
	e.GET("/", func(c echo.Context) error {
		fmt.Printf("[%s] - Root hit!\n", time.Now())
		return c.JSON(http.StatusOK, serviceInfo.SERVICE_WELCOME)
	})

	// -- Service Info
	e.GET("/service-info", func(c echo.Context) error {
		// Spec: https://github.com/ga4gh-discovery/ga4gh-service-info
		return c.JSON(http.StatusOK, map[string]interface{}{
			"id":          serviceInfo.SERVICE_ID,
			"name":        serviceInfo.SERVICE_NAME,
			"type":        serviceInfo.SERVICE_TYPE,
			"description": serviceInfo.SERVICE_DESCRIPTION,
			"organization": map[string]string{
				"name": "VarSearch",
				"url":  "https://varsearch.org",
			},
			"contactUrl": serviceInfo.SERVICE_CONTACT,
			"version":    serviceInfo.SERVICE_VERSION,
		})
	})

	// -- Variants
	e.GET("/variants/overview", variantsMvc.GetVariantsOverview)

	e.POST("/variants/search", variantsMvc.VariantsSearch)
	e.POST("/variants/batch", variantsMvc.VariantsGetBatch)

	e.GET("/variants/single", variantsMvc.VariantsGetSingle,
		// middleware
		vsm.MandateProjectIdAttribute,
		vsm.CalibrateOptionalFamilyIdAttribute,
		vsm.MandateVariantTripleAttributes)

	e.POST("/variants/gene/:geneId", variantsMvc.VariantsGetByGene,
		// middleware
		vsm.MandateProjectIdAttribute)

	// -- Genes
	e.GET("/genes/search", genesMvc.GenesGetByNomenclatureWildcard)

	// Run
	e.Logger.Fatal(e.Start(":" + cfg.Api.Port))
}

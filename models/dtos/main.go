package dtos

import (
	"time"

	"varsearch/api/models/indexes"
	"varsearch/api/models/schemas"
)

// -- requests

type VariantSearchRequestDto struct {
	ProjectId string `json:"projectId"`
	FamilyId  string `json:"familyId"`

	VariantFilter   *schemas.VariantFilter   `json:"variantFilter"`
	GenotypeFilter  map[string]string        `json:"genotypeFilter"`
	QualityFilter   *schemas.QualityFilter   `json:"qualityFilter"`
	VariantIdFilter []string                 `json:"variantIdFilter"`

	IndivsToConsider       []string `json:"indivsToConsider"`
	IncludeAllConsequences bool     `json:"includeAllConsequences"`
	RequireAltInScope      *bool    `json:"requireAltInScope"`
}

type VariantBatchRequestDto struct {
	ProjectId string                   `json:"projectId"`
	FamilyId  string                   `json:"familyId"`
	Variants  []VariantPointRequestDto `json:"variants"`
}

type VariantPointRequestDto struct {
	XPos int64  `json:"xpos"`
	Ref  string `json:"ref"`
	Alt  string `json:"alt"`
}

// -- responses

type VariantsResponseDto struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	QueryId string `json:"queryId"`
	Count   int    `json:"count"`

	Results []*indexes.Variant `json:"results"`
}

type SingleVariantResponseDto struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	QueryId string `json:"queryId"`

	Result *indexes.Variant `json:"result"`
}

type GeneralError struct {
	Message string `json:"message"`
}

type GeneralErrorResponseDto struct {
	Code      int            `json:"code"`
	Message   string         `json:"message"`
	Timestamp time.Time      `json:"timestamp"`
	Errors    []GeneralError `json:"errors"`
}

type GenesResponseDto struct {
	Status  int                   `json:"status"`
	Message string                `json:"message"`
	Term    string                `json:"term"`
	Count   int                   `json:"count"`
	Results []indexes.GeneSummary `json:"results"`
}

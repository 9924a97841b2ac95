package sample

import "varsearch/api/models/constants"

const (
	DatasetTypeVariantCalls constants.DatasetType = "VARIANT_CALLS"
	DatasetTypeSV           constants.DatasetType = "SV"
	DatasetTypeRNA          constants.DatasetType = "RNA"

	StatusLoading constants.SampleStatus = "loading"
	StatusLoaded  constants.SampleStatus = "loaded"
	StatusFailed  constants.SampleStatus = "loading_failed"
)

package models

type Config struct {
	Debug bool `envconfig:"VARSEARCH_DEBUG"`

	Api struct {
		Port                string `envconfig:"VARSEARCH_API_INTERNAL_PORT"`
		RegistryPath        string `envconfig:"VARSEARCH_API_REGISTRY_PATH"`
		VariantQueryLimit   int    `envconfig:"VARSEARCH_API_VARIANT_QUERY_LIMIT" default:"5000"`
		GeneSearchLimit     int    `envconfig:"VARSEARCH_API_GENE_SEARCH_LIMIT" default:"9999"`
		VariantIndexPattern string `envconfig:"VARSEARCH_API_VARIANT_INDEX_PATTERN" default:"*"`
	}
	Elasticsearch struct {
		Url      string `envconfig:"VARSEARCH_ES_URL"`
		Username string `envconfig:"VARSEARCH_ES_USERNAME"`
		Password string `envconfig:"VARSEARCH_ES_PASSWORD"`
	}
	Redis struct {
		Url      string `envconfig:"VARSEARCH_REDIS_URL"`
		Password string `envconfig:"VARSEARCH_REDIS_PASSWORD"`
	}
	Liftover struct {
		Grch37To38ChainUrl string `envconfig:"VARSEARCH_LIFTOVER_37_TO_38_CHAIN_URL"`
		Grch38To37ChainUrl string `envconfig:"VARSEARCH_LIFTOVER_38_TO_37_CHAIN_URL"`
	}
}

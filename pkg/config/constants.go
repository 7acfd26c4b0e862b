package config

const (
	EnvPrefix = "ADEPA"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "ADEPA_DB_DSN"
	EnvDBHost = "ADEPA_DB_HOST"
	EnvDBUser = "ADEPA_DB_USER"
	EnvDBName = "ADEPA_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

package config

// EnvPrefix namespaces every environment variable the service reads.
const EnvPrefix = "EVDOCK"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "production"
)

const (
	EnvAppEnv   = "EVDOCK_APP_ENV"
	EnvPort     = "EVDOCK_APP_PORT"
	EnvLogLevel = "EVDOCK_LOG_LEVEL"

	EnvDBDSN  = "EVDOCK_DB_DSN"
	EnvDBHost = "EVDOCK_DB_HOST"
	EnvDBUser = "EVDOCK_DB_USER"
	EnvDBName = "EVDOCK_DB_NAME"

	EnvRedisURL = "EVDOCK_REDIS_URL"

	EnvGCPProjectID = "EVDOCK_GCP_PROJECT_ID"

	EnvPubSubOrdersTopic      = "EVDOCK_PUBSUB_ORDERS_TOPIC"
	EnvPubSubOrdersSub        = "EVDOCK_PUBSUB_ORDERS_SUBSCRIPTION"
	EnvPubSubAllocationsTopic = "EVDOCK_PUBSUB_ALLOCATIONS_TOPIC"
	EnvPubSubAllocationsSub   = "EVDOCK_PUBSUB_ALLOCATIONS_SUBSCRIPTION"
	EnvPubSubInventoryTopic   = "EVDOCK_PUBSUB_INVENTORY_TOPIC"
	EnvPubSubInventorySub     = "EVDOCK_PUBSUB_INVENTORY_SUBSCRIPTION"
)

// legacyDBEnvVars are the per-field variables accepted when EVDOCK_DB_DSN is unset.
var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

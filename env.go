package cartridge

// Environment variable names exported to extension scripts. The same
// names are used for the payload parameters the instance is spawned with.
const (
	EnvCartridgeKey       = "CARTRIDGE_KEY"
	EnvAppPath            = "APP_PATH"
	EnvServiceGroup       = "SERVICE_GROUP"
	EnvServiceName        = "SERVICE_NAME"
	EnvClusterID          = "CLUSTER_ID"
	EnvLBClusterID        = "LB_CLUSTER_ID"
	EnvNetworkPartitionID = "NETWORK_PARTITION_ID"
	EnvPartitionID        = "PARTITION_ID"
	EnvMemberID           = "MEMBER_ID"
	EnvTenantID           = "TENANT_ID"
	EnvRepoURL            = "REPO_URL"
	EnvPorts              = "PORTS"
	EnvDeployment         = "DEPLOYMENT"
	EnvManagerServiceType = "MANAGER_SERVICE_TYPE"
	EnvWorkerServiceType  = "WORKER_SERVICE_TYPE"

	EnvMultitenant        = "MULTITENANT"
	EnvClustering         = "CLUSTERING"
	EnvMinInstanceCount   = "MIN_COUNT"
	EnvCommitEnabled      = "COMMIT_ENABLED"
	EnvLogFilePaths       = "LOG_FILE_PATHS"
	EnvProvider           = "PROVIDER"
	EnvSubscriptionDomain = "SUBSCRIPTION_DOMAIN"
	EnvApplicationContext = "APPLICATION_CONTEXT"
	EnvCommitIDs          = "COMMIT_IDS"
)

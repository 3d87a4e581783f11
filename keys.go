package cartridge

// Property keys read from the agent properties file.
const (
	ExtensionsDirKey    = "extensions.dir"
	ExtensionTimeoutKey = "extension.timeout"
	MBIPKey             = "mb.ip"
	MBPortKey           = "mb.port"

	EnableArtifactUpdateKey   = "enable.artifact.update"
	ArtifactUpdateIntervalKey = "artifact.update.interval"
	AutoCommitKey             = "auto.commit"
	AutoCheckoutKey           = "auto.checkout"
	SuperTenantRepoPathKey    = "super.tenant.repository.path"
	TenantRepoPathKey         = "tenant.repository.path"
	RepoSyncTimeoutKey        = "repository.sync.timeout"
	TenantRangeKey            = "tenant.range"
	HealthStatsIntervalKey    = "health.stats.interval"
	PortCheckTimeoutKey       = "port.check.timeout"
	QueueSizeKey              = "queue.size"

	// Payload parameters handed over by the platform when the instance
	// was spawned. They share their names with the hook environment.
	payloadPrefix = "payload."
)

const (
	SuperTenantTempPath  = "/tmp/-1234/"
	TenantRangeDelimiter = "-"
)

// PayloadKey returns the property key of a payload parameter.
func PayloadKey(name string) string {
	return payloadPrefix + name
}

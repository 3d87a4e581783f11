package cartridge

import (
	"errors"
	"fmt"
	"net"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	defArtifactUpdateInterval = 10 * time.Second
	defExtensionTimeout       = 60 * time.Second
	defRepoSyncTimeout        = 120 * time.Second
	defHealthStatsInterval    = 15 * time.Second
	defPortCheckTimeout       = 60 * time.Second
	defQueueSize              = 256
	defMBIP                   = "localhost"
	defMBPort                 = 1883
	defExtensionsDir          = "/mnt/cartridge/extensions"
	defTenantRepoPath         = "/mnt/cartridge/repository/tenants"

	// SuperTenantID is the tenant ID of the platform owned tenant.
	SuperTenantID = -1234

	portsSeparator = "|"
)

var (
	errMissingMemberID       = errors.New("payload parameter MEMBER_ID is required")
	errMissingClusterID      = errors.New("payload parameter CLUSTER_ID is required")
	errInvalidInterval       = errors.New("artifact update interval must be positive")
	errInvalidTimeout        = errors.New("timeouts must be positive")
	errInvalidHealthInterval = errors.New("health statistics interval must be positive")
	errInvalidQueueSize      = errors.New("queue size must be positive")
)

// Deployment is the role an instance plays inside its service.
type Deployment string

const (
	DeploymentManager Deployment = "manager"
	DeploymentWorker  Deployment = "worker"
	DeploymentDefault Deployment = "default"
)

func ParseDeployment(s string) (Deployment, error) {
	switch Deployment(strings.ToLower(strings.TrimSpace(s))) {
	case DeploymentManager:
		return DeploymentManager, nil
	case DeploymentWorker:
		return DeploymentWorker, nil
	case DeploymentDefault, "":
		return DeploymentDefault, nil
	default:
		return "", fmt.Errorf("unknown deployment %q", s)
	}
}

// InstanceContext is the identity of the running instance. It is built
// once from the payload parameters and never changes afterwards.
type InstanceContext struct {
	MemberID           string
	ClusterID          string
	LBClusterID        string
	NetworkPartitionID string
	PartitionID        string
	ServiceName        string
	ServiceGroup       string
	Deployment         Deployment
	CartridgeKey       string
	AppPath            string
	TenantID           int
	RepoURL            string
	Ports              []int
	ManagerServiceType string
	WorkerServiceType  string
	Multitenant        bool
	Clustering         string
	Provider           string
	LogFilePaths       string
	MinInstanceCount   int
}

// PortsString renders the ports the way extension scripts expect them.
func (ic InstanceContext) PortsString() string {
	parts := make([]string, len(ic.Ports))
	for i, p := range ic.Ports {
		parts[i] = strconv.Itoa(p)
	}

	return strings.Join(parts, portsSeparator)
}

type ArtifactsConfig struct {
	UpdateEnabled  bool
	UpdateInterval time.Duration
	AutoCommit     bool
	AutoCheckout   bool
	CommitEnabled  bool
}

type RepositoryConfig struct {
	SuperTenantPath string
	TenantRoot      string
	SyncTimeout     time.Duration
}

type ExtensionsConfig struct {
	Dir     string
	Timeout time.Duration
	// Scripts overrides the script file name of a hook, keyed by the
	// hook's property key (extension.instance.started, ...).
	Scripts map[string]string
}

// Config is the agent configuration. It is constructed once at startup
// and shared read-only by every component.
type Config struct {
	Instance            InstanceContext
	Artifacts           ArtifactsConfig
	Repository          RepositoryConfig
	Extensions          ExtensionsConfig
	TenantRange         string
	HealthStatsInterval time.Duration
	PortCheckTimeout    time.Duration
	QueueSize           int

	// MessageBroker is the MQTT broker URL built from mb.ip and mb.port.
	MessageBroker string
}

// NewConfig reads the agent configuration out of props and validates it.
func NewConfig(props Properties) (*Config, error) {
	ic, err := newInstanceContext(props)
	if err != nil {
		return nil, err
	}

	var errs []error
	collect := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	cfg := &Config{
		Instance:    ic,
		TenantRange: props.String(TenantRangeKey, ""),
		Repository: RepositoryConfig{
			SuperTenantPath: props.String(SuperTenantRepoPathKey, SuperTenantTempPath),
			TenantRoot:      props.String(TenantRepoPathKey, defTenantRepoPath),
		},
		Extensions: ExtensionsConfig{
			Dir:     props.String(ExtensionsDirKey, defExtensionsDir),
			Scripts: make(map[string]string),
		},
	}

	cfg.Artifacts.UpdateEnabled, err = props.Bool(EnableArtifactUpdateKey, false)
	collect(err)
	cfg.Artifacts.UpdateInterval, err = props.Duration(ArtifactUpdateIntervalKey, defArtifactUpdateInterval)
	collect(err)
	cfg.Artifacts.AutoCommit, err = props.Bool(AutoCommitKey, false)
	collect(err)
	cfg.Artifacts.AutoCheckout, err = props.Bool(AutoCheckoutKey, true)
	collect(err)
	cfg.Artifacts.CommitEnabled, err = props.Bool(PayloadKey(EnvCommitEnabled), false)
	collect(err)
	cfg.Repository.SyncTimeout, err = props.Duration(RepoSyncTimeoutKey, defRepoSyncTimeout)
	collect(err)
	cfg.Extensions.Timeout, err = props.Duration(ExtensionTimeoutKey, defExtensionTimeout)
	collect(err)
	cfg.HealthStatsInterval, err = props.Duration(HealthStatsIntervalKey, defHealthStatsInterval)
	collect(err)
	cfg.PortCheckTimeout, err = props.Duration(PortCheckTimeoutKey, defPortCheckTimeout)
	collect(err)
	cfg.QueueSize, err = props.Int(QueueSizeKey, defQueueSize)
	collect(err)

	mbPort, err := props.Int(MBPortKey, defMBPort)
	collect(err)
	cfg.MessageBroker = "tcp://" + net.JoinHostPort(props.String(MBIPKey, defMBIP), strconv.Itoa(mbPort))

	for k, v := range props.Flatten("extension") {
		if k != ExtensionTimeoutKey && v != "" {
			cfg.Extensions.Scripts[k] = v
		}
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func newInstanceContext(props Properties) (InstanceContext, error) {
	param := func(name string) string {
		return props.String(PayloadKey(name), "")
	}

	deployment, err := ParseDeployment(param(EnvDeployment))
	if err != nil {
		return InstanceContext{}, err
	}

	tenantID := SuperTenantID
	if v := param(EnvTenantID); v != "" {
		if tenantID, err = strconv.Atoi(v); err != nil {
			return InstanceContext{}, fmt.Errorf("payload parameter TENANT_ID: %w", err)
		}
	}

	ports, err := parsePorts(param(EnvPorts))
	if err != nil {
		return InstanceContext{}, err
	}

	multitenant, err := props.Bool(PayloadKey(EnvMultitenant), false)
	if err != nil {
		return InstanceContext{}, err
	}

	minCount, err := props.Int(PayloadKey(EnvMinInstanceCount), 1)
	if err != nil {
		return InstanceContext{}, err
	}

	return InstanceContext{
		MemberID:           param(EnvMemberID),
		ClusterID:          param(EnvClusterID),
		LBClusterID:        param(EnvLBClusterID),
		NetworkPartitionID: param(EnvNetworkPartitionID),
		PartitionID:        param(EnvPartitionID),
		ServiceName:        param(EnvServiceName),
		ServiceGroup:       param(EnvServiceGroup),
		Deployment:         deployment,
		CartridgeKey:       param(EnvCartridgeKey),
		AppPath:            param(EnvAppPath),
		TenantID:           tenantID,
		RepoURL:            param(EnvRepoURL),
		Ports:              ports,
		ManagerServiceType: param(EnvManagerServiceType),
		WorkerServiceType:  param(EnvWorkerServiceType),
		Multitenant:        multitenant,
		Clustering:         param(EnvClustering),
		Provider:           param(EnvProvider),
		LogFilePaths:       param(EnvLogFilePaths),
		MinInstanceCount:   minCount,
	}, nil
}

func parsePorts(s string) ([]int, error) {
	if s == "" {
		return nil, nil
	}

	var ports []int
	for _, f := range strings.FieldsFunc(s, func(r rune) bool { return r == '|' || r == ',' }) {
		p, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return nil, fmt.Errorf("payload parameter PORTS: %w", err)
		}
		ports = append(ports, p)
	}

	return ports, nil
}

func (c *Config) Validate() error {
	if c.Instance.MemberID == "" {
		return errMissingMemberID
	}
	if c.Instance.ClusterID == "" {
		return errMissingClusterID
	}
	if c.Artifacts.UpdateInterval <= 0 {
		return errInvalidInterval
	}
	if c.Extensions.Timeout <= 0 || c.Repository.SyncTimeout <= 0 || c.PortCheckTimeout <= 0 {
		return errInvalidTimeout
	}
	if c.HealthStatsInterval <= 0 {
		return errInvalidHealthInterval
	}
	if c.QueueSize <= 0 {
		return errInvalidQueueSize
	}

	return nil
}

// RepoPath returns the local checkout path of tenantID's artifact
// repository.
func (c *Config) RepoPath(tenantID int) string {
	if tenantID == SuperTenantID {
		return c.Repository.SuperTenantPath
	}

	return filepath.Join(c.Repository.TenantRoot, strconv.Itoa(tenantID))
}

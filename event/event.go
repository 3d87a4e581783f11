package event

// Kind tags the variant of an Event.
type Kind uint8

const (
	Unknown Kind = iota

	// Topology events.
	MemberActivated
	MemberTerminated
	MemberSuspended
	MemberStarted
	CompleteTopology

	// Tenant events.
	TenantSubscribed
	TenantUnsubscribed
	DomainAdded
	DomainRemoved
	CompleteTenant

	// Instance notifier events.
	ArtifactUpdated
	InstanceCleanupMember
	InstanceCleanupCluster

	// Echoes of what instances publish themselves, this one included.
	InstanceStatus
	HealthStat

	// ArtifactUpdateTick is produced by the agent's own artifact update
	// timer, never by the broker.
	ArtifactUpdateTick
)

var kindNames = map[Kind]string{
	Unknown:                "Unknown",
	MemberActivated:        "MemberActivated",
	MemberTerminated:       "MemberTerminated",
	MemberSuspended:        "MemberSuspended",
	MemberStarted:          "MemberStarted",
	CompleteTopology:       "CompleteTopology",
	TenantSubscribed:       "TenantSubscribed",
	TenantUnsubscribed:     "TenantUnsubscribed",
	DomainAdded:            "DomainAdded",
	DomainRemoved:          "DomainRemoved",
	CompleteTenant:         "CompleteTenant",
	ArtifactUpdated:        "ArtifactUpdated",
	InstanceCleanupMember:  "InstanceCleanupMember",
	InstanceCleanupCluster: "InstanceCleanupCluster",
	InstanceStatus:         "InstanceStatus",
	HealthStat:             "HealthStat",
	ArtifactUpdateTick:     "ArtifactUpdateTick",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}

	return kindNames[Unknown]
}

// TenantScoped reports whether events of this kind must pass the tenant
// partition check before they affect the instance.
func (k Kind) TenantScoped() bool {
	switch k {
	case TenantSubscribed, TenantUnsubscribed, DomainAdded, DomainRemoved:
		return true
	default:
		return false
	}
}

// Event is a decoded lifecycle message.
type Event struct {
	Kind  Kind
	Topic string
	// Name is the event name carried in the last topic segment.
	Name string

	ServiceName        string
	ClusterID          string
	ClusterIDs         []string
	NetworkPartitionID string
	PartitionID        string
	MemberID           string

	TenantID    int
	HasTenant   bool
	TenantRange string

	Domain             string
	ApplicationContext string

	RepoURL       string
	RepoUsername  string
	RepoPassword  string
	CommitEnabled bool

	Payload map[string]any
}

func NewTick() Event {
	return Event{Kind: ArtifactUpdateTick, Name: ArtifactUpdateTick.String()}
}

// InCluster reports whether the event addresses clusterID, either
// directly or through its cluster list.
func (e Event) InCluster(clusterID string) bool {
	if e.ClusterID == clusterID {
		return true
	}
	for _, id := range e.ClusterIDs {
		if id == clusterID {
			return true
		}
	}

	return false
}

// ClusterTenantRange looks clusterID up in a complete topology payload
// and returns the tenant range the cluster serves.
func (e Event) ClusterTenantRange(clusterID string) (string, bool) {
	topology, ok := e.Payload["topology"].(map[string]any)
	if !ok {
		topology = e.Payload
	}

	services, _ := topology["serviceMap"].(map[string]any)
	for _, s := range services {
		service, ok := s.(map[string]any)
		if !ok {
			continue
		}
		clusters, _ := service["clusterIdClusterMap"].(map[string]any)
		cluster, ok := clusters[clusterID].(map[string]any)
		if !ok {
			continue
		}
		rng, ok := cluster["tenantRange"].(string)

		return rng, ok
	}

	return "", false
}

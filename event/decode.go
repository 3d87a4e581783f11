package event

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrDecode       = errors.New("failed to decode event")
	errEmptyTopic   = errors.New("empty topic")
	errMissingField = errors.New("missing field")
)

const (
	topologyPrefix  = "topology/"
	tenantPrefix    = "tenant/"
	notifierPrefix  = "instance/notifier/"
	statusPrefix    = "instance/status/"
	healthPrefix    = "health/"
	topicSeparator  = "/"
	eventNameSuffix = "Event"
)

var topologyEvents = map[string]Kind{
	"MemberActivated":  MemberActivated,
	"MemberTerminated": MemberTerminated,
	"MemberSuspended":  MemberSuspended,
	"MemberStarted":    MemberStarted,
	"CompleteTopology": CompleteTopology,
}

var tenantEvents = map[string]Kind{
	"TenantSubscribed":          TenantSubscribed,
	"TenantUnsubscribed":        TenantUnsubscribed,
	"TenantUnSubscribed":        TenantUnsubscribed,
	"SubscriptionDomainAdded":   DomainAdded,
	"SubscriptionDomainRemoved": DomainRemoved,
	"CompleteTenant":            CompleteTenant,
}

var notifierEvents = map[string]Kind{
	"ArtifactUpdated":        ArtifactUpdated,
	"InstanceCleanupMember":  InstanceCleanupMember,
	"InstanceCleanupCluster": InstanceCleanupCluster,
}

type wire struct {
	ServiceName        string   `json:"serviceName"`
	ClusterID          string   `json:"clusterId"`
	ClusterIDs         []string `json:"clusterIds"`
	NetworkPartitionID string   `json:"networkPartitionId"`
	PartitionID        string   `json:"partitionId"`
	MemberID           string   `json:"memberId"`
	TenantID           *int     `json:"tenantId"`
	TenantRange        string   `json:"tenantRange"`
	DomainName         string   `json:"domainName"`
	ApplicationContext string   `json:"applicationContext"`
	RepoURL            string   `json:"repoURL"`
	RepoUsername       string   `json:"repoUserName"`
	RepoPassword       string   `json:"repoPassword"`
	CommitEnabled      bool     `json:"commitEnabled"`
}

// Decode turns a raw message into an Event. Messages on known topics
// whose event name is not recognised decode to Unknown so that the
// caller decides what to ignore. All failures wrap ErrDecode.
func Decode(topic string, payload []byte) (Event, error) {
	if topic == "" {
		return Event{}, errors.Join(ErrDecode, errEmptyTopic)
	}

	name := topic[strings.LastIndex(topic, topicSeparator)+1:]
	ev := Event{
		Kind:  kindOf(topic, strings.TrimSuffix(name, eventNameSuffix)),
		Topic: topic,
		Name:  name,
	}

	var w wire
	if err := json.Unmarshal(payload, &w); err != nil {
		return Event{}, fmt.Errorf("%w: %s: %w", ErrDecode, topic, err)
	}
	if err := json.Unmarshal(payload, &ev.Payload); err != nil {
		return Event{}, fmt.Errorf("%w: %s: %w", ErrDecode, topic, err)
	}

	ev.ServiceName = w.ServiceName
	ev.ClusterID = w.ClusterID
	ev.ClusterIDs = w.ClusterIDs
	ev.NetworkPartitionID = w.NetworkPartitionID
	ev.PartitionID = w.PartitionID
	ev.MemberID = w.MemberID
	ev.TenantRange = w.TenantRange
	ev.Domain = w.DomainName
	ev.ApplicationContext = w.ApplicationContext
	ev.RepoURL = w.RepoURL
	ev.RepoUsername = w.RepoUsername
	ev.RepoPassword = w.RepoPassword
	ev.CommitEnabled = w.CommitEnabled
	if w.TenantID != nil {
		ev.TenantID = *w.TenantID
		ev.HasTenant = true
	}

	if err := validate(ev); err != nil {
		return Event{}, fmt.Errorf("%w: %s: %w", ErrDecode, topic, err)
	}

	return ev, nil
}

func kindOf(topic, name string) Kind {
	var table map[string]Kind
	switch {
	case strings.HasPrefix(topic, topologyPrefix):
		table = topologyEvents
	case strings.HasPrefix(topic, tenantPrefix):
		table = tenantEvents
	case strings.HasPrefix(topic, notifierPrefix):
		table = notifierEvents
	case strings.HasPrefix(topic, statusPrefix):
		return InstanceStatus
	case strings.HasPrefix(topic, healthPrefix):
		return HealthStat
	default:
		return Unknown
	}

	if k, ok := table[name]; ok {
		return k
	}

	return Unknown
}

func validate(ev Event) error {
	missing := func(field string) error {
		return fmt.Errorf("%w: %s", errMissingField, field)
	}

	switch ev.Kind {
	case MemberActivated, MemberTerminated, MemberSuspended, MemberStarted:
		if ev.MemberID == "" {
			return missing("memberId")
		}
		if ev.ClusterID == "" {
			return missing("clusterId")
		}
	case TenantSubscribed, TenantUnsubscribed:
		if !ev.HasTenant {
			return missing("tenantId")
		}
	case DomainAdded, DomainRemoved:
		if !ev.HasTenant {
			return missing("tenantId")
		}
		if ev.Domain == "" {
			return missing("domainName")
		}
	case ArtifactUpdated:
		if ev.ClusterID == "" {
			return missing("clusterId")
		}
		if ev.RepoURL == "" {
			return missing("repoURL")
		}
	case InstanceCleanupMember:
		if ev.MemberID == "" {
			return missing("memberId")
		}
	case InstanceCleanupCluster:
		if ev.ClusterID == "" {
			return missing("clusterId")
		}
	}

	return nil
}

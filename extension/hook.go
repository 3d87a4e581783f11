package extension

import "github.com/absmach/cartridge"

// Hook is a lifecycle extension point. The set is closed: every hook
// carries its property key, its default script and the environment it
// cannot run without.
type Hook uint8

const (
	InstanceStarted Hook = iota + 1
	StartServers
	InstanceActivated
	ArtifactsUpdated
	Clean
	MountVolumes
	MemberActivated
	MemberTerminated
	MemberSuspended
	MemberStarted
	CompleteTopology
	CompleteTenant
	SubscriptionDomainAdded
	SubscriptionDomainRemoved
	TenantSubscribed
	TenantUnsubscribed
	ArtifactsCopy

	lastHook = ArtifactsCopy
)

type definition struct {
	key      string
	script   string
	required []string
}

var identity = []string{cartridge.EnvMemberID, cartridge.EnvClusterID}

var definitions = [...]definition{
	InstanceStarted:           {key: "extension.instance.started", script: "instance-started.sh", required: identity},
	StartServers:              {key: "extension.start.servers", script: "start-servers.sh", required: identity},
	InstanceActivated:         {key: "extension.instance.activated", script: "instance-activated.sh", required: identity},
	ArtifactsUpdated:          {key: "extension.artifacts.updated", script: "artifacts-updated.sh", required: []string{cartridge.EnvMemberID, cartridge.EnvClusterID, cartridge.EnvTenantID}},
	Clean:                     {key: "extension.clean", script: "clean.sh", required: identity},
	MountVolumes:              {key: "extension.mount.volumes", script: "mount_volumes.sh", required: identity},
	MemberActivated:           {key: "extension.member.activated", script: "member-activated.sh", required: identity},
	MemberTerminated:          {key: "extension.member.terminated", script: "member-terminated.sh", required: identity},
	MemberSuspended:           {key: "extension.member.suspended", script: "member-suspended.sh", required: identity},
	MemberStarted:             {key: "extension.member.started", script: "member-started.sh", required: identity},
	CompleteTopology:          {key: "extension.complete.topology", script: "complete-topology.sh", required: identity},
	CompleteTenant:            {key: "extension.complete.tenant", script: "complete-tenant.sh", required: identity},
	SubscriptionDomainAdded:   {key: "extension.subscription.domain.added", script: "subscription-domain-added.sh", required: []string{cartridge.EnvTenantID, cartridge.EnvSubscriptionDomain}},
	SubscriptionDomainRemoved: {key: "extension.subscription.domain.removed", script: "subscription-domain-removed.sh", required: []string{cartridge.EnvTenantID, cartridge.EnvSubscriptionDomain}},
	TenantSubscribed:          {key: "extension.tenant.subscribed", script: "tenant-subscribed.sh", required: []string{cartridge.EnvTenantID}},
	TenantUnsubscribed:        {key: "extension.tenant.unsubscribed", script: "tenant-unsubscribed.sh", required: []string{cartridge.EnvTenantID}},
	ArtifactsCopy:             {key: "extension.artifacts.copy", script: "artifacts-copy.sh", required: []string{cartridge.EnvMemberID, cartridge.EnvClusterID, cartridge.EnvTenantID}},
}

// Hooks returns every defined hook.
func Hooks() []Hook {
	hooks := make([]Hook, 0, lastHook)
	for h := InstanceStarted; h <= lastHook; h++ {
		hooks = append(hooks, h)
	}

	return hooks
}

func (h Hook) Valid() bool {
	return h >= InstanceStarted && h <= lastHook
}

// Key is the property key naming the hook, e.g. extension.instance.activated.
func (h Hook) Key() string {
	if !h.Valid() {
		return ""
	}

	return definitions[h].key
}

// Script returns the script file name of the hook, honouring overrides
// keyed by the hook's property key.
func (h Hook) Script(overrides map[string]string) string {
	if !h.Valid() {
		return ""
	}
	if s, ok := overrides[definitions[h].key]; ok && s != "" {
		return s
	}

	return definitions[h].script
}

func (h Hook) Required() []string {
	if !h.Valid() {
		return nil
	}

	return definitions[h].required
}

func (h Hook) String() string {
	if !h.Valid() {
		return "unknown"
	}

	return definitions[h].key
}

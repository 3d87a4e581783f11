package event

// Topic patterns the agent subscribes to.
const (
	InstanceNotifierTopic = "instance/#"
	HealthStatTopic       = "health/#"
	TopologyTopic         = "topology/#"
	TenantTopic           = "tenant/#"
	InstanceStatusTopic   = "instance/#"
)

// Topics published by the agent.
const (
	InstanceStartedTopic         = "instance/status/InstanceStartedEvent"
	InstanceActivatedTopic       = "instance/status/InstanceActivatedEvent"
	InstanceReadyToShutdownTopic = "instance/status/InstanceReadyToShutdownEvent"
	InstanceFailureTopic         = "instance/status/InstanceFailureEvent"
	HealthStatTopicTemplate      = "health/member/%s"
)

// Subscriptions returns the distinct patterns to subscribe to. Instance
// status and instance notifier messages share one pattern.
func Subscriptions() []string {
	return []string{InstanceNotifierTopic, HealthStatTopic, TopologyTopic, TenantTopic}
}

package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"time"

	"github.com/absmach/cartridge"
	"github.com/absmach/cartridge/event"
	pkgmqtt "github.com/absmach/cartridge/pkg/mqtt"
	"github.com/google/uuid"
)

const (
	portDialTimeout  = time.Second
	portPollInterval = 500 * time.Millisecond
)

var ErrPortsUnavailable = errors.New("ports did not become available")

// Reporter announces the instance's progress and failures to the rest of
// the platform.
type Reporter interface {
	InstanceStarted(ctx context.Context) error
	// InstanceActivated waits for the instance ports to accept
	// connections before it announces activation.
	InstanceActivated(ctx context.Context) error
	ReadyToShutdown(ctx context.Context) error
	ReportFailure(ctx context.Context, err error)
}

type statusMessage struct {
	ID                 string `json:"id"`
	ServiceName        string `json:"serviceName"`
	ClusterID          string `json:"clusterId"`
	NetworkPartitionID string `json:"networkPartitionId"`
	PartitionID        string `json:"partitionId"`
	MemberID           string `json:"memberId"`
	Timestamp          int64  `json:"timestamp"`
	Message            string `json:"message,omitempty"`
}

type publisher struct {
	ic          cartridge.InstanceContext
	portTimeout time.Duration
	pubsub      pkgmqtt.PubSub
	logger      *slog.Logger
}

func NewReporter(cfg *cartridge.Config, pubsub pkgmqtt.PubSub, logger *slog.Logger) Reporter {
	return &publisher{
		ic:          cfg.Instance,
		portTimeout: cfg.PortCheckTimeout,
		pubsub:      pubsub,
		logger:      logger,
	}
}

// LastWill is registered with the broker so that the platform learns
// about an agent that vanished without terminating.
func LastWill(ic cartridge.InstanceContext) *pkgmqtt.Will {
	p := publisher{ic: ic}

	return &pkgmqtt.Will{
		Topic:   event.InstanceFailureTopic,
		Payload: p.status("agent connection lost"),
	}
}

func (p *publisher) InstanceStarted(ctx context.Context) error {
	return p.publish(ctx, event.InstanceStartedTopic, "")
}

func (p *publisher) InstanceActivated(ctx context.Context) error {
	if err := waitForPorts(ctx, p.ic.Ports, p.portTimeout); err != nil {
		if ctx.Err() == nil {
			p.portsNotOpen(ctx)
		}

		return err
	}

	return p.publish(ctx, event.InstanceActivatedTopic, "")
}

func (p *publisher) portsNotOpen(ctx context.Context) {
	stat := HealthStat{
		ClusterID:          p.ic.ClusterID,
		NetworkPartitionID: p.ic.NetworkPartitionID,
		MemberID:           p.ic.MemberID,
		PartitionID:        p.ic.PartitionID,
		Health:             PortsNotOpen,
		Value:              1,
	}
	topic := fmt.Sprintf(event.HealthStatTopicTemplate, p.ic.MemberID)
	if err := p.pubsub.Publish(ctx, topic, stat); err != nil {
		p.logger.Warn("failed to publish ports_not_open", slog.Any("error", err))
	}
}

func (p *publisher) ReadyToShutdown(ctx context.Context) error {
	return p.publish(ctx, event.InstanceReadyToShutdownTopic, "")
}

func (p *publisher) ReportFailure(ctx context.Context, err error) {
	p.logger.Error("instance failure", slog.Any("error", err))

	if perr := p.publish(ctx, event.InstanceFailureTopic, err.Error()); perr != nil {
		p.logger.Warn("failed to report instance failure", slog.Any("error", perr))
	}
}

func (p *publisher) status(message string) statusMessage {
	return statusMessage{
		ID:                 uuid.NewString(),
		ServiceName:        p.ic.ServiceName,
		ClusterID:          p.ic.ClusterID,
		NetworkPartitionID: p.ic.NetworkPartitionID,
		PartitionID:        p.ic.PartitionID,
		MemberID:           p.ic.MemberID,
		Timestamp:          time.Now().UnixMilli(),
		Message:            message,
	}
}

func (p *publisher) publish(ctx context.Context, topic, message string) error {
	if err := p.pubsub.Publish(ctx, topic, p.status(message)); err != nil {
		return fmt.Errorf("failed to publish %s: %w", topic, err)
	}
	p.logger.Debug("published instance status", slog.String("topic", topic))

	return nil
}

// waitForPorts blocks until every local port accepts TCP connections or
// the timeout passes.
func waitForPorts(ctx context.Context, ports []int, timeout time.Duration) error {
	if len(ports) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	dialer := net.Dialer{Timeout: portDialTimeout}
	pending := append([]int(nil), ports...)

	for {
		var closed []int
		for _, port := range pending {
			conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort("localhost", strconv.Itoa(port)))
			if err != nil {
				closed = append(closed, port)

				continue
			}
			conn.Close()
		}
		if len(closed) == 0 {
			return nil
		}
		pending = closed

		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %v: %w", ErrPortsUnavailable, pending, ctx.Err())
		case <-time.After(portPollInterval):
		}
	}
}

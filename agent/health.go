package agent

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/absmach/cartridge"
	"github.com/absmach/cartridge/event"
	pkgmqtt "github.com/absmach/cartridge/pkg/mqtt"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
)

const (
	MemoryConsumption = "memory_consumption"
	LoadAverage       = "load_average"
	// PortsNotOpen is published once when the instance ports never opened.
	PortsNotOpen = "ports_not_open"
)

// HealthStat is one sample published on the member's health topic.
type HealthStat struct {
	ClusterID          string  `json:"clusterId"`
	NetworkPartitionID string  `json:"networkPartitionId"`
	MemberID           string  `json:"memberId"`
	PartitionID        string  `json:"partitionId"`
	Health             string  `json:"health"`
	Value              float64 `json:"value"`
}

// Sampler reads the host statistics reported as member health.
type Sampler interface {
	Sample(ctx context.Context) (map[string]float64, error)
}

type hostSampler struct{}

func NewHostSampler() Sampler {
	return hostSampler{}
}

func (hostSampler) Sample(ctx context.Context) (map[string]float64, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read memory usage: %w", err)
	}

	avg, err := load.AvgWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read load average: %w", err)
	}

	return map[string]float64{
		MemoryConsumption: vm.UsedPercent,
		LoadAverage:       avg.Load1,
	}, nil
}

type HealthPublisher struct {
	ic       cartridge.InstanceContext
	interval time.Duration
	sampler  Sampler
	pubsub   pkgmqtt.PubSub
	logger   *slog.Logger
}

func NewHealthPublisher(cfg *cartridge.Config, sampler Sampler, pubsub pkgmqtt.PubSub, logger *slog.Logger) *HealthPublisher {
	return &HealthPublisher{
		ic:       cfg.Instance,
		interval: cfg.HealthStatsInterval,
		sampler:  sampler,
		pubsub:   pubsub,
		logger:   logger,
	}
}

// Run publishes health samples until ctx is done.
func (h *HealthPublisher) Run(ctx context.Context) error {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.logger.Info("stopping health statistics publisher")

			return nil
		case <-ticker.C:
			if err := h.Publish(ctx); err != nil {
				h.logger.Warn("failed to publish health statistics", slog.Any("error", err))
			}
		}
	}
}

func (h *HealthPublisher) Publish(ctx context.Context) error {
	samples, err := h.sampler.Sample(ctx)
	if err != nil {
		return err
	}

	topic := fmt.Sprintf(event.HealthStatTopicTemplate, h.ic.MemberID)
	for _, name := range []string{MemoryConsumption, LoadAverage} {
		value, ok := samples[name]
		if !ok {
			continue
		}
		stat := HealthStat{
			ClusterID:          h.ic.ClusterID,
			NetworkPartitionID: h.ic.NetworkPartitionID,
			MemberID:           h.ic.MemberID,
			PartitionID:        h.ic.PartitionID,
			Health:             name,
			Value:              value,
		}
		if err := h.pubsub.Publish(ctx, topic, stat); err != nil {
			return fmt.Errorf("failed to publish %s: %w", name, err)
		}
	}

	return nil
}

package agent_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/absmach/cartridge/agent"
	mqttmocks "github.com/absmach/cartridge/pkg/mqtt/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

const healthTopic = "health/member/" + memberID

type sampler func(ctx context.Context) (map[string]float64, error)

func (s sampler) Sample(ctx context.Context) (map[string]float64, error) {
	return s(ctx)
}

func fixedSample(values map[string]float64, err error) sampler {
	return func(context.Context) (map[string]float64, error) {
		return values, err
	}
}

func isStat(health string, value float64) any {
	return mock.MatchedBy(func(s agent.HealthStat) bool {
		return s.Health == health && s.Value == value && s.MemberID == memberID && s.ClusterID == clusterID
	})
}

func TestHealthPublish(t *testing.T) {
	t.Parallel()

	errSample := errors.New("proc unavailable")
	errPublish := errors.New("broker down")

	cases := []struct {
		desc    string
		sampler sampler
		setup   func(ps *mqttmocks.PubSub)
		err     error
	}{
		{
			desc:    "both statistics",
			sampler: fixedSample(map[string]float64{agent.MemoryConsumption: 41.5, agent.LoadAverage: 0.7}, nil),
			setup: func(ps *mqttmocks.PubSub) {
				ps.On("Publish", mock.Anything, healthTopic, isStat(agent.MemoryConsumption, 41.5)).Return(nil).Once()
				ps.On("Publish", mock.Anything, healthTopic, isStat(agent.LoadAverage, 0.7)).Return(nil).Once()
			},
		},
		{
			desc:    "missing sample skipped",
			sampler: fixedSample(map[string]float64{agent.LoadAverage: 1.2}, nil),
			setup: func(ps *mqttmocks.PubSub) {
				ps.On("Publish", mock.Anything, healthTopic, isStat(agent.LoadAverage, 1.2)).Return(nil).Once()
			},
		},
		{
			desc:    "sampler failure",
			sampler: fixedSample(nil, errSample),
			setup:   func(*mqttmocks.PubSub) {},
			err:     errSample,
		},
		{
			desc:    "publish failure",
			sampler: fixedSample(map[string]float64{agent.MemoryConsumption: 10}, nil),
			setup: func(ps *mqttmocks.PubSub) {
				ps.On("Publish", mock.Anything, healthTopic, mock.Anything).Return(errPublish).Once()
			},
			err: errPublish,
		},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			t.Parallel()

			pubsub := mqttmocks.NewPubSub(t)
			tc.setup(pubsub)

			hp := agent.NewHealthPublisher(testConfig(), tc.sampler, pubsub, slog.Default())
			err := hp.Publish(context.Background())
			assert.ErrorIs(t, err, tc.err)
		})
	}
}

func TestHealthRun(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.HealthStatsInterval = 10 * time.Millisecond

	published := make(chan struct{}, 1)
	pubsub := mqttmocks.NewPubSub(t)
	pubsub.On("Publish", mock.Anything, healthTopic, mock.Anything).
		Run(func(mock.Arguments) {
			select {
			case published <- struct{}{}:
			default:
			}
		}).
		Return(nil)

	ctx, cancel := context.WithCancel(context.Background())
	hp := agent.NewHealthPublisher(cfg, fixedSample(map[string]float64{agent.LoadAverage: 0.1}, nil), pubsub, slog.Default())

	done := make(chan error, 1)
	go func() { done <- hp.Run(ctx) }()

	select {
	case <-published:
	case <-time.After(waitFor):
		t.Fatal("no health statistics published")
	}
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(waitFor):
		t.Fatal("health publisher did not stop")
	}
}

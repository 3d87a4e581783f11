package agent_test

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/absmach/cartridge/agent"
	"github.com/absmach/cartridge/event"
	pkgmqtt "github.com/absmach/cartridge/pkg/mqtt"
	mqttmocks "github.com/absmach/cartridge/pkg/mqtt/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type queue struct {
	mu     sync.Mutex
	err    error
	events []event.Event
}

func (q *queue) Enqueue(_ context.Context, ev event.Event) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.err != nil {
		return q.err
	}
	q.events = append(q.events, ev)

	return nil
}

func subscribe(t *testing.T, q agent.Queue) pkgmqtt.Handler {
	t.Helper()

	pubsub := mqttmocks.NewPubSub(t)
	var handler pkgmqtt.Handler
	for _, topic := range event.Subscriptions() {
		pubsub.On("Subscribe", mock.Anything, topic, mock.Anything).
			Run(func(args mock.Arguments) {
				handler = args.Get(2).(pkgmqtt.Handler)
			}).
			Return(nil).
			Once()
	}

	require.NoError(t, agent.Subscribe(context.Background(), pubsub, q, slog.Default()))
	require.NotNil(t, handler)

	return handler
}

func TestSubscribe(t *testing.T) {
	t.Parallel()

	errQueue := errors.New("queue unavailable")

	cases := []struct {
		desc     string
		topic    string
		payload  string
		queueErr error
		enqueued int
		err      error
	}{
		{
			desc:     "valid event",
			topic:    "topology/MemberActivatedEvent",
			payload:  `{"serviceName":"php","clusterId":"php.c1","memberId":"m1"}`,
			enqueued: 1,
		},
		{
			desc:    "malformed payload",
			topic:   "topology/MemberActivatedEvent",
			payload: `{"memberId":`,
		},
		{
			desc:     "agent terminated",
			topic:    "tenant/TenantSubscribedEvent",
			payload:  `{"tenantId":42}`,
			queueErr: agent.ErrTerminated,
		},
		{
			desc:     "caller cancelled",
			topic:    "tenant/TenantSubscribedEvent",
			payload:  `{"tenantId":42}`,
			queueErr: context.Canceled,
		},
		{
			desc:     "queue failure",
			topic:    "tenant/TenantSubscribedEvent",
			payload:  `{"tenantId":42}`,
			queueErr: errQueue,
			err:      errQueue,
		},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			t.Parallel()

			q := &queue{err: tc.queueErr}
			handler := subscribe(t, q)

			err := handler(tc.topic, []byte(tc.payload))
			assert.ErrorIs(t, err, tc.err)
			assert.Len(t, q.events, tc.enqueued)
		})
	}
}

func TestSubscribeFailure(t *testing.T) {
	t.Parallel()

	errBroker := errors.New("not connected")
	pubsub := mqttmocks.NewPubSub(t)
	pubsub.On("Subscribe", mock.Anything, event.Subscriptions()[0], mock.Anything).Return(errBroker).Once()

	err := agent.Subscribe(context.Background(), pubsub, &queue{}, slog.Default())
	assert.ErrorIs(t, err, errBroker)
}

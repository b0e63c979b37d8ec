package application_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/unreadwatch/internal/application"
)

func TestScheduler_RunsImmediatelyAndRepeats(t *testing.T) {
	f := newAgentFixture(signedIn(true, 0), 0)

	sched, err := application.NewScheduler(f.svc, application.Schedule{Every: 20 * time.Millisecond}, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, sched.Start(ctx))

	assert.Eventually(t, func() bool { return f.counter.callCount() >= 2 }, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, sched.Stop())
}

func TestScheduler_RejectsBadCron(t *testing.T) {
	f := newAgentFixture(signedIn(true, 0), 0)

	sched, err := application.NewScheduler(f.svc, application.Schedule{Cron: "not a cron"}, nil)
	require.NoError(t, err)

	require.Error(t, sched.Start(context.Background()))
	_ = sched.Stop()
}

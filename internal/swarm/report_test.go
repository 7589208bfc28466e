package swarm

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport() *Report {
	r := NewReport()
	r.Add(Outcome{Machine: "swarm-manager-0", Role: RoleManager, Step: StepCreate, Duration: time.Second})
	r.Add(Outcome{Machine: "swarm-worker-0", Role: RoleWorker, Step: StepCreate, Err: errors.New("quota")})
	r.Add(Outcome{Machine: "swarm-manager-0", Role: RoleManager, Step: StepInit})
	r.Add(Outcome{Machine: "swarm-worker-0", Role: RoleWorker, Step: StepJoin, Err: errors.New("exit status 1")})
	r.Add(Outcome{Machine: "swarm-worker-1", Role: RoleWorker, Step: StepJoin})
	return r
}

func TestReport_Aggregates(t *testing.T) {
	t.Parallel()

	r := sampleReport()

	assert.False(t, r.Healthy())
	assert.Len(t, r.Failed(), 2)
	assert.Len(t, r.ForStep(StepCreate), 2)
	assert.Equal(t, []string{"swarm-manager-0", "swarm-worker-1"}, r.Members())
	assert.Equal(t, "create 1/2, init 1/1, join 1/2", r.Summary())

	err := r.Err()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create swarm-worker-0: quota")
	assert.Contains(t, err.Error(), "join swarm-worker-0: exit status 1")
}

func TestReport_Healthy(t *testing.T) {
	t.Parallel()

	r := NewReport()
	assert.True(t, r.Healthy())
	assert.NoError(t, r.Err())
	assert.Equal(t, "nothing to do", r.Summary())

	r.Add(Outcome{Machine: "swarm-worker-0", Step: StepJoin, Err: ErrInitializerFailed, Skipped: true})
	assert.False(t, r.Healthy())
	assert.Empty(t, r.Members())
}

func TestReport_MergeAndCopy(t *testing.T) {
	t.Parallel()

	r := NewReport()
	r.Merge(sampleReport())
	r.Merge(nil)
	assert.Len(t, r.Outcomes(), 5)

	out := r.Outcomes()
	out[0].Machine = "changed"
	assert.Equal(t, "swarm-manager-0", r.Outcomes()[0].Machine)
}

func TestOutcome_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "join swarm-worker-0: skipped (swarm initializer failed)",
		Outcome{Machine: "swarm-worker-0", Step: StepJoin, Err: ErrInitializerFailed, Skipped: true}.String())
	assert.Equal(t, "destroy swarm-worker-0: locked",
		Outcome{Machine: "swarm-worker-0", Step: StepDestroy, Err: errors.New("locked")}.String())
	assert.Equal(t, "create swarm-manager-0: ok (1.5s)",
		Outcome{Machine: "swarm-manager-0", Step: StepCreate, Duration: 1500 * time.Millisecond}.String())
}

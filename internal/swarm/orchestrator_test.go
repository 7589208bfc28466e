package swarm

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

const joinCmd = "swarm join --token"

var _ = ginkgo.Describe("Orchestrator", func() {
	var (
		ctx      context.Context
		calls    *callLog
		provider *mockProvider
		exec     *mockExecutor
		observer *recordingObserver
	)

	ginkgo.BeforeEach(func() {
		ctx = context.Background()
		calls, provider, exec = newMocks()
		observer = &recordingObserver{}
	})

	newOrchestrator := func(opts ...Option) *Orchestrator {
		base := []Option{WithObserver(observer), WithVerifyWait(50*time.Millisecond, time.Millisecond)}
		return New(provider, exec, append(base, opts...)...)
	}

	topology := func(managers, workers int) Topology {
		topo, err := NewTopology(managers, workers)
		Expect(err).NotTo(HaveOccurred())
		return topo
	}

	ginkgo.Describe("Provision", func() {
		ginkgo.It("issues one creation per machine", func() {
			report := newOrchestrator().Provision(ctx, topology(2, 3))

			Expect(calls.matching("create ")).To(ConsistOf(
				"create swarm-manager-0", "create swarm-manager-1",
				"create swarm-worker-0", "create swarm-worker-1", "create swarm-worker-2",
			))
			Expect(report.ForStep(StepCreate)).To(HaveLen(5))
			Expect(report.Healthy()).To(BeTrue())
		})

		ginkgo.It("keeps creating the remaining machines when one fails", func() {
			provider.CreateMachineFunc = func(_ context.Context, spec MachineSpec) (*Machine, error) {
				if spec.Name() == "swarm-manager-1" {
					return nil, errors.New("quota exceeded")
				}
				return &Machine{Name: spec.Name()}, nil
			}

			report := newOrchestrator().Provision(ctx, topology(2, 3))

			Expect(calls.matching("create ")).To(HaveLen(5))
			failed := report.Failed()
			Expect(failed).To(HaveLen(1))
			Expect(failed[0].Machine).To(Equal("swarm-manager-1"))
			Expect(failed[0].Err).To(MatchError(ContainSubstring("quota exceeded")))
			Expect(observer.ofType(EventMachineFailed)).To(HaveLen(1))
		})

		ginkgo.It("records outcomes in topology order", func() {
			provider.CreateMachineFunc = func(_ context.Context, spec MachineSpec) (*Machine, error) {
				if spec.Role == RoleManager {
					time.Sleep(20 * time.Millisecond)
				}
				return &Machine{Name: spec.Name()}, nil
			}

			report := newOrchestrator().Provision(ctx, topology(1, 2))

			var names []string
			for _, o := range report.Outcomes() {
				names = append(names, o.Machine)
			}
			Expect(names).To(Equal([]string{"swarm-manager-0", "swarm-worker-0", "swarm-worker-1"}))
		})

		ginkgo.It("never exceeds the configured parallelism", func() {
			var running, peak atomic.Int32
			provider.CreateMachineFunc = func(_ context.Context, spec MachineSpec) (*Machine, error) {
				n := running.Add(1)
				for {
					p := peak.Load()
					if n <= p || peak.CompareAndSwap(p, n) {
						break
					}
				}
				time.Sleep(10 * time.Millisecond)
				running.Add(-1)
				return &Machine{Name: spec.Name()}, nil
			}

			newOrchestrator(WithParallelism(2)).Provision(ctx, topology(2, 4))

			Expect(peak.Load()).To(BeNumerically("<=", 2))
			Expect(calls.matching("create ")).To(HaveLen(6))
		})
	})

	ginkgo.Describe("Assemble", func() {
		ginkgo.It("issues exactly one init and no joins for a single manager", func() {
			report, err := newOrchestrator().Assemble(ctx, topology(1, 0))

			Expect(err).NotTo(HaveOccurred())
			Expect(calls.matching("run ")).To(Equal([]string{
				"run swarm-manager-0: sudo docker swarm init --advertise-addr 10.0.0.2",
			}))
			Expect(calls.matching(joinCmd)).To(BeEmpty())
			Expect(report.Members()).To(Equal([]string{"swarm-manager-0"}))
		})

		ginkgo.It("initializes before any token fetch or join", func() {
			_, err := newOrchestrator().Assemble(ctx, topology(2, 3))
			Expect(err).NotTo(HaveOccurred())

			initAt := calls.index("swarm init")
			Expect(initAt).To(BeNumerically(">=", 0))
			Expect(calls.index("join-token")).To(BeNumerically(">", initAt))
			Expect(calls.index(joinCmd)).To(BeNumerically(">", initAt))
			Expect(calls.index("address swarm-manager-0")).To(BeNumerically("<", initAt))
		})

		ginkgo.It("joins managers then workers with role-scoped tokens", func() {
			report, err := newOrchestrator().Assemble(ctx, topology(2, 3))
			Expect(err).NotTo(HaveOccurred())

			Expect(calls.matching("swarm init")).To(HaveLen(1))
			Expect(calls.matching(joinCmd)).To(Equal([]string{
				"run swarm-manager-1: sudo docker swarm join --token " + testManagerToken + " 10.0.0.2:2377",
				"run swarm-worker-0: sudo docker swarm join --token " + testWorkerToken + " 10.0.0.2:2377",
				"run swarm-worker-1: sudo docker swarm join --token " + testWorkerToken + " 10.0.0.2:2377",
				"run swarm-worker-2: sudo docker swarm join --token " + testWorkerToken + " 10.0.0.2:2377",
			}))
			Expect(calls.matching("join-token")).To(Equal([]string{
				"run swarm-manager-0: sudo docker swarm join-token manager",
				"run swarm-manager-0: sudo docker swarm join-token worker",
			}))
			Expect(report.Members()).To(HaveLen(5))
			Expect(report.Healthy()).To(BeTrue())
		})

		ginkgo.It("continues after a failed join", func() {
			exec.RunFunc = func(_ context.Context, machine, command string) (string, bool, error) {
				if machine == "swarm-worker-0" {
					return "", true, errors.New("exit status 1")
				}
				return "", false, nil
			}

			report, err := newOrchestrator().Assemble(ctx, topology(1, 3))

			Expect(err).NotTo(HaveOccurred())
			Expect(calls.matching(joinCmd)).To(HaveLen(3))
			Expect(report.Failed()).To(HaveLen(1))
			Expect(report.Members()).To(Equal([]string{"swarm-manager-0", "swarm-worker-1", "swarm-worker-2"}))
		})

		ginkgo.It("fails only the joins of a role whose token cannot be scraped", func() {
			exec.RunFunc = func(_ context.Context, _, command string) (string, bool, error) {
				if command == JoinTokenCommand(RoleWorker) {
					return "Error response from daemon: This node is not a swarm manager.", true, nil
				}
				return "", false, nil
			}

			report, err := newOrchestrator().Assemble(ctx, topology(2, 2))

			Expect(err).NotTo(HaveOccurred())
			failed := report.Failed()
			Expect(failed).To(HaveLen(2))
			for _, o := range failed {
				Expect(o.Role).To(Equal(RoleWorker))
				Expect(o.Err).To(MatchError(ErrTokenNotFound))
			}
			Expect(calls.matching(joinCmd)).To(Equal([]string{
				"run swarm-manager-1: sudo docker swarm join --token " + testManagerToken + " 10.0.0.2:2377",
			}))
		})

		ginkgo.It("stops and skips everything when swarm init fails", func() {
			exec.RunFunc = func(_ context.Context, _, command string) (string, bool, error) {
				if command == InitCommand("10.0.0.2") {
					return "", true, errors.New("docker not running")
				}
				return "", false, nil
			}

			report, err := newOrchestrator().Assemble(ctx, topology(2, 2))

			Expect(err).To(MatchError(ErrInitializerFailed))
			Expect(calls.matching("join-token")).To(BeEmpty())
			Expect(calls.matching(joinCmd)).To(BeEmpty())

			joins := report.ForStep(StepJoin)
			Expect(joins).To(HaveLen(3))
			for _, o := range joins {
				Expect(o.Skipped).To(BeTrue())
				Expect(o.Err).To(MatchError(ErrInitializerFailed))
			}
		})

		ginkgo.It("stops when the initializer address cannot be resolved", func() {
			provider.PrivateAddressFunc = func(context.Context, string) (string, error) {
				return "", errors.New("instance not found")
			}

			_, err := newOrchestrator().Assemble(ctx, topology(1, 1))

			Expect(err).To(MatchError(ErrInitializerFailed))
			Expect(err).To(MatchError(ContainSubstring("instance not found")))
			Expect(calls.matching("run ")).To(BeEmpty())
		})

		ginkgo.It("rejects workers without a manager", func() {
			_, err := newOrchestrator().Assemble(ctx, topology(0, 2))
			Expect(err).To(MatchError(ErrNoInitializer))
			Expect(calls.all()).To(BeEmpty())
		})

		ginkgo.It("uses the configured advertise port", func() {
			_, err := newOrchestrator(WithAdvertisePort(4000)).Assemble(ctx, topology(1, 1))
			Expect(err).NotTo(HaveOccurred())
			Expect(calls.matching(joinCmd)).To(ConsistOf(ContainSubstring("10.0.0.2:4000")))
		})
	})

	ginkgo.Describe("Teardown", func() {
		ginkgo.It("destroys only swarm machines", func() {
			provider.ListMachinesFunc = func(context.Context) ([]string, error) {
				return []string{
					"swarm-manager-0", "swarm-manager-1", "swarm-manager-2",
					"swarm-worker-0", "swarm-worker-1",
					"bastion", "swarm-dev-box",
				}, nil
			}

			report, err := newOrchestrator().Teardown(ctx)

			Expect(err).NotTo(HaveOccurred())
			Expect(calls.matching("destroy ")).To(ConsistOf(
				"destroy swarm-manager-0", "destroy swarm-manager-1", "destroy swarm-manager-2",
				"destroy swarm-worker-0", "destroy swarm-worker-1",
			))
			Expect(report.ForStep(StepDestroy)).To(HaveLen(5))
		})

		ginkgo.It("records destroy failures without returning them", func() {
			provider.ListMachinesFunc = func(context.Context) ([]string, error) {
				return []string{"swarm-manager-0", "swarm-worker-0"}, nil
			}
			provider.DestroyMachineFunc = func(_ context.Context, name string) error {
				if name == "swarm-worker-0" {
					return errors.New("locked")
				}
				return nil
			}

			report, err := newOrchestrator().Teardown(ctx)

			Expect(err).NotTo(HaveOccurred())
			Expect(report.Failed()).To(HaveLen(1))
			Expect(report.Failed()[0].Role).To(Equal(RoleWorker))
			Expect(calls.matching("destroy ")).To(HaveLen(2))
		})

		ginkgo.It("returns list errors", func() {
			provider.ListMachinesFunc = func(context.Context) ([]string, error) {
				return nil, errors.New("docker-machine not found")
			}

			_, err := newOrchestrator().Teardown(ctx)
			Expect(err).To(MatchError(ContainSubstring("docker-machine not found")))
		})
	})

	ginkgo.Describe("Up", func() {
		ginkgo.It("runs provision, assemble and verify in order", func() {
			exec.NodeList = "swarm-manager-0 Ready\nswarm-worker-0 Ready\n"

			report, err := newOrchestrator().Up(ctx, topology(1, 1))

			Expect(err).NotTo(HaveOccurred())
			Expect(report.Healthy()).To(BeTrue())
			Expect(calls.index("create swarm-worker-0")).To(BeNumerically("<", calls.index("swarm init")))
			Expect(calls.index(joinCmd)).To(BeNumerically("<", calls.index("node ls")))

			var phases []string
			for _, e := range observer.ofType(EventPhaseCompleted) {
				phases = append(phases, e.Phase)
			}
			Expect(phases).To(Equal([]string{PhaseProvision, PhaseAssemble, PhaseVerify}))
		})

		ginkgo.It("finishes every creation before the first remote command", func() {
			provider.CreateMachineFunc = func(_ context.Context, spec MachineSpec) (*Machine, error) {
				time.Sleep(5 * time.Millisecond)
				return &Machine{Name: spec.Name()}, nil
			}

			_, err := newOrchestrator(WithVerify(false)).Up(ctx, topology(2, 2))
			Expect(err).NotTo(HaveOccurred())

			all := calls.all()
			firstRun := calls.index("run ")
			for _, c := range all[firstRun:] {
				Expect(c).NotTo(HavePrefix("create "))
			}
		})

		ginkgo.It("flags joined machines that are missing from the swarm", func() {
			exec.NodeList = "swarm-manager-0 Ready\nswarm-worker-0 Down\n"

			report, err := newOrchestrator().Up(ctx, topology(1, 2))

			Expect(err).NotTo(HaveOccurred())
			Expect(report.Healthy()).To(BeFalse())
			verify := map[string]error{}
			for _, o := range report.ForStep(StepVerify) {
				verify[o.Machine] = o.Err
			}
			Expect(verify).To(HaveLen(3))
			Expect(verify["swarm-manager-0"]).NotTo(HaveOccurred())
			Expect(verify["swarm-worker-0"]).To(MatchError(ErrNodeNotReady))
			Expect(verify["swarm-worker-1"]).To(MatchError(ErrNotMember))
		})

		ginkgo.It("waits for a freshly joined node to become Ready", func() {
			var lists atomic.Int32
			exec.RunFunc = func(_ context.Context, _, command string) (string, bool, error) {
				if command != NodeListCommand() {
					return "", false, nil
				}
				if lists.Add(1) == 1 {
					return "swarm-manager-0 Ready\nswarm-worker-0 Unknown\n", true, nil
				}
				return "swarm-manager-0 Ready\nswarm-worker-0 Ready\n", true, nil
			}

			report, err := newOrchestrator(WithVerifyWait(time.Second, time.Millisecond)).Up(ctx, topology(1, 1))

			Expect(err).NotTo(HaveOccurred())
			Expect(report.Healthy()).To(BeTrue())
			Expect(lists.Load()).To(BeEquivalentTo(2))
			Expect(observer.printed()).To(ContainElement(ContainSubstring("Waiting for nodes")))
		})

		ginkgo.It("lists the nodes once when the verify wait is disabled", func() {
			exec.NodeList = "swarm-manager-0 Ready\nswarm-worker-0 Unknown\n"

			report, err := newOrchestrator(WithVerifyWait(0, 0)).Up(ctx, topology(1, 1))

			Expect(err).NotTo(HaveOccurred())
			Expect(report.Healthy()).To(BeFalse())
			Expect(calls.matching("node ls")).To(HaveLen(1))
		})

		ginkgo.It("does not retry a failing node list", func() {
			exec.RunFunc = func(_ context.Context, _, command string) (string, bool, error) {
				if command == NodeListCommand() {
					return "", true, errors.New("daemon down")
				}
				return "", false, nil
			}

			report, err := newOrchestrator(WithVerifyWait(time.Second, time.Millisecond)).Up(ctx, topology(1, 1))

			Expect(err).To(MatchError(ContainSubstring("daemon down")))
			Expect(calls.matching("node ls")).To(HaveLen(1))
			Expect(report.ForStep(StepVerify)).To(HaveLen(2))
		})

		ginkgo.It("stops after a failed initializer without verifying", func() {
			provider.PrivateAddressFunc = func(context.Context, string) (string, error) {
				return "", errors.New("boom")
			}

			report, err := newOrchestrator().Up(ctx, topology(1, 1))

			Expect(err).To(MatchError(ErrInitializerFailed))
			Expect(calls.matching("node ls")).To(BeEmpty())
			Expect(report.ForStep(StepCreate)).To(HaveLen(2))
			Expect(observer.ofType(EventPhaseFailed)).To(HaveLen(1))
		})

		ginkgo.It("refuses a topology without an initializer before creating anything", func() {
			_, err := newOrchestrator().Up(ctx, topology(0, 3))
			Expect(err).To(MatchError(ErrNoInitializer))
			Expect(calls.matching("create ")).To(BeEmpty())
		})

		ginkgo.It("does nothing for an empty topology", func() {
			report, err := newOrchestrator().Up(ctx, topology(0, 0))
			Expect(err).NotTo(HaveOccurred())
			Expect(report.Outcomes()).To(BeEmpty())
			Expect(calls.all()).To(BeEmpty())
		})

		ginkgo.It("records metrics for every step", func() {
			exec.NodeList = "swarm-manager-0 Ready\n"
			metrics := NewMetrics("airflow")

			_, err := newOrchestrator(WithMetrics(metrics)).Up(ctx, topology(1, 0))
			Expect(err).NotTo(HaveOccurred())

			families, err := metrics.Gatherer().Gather()
			Expect(err).NotTo(HaveOccurred())
			var names []string
			for _, f := range families {
				names = append(names, f.GetName())
			}
			Expect(names).To(ContainElements(
				"swarmflow_machine_steps_total",
				"swarmflow_swarm_phase_duration_seconds",
				"swarmflow_swarm_nodes_joined",
			))
		})
	})
})

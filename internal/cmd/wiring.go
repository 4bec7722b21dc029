package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/sean-lai-sh/agent-manager/internal/config"
	"github.com/sean-lai-sh/agent-manager/internal/dispatch"
	"github.com/sean-lai-sh/agent-manager/internal/event"
	"github.com/sean-lai-sh/agent-manager/internal/executor"
	"github.com/sean-lai-sh/agent-manager/internal/llm"
	"github.com/sean-lai-sh/agent-manager/internal/logging"
	"github.com/sean-lai-sh/agent-manager/internal/orchestrator"
	"github.com/sean-lai-sh/agent-manager/internal/prompt"
	"github.com/sean-lai-sh/agent-manager/internal/store"
)

// runtime bundles the wired components behind a single intent-handling
// process: config, store, backends, runners, and the orchestrator.
type runtime struct {
	cfg      *config.Config
	log      *logging.Logger
	store    *store.FileStore
	bus      *event.Bus
	orch     *orchestrator.Orchestrator
	planner  *dispatch.PlannerRunner
	executor *dispatch.ExecutorRunner
}

// stateDir resolves the configured state directory against the current
// working directory.
func stateDir(cfg *config.Config) string {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = ""
	}
	return cfg.Paths.ResolveStateDir(cwd)
}

// newRuntime wires the full intent-handling stack and initializes the
// orchestrator, taking the process lock on the state directory. Callers
// must Close the runtime when done.
func newRuntime(ctx context.Context) (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	dir := stateDir(cfg)

	logDir := ""
	if cfg.Logging.Enabled {
		logDir = dir
	}
	log, err := logging.NewLogger(logDir, cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("failed to open log: %w", err)
	}

	st, err := store.NewFileStore(dir)
	if err != nil {
		_ = log.Close()
		return nil, err
	}

	bus := event.NewBus()
	orch := orchestrator.New(st, bus, log)

	plannerBackend, err := llm.NewFromConfig(&cfg.Planner)
	if err != nil {
		_ = log.Close()
		return nil, fmt.Errorf("failed to create planner backend: %w", err)
	}
	renderer := prompt.Renderer{
		Mode:        prompt.ParseMode(cfg.Planner.Mode),
		OverrideDir: cfg.Planner.TemplateDir,
	}
	plannerRunner := dispatch.NewPlannerRunner(plannerBackend, renderer, orch, cfg.Planner.Timeout(), log)

	execBackend, err := executor.NewFromConfig(&cfg.Executor)
	if err != nil {
		_ = log.Close()
		return nil, fmt.Errorf("failed to create executor backend: %w", err)
	}
	execRunner := dispatch.NewExecutorRunner(execBackend, orch, cfg.Executor.MaxParallel, cfg.Executor.Timeout(), log)

	orch.SetDispatcher(dispatch.New(plannerRunner, execRunner, bus, log))

	if _, err := orch.Initialize(ctx); err != nil {
		_ = log.Close()
		return nil, err
	}

	return &runtime{
		cfg:      cfg,
		log:      log,
		store:    st,
		bus:      bus,
		orch:     orch,
		planner:  plannerRunner,
		executor: execRunner,
	}, nil
}

// Close drains in-flight agent work, releases the process lock, and
// closes the log.
func (r *runtime) Close() error {
	r.planner.Wait()
	r.executor.Wait()
	err := r.orch.Close()
	if cerr := r.log.Close(); err == nil {
		err = cerr
	}
	return err
}

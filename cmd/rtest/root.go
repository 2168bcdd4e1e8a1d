package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/specvital/rtest-go/pkg/collect"
	"github.com/specvital/rtest-go/pkg/domain"
	"github.com/specvital/rtest-go/pkg/pyconfig"
	"github.com/specvital/rtest-go/pkg/report"
	"github.com/specvital/rtest-go/pkg/schedule"
	"github.com/specvital/rtest-go/pkg/workerpool"
)

var (
	workerCountFlag    string
	maxProcesses       int
	distFlag           string
	collectOnly        bool
	emitUncertainFiles string
	envFlags           []string
	hostProgram        string
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "rtest [paths...] [-- args]",
		Short:        "Discover pytest items and dispatch them to the host runner without re-walking the tree per worker",
		SilenceUsage: true,
	}

	flags := cmd.Flags()
	flags.StringVarP(&workerCountFlag, "workers", "n", "", "worker count: N, auto, or logical")
	flags.IntVar(&maxProcesses, "maxprocesses", 0, "cap on resolved worker count")
	flags.StringVar(&distFlag, "dist", "load", "distribution mode: load|loadscope|loadfile|loadgroup|worksteal|no")
	flags.BoolVar(&collectOnly, "collect-only", false, "collect and report, skipping execution")
	flags.StringVar(&emitUncertainFiles, "emit-uncertain-files", "", "write uncertain file paths to this file, one per line")
	flags.StringArrayVar(&envFlags, "env", nil, "KEY=VALUE environment variable forwarded to the host runner (repeatable)")
	flags.StringVar(&hostProgram, "program", "pytest", "host test runner executable")

	return cmd
}

// Execute runs the rtest CLI and returns the process exit code.
func Execute() int {
	exitCode := 0
	cmd := newRootCmd()
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		code, err := runAndReport(cmd.Context(), cmd, args)
		exitCode = code
		return err
	}
	if err := cmd.Execute(); err != nil && exitCode == 0 {
		exitCode = 1
	}
	return exitCode
}

func runAndReport(ctx context.Context, cmd *cobra.Command, args []string) (int, error) {
	logger, err := zap.NewProduction()
	if err != nil {
		logger = zap.NewNop()
	}
	defer logger.Sync() //nolint:errcheck
	sugar := logger.Sugar()

	pathArgs := args
	var trailing []string
	if dashAt := cmd.ArgsLenAtDash(); dashAt >= 0 {
		pathArgs = args[:dashAt]
		trailing = args[dashAt:]
	}

	root, err := os.Getwd()
	if err != nil {
		return 1, err
	}

	fileCfg, err := pyconfig.Resolve(root)
	if err != nil {
		return 1, fmt.Errorf("reading config: %w", err)
	}
	sessionCfg := collect.NewSessionConfig(root, fileCfg)

	result, err := collect.PerformCollect(ctx, pathArgs, sessionCfg)
	if err != nil {
		return 1, err
	}

	report.WriteCollection(os.Stdout, result.Functions, result.Errors, result.Warnings)

	for _, w := range result.Warnings {
		sugar.Warnw("discovery warning", "nodeid", w.Nodeid, "message", w.Message)
	}
	for _, e := range result.Errors {
		sugar.Errorw("collection error", "nodeid", e.Nodeid, "error", e.Err)
	}

	if emitUncertainFiles != "" {
		if err := writeUncertainFiles(emitUncertainFiles, result.UncertainFiles); err != nil {
			return 1, err
		}
	}

	if len(result.Errors) > 0 {
		return 1, nil
	}
	if collectOnly {
		return 0, nil
	}
	if len(result.Functions) == 0 {
		return 0, nil
	}

	spec, err := parseWorkerCountSpec(workerCountFlag)
	if err != nil {
		return 1, err
	}
	workers := resolveWorkerCount(spec, maxProcesses)

	mode, err := schedule.ParseDistributionMode(distFlag)
	if err != nil {
		return 1, err
	}

	if workers == 1 || mode == schedule.No {
		return runSingleBatch(ctx, root, result.Functions, trailing, envFlags), nil
	}

	if mode == schedule.WorkSteal {
		wsResult := workerpool.RunWorkSteal(ctx, workerpool.WorkStealSpec{
			Program:    hostProgram,
			Nodeids:    nodeidsOf(result.Functions),
			Trailing:   trailing,
			RootDir:    root,
			NumWorkers: workers,
			Env:        envFlags,
		})
		return wsResult.ExitCode(), nil
	}

	sched := schedule.New(mode)
	batches, err := sched.Distribute(result.Functions, workers)
	if err != nil {
		return 1, err
	}

	specs := make([]workerpool.BatchSpec, len(batches))
	for i, batch := range batches {
		specs[i] = workerpool.BatchSpec{
			WorkerID: i,
			Program:  hostProgram,
			Nodeids:  nodeidsOf(batch),
			Trailing: trailing,
			RootDir:  root,
			Env:      envFlags,
		}
	}
	results := workerpool.RunBatches(ctx, specs)
	return aggregateExitCode(results), nil
}

func runSingleBatch(ctx context.Context, root string, items []domain.Function, trailing, env []string) int {
	results := workerpool.RunBatches(ctx, []workerpool.BatchSpec{{
		WorkerID: 0,
		Program:  hostProgram,
		Nodeids:  nodeidsOf(items),
		Trailing: trailing,
		RootDir:  root,
		Env:      env,
	}})
	return aggregateExitCode(results)
}

func nodeidsOf(items []domain.Function) []string {
	ids := make([]string, len(items))
	for i, f := range items {
		ids[i] = f.Nodeid
	}
	return ids
}

// aggregateExitCode folds batch results: the first non-zero exit code
// in worker-id order (RunBatches already returns results ordered that
// way), except that code 5 means a worker ran no items and counts as
// skipped, not failed. 0 when nothing failed.
func aggregateExitCode(results []workerpool.Result) int {
	for _, r := range results {
		if r.ExitCode != 0 && r.ExitCode != 5 {
			return r.ExitCode
		}
	}
	return 0
}

func writeUncertainFiles(path string, files []string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return report.WriteUncertainFiles(f, files)
}

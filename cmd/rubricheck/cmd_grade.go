package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/keunyop/rubricheck/internal/adapters/extract"
	app "github.com/keunyop/rubricheck/internal/app"
	"github.com/keunyop/rubricheck/internal/batch"
	"github.com/keunyop/rubricheck/internal/config"
	"github.com/keunyop/rubricheck/internal/domain/types"
	"github.com/keunyop/rubricheck/pkg/logger"
)

var gradeFlags struct {
	rubricPath string
	workers    int
	jsonOut    bool
}

var gradeCmd = &cobra.Command{
	Use:   "grade --rubric FILE [assignment files...]",
	Short: "Grade assignment files against a rubric from the command line",
	Long: `Grades one or more assignment documents against a rubric document
without going through the HTTP API. Supported document formats are
.txt, .md, .pdf and .docx.

Assignments are graded concurrently; a failing assignment does not stop
the rest. The exit status is non-zero when any assignment fails.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runGrade,
}

func init() {
	f := gradeCmd.Flags()
	f.StringVarP(&gradeFlags.rubricPath, "rubric", "r", "", "Path to the rubric document (required)")
	f.IntVar(&gradeFlags.workers, "workers", 0, "Concurrent grading calls (default: batch_workers from config)")
	f.BoolVar(&gradeFlags.jsonOut, "json", false, "Emit full reports as a JSON array")
	_ = gradeCmd.MarkFlagRequired("rubric")
}

func runGrade(cmd *cobra.Command, args []string) error {
	if err := logger.Init(); err != nil {
		return fmt.Errorf("initialize logging: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		_ = logger.SetLevelString("info")
	}

	rubricText, err := readDocument(gradeFlags.rubricPath)
	if err != nil {
		return fmt.Errorf("read rubric: %w", err)
	}

	jobs := make([]batch.Job, 0, len(args))
	for _, path := range args {
		text, err := readDocument(path)
		if err != nil {
			return fmt.Errorf("read assignment %s: %w", path, err)
		}
		jobs = append(jobs, batch.Job{
			Name:           filepath.Base(path),
			RubricText:     rubricText,
			AssignmentText: text,
		})
	}

	svc := app.New(
		app.WithLogger(logger.Get()),
		app.WithModelBaseURL(cfg.ModelBaseURL),
		app.WithModelAPIKey(cfg.ModelAPIKey),
		app.WithModels(cfg.StructureModel, cfg.EvaluateModel),
		app.WithModelTimeout(time.Duration(cfg.ModelTimeoutSeconds)*time.Second),
	)
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("start service: %w", err)
	}
	defer svc.Stop()

	workers := gradeFlags.workers
	if workers <= 0 {
		workers = cfg.BatchWorkers
	}
	runner := batch.NewRunner(svc, batch.WithWorkers(workers))
	results := runner.Run(ctx, jobs)

	if gradeFlags.jsonOut {
		if err := writeJSONResults(cmd, results); err != nil {
			return err
		}
	} else {
		writeTextResults(cmd, results)
	}

	if failed := batch.Failed(results); failed > 0 {
		return fmt.Errorf("%d of %d assignments failed", failed, len(results))
	}
	return nil
}

// readDocument extracts usable text from a rubric or assignment file,
// applying the same format and usability gate as HTTP uploads.
func readDocument(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return extract.Text(filepath.Base(path), data)
}

type gradeResult struct {
	Name   string             `json:"name"`
	Report *types.FinalReport `json:"report,omitempty"`
	Error  string             `json:"error,omitempty"`
}

func writeJSONResults(cmd *cobra.Command, results []batch.Result) error {
	out := make([]gradeResult, len(results))
	for i, res := range results {
		out[i] = gradeResult{Name: res.Name}
		if res.Err != nil {
			out[i].Error = res.Err.Error()
			continue
		}
		rep := res.Report
		out[i].Report = &rep
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

func writeTextResults(cmd *cobra.Command, results []batch.Result) {
	for _, res := range results {
		if res.Err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: FAILED: %v\n", res.Name, res.Err)
			continue
		}

		rep := res.Report
		fmt.Fprintf(cmd.OutOrStdout(), "%s: overall [%d, %d]\n", res.Name, rep.OverallRange.Low, rep.OverallRange.High)
		for _, c := range rep.Criteria {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s: [%d, %d] of %.0f\n", c.Name, c.EstimatedRange.Low, c.EstimatedRange.High, c.MaxScore)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "  summary: %s\n", rep.Summary)
		for i, imp := range rep.TopImprovements {
			fmt.Fprintf(cmd.OutOrStdout(), "  improvement %d: %s\n", i+1, imp)
		}
	}
}

package cli

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/daehwan-oh/coverfact/internal/model"
	"github.com/daehwan-oh/coverfact/internal/pipeline"
	"github.com/daehwan-oh/coverfact/internal/worker"
)

var (
	concurrency  int
	batchTimeout time.Duration
	batchInsurer string
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <manifest-or-dir>",
	Short: "Process multiple proposal PDFs in parallel",
	Long: `Batch processes multiple documents concurrently:
- Read documents from a YAML manifest, or discover PDFs in a directory
  for a single insurer (--insurer)
- Build a profile for any document that has none yet
- Extract fact streams for every document in parallel
- Report per-document outcomes and parity status

Example:
  coverfact batch proposals.yaml
  coverfact batch ./pdfs --insurer kb --concurrency 4
  coverfact batch proposals.yaml --output-dir ./facts --timeout 10m`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", runtime.NumCPU(), "number of concurrent workers")
	batchCmd.Flags().StringVar(&batchInsurer, "insurer", "", "insurer key for directory discovery")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "", "output directory for fact streams (default from config)")
	batchCmd.Flags().StringVar(&profileDir, "profile-dir", "", "profile directory (default from config)")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")
}

func runBatch(cmd *cobra.Command, args []string) error {
	input := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if profileDir != "" {
		cfg.Paths.ProfileDir = profileDir
	}
	if outputDir != "" {
		cfg.Paths.OutputDir = outputDir
	}

	tasks, err := resolveTasks(input)
	if err != nil {
		return err
	}
	if len(tasks) == 0 {
		return fmt.Errorf("no documents to process in %s", input)
	}

	fmt.Fprintf(os.Stderr, "Batch: %d document(s), %d worker(s)\n", len(tasks), concurrency)
	fmt.Fprintln(os.Stderr)

	p, err := pipeline.NewPipeline(cfg)
	if err != nil {
		return err
	}

	processor := worker.NewBatchProcessor(p, concurrency)
	results := processor.ProcessTasks(ctx, tasks)

	successCount := 0
	failureCount := 0
	for _, result := range results {
		if result.Error != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s/%s (%s): %v\n", result.Task.Insurer, result.Task.Variant, result.Task.Path, result.Error)
			continue
		}
		successCount++
		fmt.Fprintf(os.Stderr, "✓ %s/%s: %d facts, %d fragments, parity %s\n",
			result.Task.Insurer, result.Task.Variant, result.Facts, result.Fragments, result.Parity)
	}

	fmt.Fprintln(os.Stderr)
	fmt.Fprintf(os.Stderr, "Total:    %d\n", len(results))
	fmt.Fprintf(os.Stderr, "Success:  %d\n", successCount)
	fmt.Fprintf(os.Stderr, "Failures: %d\n", failureCount)

	return batchFailure(results)
}

// batchFailure summarizes failed tasks into the command error. A gate
// failure anywhere in the batch is wrapped into the summary so the exit-code
// mapping still classifies the whole run as do-not-retry.
func batchFailure(results []*worker.TaskResult) error {
	failures := 0
	var gateErr error
	for _, r := range results {
		if r.Error == nil {
			continue
		}
		failures++
		if gateErr == nil && model.IsGateError(r.Error) {
			gateErr = r.Error
		}
	}
	if failures == 0 {
		return nil
	}
	if gateErr != nil {
		return fmt.Errorf("%d of %d documents failed: %w", failures, len(results), gateErr)
	}
	return fmt.Errorf("%d of %d documents failed", failures, len(results))
}

// resolveTasks treats the input as a directory when it is one, otherwise
// as a manifest file.
func resolveTasks(input string) ([]worker.Task, error) {
	info, err := os.Stat(input)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", input, err)
	}
	if info.IsDir() {
		if batchInsurer == "" {
			return nil, fmt.Errorf("directory input requires --insurer")
		}
		return worker.DiscoverTasks(input, batchInsurer)
	}
	return worker.ReadManifest(input)
}

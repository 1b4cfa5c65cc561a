package worker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Task identifies one proposal document to process.
type Task struct {
	Insurer string `yaml:"insurer"`
	Variant string `yaml:"variant"`
	Path    string `yaml:"path"`
}

// Manifest is the on-disk batch description: a list of documents to run
// through the pipeline.
type Manifest struct {
	Documents []Task `yaml:"documents"`
}

// Processor runs the full pipeline for one document.
type Processor interface {
	Process(ctx context.Context, task Task) (*TaskResult, error)
}

// TaskResult is one document's batch outcome.
type TaskResult struct {
	Task      Task
	Facts     int
	Fragments int
	Parity    string
	Error     error
}

// GetError returns the error from the task result
func (r *TaskResult) GetError() error {
	return r.Error
}

// DocumentJob adapts one task to the worker pool.
type DocumentJob struct {
	Task      Task
	Processor Processor
}

// Execute runs the pipeline for the job's document.
func (j *DocumentJob) Execute(ctx context.Context) Result {
	res, err := j.Processor.Process(ctx, j.Task)
	if err != nil {
		return &TaskResult{Task: j.Task, Error: err}
	}
	return res
}

// BatchProcessor processes multiple documents concurrently
type BatchProcessor struct {
	processor   Processor
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(processor Processor, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		processor:   processor,
		concurrency: concurrency,
	}
}

// ProcessTasks processes the tasks concurrently and returns results in
// completion order.
func (b *BatchProcessor) ProcessTasks(ctx context.Context, tasks []Task) []*TaskResult {
	if len(tasks) == 0 {
		return []*TaskResult{}
	}

	pool := NewPool(b.concurrency)
	pool.Start()

	for _, task := range tasks {
		pool.Submit(&DocumentJob{Task: task, Processor: b.processor})
	}

	results := pool.Wait()

	taskResults := make([]*TaskResult, len(results))
	for i, result := range results {
		taskResults[i] = result.(*TaskResult)
	}

	return taskResults
}

// ProcessManifest reads a manifest file and processes its documents
// concurrently.
func (b *BatchProcessor) ProcessManifest(ctx context.Context, path string) ([]*TaskResult, error) {
	tasks, err := ReadManifest(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	return b.ProcessTasks(ctx, tasks), nil
}

// ReadManifest parses a YAML batch manifest. Entries without a variant
// default to "default"; entries without a path or insurer are rejected.
func ReadManifest(path string) ([]Task, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open manifest: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}

	seen := make(map[string]bool)
	var tasks []Task
	for i, t := range m.Documents {
		if t.Insurer == "" || t.Path == "" {
			return nil, fmt.Errorf("manifest entry %d: insurer and path are required", i)
		}
		if t.Variant == "" {
			t.Variant = "default"
		}
		key := t.Insurer + "|" + t.Variant + "|" + t.Path
		if seen[key] {
			continue
		}
		seen[key] = true
		tasks = append(tasks, t)
	}
	return tasks, nil
}

// DiscoverTasks builds tasks from a directory of PDFs for a single
// insurer. Filenames become variant keys: "<insurer>_<variant>.pdf" maps
// to that variant, anything else to "default". Results are sorted by path
// for a stable run order.
func DiscoverTasks(dir, insurer string) ([]Task, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read directory: %w", err)
	}

	var tasks []Task
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			continue
		}
		variant := "default"
		base := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		if rest, ok := strings.CutPrefix(base, insurer+"_"); ok && rest != "" {
			variant = rest
		}
		tasks = append(tasks, Task{
			Insurer: insurer,
			Variant: variant,
			Path:    filepath.Join(dir, e.Name()),
		})
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].Path < tasks[j].Path })
	return tasks, nil
}

// Package pipeline orchestrates the two top-level flows: building a
// profile from a source document and extracting facts under an existing
// profile.
package pipeline

import (
	"context"
	"fmt"
	"os"

	"github.com/daehwan-oh/coverfact/internal/extract"
	"github.com/daehwan-oh/coverfact/internal/fingerprint"
	"github.com/daehwan-oh/coverfact/internal/model"
	"github.com/daehwan-oh/coverfact/internal/pdfdoc"
	"github.com/daehwan-oh/coverfact/internal/profile"
	"github.com/daehwan-oh/coverfact/internal/stream"
	"github.com/daehwan-oh/coverfact/internal/validate"
	"github.com/daehwan-oh/coverfact/internal/worker"
)

// Pipeline wires the component services behind the CLI commands.
type Pipeline struct {
	config      *model.Config
	fingerprint *fingerprint.Service
	builder     *profile.Builder
	store       *profile.Store
	extractor   *extract.Extractor
	validator   *validate.Validator
}

// NewPipeline creates a new pipeline with the given configuration
func NewPipeline(cfg *model.Config) (*Pipeline, error) {
	builder, err := profile.NewBuilder(cfg)
	if err != nil {
		return nil, fmt.Errorf("profile builder: %w", err)
	}
	extractor, err := extract.NewExtractor(cfg)
	if err != nil {
		return nil, fmt.Errorf("extractor: %w", err)
	}
	return &Pipeline{
		config:      cfg,
		fingerprint: fingerprint.NewService(fingerprint.PDFPageCounter{}),
		builder:     builder,
		store:       profile.NewStore(cfg.Paths.ProfileDir),
		extractor:   extractor,
		validator:   validate.NewValidator(),
	}, nil
}

// BuildResult summarises one profile-build run.
type BuildResult struct {
	Profile     *model.Profile
	ProfilePath string
}

// BuildProfile analyses the document and persists the recovered schema.
// The store enforces the profile lock: a conflicting primary column map
// for the same document bytes is a hard error, never an overwrite.
func (p *Pipeline) BuildProfile(ctx context.Context, pdfPath, insurer, variant string, detail model.DetailStructure) (*BuildResult, error) {
	fp, err := p.fingerprint.Compute(pdfPath)
	if err != nil {
		return nil, err
	}

	doc, err := pdfdoc.Open(pdfPath)
	if err != nil {
		return nil, model.NewGateError(model.GateUnreadableDocument, fmt.Sprintf("open %s: %v", pdfPath, err))
	}
	defer doc.Close()

	prof, err := p.builder.Build(doc, insurer, variant, pdfPath, fp, detail)
	if err != nil {
		return nil, err
	}
	if err := p.validator.ValidateProfile(prof); err != nil {
		return nil, fmt.Errorf("built profile failed validation: %w", err)
	}
	if err := p.store.Save(prof); err != nil {
		return nil, err
	}
	return &BuildResult{Profile: prof, ProfilePath: p.store.Path(insurer, variant)}, nil
}

// ExtractResult summarises one extraction run.
type ExtractResult struct {
	Identity      model.ProductIdentity
	Facts         int
	Fragments     int
	FactsPath     string
	FragmentsPath string
	Parity        extract.ParityReport
}

// ExtractFacts loads the profile for (insurer, variant), verifies it
// against the document, extracts the fact streams, and writes them out.
func (p *Pipeline) ExtractFacts(ctx context.Context, pdfPath, insurer, variant string) (*ExtractResult, error) {
	prof, err := p.store.Load(insurer, variant)
	if err != nil {
		return nil, err
	}
	if err := p.validator.ValidateProfile(prof); err != nil {
		return nil, fmt.Errorf("profile %s/%s failed validation: %w", insurer, variant, err)
	}

	fp, err := p.fingerprint.Compute(pdfPath)
	if err != nil {
		return nil, err
	}

	doc, err := pdfdoc.Open(pdfPath)
	if err != nil {
		return nil, model.NewGateError(model.GateUnreadableDocument, fmt.Sprintf("open %s: %v", pdfPath, err))
	}
	defer doc.Close()

	outDir := p.config.Paths.OutputDir
	baselinePath := stream.BaselinePath(outDir, insurer, variant)
	baseline, err := extract.LoadBaseline(baselinePath)
	if err != nil {
		return nil, err
	}

	res, err := p.extractor.Run(doc, fp, prof, variant, baseline)
	if err != nil {
		return nil, err
	}

	factsPath, fragPath, err := stream.WriteStreams(outDir, insurer, variant, res.Facts, res.Fragments)
	if err != nil {
		return nil, err
	}
	if err := extract.SaveBaseline(baselinePath, len(res.Facts)); err != nil {
		return nil, err
	}

	return &ExtractResult{
		Identity:      res.Identity,
		Facts:         len(res.Facts),
		Fragments:     len(res.Fragments),
		FactsPath:     factsPath,
		FragmentsPath: fragPath,
		Parity:        res.Parity,
	}, nil
}

// Process runs build-then-extract for one batch task, building the
// profile only when none exists yet. It implements worker.Processor.
func (p *Pipeline) Process(ctx context.Context, task worker.Task) (*worker.TaskResult, error) {
	if _, err := os.Stat(p.store.Path(task.Insurer, task.Variant)); os.IsNotExist(err) {
		// Batch builds have no per-document layout declaration; the detail
		// structure stays unset and only the summary streams are produced.
		if _, err := p.BuildProfile(ctx, task.Path, task.Insurer, task.Variant, model.DetailStructure{}); err != nil {
			return nil, fmt.Errorf("build profile: %w", err)
		}
	}

	res, err := p.ExtractFacts(ctx, task.Path, task.Insurer, task.Variant)
	if err != nil {
		return nil, err
	}
	return &worker.TaskResult{
		Task:      task,
		Facts:     res.Facts,
		Fragments: res.Fragments,
		Parity:    string(res.Parity.Status),
	}, nil
}

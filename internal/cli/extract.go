package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/daehwan-oh/coverfact/internal/model"
	"github.com/daehwan-oh/coverfact/internal/pipeline"
)

var (
	extractInsurer string
	extractVariant string
	outputDir      string
	extractTimeout time.Duration
	forceStandard  bool
)

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract <pdf>",
	Short: "Extract coverage facts from a PDF under its profile",
	Long: `Extract reads coverage facts from a proposal PDF using the persisted
profile for the given insurer and variant:
- Verify the document fingerprint against the profile (hard gate)
- Extract product identity from page 1 (hard gate)
- Read coverage rows per table signature, switching to hybrid layout
  reconstruction when table cells come back mostly empty
- Decompose coverage names into title, exclusions, payout limits,
  renewal markers and modifiers
- Join benefit descriptions to coverage rows by normalised name
- Write facts and fragments as separate JSONL streams

Gate failures (fingerprint mismatch, missing identity) exit with
status 2 and emit no output.

Example:
  coverfact extract samsung.pdf --insurer samsung
  coverfact extract kb_driver.pdf --insurer kb --variant driver --output-dir ./facts`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringVar(&extractInsurer, "insurer", "", "insurer key (required)")
	extractCmd.Flags().StringVar(&extractVariant, "variant", "default", "product variant key")
	extractCmd.Flags().StringVar(&outputDir, "output-dir", "", "output directory for fact streams (default from config)")
	extractCmd.Flags().StringVar(&profileDir, "profile-dir", "", "profile directory (default from config)")
	extractCmd.Flags().DurationVar(&extractTimeout, "timeout", 2*time.Minute, "overall extraction timeout")
	extractCmd.Flags().BoolVar(&forceStandard, "force-standard", false, "never switch to hybrid reconstruction")
	_ = extractCmd.MarkFlagRequired("insurer")
}

// applyForceStandard layers the flag onto the loaded config only when the
// user actually set it, so an unset flag cannot clobber a config-file or
// environment value.
func applyForceStandard(cfg *model.Config, flags *pflag.FlagSet) {
	if flags.Changed("force-standard") {
		v, _ := flags.GetBool("force-standard")
		cfg.Extract.ForceStandard = v
	}
}

func runExtract(cmd *cobra.Command, args []string) error {
	pdfPath := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), extractTimeout)
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
	applyForceStandard(cfg, cmd.Flags())

	if verbose {
		fmt.Fprintf(os.Stderr, "Extracting: %s/%s\n", extractInsurer, extractVariant)
		fmt.Fprintf(os.Stderr, "Source: %s\n", pdfPath)
		fmt.Fprintln(os.Stderr)
	}

	p, err := pipeline.NewPipeline(cfg)
	if err != nil {
		return err
	}

	res, err := p.ExtractFacts(ctx, pdfPath, extractInsurer, extractVariant)
	if err != nil {
		return err
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Product: %s\n", res.Identity.ProductNameRaw)
		fmt.Fprintf(os.Stderr, "✓ Extracted %d facts, %d fragments\n", res.Facts, res.Fragments)
		for _, note := range res.Parity.Anomalies {
			fmt.Fprintf(os.Stderr, "  anomaly: %s\n", note)
		}
		fmt.Fprintln(os.Stderr)
	}

	fmt.Printf("✓ Wrote facts: %s\n", res.FactsPath)
	fmt.Printf("✓ Wrote fragments: %s\n", res.FragmentsPath)
	switch res.Parity.Status {
	case "pass":
		fmt.Printf("✓ Parity: %d facts (baseline %d)\n", res.Parity.Extracted, res.Parity.Baseline)
	case "warn":
		fmt.Printf("⚠ Parity warning: %d facts vs baseline %d (delta %.1f%%)\n",
			res.Parity.Extracted, res.Parity.Baseline, res.Parity.DeltaPct*100)
	case "fail":
		return fmt.Errorf("parity failure: %d facts vs baseline %d (delta %.1f%%)",
			res.Parity.Extracted, res.Parity.Baseline, res.Parity.DeltaPct*100)
	}

	return nil
}

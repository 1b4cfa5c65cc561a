package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/daehwan-oh/coverfact/internal/model"
	"github.com/daehwan-oh/coverfact/internal/pipeline"
)

var (
	buildInsurer string
	buildVariant string
	profileDir   string
	detailType   string
	detailColumn int
	buildTimeout time.Duration
)

// buildCmd represents the build command
var buildCmd = &cobra.Command{
	Use:   "build <pdf>",
	Short: "Recover the table schema of a proposal PDF into a profile",
	Long: `Build analyses a proposal PDF and persists a profile:
- Fingerprint the document (size, pages, content hash)
- Detect coverage summary tables by header keywords, with a
  content-pattern fallback for headerless layouts
- Infer which columns carry coverage name, amount, premium and period
- Record row-filtering rules and detection evidence for audit

A profile is locked to its document bytes. Rebuilding from the same
bytes with a conflicting primary column mapping is an error; fix the
detection configuration instead of overwriting the profile.

Example:
  coverfact build samsung.pdf --insurer samsung
  coverfact build kb_driver.pdf --insurer kb --variant driver
  coverfact build meritz.pdf --insurer meritz --detail-type merged_inline`,
	Args: cobra.ExactArgs(1),
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().StringVar(&buildInsurer, "insurer", "", "insurer key (required)")
	buildCmd.Flags().StringVar(&buildVariant, "variant", "default", "product variant key")
	buildCmd.Flags().StringVar(&profileDir, "profile-dir", "", "profile directory (default from config)")
	buildCmd.Flags().StringVar(&detailType, "detail-type", "", "benefit description layout (description_column, merged_inline, merged_multirow, text_layout, summary_embedded, summary_embedded_split)")
	buildCmd.Flags().IntVar(&detailColumn, "detail-column", -1, "pin the description column index (description_column layout only)")
	buildCmd.Flags().DurationVar(&buildTimeout, "timeout", 2*time.Minute, "overall build timeout")
	_ = buildCmd.MarkFlagRequired("insurer")
}

func runBuild(cmd *cobra.Command, args []string) error {
	pdfPath := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), buildTimeout)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if profileDir != "" {
		cfg.Paths.ProfileDir = profileDir
	}

	detail, err := parseDetailStructure(detailType, detailColumn)
	if err != nil {
		return err
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Building profile: %s/%s\n", buildInsurer, buildVariant)
		fmt.Fprintf(os.Stderr, "Source: %s\n", pdfPath)
		fmt.Fprintln(os.Stderr)
	}

	p, err := pipeline.NewPipeline(cfg)
	if err != nil {
		return err
	}

	res, err := p.BuildProfile(ctx, pdfPath, buildInsurer, buildVariant, detail)
	if err != nil {
		return err
	}

	prof := res.Profile
	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Scanned %d pages, %d tables\n", prof.DetectionMetadata.PagesScanned, prof.DetectionMetadata.TablesSeen)
		fmt.Fprintf(os.Stderr, "✓ Detected %d primary and %d variant table(s)\n",
			len(prof.SummaryTable.PrimarySignatures), len(prof.SummaryTable.VariantSignatures))
		for _, note := range prof.KnownAnomalies {
			fmt.Fprintf(os.Stderr, "  anomaly: %s\n", note)
		}
		fmt.Fprintln(os.Stderr)
	}
	fmt.Printf("✓ Wrote profile: %s\n", res.ProfilePath)

	return nil
}

func parseDetailStructure(typ string, column int) (model.DetailStructure, error) {
	d := model.DetailStructure{}
	switch model.DetailType(typ) {
	case model.DetailNone:
	case model.DetailDescriptionColumn, model.DetailMergedInline, model.DetailMergedMultiRow,
		model.DetailTextLayout, model.DetailSummaryEmbedded, model.DetailSummaryEmbeddedSplit:
		d.Type = model.DetailType(typ)
	default:
		return d, fmt.Errorf("unknown detail type %q", typ)
	}
	if column >= 0 {
		if d.Type != model.DetailDescriptionColumn {
			return d, fmt.Errorf("--detail-column requires --detail-type description_column")
		}
		d.DescriptionColumn = model.Idx(column)
	}
	return d, nil
}

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/joao-fontenele/orderflow-cyclic/internal/config"
	"github.com/joao-fontenele/orderflow-cyclic/internal/generator"
	"github.com/joao-fontenele/orderflow-cyclic/internal/stores"
)

// DefaultDaysAhead is the horizon of a manual run.
const DefaultDaysAhead = 7

type generateOptions struct {
	daysAhead int
	date      string
	fixtures  string
	dryRun    bool
	now       func() time.Time
}

func NewGenerateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &generateOptions{now: time.Now}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate orders for one date",
		Long: `Generate orders for the date --days-ahead days from today, or for --date.

With --dry-run the resolved drafts are printed and nothing is written.
With --fixtures the run uses an in-memory store seeded from a YAML file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, rootOpts, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.daysAhead, "days-ahead", "d", DefaultDaysAhead, "days from today to generate for")
	cmd.Flags().StringVar(&opts.date, "date", "", "generate for this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&opts.fixtures, "fixtures", "", "seed an in-memory store from this YAML file")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "print drafts without writing orders")

	return cmd
}

func runGenerate(cmd *cobra.Command, rootOpts *RootOptions, opts *generateOptions) error {
	ctx := cmd.Context()
	logger := rootOpts.logger(cmd)

	cfg, err := config.Load(rootOpts.ConfigFile)
	if err != nil {
		return err
	}
	if opts.fixtures != "" {
		cfg.StoreDriver = config.DriverMemory
		cfg.FixturesFile = opts.fixtures
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	date, err := opts.targetDate()
	if err != nil {
		return err
	}

	backend, err := stores.Open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = backend.Close(ctx) }()

	engine := generator.NewEngine(backend.Stores, logger, cfg.EngineOptions()...)
	out := cmd.OutOrStdout()

	if opts.dryRun {
		plan, err := engine.Plan(ctx, date)
		if err != nil {
			return err
		}
		return writePlan(out, rootOpts.Format, plan)
	}

	summary, err := engine.Run(ctx, date)
	if err != nil {
		return err
	}
	return writeSummary(out, rootOpts.Format, summary)
}

func (o *generateOptions) targetDate() (time.Time, error) {
	if o.date != "" {
		date, err := time.Parse(time.DateOnly, o.date)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid --date %q: must be YYYY-MM-DD", o.date)
		}
		return date, nil
	}
	if o.daysAhead < 0 {
		return time.Time{}, fmt.Errorf("--days-ahead must not be negative")
	}
	return generator.TargetDate(o.now(), o.daysAhead), nil
}

func writePlan(w io.Writer, format string, plan *generator.Plan) error {
	if format == "json" {
		return writeJSON(w, plan)
	}

	fmt.Fprintf(w, "Plan for %s: %d order(s) from %d template(s), %d template(s) skipped\n",
		plan.TargetDate, len(plan.Drafts), plan.Ordered, plan.Skipped)
	for _, d := range plan.Drafts {
		editUntil := "none"
		if d.EditUntil != nil {
			editUntil = d.EditUntil.Format(time.RFC3339)
		}
		fmt.Fprintf(w, "  %s (edit until %s)\n", d.UserID, editUntil)
		for _, item := range d.Items {
			fmt.Fprintf(w, "    %dx %s [%s]\n", item.Quantity, item.ProductID, item.TemplateID)
		}
	}
	return nil
}

func writeSummary(w io.Writer, format string, summary generator.Summary) error {
	if format == "json" {
		return writeJSON(w, summary)
	}

	fmt.Fprintf(w, "Generated orders for %s: %d created, %d skipped (orders: %d new, %d updated)\n",
		summary.TargetDate, summary.Created, summary.Skipped, summary.OrdersCreated, summary.OrdersUpdated)
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

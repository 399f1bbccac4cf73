package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"project-manager/core/agol"
	"project-manager/core/config"
	"project-manager/core/logger"
	"project-manager/core/reconcile"
	"project-manager/feature/domains"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Flags for domains reconcile command
	domainsCSVPath string
	dryRunDomains  bool
	yesConfirm     bool
)

// domainsCmd is the parent command for all domain-table operations.
var domainsCmd = &cobra.Command{
	Use:   "domains",
	Short: "Curate per-field dropdown value lists",
	Long: `Curate the domain value lists stored in the domains feature server.
Supports reconciling a CSV replacement table against the remote records.`,
}

// domainsReconcileCmd reconciles one field's domain values from a CSV file.
var domainsReconcileCmd = &cobra.Command{
	Use:   "reconcile <field>",
	Short: "Reconcile a field's domain values from a CSV file (report + optionally apply)",
	Long: `Reconcile the domain values of one field against a CSV replacement table.

The CSV needs a header with a 'value' column; 'label', 'active' and 'email'
columns are optional. Values present remotely but absent from the file are
deleted.

Examples:
  # Report only (dry-run)
  project-manager domains reconcile Status --csv status.csv --dry-run

  # Apply with interactive confirmation
  project-manager domains reconcile Status --csv status.csv

  # Apply with auto-confirm (non-interactive)
  project-manager domains reconcile Status --csv status.csv --yes`,
	Args: cobra.ExactArgs(1),
	RunE: runDomainsReconcile,
}

func init() {
	domainsCmd.AddCommand(domainsReconcileCmd)

	domainsReconcileCmd.Flags().StringVar(&domainsCSVPath, "csv", "", "Path to the CSV replacement table (required)")
	domainsReconcileCmd.Flags().BoolVar(&dryRunDomains, "dry-run", false, "Plan only, apply nothing")
	domainsReconcileCmd.Flags().BoolVar(&yesConfirm, "yes", false, "Auto-confirm destructive actions (non-interactive)")
	_ = domainsReconcileCmd.MarkFlagRequired("csv")

	RootCmd.AddCommand(domainsCmd)
}

func runDomainsReconcile(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	fieldName := args[0]

	// Load configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	l, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	l.Info("Starting domain reconciliation", zap.String("field", fieldName))

	// Read the replacement table
	file, err := os.Open(domainsCSVPath)
	if err != nil {
		return fmt.Errorf("failed to open csv: %w", err)
	}
	defer file.Close()

	edited, err := domains.ParseCSV(file, fieldName)
	if err != nil {
		return fmt.Errorf("failed to parse csv: %w", err)
	}
	l.Info("Replacement table read", zap.Int("rows", len(edited)))

	client := agol.NewClient(cfg.ArcGIS)
	svc := domains.NewService(client, cfg.ArcGIS.DomainsServiceURL, l)

	// Step 1: Plan (always runs)
	result, err := svc.Reconcile(ctx, fieldName, edited, nil, reconcile.Options{DryRun: true})
	if err != nil {
		return fmt.Errorf("failed to plan reconciliation: %w", err)
	}

	// Step 2: Print report
	printDomainPlan(l, result.Plan)

	if dryRunDomains {
		l.Info("Dry-run requested, nothing applied")
		return nil
	}
	if result.Plan.Empty() {
		l.Info("Remote records already match the csv, nothing to apply")
		return nil
	}

	// Step 3: Apply (if confirmed)
	if !confirmDestructiveAction() {
		l.Info("Not confirmed, nothing applied")
		return nil
	}

	result, err = svc.Reconcile(ctx, fieldName, edited, nil, reconcile.Options{Confirmed: true})
	if err != nil {
		return fmt.Errorf("failed to apply reconciliation: %w", err)
	}

	l.Info("Reconciliation applied",
		zap.Int("adds", result.Plan.Summary.Adds),
		zap.Int("updates", result.Plan.Summary.Updates),
		zap.Int("deletes", result.Plan.Summary.Deletes),
	)
	return nil
}

// printDomainPlan reports the computed operation set.
func printDomainPlan(l *zap.Logger, plan *reconcile.Plan) {
	l.Info("Reconciliation plan",
		zap.String("field", plan.FieldName),
		zap.Int("current", plan.Summary.Current),
		zap.Int("edited", plan.Summary.Edited),
		zap.Int("adds", plan.Summary.Adds),
		zap.Int("updates", plan.Summary.Updates),
		zap.Int("deletes", plan.Summary.Deletes),
	)

	for _, add := range plan.Adds {
		l.Info("Planned add", zap.String("value", add.Value), zap.String("label", add.Label))
	}
	for _, update := range plan.Updates {
		l.Info("Planned update", zap.String("value", update.Value), zap.String("label", update.Label))
	}
	if len(plan.DeletedValues) > 0 {
		l.Info("Planned delete",
			zap.Strings("values", plan.DeletedValues),
			zap.String("where", plan.DeleteWhere),
		)
	}
}

// confirmDestructiveAction prompts the user for confirmation or uses --yes flag.
func confirmDestructiveAction() bool {
	if yesConfirm {
		fmt.Println("\n✓ Auto-confirmed via --yes flag")
		return true
	}

	fmt.Print("\n⚠️  Type 'yes' to confirm destructive actions: ")
	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	response = strings.TrimSpace(response)
	return response == "yes"
}

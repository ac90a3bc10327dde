// Package cmd - invoice command
package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"datacore/core/billing"
	"datacore/core/types"
	"datacore/db"
	"datacore/internal/config"
	"datacore/internal/logging"
)

var (
	invoicePeriod     string
	invoiceProject    string
	invoiceMultiplier string
	invoiceDryRun     bool
)

// invoiceCmd represents the invoice command
var invoiceCmd = &cobra.Command{
	Use:   "invoice",
	Short: "Issue billing records for a period",
	Long: `Compute and issue one billing record per project for a billing period.

Each record itemizes storage, user, software, extra-compute and database
expenses under the configured rate snapshot. Re-running a period issues
new records; earlier records are never modified.

Examples:
  datacore invoice
  datacore invoice --period 2026-08
  datacore invoice --project prj0042 --multiplier 0.5
  datacore invoice --dry-run`,
	RunE: runInvoice,
}

func init() {
	invoiceCmd.Flags().StringVarP(&invoicePeriod, "period", "p", "", "billing period YYYY-MM (default current month)")
	invoiceCmd.Flags().StringVar(&invoiceProject, "project", "", "limit the run to one project")
	invoiceCmd.Flags().StringVarP(&invoiceMultiplier, "multiplier", "m", "", "total multiplier for partial-month or penalty billing")
	invoiceCmd.Flags().BoolVar(&invoiceDryRun, "dry-run", false, "compute without issuing records")
}

func runInvoice(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	period := types.Period(invoicePeriod)
	if period == "" {
		period = types.PeriodOf(time.Now())
	}

	multiplier := decimal.NewFromInt(1)
	if invoiceMultiplier != "" {
		m, err := decimal.NewFromString(invoiceMultiplier)
		if err != nil {
			return fmt.Errorf("invalid multiplier: %w", err)
		}
		multiplier = m
	}

	snapshot, err := loadSnapshot()
	if err != nil {
		return err
	}

	database, err := openDatabase()
	if err != nil {
		return err
	}
	defer database.Close()

	projectStore := db.NewProjectStore(database)
	billingStore := db.NewBillingStore(database)

	var projects []*types.Project
	if invoiceProject != "" {
		p, err := projectStore.Get(ctx, invoiceProject)
		if err != nil {
			return err
		}
		projects = append(projects, p)
	} else {
		projects, err = projectStore.List(ctx)
		if err != nil {
			return err
		}
	}

	if len(projects) == 0 {
		fmt.Println("No projects to invoice.")
		return nil
	}

	engine := billing.NewEngine(snapshot, billingStore,
		billing.WithBaselineCPU(config.Get().Billing.BaselineCPU),
		billing.WithLogger(logging.Named("billing")),
	)

	result, err := engine.Run(ctx, projects, period, multiplier)
	if err != nil {
		return err
	}

	for i, rec := range result.Records {
		fmt.Printf("%-10s storage %10s  users %8s  software %8s  host %8s  db %8s  total %10s\n",
			rec.ProjectID,
			rec.StorageTotal().StringFixed(2),
			rec.UserCost.StringFixed(2),
			rec.SoftwareCost.StringFixed(2),
			rec.HostCost.StringFixed(2),
			rec.DBCost.Add(rec.DBSetupCost).StringFixed(2),
			rec.MonthlyTotal.StringFixed(2),
		)

		if invoiceDryRun {
			continue
		}
		if err := billingStore.Save(ctx, rec); err != nil {
			return err
		}
		if err := projectStore.UpdateCachedCosts(ctx, projects[i]); err != nil {
			return err
		}
	}

	fmt.Printf("\nPeriod %s: %d records, grand total %s\n",
		period, len(result.Records), result.GrandTotal.StringFixed(2))
	if invoiceDryRun {
		fmt.Println("(dry run, nothing issued)")
	}
	return nil
}

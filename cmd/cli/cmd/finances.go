// Package cmd - finances command
package cmd

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"datacore/db"
)

// financesCmd represents the finances command
var financesCmd = &cobra.Command{
	Use:   "finances",
	Short: "Show the cached per-project cost summary",
	Long: `List every project's cached cost breakdown from the most recent
invoice run, with a grand total. The issued billing records remain the
authoritative documents; this is the quick listing view.`,
	RunE: runFinances,
}

func runFinances(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	database, err := openDatabase()
	if err != nil {
		return err
	}
	defer database.Close()

	projects, err := db.NewProjectStore(database).List(ctx)
	if err != nil {
		return err
	}

	if len(projects) == 0 {
		fmt.Println("No projects found.")
		return nil
	}

	grand := decimal.Zero
	fmt.Printf("%-10s %-14s %-10s %10s %10s %10s %10s %12s\n",
		"PROJECT", "STATUS", "ENV", "USERS", "SOFTWARE", "HOST", "DB", "TOTAL")
	for _, p := range projects {
		c := p.CachedCosts
		fmt.Printf("%-10s %-14s %-10s %10s %10s %10s %10s %12s\n",
			p.ID, p.Status, p.EnvType,
			c.UserCost.StringFixed(2),
			c.SoftwareCost.StringFixed(2),
			c.HostCost.StringFixed(2),
			c.DBCost.StringFixed(2),
			c.Total.StringFixed(2),
		)
		grand = grand.Add(c.Total)
	}
	fmt.Printf("\nGrand total: %s\n", grand.StringFixed(2))
	return nil
}

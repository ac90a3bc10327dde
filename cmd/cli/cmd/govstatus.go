// Package cmd - govstatus command
package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"datacore/core/governance"
	"datacore/db"
)

var govstatusAll bool

// govstatusCmd represents the govstatus command
var govstatusCmd = &cobra.Command{
	Use:   "govstatus",
	Short: "Report governance documents requiring attention",
	Long: `Classify every governance document by its expiry status and list
the ones that require attention. Documents that defer to another
agreement, are superseded by a later document, or are user agreements
are always safe.

Examples:
  datacore govstatus
  datacore govstatus --all`,
	RunE: runGovstatus,
}

func init() {
	govstatusCmd.Flags().BoolVarP(&govstatusAll, "all", "a", false, "include safe documents")
}

func runGovstatus(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	today := time.Now()

	database, err := openDatabase()
	if err != nil {
		return err
	}
	defer database.Close()

	docs, err := db.NewGovernanceStore(database).List(ctx)
	if err != nil {
		return err
	}

	if govstatusAll {
		statuses := governance.ClassifyAll(docs, today)
		for _, doc := range docs {
			fmt.Printf("%-8s %-20s %-14s expires %s (%d days)\n",
				statuses[doc.ID], doc.DocID, doc.Type,
				doc.ExpiryDate.Format("2006-01-02"),
				doc.DaysUntilExpiry(today),
			)
		}
		return nil
	}

	items := governance.AttentionReport(docs, today)
	if len(items) == 0 {
		fmt.Println("All governance documents are safe.")
		return nil
	}

	for _, item := range items {
		fmt.Printf("%-8s %-20s %-14s project %-10s expires %s (%d days)\n",
			item.Status, item.Doc.DocID, item.Doc.Type, item.Doc.ProjectID,
			item.Doc.ExpiryDate.Format("2006-01-02"),
			item.DaysUntilExpiry,
		)
	}
	return nil
}

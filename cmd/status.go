package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status <project>",
	Short: "Show indexing status for a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		project := args[0]
		st := openStore(cfg)

		present, elapsed := st.LockInfo(project)
		if present {
			fmt.Printf("lock: held for %s\n", elapsed.Round(time.Second))
		} else {
			fmt.Println("lock: free")
		}

		status, err := st.ReadStatus(project)
		if err != nil {
			return err
		}
		if status == nil {
			fmt.Println("no indexing run recorded")
			return nil
		}
		fmt.Printf("overall: %s (%.0f%%)\n", status.OverallStatus, status.OverallProgress)
		for key, stage := range status.Stages {
			fmt.Printf("  %s: %s (%.0f%%)", key, stage.Status, stage.Progress)
			if stage.Error != "" {
				fmt.Printf("  error: %s", stage.Error)
			}
			fmt.Println()
		}

		logs, err := st.ReadErrorLog(project)
		if err != nil {
			return err
		}
		if logs != "" && verbose {
			fmt.Println("error log:")
			fmt.Print(logs)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

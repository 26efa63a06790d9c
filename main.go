// File: moveline/main.go
//
// Moveline answers a moving company's phone line: Twilio webhooks drive an
// intake dialogue that quotes, books or hands the caller to the manager.
//
//	moveline serve            # webhooks, API, idle-session sweeper
//	moveline serve --worker   # same, with the task worker in-process
//	moveline worker           # reminder and follow-up SMS worker only
//	moveline quote --type local --miles 12 --rooms 3
//	moveline token --role integration --subject website
package main

import (
	"os"

	"moveline/config"
	"moveline/utils"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "moveline",
		Short:        "Voice and SMS intake assistant for a moving company",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			config.LoadConfig()
			utils.InitializeLogger()
		},
	}
	rootCmd.AddCommand(
		buildServeCmd(),
		buildWorkerCmd(),
		buildQuoteCmd(),
		buildTokenCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

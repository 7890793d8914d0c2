package commands

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/ihor-mutel/helloworld-operator/cmd/hwctl/handlers"
)

// Status returns the command for showing the state of a HelloWorld.
//
// Optional flags:
//
//	--json: Output in JSON format
//	--watch, -w: Refresh continuously in a full-screen view
//	--interval: Refresh interval for --watch (default 3s)
func Status() *cobra.Command {
	var (
		jsonOutput bool
		watch      bool
		interval   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "status NAME",
		Short: "Show replicas and bootstrap state of a HelloWorld",
		Long: `Show the desired and current replica count of a HelloWorld and,
for every pod of its StatefulSet, whether the payload shows up in the pod log.

Styled output is used on a terminal, JSON otherwise.

Examples:
  # Show the example resource
  hwctl status hello-world-example

  # Get status in JSON format
  hwctl status hello-world-example --json

  # Follow the bootstrap of new pods
  hwctl status hello-world-example --watch`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if watch {
				return handlers.WatchStatus(cmd.Context(), args[0], interval)
			}
			return handlers.Status(cmd.Context(), args[0], jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Refresh continuously in a full-screen view")
	cmd.Flags().DurationVar(&interval, "interval", 3*time.Second, "Refresh interval for --watch")
	cmd.MarkFlagsMutuallyExclusive("json", "watch")

	return cmd
}

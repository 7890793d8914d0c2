package commands

import (
	"github.com/spf13/cobra"

	"github.com/ihor-mutel/helloworld-operator/cmd/hwctl/handlers"
)

// Inject returns the command for writing the payload into one pod by hand.
func Inject() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inject NAME POD",
		Short: "Inject the payload of a HelloWorld into a pod",
		Long: `Run the payload injection command of a HelloWorld inside one pod
and wait for the exec session to end.

The bootstrap watcher does this for every new pod; use this command to
repair a pod that ended up unverified.

Examples:
  hwctl inject hello-world-example web-1`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.Inject(cmd.Context(), args[0], args[1])
		},
	}

	return cmd
}

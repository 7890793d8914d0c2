// Package commands defines the CLI command structure and flag bindings.
//
// Command execution is delegated to handler functions in the handlers
// package.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/ihor-mutel/helloworld-operator/cmd/hwctl/handlers"
)

// Root returns the root command for the hwctl CLI.
func Root() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "hwctl",
		Short:         "Manage HelloWorld resources",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&handlers.Kubeconfig, "kubeconfig", "", "Path to the kubeconfig file (default: $KUBECONFIG or ~/.kube/config)")
	cmd.PersistentFlags().StringVarP(&handlers.Namespace, "namespace", "n", "default", "Namespace of the HelloWorld resource")

	cmd.AddCommand(Init())
	cmd.AddCommand(Apply())
	cmd.AddCommand(Status())
	cmd.AddCommand(Inject())
	cmd.AddCommand(Version())

	return cmd
}

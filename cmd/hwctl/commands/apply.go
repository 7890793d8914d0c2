package commands

import (
	"github.com/spf13/cobra"

	"github.com/ihor-mutel/helloworld-operator/cmd/hwctl/handlers"
)

// Apply returns the command for creating or updating a HelloWorld resource.
//
// Required flags:
//
//	--filename, -f: Path to the HelloWorld manifest
func Apply() *cobra.Command {
	var filename string

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Create or update a HelloWorld resource",
		Long: `Create or update a HelloWorld resource from a manifest.

An existing resource keeps its metadata; only the spec is replaced.
The operator then creates or scales the StatefulSet.

Examples:
  # Apply a manifest written by 'hwctl init'
  hwctl apply -f helloworld.yaml

  # Apply into another namespace
  hwctl apply -f helloworld.yaml -n apps`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Apply(cmd.Context(), filename)
		},
	}

	cmd.Flags().StringVarP(&filename, "filename", "f", "", "Path to the HelloWorld manifest")
	_ = cmd.MarkFlagRequired("filename")

	return cmd
}

package commands

import (
	"github.com/spf13/cobra"

	"github.com/ihor-mutel/helloworld-operator/cmd/hwctl/handlers"
)

// Init returns the command for interactively creating a HelloWorld manifest.
//
// Flags:
//
//	--output, -o: Path to output file (default "helloworld.yaml")
func Init() *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Interactively create a HelloWorld manifest",
		Long: `Interactively create a HelloWorld manifest.

The wizard asks for:

  - Resource name
  - Workload name and container image
  - Payload injected into every pod
  - Desired replica count

The manifest is written to the output file and can be applied with
'hwctl apply -f <file>'.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Init(cmd.Context(), outputPath)
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "helloworld.yaml", "Output file path")

	return cmd
}

package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vuhung16au/DVAPI/internal/flag"
)

var errNoFlag = errors.New("no flag found")

func newExtractCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "extract [file]",
		Short:   "Print the first flag{...} found in a file or stdin",
		Example: "curl -s http://localhost:3000/api/flag | dvapi extract",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				data []byte
				err  error
			)
			if len(args) == 1 && args[0] != "-" {
				data, err = os.ReadFile(args[0])
			} else {
				data, err = io.ReadAll(cmd.InOrStdin())
			}
			if err != nil {
				return fmt.Errorf("read input: %w", err)
			}

			found := flag.Extract(string(data))
			if found == "" {
				return errNoFlag
			}
			fmt.Fprintln(cmd.OutOrStdout(), found)
			return nil
		},
	}
}

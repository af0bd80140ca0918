package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/michaelvl/helm2yaml/pkg/envsubst"
	"github.com/michaelvl/helm2yaml/pkg/render"
)

const envsubstExample = `  helm2yaml envsubst manifest.yaml -o expanded.yaml
  cat manifest.yaml | helm2yaml envsubst
`

// NewEnvsubstCmd returns the envsubst command, which substitutes
// environment variables in the given files, or stdin when no files are
// given. Unknown variables are left untouched.
func NewEnvsubstCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "envsubst [file...]",
		Short:   "Substitute environment variables in files",
		Example: envsubstExample,
		RunE: func(cc *cobra.Command, args []string) error {
			output, err := cc.Flags().GetString("output")
			if err != nil {
				return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
			}

			out, err := render.OpenOutput(output, cc.OutOrStdout())
			if err != nil {
				return err
			}
			defer func() {
				_ = out.Close()
			}()

			if len(args) == 0 {
				return expandStream(cc.InOrStdin(), out)
			}

			for _, name := range args {
				err := expandFile(name, out)
				if err != nil {
					return err
				}
			}

			return nil
		},
	}

	cmd.Flags().StringP("output", "o", "", "Write output to this file ('-' for stdout)")

	return cmd
}

func expandFile(name string, out io.Writer) error {
	data, err := os.ReadFile(name)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	_, err = io.WriteString(out, envsubst.ExpandEnv(string(data)))
	if err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	return nil
}

func expandStream(in io.Reader, out io.Writer) error {
	data, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	_, err = io.WriteString(out, envsubst.ExpandEnv(string(data)))
	if err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	return nil
}

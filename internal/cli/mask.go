package cli

import (
	"fmt"
	"strings"

	"github.com/JonMunkholm/frota/internal/mask"
	"github.com/spf13/cobra"
)

func kindNames() string {
	names := make([]string, 0, len(mask.Kinds()))
	for _, k := range mask.Kinds() {
		names = append(names, k.String())
	}
	return strings.Join(names, ", ")
}

func newMaskCmd() *cobra.Command {
	var clean bool
	cmd := &cobra.Command{
		Use:   "mask <kind> <value>",
		Short: "Format a value with a mask",
		Long:  "Format a value with a mask. Kinds: " + kindNames() + ".",
		Example: `  frotactl mask cpfCnpj 11222333000181
  frotactl mask plate bra2e19 --clean`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := mask.ParseKind(args[0])
			if err != nil {
				return err
			}
			out := kind.Apply(args[1])
			if clean {
				out = kind.Clean(args[1])
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
			return err
		},
	}
	cmd.Flags().BoolVar(&clean, "clean", false, "Print the stored form instead of the masked one")
	return cmd
}

// validateKind resolves the validate argument; "document" is CPF or CNPJ.
func validateKind(name string) (mask.Kind, error) {
	if strings.EqualFold(name, "document") {
		return mask.KindCPFCNPJ, nil
	}
	return mask.ParseKind(name)
}

func newValidateCmd() *cobra.Command {
	var quiet bool
	cmd := &cobra.Command{
		Use:   "validate <kind> <value>",
		Short: "Check a document, plate, phone, CEP or date",
		Long: `Check a value against a mask: check digits for cpf, cnpj and document
(CPF or CNPJ by length), format for plate, length for phone and cep, a real
calendar day for date. Exits with status 1 when the value is invalid.`,
		Example: `  frotactl validate cpf 529.982.247-25
  frotactl validate document 11222333000181`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := validateKind(args[0])
			if err != nil {
				return err
			}
			valid := kind.Valid(args[1])
			if !quiet {
				verdict := "inválido"
				if valid {
					verdict = "válido"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", kind.Apply(args[1]), verdict)
			}
			if !valid {
				return ErrInvalid
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Only set the exit status")
	return cmd
}

package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/seqlab/prospect/internal/merge"
)

var (
	mergeCSV      string
	mergeProfiles string
	mergeOutDir   string
)

var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Enriquece os perfis com e-mails de uma lista de contatos",
	Long: `Cruza uma lista de contatos em CSV (colunas nome e email) com os
perfis JSON classificados, casando por nome normalizado. Perfis com
correspondência ganham uma cópia enriquecida com o e-mail de contato;
endereços institucionais genéricos são rejeitados e e-mails já
presentes são preservados.

Examples:
  prospect merge perfis --csv contatos.csv -o enriquecidos`,
	Args:         cobra.MaximumNArgs(1),
	RunE:         runMerge,
	SilenceUsage: true,
}

func init() {
	mergeCmd.Flags().StringVar(&mergeCSV, "csv", "", "Contact list CSV (required)")
	mergeCmd.Flags().StringVar(&mergeProfiles, "profiles", "perfis", "Directory with profile JSON files")
	mergeCmd.Flags().StringVarP(&mergeOutDir, "output", "o", "enriquecidos", "Directory for enriched profiles and the merge log")
	_ = mergeCmd.MarkFlagRequired("csv")
	RootCmd.AddCommand(mergeCmd)
}

func runMerge(cmd *cobra.Command, args []string) error {
	u := GetUI()

	profilesDir := mergeProfiles
	if len(args) > 0 {
		profilesDir = args[0]
	}

	spin := u.StartSimpleSpinner(u.ErrWriter, "Cruzando contatos com perfis...")
	stats, _, err := merge.Run(merge.Options{
		CSVPath:     mergeCSV,
		ProfilesDir: profilesDir,
		OutDir:      mergeOutDir,
	}, time.Now())
	spin.Stop()
	if err != nil {
		return err
	}

	w := u.Writer
	fmt.Fprintf(w, "%s Merge concluído: %d contatos processados\n",
		u.Styles.Success.Render(u.Styles.IconSuccess), stats.Rows)
	fmt.Fprintf(w, "  E-mails adicionados:   %d\n", stats.Updated)
	fmt.Fprintf(w, "  Já existentes:         %d\n", stats.AlreadySet)
	fmt.Fprintf(w, "  Genéricos rejeitados:  %d\n", stats.Rejected)
	fmt.Fprintf(w, "  Perfis não encontrados: %d\n", stats.NoMatch)
	fmt.Fprintf(w, "  Sem e-mail:            %d\n", stats.NoEmail)
	return nil
}

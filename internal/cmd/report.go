package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/seqlab/prospect/internal/report"
)

var reportOutDir string

var reportCmd = &cobra.Command{
	Use:   "report [dir]",
	Short: "Consolida as listas exportadas em uma planilha de análise",
	Long: `Localiza no diretório indicado os CSVs de clientes viáveis e de
fatores negativos gerados pela etapa de classificação e os consolida
em uma única planilha XLSX com abas de análise completa, listas
separadas e estatísticas.

Examples:
  prospect report resultados
  prospect report resultados -o analises`,
	Args:         cobra.MaximumNArgs(1),
	RunE:         runReport,
	SilenceUsage: true,
}

func init() {
	reportCmd.Flags().StringVarP(&reportOutDir, "output", "o", "", "Directory for the consolidated workbook (defaults to the input dir)")
	RootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	outDir := reportOutDir
	if outDir == "" {
		outDir = dir
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	u := GetUI()

	spin := u.StartSimpleSpinner(u.ErrWriter, "Consolidando listas...")
	path, err := report.Build(dir, outDir, time.Now())
	spin.Stop()
	if err != nil {
		return err
	}

	fmt.Fprintf(u.Writer, "%s Análise consolidada gerada: %s\n",
		u.Styles.Success.Render(u.Styles.IconSuccess), u.Styles.Path.Render(path))
	return nil
}

package cmd

import (
	"os"
	"sync"

	"github.com/spf13/cobra"

	"github.com/seqlab/prospect/internal/ui"
)

var (
	// Global flags
	verbose    bool
	format     string
	configPath string
)

var RootCmd = &cobra.Command{
	Use:   "prospect",
	Short: "Classificação de pesquisadores para prospecção comercial",
	Long: `prospect analisa perfis de pesquisadores e os classifica segundo uma
rubrica de 18 critérios de potencial comercial, usando um modelo de
linguagem para avaliar as evidências de cada currículo.

O pipeline completo tem três etapas: classificação e exportação de
listas segmentadas (classify), consolidação das listas em uma planilha
de análise (report) e enriquecimento dos perfis com e-mails de contato
(merge).`,
}

func Execute() error {
	return RootCmd.Execute()
}

func init() {
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	RootCmd.PersistentFlags().StringVarP(&format, "format", "f", "terminal", "Output format (terminal, json)")
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a YAML config file")
}

var (
	uiOnce   sync.Once
	globalUI *ui.UI
)

// GetUI returns the process-wide UI, built once from the format flag.
func GetUI() *ui.UI {
	uiOnce.Do(func() {
		globalUI = ui.New(os.Stdout, os.Stderr, format)
	})
	return globalUI
}

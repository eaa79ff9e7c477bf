package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/seqlab/prospect/internal/cache"
	"github.com/seqlab/prospect/internal/classify"
	"github.com/seqlab/prospect/internal/config"
	"github.com/seqlab/prospect/internal/export"
	"github.com/seqlab/prospect/internal/gateway"
	"github.com/seqlab/prospect/internal/profile"
	"github.com/seqlab/prospect/internal/reporter"
	"github.com/seqlab/prospect/internal/segment"
	"github.com/seqlab/prospect/internal/ui"
)

var (
	inputDir     string
	outputDir    string
	modelName    string
	batchSize    int
	conservative bool
	noCache      bool
	cachePath    string
)

const backendTimeout = 90 * time.Second

var classifyCmd = &cobra.Command{
	Use:   "classify [input-dir]",
	Short: "Classifica perfis de pesquisadores e exporta listas segmentadas",
	Long: `Carrega os perfis do diretório de entrada, avalia cada um contra a
rubrica de 18 critérios usando o modelo configurado e exporta a
classificação geral e as listas segmentadas por categoria em CSV,
JSON e XLSX.

Resultados são cacheados por hash de conteúdo: perfis já
classificados não geram novas chamadas de API.

Examples:
  prospect classify -i perfis -o resultados
  prospect classify --model claude-opus-4-1 --conservative
  prospect classify --format json > resultado.json`,
	Args:         cobra.MaximumNArgs(1),
	RunE:         runClassify,
	SilenceUsage: true,
}

func init() {
	classifyCmd.Flags().StringVarP(&inputDir, "input", "i", "", "Directory with researcher profiles")
	classifyCmd.Flags().StringVarP(&outputDir, "output", "o", "", "Directory for exported lists")
	classifyCmd.Flags().StringVar(&modelName, "model", "", "Backend model name")
	classifyCmd.Flags().IntVar(&batchSize, "batch-size", 0, "Profiles per classification request (2-12)")
	classifyCmd.Flags().BoolVar(&conservative, "conservative", false, "Longer pauses between batches")
	classifyCmd.Flags().BoolVar(&noCache, "no-cache", false, "Disable the classification cache")
	classifyCmd.Flags().StringVar(&cachePath, "cache", "", "Path to the cache database")
	RootCmd.AddCommand(classifyCmd)
}

func runClassify(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	applyClassifyFlags(cfg)
	if len(args) > 0 {
		cfg.InputDir = args[0]
	}

	if err := cfg.RequireAPIKey(); err != nil {
		return err
	}
	model, err := cfg.ResolveModel()
	if err != nil {
		return err
	}

	u := GetUI()

	progress := u.StartProgress()
	defer func() {
		if progress != nil {
			progress.Done(nil)
		}
	}()

	// Stage 1: load profiles
	progress.SetStage(ui.StageLoadProfiles)
	progress.SetOperation(cfg.InputDir)

	sources, skipped, err := profile.LoadDir(cfg.InputDir)
	if err != nil {
		return fmt.Errorf("loading profiles: %w", err)
	}
	if len(sources) == 0 {
		return fmt.Errorf("no usable profiles in %s", cfg.InputDir)
	}

	if verbose {
		fmt.Printf("Perfis carregados: %d (%d ignorados)\n", len(sources), len(skipped))
		fmt.Printf("Modelo: %s, batch %d\n\n", model.Display, cfg.BatchSize)
	}
	for _, s := range skipped {
		u.Noticef("ignorando %s: %v", s.Path, s.Reason)
	}

	var store *cache.Cache
	if !noCache && cfg.CachePath != "" {
		store, err = cache.Open(cfg.CachePath)
		if err != nil {
			return fmt.Errorf("opening cache: %w", err)
		}
		defer store.Close()
	}

	// Stage 2: classify
	progress.SetStage(ui.StageClassify)
	progress.SetRecordCount(len(sources))

	backend := gateway.NewAnthropicBackend(model.Name, backendTimeout)
	gw := gateway.New(backend, gateway.DefaultPolicy(), model.Temperature, model.MaxTokens,
		gateway.WithNotice(u.Noticef))

	engine := classify.New(gw, store, classify.Options{
		BatchSize:    cfg.BatchSize,
		Conservative: cfg.Conservative,
	},
		classify.WithNotice(u.Noticef),
		classify.WithProgress(func(done, total int, name string, fromCache bool) {
			progress.RecordDone(name, fromCache)
		}),
	)

	items, stats, err := engine.Run(cmd.Context(), sources)
	if err != nil {
		return fmt.Errorf("classification aborted: %w", err)
	}

	// Stage 3: segment and export
	progress.SetStage(ui.StageExport)

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	ts := export.Timestamp(time.Now())
	general, err := export.WriteGeneral(cfg.OutputDir, ts, items)
	if err != nil {
		return fmt.Errorf("exporting general ranking: %w", err)
	}
	lists, err := export.WriteLists(cfg.OutputDir, ts, segment.Split(items), items)
	if err != nil {
		return fmt.Errorf("exporting segmented lists: %w", err)
	}
	files := append([]export.File{general}, lists...)

	// Stop progress before reporting
	if progress != nil {
		progress.Done(nil)
		progress = nil
	}

	var rep reporter.Reporter
	if u.IsJSON() {
		rep = reporter.NewJSONReporter(os.Stdout)
	} else {
		rep = reporter.NewTerminalReporter(os.Stdout)
	}

	return rep.Report(reporter.Run{
		Items:     items,
		Stats:     stats,
		Files:     files,
		Skipped:   skipped,
		Model:     model.Name,
		BatchSize: cfg.BatchSize,
	})
}

// applyClassifyFlags lets CLI flags override file and environment settings.
func applyClassifyFlags(cfg *config.Config) {
	if inputDir != "" {
		cfg.InputDir = inputDir
	}
	if outputDir != "" {
		cfg.OutputDir = outputDir
	}
	if modelName != "" {
		cfg.Model = modelName
	}
	if batchSize != 0 {
		cfg.BatchSize = batchSize
	}
	if conservative {
		cfg.Conservative = true
	}
	if cachePath != "" {
		cfg.CachePath = cachePath
	}
}

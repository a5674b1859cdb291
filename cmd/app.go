package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/arjun/factdeck/internal/config"
	"github.com/arjun/factdeck/internal/extract"
	"github.com/arjun/factdeck/internal/llm"
	"github.com/arjun/factdeck/internal/logging"
	"github.com/arjun/factdeck/internal/progress"
	"github.com/arjun/factdeck/internal/provision"
	"github.com/arjun/factdeck/internal/quiz"
	"github.com/arjun/factdeck/internal/store"
	"github.com/arjun/factdeck/internal/topics"
)

// app holds the process-wide object graph. Everything is constructed once
// here and passed by reference; no package carries singleton state.
type app struct {
	cfg config.Config
	log *zap.SugaredLogger
	st  *store.Store

	cache   *provision.DirCache
	service *topics.Service
}

// newApp wires config, logging, storage, the completion gateway, and the
// pipeline services.
func newApp(cmd *cobra.Command) (*app, error) {
	cfgPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		cfg.Verbose = true
	}
	if dbFlag, _ := cmd.Flags().GetString("db"); dbFlag != "" {
		cfg.DBPath = dbFlag
	}

	log, err := logging.New(cfg.Verbose)
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	dbPath := cfg.DBPath
	if dbPath == "" {
		if dbPath, err = store.DefaultPath(); err != nil {
			return nil, err
		}
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	bus := progress.NewBus()
	gateway := llm.NewGateway()
	llmCfg, explicit := llm.Discover()

	cache := provision.NewDirCache(cfg.ModelsDir, cfg.ArtifactBaseURL)
	var assets provision.Assets
	if cfg.AssetsDir != "" {
		assets = provision.NewDirAssets(cfg.AssetsDir, cfg.ModelsDir)
	}

	provisioner := provision.New(provision.Config{
		Candidates: provision.DefaultCandidates(),
		LLM:        llmCfg,
		Explicit:   explicit,
		Wrap: func(b llm.Backend) llm.Backend {
			return llm.WithLogging(b, st.RequestLogs(), log)
		},
		Logger: log,
	}, gateway, cache, assets, bus)

	extractCfg := extract.DefaultConfig()
	extractCfg.ChunkSize = cfg.ChunkSize
	extractCfg.MaxFacts = cfg.MaxFacts
	extractCfg.MaxFactsFallback = cfg.MaxFactsFallback
	extractCfg.Logger = log

	quizCfg := quiz.DefaultConfig()
	quizCfg.Interval = cfg.QuizInterval
	quizCfg.Logger = log

	service := topics.NewService(topics.Options{
		Provisioner: provisioner,
		Extractor:   extract.New(gateway, bus, extractCfg),
		Quizzes:     quiz.New(gateway, bus, quizCfg),
		Repo:        st.Facts(),
		Source:      topics.NewFileSource(cfg.TopicsDir),
		Bus:         bus,
		Logger:      log,
	})

	return &app{
		cfg:     cfg,
		log:     log,
		st:      st,
		cache:   cache,
		service: service,
	}, nil
}

func (a *app) Close() {
	_ = a.log.Sync()
	_ = a.st.Close()
}

package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/XtremePossibility/sitemonkeys-ai-system/internal/adapters/driven/gdrive"
	kvsqlite "github.com/XtremePossibility/sitemonkeys-ai-system/internal/adapters/driven/kv/sqlite"
	"github.com/XtremePossibility/sitemonkeys-ai-system/internal/adapters/driven/kv/upstash"
	"github.com/XtremePossibility/sitemonkeys-ai-system/internal/adapters/driven/llm/anthropic"
	"github.com/XtremePossibility/sitemonkeys-ai-system/internal/adapters/driven/llm/openai"
	"github.com/XtremePossibility/sitemonkeys-ai-system/internal/adapters/driving/httpapi"
	"github.com/XtremePossibility/sitemonkeys-ai-system/internal/config"
	"github.com/XtremePossibility/sitemonkeys-ai-system/internal/core/ports/driven"
	"github.com/XtremePossibility/sitemonkeys-ai-system/internal/core/services"
	"github.com/XtremePossibility/sitemonkeys-ai-system/internal/fallback"
	"github.com/XtremePossibility/sitemonkeys-ai-system/internal/logger"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the vault HTTP service",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "HTTP listen address (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.Addr = serveAddr
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	kv, closeKV, err := buildKVStore(cfg)
	if err != nil {
		return err
	}
	defer closeKV()

	fb, closeFB, err := buildFallback(cfg)
	if err != nil {
		return err
	}
	defer closeFB()

	source, err := buildSource(ctx, cfg)
	if err != nil {
		return err
	}

	keyPrefix := cfg.KeyPrefix
	if keyPrefix == "" {
		keyPrefix = "sitemonkeys/vault"
	}
	assembler := services.NewAssembler(source, kv, services.AssemblerConfig{
		RootFolderID:  cfg.VaultFolderID,
		TargetFolders: cfg.TargetFolders,
		KeyPrefix:     keyPrefix,
	})
	manager := services.NewManager(kv, assembler, fb, cfg.CacheKey)
	manager.SetSourceTimeout(cfg.SourceTimeout)

	primary, secondary := buildLLMs(cfg)
	chat := services.NewChatService(primary, secondary)

	purgeKeys := []string{keyPrefix + "/_master_index"}
	for _, folder := range cfg.TargetFolders {
		purgeKeys = append(purgeKeys, keyPrefix+"/"+folder+"/_index")
	}
	admin := services.NewAdmin(kv, manager, purgeKeys)

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpapi.NewServer(chat, manager, admin, fb).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Listening on %s", cfg.Addr)
		fmt.Fprintf(cmd.OutOrStdout(), "sitemonkeys vault service listening on %s\n", cfg.Addr)
		errCh <- server.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case sig := <-sigCh:
		logger.Info("Received %s, shutting down", sig)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// buildKVStore selects the hosted Redis REST store when configured and
// the local SQLite store otherwise.
func buildKVStore(cfg *config.Config) (driven.KVStore, func(), error) {
	if cfg.KVRestURL != "" {
		logger.Info("Using Upstash REST cache at %s", cfg.KVRestURL)
		return upstash.New(cfg.KVRestURL, cfg.KVRestToken, nil), func() {}, nil
	}

	store, err := kvsqlite.NewStore(cfg.DataDir)
	if err != nil {
		return nil, nil, fmt.Errorf("open local cache: %w", err)
	}
	logger.Info("Using local SQLite cache at %s", store.Path())
	return store, func() { store.Close() }, nil
}

func buildFallback(cfg *config.Config) (driven.FallbackStore, func(), error) {
	if cfg.FallbackFile == "" {
		return fallback.NewStore(), func() {}, nil
	}

	store, err := fallback.NewStoreFromFile(cfg.FallbackFile)
	if err != nil {
		return nil, nil, fmt.Errorf("load fallback file: %w", err)
	}
	logger.Info("Fallback vault loaded from %s", cfg.FallbackFile)
	return store, func() { store.Close() }, nil
}

// buildSource creates the Drive document source, or an unavailable
// stub when Drive is not configured so refreshes fail cleanly into
// the fallback path.
func buildSource(ctx context.Context, cfg *config.Config) (driven.DocumentSource, error) {
	if !cfg.DriveEnabled() {
		logger.Warn("Google Drive not configured, vault refresh will serve fallback")
		return unavailableSource{}, nil
	}

	svc, err := gdrive.NewService(ctx, []byte(cfg.GoogleCredentialsJSON))
	if err != nil {
		return nil, fmt.Errorf("create drive source: %w", err)
	}
	return gdrive.NewSource(svc, gdrive.NewRateLimiter(gdrive.DefaultRateLimit)), nil
}

func buildLLMs(cfg *config.Config) (primary, secondary driven.LLMService) {
	if cfg.AnthropicAPIKey != "" {
		svc, err := anthropic.NewLLMService(anthropic.Config{
			APIKey:  cfg.AnthropicAPIKey,
			Model:   cfg.AnthropicModel,
			Timeout: cfg.ChatTimeout,
		})
		if err == nil {
			primary = svc
		} else {
			logger.Warn("Anthropic unavailable: %v", err)
		}
	}

	if cfg.OpenAIAPIKey != "" {
		svc, err := openai.NewLLMService(openai.Config{
			APIKey:  cfg.OpenAIAPIKey,
			Model:   cfg.OpenAIModel,
			Timeout: cfg.ChatTimeout,
		})
		if err == nil {
			secondary = svc
		} else {
			logger.Warn("OpenAI unavailable: %v", err)
		}
	}

	if primary == nil && secondary == nil {
		logger.Warn("No LLM API keys configured, chat requests will fail")
	}
	return primary, secondary
}

// unavailableSource is the document source used when Drive is not
// configured. Every call fails, which the cache manager converts into
// the fallback payload.
type unavailableSource struct{}

func (unavailableSource) ListFolders(context.Context, string) ([]driven.Folder, error) {
	return nil, errors.New("document source not configured")
}

func (unavailableSource) ListFiles(context.Context, string) ([]driven.File, error) {
	return nil, errors.New("document source not configured")
}

func (unavailableSource) Download(context.Context, string) ([]byte, error) {
	return nil, errors.New("document source not configured")
}

func (unavailableSource) ExportText(context.Context, string) ([]byte, error) {
	return nil, errors.New("document source not configured")
}

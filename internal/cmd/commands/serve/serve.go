package serve

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/buildeasy/webverse/internal/api"
	"github.com/buildeasy/webverse/internal/cmd/base"
	"github.com/buildeasy/webverse/internal/config"
	"github.com/buildeasy/webverse/internal/server"
)

// shutdownTimeout bounds the graceful drain on SIGINT/SIGTERM.
const shutdownTimeout = 30 * time.Second

type Command struct {
	*base.Command

	flagConfig string
}

func (c *Command) Synopsis() string {
	return "Run the content authoring API server"
}

func (c *Command) Help() string {
	return `Usage: webverse serve -config=config.hcl

  Run the WebVerse content authoring API server against the AEM instance
  named in the configuration file.

` + c.Flags().Help()
}

func (c *Command) Flags() *base.FlagSet {
	f := base.NewFlagSet("serve")

	f.StringVar(&c.flagConfig, "config", "", "Path to the HCL configuration file")

	return f
}

func (c *Command) Run(args []string) int {
	f := c.Flags()
	if err := f.Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}

	if c.flagConfig == "" {
		c.UI.Error("missing required -config flag")
		return 1
	}

	cfg, err := config.NewConfig(c.flagConfig)
	if err != nil {
		c.UI.Error(fmt.Sprintf("error loading configuration: %v", err))
		return 1
	}

	log := hclog.New(&hclog.LoggerOptions{
		Name:       "webverse",
		Level:      hclog.LevelFromString(cfg.LogLevel),
		JSONFormat: cfg.LogFormat == "json",
	})

	aemCfg, err := cfg.AEMConfig()
	if err != nil {
		c.UI.Error(fmt.Sprintf("error building AEM configuration: %v", err))
		return 1
	}

	srv := server.Server{
		Config: cfg,
		AEM:    aemCfg,
		Logger: log,
	}

	mux := http.NewServeMux()
	registerRoutes(mux, srv)

	handler := api.AllowedHosts(cfg, log, api.RequestLogger(log, mux))

	httpServer := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: handler,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server",
			"addr", cfg.ListenAddr,
			"api_prefix", cfg.APIPrefix,
			"environment", cfg.Environment,
			"aem_host", aemCfg.Host)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			return 1
		}
	case <-ctx.Done():
		log.Info("shutdown signal received, draining connections")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error("error during shutdown", "error", err)
			return 1
		}
	}

	log.Info("server stopped")
	return 0
}

// registerRoutes binds every API handler under the configured prefix.
func registerRoutes(mux *http.ServeMux, srv server.Server) {
	prefix := srv.Config.APIPrefix

	// Content authoring
	mux.Handle(prefix+"/content/create-error-pages", api.ErrorPagesCreateHandler(srv))
	mux.Handle(prefix+"/content/error-pages", api.ErrorPagesGetHandler(srv))
	mux.Handle(prefix+"/content/protected-page", api.ProtectedPageUpdateHandler(srv))
	mux.Handle(prefix+"/content/get-protected-page", api.ProtectedPageGetHandler(srv))
	mux.Handle(prefix+"/content/create-hcp-modal-popup", api.ModalPopupUpdateHandler(srv))
	mux.Handle(prefix+"/content/hcp-modal-popup", api.ModalPopupGetHandler(srv))
	mux.Handle(prefix+"/content/create-login-page", api.LoginPageUpdateHandler(srv))
	mux.Handle(prefix+"/content/login-page", api.LoginPageGetHandler(srv))
	mux.Handle(prefix+"/content/modify-locale", api.LocaleModifyHandler(srv))
	mux.Handle(prefix+"/content/create-dam-folders", api.DAMFoldersCreateHandler(srv))
	mux.Handle(prefix+"/content/upload-assets", api.AssetsUploadHandler(srv))

	// Site operations
	mux.Handle(prefix+"/sites/duplicate-template", api.DuplicateTemplateHandler(srv))
	mux.Handle(prefix+"/sites/list-pages", api.ListPagesHandler(srv))
	mux.Handle(prefix+"/sites/create-experience-fragments", api.FragmentsCreateHandler(srv))

	// Health
	mux.Handle(prefix+"/health", api.HealthHandler(srv))
	mux.Handle(prefix+"/health/aem", api.AEMHealthHandler(srv))
	mux.Handle("/health", api.HealthHandler(srv))

	// Service info
	mux.Handle("/", api.RootHandler(srv))
}

package server

import (
	"github.com/hashicorp/go-hclog"

	"github.com/buildeasy/webverse/internal/config"
	"github.com/buildeasy/webverse/pkg/aem"
)

// Server contains the server configuration and shared dependencies injected
// into every API handler.
type Server struct {
	// Config is the config for the server.
	Config *config.Config

	// AEM is the repository client configuration. Handlers construct one
	// client per inbound request from it; clients are never shared.
	AEM *aem.Config

	// Logger is the logger for the server.
	Logger hclog.Logger
}

// Command rvl-server exposes rvl's CSV comparison pipeline over HTTP: a
// /health liveness endpoint and a POST /compare multipart endpoint that
// always renders the rvl.v0 JSON object, whatever the outcome.
package main

import (
	"net/http"
	"os"

	"github.com/sirupsen/logrus"
)

func main() {
	cfg := configFromEnv()
	logger := logrus.StandardLogger()

	if cfg.apiToken != "" {
		logger.Info("API token authentication enabled")
	} else {
		logger.Warn("no RVL_API_TOKEN set, API is unauthenticated")
	}

	addr := cfg.host + ":" + cfg.port
	logger.WithField("addr", addr).Info("rvl-server listening")

	if err := http.ListenAndServe(addr, newMux(cfg, logger)); err != nil {
		logger.WithError(err).Error("server exited")
		os.Exit(1)
	}
}

package main

import (
	"net/http"
	"os"
	"time"

	"animal-registry/internal/adapters/auth/sso"
	"animal-registry/internal/adapters/registrylookup/nationalregistry"
	"animal-registry/internal/platform/logger"
	"animal-registry/internal/ports/auth"
	"animal-registry/internal/ports/registrylookup"
	"animal-registry/internal/router"
)

func main() {
	log := logger.NewFromEnv()

	addr := ":8080"
	if v := os.Getenv("PORT"); v != "" {
		addr = ":" + v
	}

	// SSO opcional: sin SSO_BASE_URL corre en modo dev (X-Debug-User-ID).
	var verifier auth.AuthVerifier
	if base := os.Getenv("SSO_BASE_URL"); base != "" {
		client := sso.NewClient(sso.Config{
			BaseURL: base,
			APIKey:  os.Getenv("SSO_API_KEY"),
		})
		verifier = sso.NewVerifier(client)
		log.Info("sso verifier enabled", map[string]any{"base_url": base})
	} else {
		log.Warn("sso not configured, running in dev auth mode", nil)
	}

	// Registro nacional opcional: sin configurar, la unicidad se chequea local.
	var lookup registrylookup.Lookup
	if base := os.Getenv("NATIONAL_REGISTRY_URL"); base != "" {
		client, err := nationalregistry.NewClient(nationalregistry.Config{
			BaseURL: base,
			APIKey:  os.Getenv("NATIONAL_REGISTRY_API_KEY"),
		})
		if err != nil {
			log.Error("invalid national registry config", map[string]any{"err": err.Error()})
			os.Exit(1)
		}
		lookup = client
		log.Info("national registry lookup enabled", map[string]any{"base_url": base})
	}

	r := router.NewRouter(router.Options{
		AuthVerifier:   verifier,
		RegistryLookup: lookup,
		Logger:         log,
	})

	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	log.Info("starting server", map[string]any{"addr": addr})
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", map[string]any{"err": err.Error()})
		os.Exit(1)
	}
}

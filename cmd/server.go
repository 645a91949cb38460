/*
Copyright 2024 Vigil Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/vigilhq/vigil/api"
	trace "github.com/vigilhq/vigil/internal/traces"
)

func initializeRouter(v *vigilInstance) (*gin.Engine, error) {
	newAPI, err := api.NewAPI(v.vigil)
	if err != nil {
		return nil, fmt.Errorf("error creating api: %v", err)
	}
	return newAPI.Router(), nil
}

func initializeTracing(ctx context.Context) (func(context.Context) error, error) {
	shutdown, err := trace.SetupOTelSDK(ctx, "VIGIL")
	if err != nil {
		return nil, fmt.Errorf("error setting up OTel SDK: %v", err)
	}
	return shutdown, nil
}

// serveHTTP runs the API server until an interrupt arrives, then drains
// in-flight requests before returning.
func serveHTTP(r *gin.Engine, port string) error {
	server := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting server on %s\n", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-stop:
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(ctx)
}

func serverCommands(v *vigilInstance) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "start vigil server",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()

			shutdownTracing, err := initializeTracing(ctx)
			if err != nil {
				log.Printf("Warning: tracing disabled: %v", err)
			} else {
				defer func() {
					if err := shutdownTracing(ctx); err != nil {
						log.Printf("Error shutting down tracing: %v", err)
					}
				}()
			}

			// The moderation worker must be bound before webhook traffic
			// is accepted.
			v.vigil.RegisterWorkers()

			router, err := initializeRouter(v)
			if err != nil {
				log.Fatalf("Error initializing router: %v", err)
			}

			if err := serveHTTP(router, v.cnf.Server.Port); err != nil {
				log.Fatalf("Error starting server: %v", err)
			}

			drainCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := v.vigil.Shutdown(drainCtx); err != nil {
				log.Printf("Error draining moderation queue: %v", err)
			}
		},
	}

	return cmd
}

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
	"fmt"
	"log"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/vigilhq/vigil"
	"github.com/vigilhq/vigil/config"
	"github.com/vigilhq/vigil/database"
	"github.com/vigilhq/vigil/internal/notification"
)

// Vigil represents the CLI application, encapsulating the root Cobra command.
type Vigil struct {
	cmd *cobra.Command
}

// vigilInstance holds the runtime Vigil instance and its configuration for
// use by the subcommands.
type vigilInstance struct {
	vigil *vigil.Vigil
	cnf   *config.Configuration
}

// recoverPanic handles any panics during program execution and logs the error.
func recoverPanic() {
	if rec := recover(); rec != nil {
		logrus.Error(rec)
		os.Exit(1)
	}
}

// preRun loads the configuration and initializes the Vigil instance before
// running any command.
func preRun(app *vigilInstance) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := config.InitConfig("vigil.json")
		if err != nil {
			log.Fatal("error loading config", err)
		}

		cnf, err := config.Fetch()
		if err != nil {
			return err
		}

		newVigil, err := setupVigil(cnf)
		if err != nil {
			notification.NotifyError(err)
			log.Fatal(err)
		}

		app.vigil = newVigil
		app.cnf = cnf

		return nil
	}
}

// setupVigil creates and initializes a new Vigil instance backed by the
// configured datasource.
func setupVigil(cfg *config.Configuration) (*vigil.Vigil, error) {
	db, err := database.NewDataSource(cfg)
	if err != nil {
		return nil, fmt.Errorf("error getting datasource: %v", err)
	}

	newVigil, err := vigil.NewVigil(db)
	if err != nil {
		return nil, fmt.Errorf("error creating vigil: %v", err)
	}
	return newVigil, nil
}

// NewCLI creates the command-line interface for the Vigil service.
func NewCLI() *Vigil {
	var configFile string
	v := &vigilInstance{}

	var rootCmd = &cobra.Command{
		Use:   "vigil",
		Short: "Message trust and moderation pipeline",
		Run:   func(cmd *cobra.Command, args []string) {},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "./vigil.json", "Configuration file for vigil")
	rootCmd.PersistentPreRunE = preRun(v)

	rootCmd.AddCommand(serverCommands(v))

	return &Vigil{cmd: rootCmd}
}

// executeCLI runs the root command, handling any errors that occur during
// execution.
func (w Vigil) executeCLI() {
	if err := w.cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func main() {
	defer recoverPanic()

	cli := NewCLI()
	cli.executeCLI()
}

// Copyright © 2016 Phil Estes
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cmd

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const logLevelEnv = "PROCLOG_LOG_LEVEL"

var logLevel string

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "proclog",
	Short: "Write process CPU and memory usage to a CSV file",
	Long: `This program samples the process table at a fixed interval and appends one
CSV row per running process (timestamp, PID, name, CPU and memory usage) until
the duration elapses or it receives SIGINT or SIGTERM.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initLogLevel(logLevel)
	},
	RunE: runRecorder,
}

// Execute adds all child commands to the root command sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(-1)
	}
}

func init() {
	RootCmd.PersistentFlags().StringVar(&logLevel, "log-level", defaultLogLevel(), "set the logging level (info,warn,err,debug)")
}

func defaultLogLevel() string {
	if v := os.Getenv(logLevelEnv); v != "" {
		return v
	}
	return "info"
}

func initLogLevel(level string) error {
	switch level {
	case "info":
		log.SetLevel(log.InfoLevel)
	case "warn":
		log.SetLevel(log.WarnLevel)
	case "err":
		log.SetLevel(log.ErrorLevel)
	case "debug":
		log.SetLevel(log.DebugLevel)
	default:
		return fmt.Errorf("invalid log level specified: %q", level)
	}
	return nil
}

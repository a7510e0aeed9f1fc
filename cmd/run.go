// Copyright © 2016 Phil Estes <estesp@gmail.com>
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
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/estesp/proclog/recorder"
	"github.com/estesp/proclog/stats"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// command line values; a flag only overrides the config file when set explicitly
type runOptions struct {
	configFile string
	interval   int
	output     string
	duration   int
	cgroup     string
}

var runOpts runOptions

func addRunFlags(cmd *cobra.Command, opts *runOptions) {
	flags := cmd.Flags()
	flags.StringVarP(&opts.configFile, "config", "c", "", "YAML file with run configuration")
	flags.IntVarP(&opts.interval, "interval", "i", recorder.DefaultInterval, "seconds between samples")
	flags.StringVarP(&opts.output, "output", "o", recorder.DefaultOutput, "output CSV file")
	flags.IntVarP(&opts.duration, "duration", "d", recorder.DefaultDuration, "maximum run time in seconds")
	flags.StringVar(&opts.cgroup, "cgroup", "", "only record processes inside this cgroup path (linux)")
}

func runRecorder(cmd *cobra.Command, args []string) error {
	config, err := resolveConfig(cmd, runOpts)
	if err != nil {
		return err
	}

	sampler, err := stats.NewSampler(config.CGroup)
	if err != nil {
		return fmt.Errorf("error creating process sampler: %v", err)
	}
	rec, err := recorder.New(config, sampler)
	if err != nil {
		return err
	}

	var cancel recorder.CancelFlag
	stop := recorder.NotifyOnSignal(&cancel, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Infof("Writing process information every %d second(s) for %d second(s) to %s",
		config.Interval, config.Duration, config.Output)

	if err := rec.Run(&cancel); err != nil {
		var loopErr *recorder.LoopError
		if errors.As(err, &loopErr) && loopErr.Setup() {
			// the output could not be set up; nothing was sampled
			return err
		}
		log.WithError(err).Errorf("Process logging interrupted after %d tick(s)", rec.Ticks())
		return nil
	}

	summary := rec.Summary()
	fields := log.Fields{
		"ticks":   summary.Ticks,
		"rows":    summary.Rows,
		"elapsed": rec.Elapsed(),
		"mean":    summary.Mean,
		"p95":     summary.P95,
		"max":     summary.Max,
	}
	if fi, err := os.Stat(config.Output); err == nil {
		fields["size"] = humanize.Bytes(uint64(fi.Size()))
	}
	log.WithFields(fields).Info("Process information gathered!")
	return nil
}

// resolveConfig starts from the defaults, applies the YAML file if one was
// given and then any flag set on the command line
func resolveConfig(cmd *cobra.Command, opts runOptions) (recorder.Config, error) {
	config := recorder.DefaultConfig()
	if opts.configFile != "" {
		fromFile, err := readYaml(opts.configFile)
		if err != nil {
			return config, err
		}
		config = mergeConfig(config, fromFile)
	}

	flags := cmd.Flags()
	if flags.Changed("interval") {
		config.Interval = opts.interval
	}
	if flags.Changed("output") {
		config.Output = opts.output
	}
	if flags.Changed("duration") {
		config.Duration = opts.duration
	}
	if flags.Changed("cgroup") {
		config.CGroup = opts.cgroup
	}

	if err := config.Validate(); err != nil {
		return config, errors.Wrap(err, "invalid configuration")
	}
	return config, nil
}

// mergeConfig overlays the keys present in a config file onto 'base'
func mergeConfig(base recorder.Config, file fileConfig) recorder.Config {
	if file.Interval != nil {
		base.Interval = *file.Interval
	}
	if file.Output != nil {
		base.Output = *file.Output
	}
	if file.Duration != nil {
		base.Duration = *file.Duration
	}
	if file.CGroup != nil {
		base.CGroup = *file.CGroup
	}
	return base
}

// fileConfig mirrors recorder.Config with optional keys
type fileConfig struct {
	Interval *int    `yaml:"interval"`
	Output   *string `yaml:"output"`
	Duration *int    `yaml:"duration"`
	CGroup   *string `yaml:"cgroup"`
}

func readYaml(filename string) (fileConfig, error) {
	var config fileConfig
	data, err := os.ReadFile(filename)
	if err != nil {
		return config, fmt.Errorf("can't read YAML file %q: %v", filename, err)
	}
	err = yaml.Unmarshal(data, &config)
	if err != nil {
		return config, fmt.Errorf("can't unmarshal YAML file %q: %v", filename, err)
	}
	return config, nil
}

func init() {
	addRunFlags(RootCmd, &runOpts)
}

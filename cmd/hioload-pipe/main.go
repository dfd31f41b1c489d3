// File: cmd/hioload-pipe/main.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Command-line front end for both pipeline bindings. The terminal log
// view stands in for the presentation layer: every core log event is
// rendered on stdout, colorized by role.

package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/momentics/hioload-pipe/control"
	"github.com/momentics/hioload-pipe/facade"
)

var (
	producedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ff9f"))
	consumedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#5fafff"))
	errorStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ff5f5f"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#6e7681"))
)

// renderEvent colorizes one core log event for the terminal.
func renderEvent(msg string) {
	var styled string
	switch {
	case strings.HasPrefix(msg, "produced") || strings.HasPrefix(msg, "producing") || strings.HasPrefix(msg, "producer"):
		styled = producedStyle.Render(msg)
	case strings.HasPrefix(msg, "consumed") || strings.HasPrefix(msg, "consumer"):
		styled = consumedStyle.Render(msg)
	case strings.Contains(msg, "error"):
		styled = errorStyle.Render(msg)
	default:
		styled = dimStyle.Render(msg)
	}
	fmt.Println(styled)
}

var (
	configPath string
	capacity   int
	producers  int
	consumers  int
	produce    float64
	consume    float64
	items      int
	host       string
	basePort   int
	duration   time.Duration
)

// loadConfig merges the optional YAML file with flag overrides.
func loadConfig(cmd *cobra.Command) (*control.Config, error) {
	cfg := control.DefaultConfig()
	if configPath != "" {
		loaded, err := control.Load(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if cmd.Flags().Changed("capacity") {
		cfg.Capacity = capacity
	}
	if cmd.Flags().Changed("producers") {
		cfg.Producers = producers
	}
	if cmd.Flags().Changed("consumers") {
		cfg.Consumers = consumers
	}
	if cmd.Flags().Changed("produce-rate") {
		cfg.ProduceRate = produce
	}
	if cmd.Flags().Changed("consume-rate") {
		cfg.ConsumeRate = consume
	}
	if cmd.Flags().Changed("items") {
		cfg.ItemsPerProducer = items
	}
	if cmd.Flags().Changed("host") {
		cfg.Host = host
	}
	if cmd.Flags().Changed("base-port") {
		cfg.BasePort = basePort
	}
	return cfg, cfg.Validate()
}

func dumpMetrics(snap map[string]any) {
	fmt.Println(dimStyle.Render(fmt.Sprintf("metrics: %+v", snap)))
}

var rootCmd = &cobra.Command{
	Use:   "hioload-pipe",
	Short: "Bounded producer-consumer pipeline simulations",
	Long: `Runs the classic bounded-buffer producer-consumer problem under two
transport bindings: an in-process shared ring buffer with blocking
admission control, and a networked binding where each consumer is a TCP
listener fed newline-delimited items by its producers.`,
}

var bufferCmd = &cobra.Command{
	Use:   "buffer",
	Short: "In-process bounded buffer binding",
	Long: `Runs N producers and M consumers over one fixed-capacity ring buffer.
The run ends on Ctrl-C or after --duration.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		s, err := facade.NewBufferSim(cfg, renderEvent)
		if err != nil {
			return err
		}
		if err := s.Start(); err != nil {
			return err
		}

		signalCh := make(chan os.Signal, 2)
		signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-signalCh:
			log.Println("Shutdown signal received, stopping buffer...")
		case <-time.After(duration):
		}
		if err := s.Shutdown(); err != nil {
			return err
		}
		dumpMetrics(s.Metrics().Snapshot())
		return nil
	},
}

var streamCmd = &cobra.Command{
	Use:   "stream",
	Short: "Networked stream binding",
	Long: `Starts one TCP listener per consumer on base-port+index, waits until
every listener is bound, then streams --items items from each producer to
its round-robin assigned consumer. The run ends when all sequences are
exhausted, or on Ctrl-C.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		s, err := facade.NewStreamSim(cfg, renderEvent)
		if err != nil {
			return err
		}
		if err := s.Start(); err != nil {
			return err
		}

		waitDone := make(chan error, 1)
		go func() { waitDone <- s.Wait() }()

		signalCh := make(chan os.Signal, 2)
		signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM)
		select {
		case err := <-waitDone:
			if err != nil {
				log.Printf("Run finished with error: %v", err)
			}
		case <-signalCh:
			log.Println("Shutdown signal received, closing connections...")
		}
		if err := s.Shutdown(); err != nil {
			return err
		}
		dumpMetrics(s.Metrics().Snapshot())
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "f", "", "YAML run configuration file")
	rootCmd.PersistentFlags().IntVar(&producers, "producers", 1, "number of producer actors")
	rootCmd.PersistentFlags().IntVar(&consumers, "consumers", 1, "number of consumer actors")
	rootCmd.PersistentFlags().Float64Var(&produce, "produce-rate", 1.0, "items per second, per producer")
	rootCmd.PersistentFlags().Float64Var(&consume, "consume-rate", 1.0, "items per second, per consumer")

	bufferCmd.Flags().IntVar(&capacity, "capacity", 5, "bounded buffer capacity")
	bufferCmd.Flags().DurationVar(&duration, "duration", 30*time.Second, "run length before automatic stop")

	streamCmd.Flags().IntVar(&items, "items", 5, "items per producer sequence")
	streamCmd.Flags().StringVar(&host, "host", "localhost", "consumer listener host")
	streamCmd.Flags().IntVar(&basePort, "base-port", 5000, "first consumer listening port")

	rootCmd.AddCommand(bufferCmd, streamCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(err.Error()))
		os.Exit(1)
	}
}

// Package main is the livectl command line client for Live OSC servers.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/soundctl/liveosc/internal/version"
	"github.com/soundctl/liveosc/live"
)

var (
	flagHost     string
	flagSendPort int
	flagRecvPort int
	flagTimeout  time.Duration
	flagConfig   string
	flagDebug    bool
)

func main() {
	root := &cobra.Command{
		Use:           "livectl",
		Short:         "Control a running Live set over OSC/UDP",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
			if flagDebug {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			} else {
				zerolog.SetGlobalLevel(zerolog.InfoLevel)
			}
			log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flagHost, "host", "", "OSC server host (default 127.0.0.1)")
	pf.IntVar(&flagSendPort, "send-port", 0, "OSC server port (default 11000)")
	pf.IntVar(&flagRecvPort, "recv-port", 0, "local reply port (default 11001)")
	pf.DurationVar(&flagTimeout, "timeout", 0, "query timeout (default 5s)")
	pf.StringVar(&flagConfig, "config", "", "path to a livectl config.toml")
	pf.BoolVar(&flagDebug, "debug", false, "enable debug logging")

	root.AddCommand(pingCmd(), sendCmd(), queryCmd(), listenCmd(), versionCmd())

	if err := root.Execute(); err != nil {
		log.Error().Err(err).Msg("livectl failed")
		os.Exit(1)
	}
}

// connect builds the layered config (file, env, flags) and opens the
// connection. Flags win over everything.
func connect() (*live.Conn, error) {
	cfg, err := loadConfig(flagConfig)
	if err != nil {
		return nil, err
	}
	if flagHost != "" {
		cfg.Host = flagHost
	}
	if flagSendPort != 0 {
		cfg.SendPort = flagSendPort
	}
	if flagRecvPort != 0 {
		cfg.RecvPort = flagRecvPort
	}
	if flagTimeout != 0 {
		cfg.Timeout = flagTimeout
	}

	conn := live.NewConn(cfg)
	if err := conn.Connect(); err != nil {
		return nil, err
	}
	return conn, nil
}

func pingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check whether the OSC server responds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := connect()
			if err != nil {
				return err
			}
			defer conn.Close()

			if !conn.Ping() {
				return fmt.Errorf("server did not respond")
			}
			fmt.Println("ok")
			return nil
		},
	}
}

func sendCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "send <address> [args...]",
		Short: "Send a fire-and-forget command",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := connect()
			if err != nil {
				return err
			}
			defer conn.Close()

			return conn.Send(args[0], parseArgs(args[1:])...)
		},
	}
}

func queryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "query <address> [args...]",
		Short: "Send a query and print the reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := connect()
			if err != nil {
				return err
			}
			defer conn.Close()

			reply, err := conn.Query(args[0], parseArgs(args[1:])...)
			if err != nil {
				return err
			}
			fmt.Println(reply.String())
			return nil
		},
	}
}

func listenCmd() *cobra.Command {
	var duration time.Duration

	cmd := &cobra.Command{
		Use:   "listen",
		Short: "Print every inbound message until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := connect()
			if err != nil {
				return err
			}
			defer conn.Close()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

			var deadline <-chan time.Time
			if duration > 0 {
				deadline = time.After(duration)
			}

			log.Info().Msg("Listening for messages, Ctrl-C to stop")
			for {
				select {
				case msg, ok := <-conn.Messages():
					if !ok {
						return nil
					}
					fmt.Println(msg.String())
				case err := <-conn.Errors():
					log.Warn().Err(err).Msg("Receive error")
				case <-sigCh:
					return nil
				case <-deadline:
					return nil
				}
			}
		},
	}
	cmd.Flags().DurationVar(&duration, "duration", 0, "stop after this long (0 means run until interrupted)")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version.String())
		},
	}
}

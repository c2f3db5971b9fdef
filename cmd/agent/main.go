// Command agent runs the gas-price prediction agent: it watches one or
// more EVM chains, builds rolling fee distributions, and publishes
// signed price predictions to a collector.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/gasnetwork/agent/config"
	"github.com/gasnetwork/agent/log"
	"github.com/gasnetwork/agent/opserver"
	"github.com/gasnetwork/agent/publish"
	"github.com/gasnetwork/agent/rpcclient"
	"github.com/gasnetwork/agent/signer"
	"github.com/gasnetwork/agent/supervisor"
)

// Build-time version info, overridable with ldflags:
//
//	go build -ldflags "-X main.version=v0.2.0 -X main.commit=abc1234"
var (
	version = "v0.1.0-dev"
	commit  = "unknown"
)

var (
	chainsFlag = &cli.StringFlag{
		Name:     "chains",
		Usage:    "JSON list of chains to monitor",
		EnvVars:  []string{"CHAINS"},
		Required: true,
	}
	serverAddressFlag = &cli.StringFlag{
		Name:    "server-address",
		Usage:   "address the operational HTTP server (metrics, health) binds to",
		Value:   config.DefaultServerAddress,
		EnvVars: []string{"SERVER_ADDRESS"},
	}
	collectorEndpointFlag = &cli.StringFlag{
		Name:    "collector-endpoint",
		Usage:   "base URL of the collector signed predictions are published to",
		Value:   config.DefaultCollectorEndpoint,
		EnvVars: []string{"COLLECTOR_ENDPOINT"},
	}
	verbosityFlag = &cli.IntFlag{
		Name:    "verbosity",
		Usage:   "log verbosity, 0 (silent) through 5 (debug)",
		Value:   3,
		EnvVars: []string{"AGENT_VERBOSITY"},
	}
)

func main() {
	defer installPanicHandler()

	app := &cli.App{
		Name:    "agent",
		Usage:   "gas price prediction agent",
		Version: fmt.Sprintf("%s (%s)", version, commit),
		Commands: []*cli.Command{
			startCommand,
			generateKeysCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Default().Crit("agent exited with error", "err", err)
	}
}

// installPanicHandler converts an unhandled panic on the main goroutine
// into a logged fatal error instead of a bare stack trace; a panic in any
// other goroutine (such as a supervisor task) is not recovered here and
// ends the process with Go's default panic output. It follows the same
// recover-then-exit
// convention the teacher's geth-derived commands use for top-level
// daemon entry points.
func installPanicHandler() {
	if r := recover(); r != nil {
		log.Default().Crit("agent panicked", "recovered", r)
	}
}

var startCommand = &cli.Command{
	Name:  "start",
	Usage: "run the agent, monitoring every chain named by --chains",
	Flags: []cli.Flag{chainsFlag, serverAddressFlag, collectorEndpointFlag, verbosityFlag},
	Action: func(c *cli.Context) error {
		log.SetDefault(log.New(log.LevelFromVerbosity(c.Int("verbosity"))))

		chains, err := config.ParseChains([]byte(c.String("chains")))
		if err != nil {
			return fmt.Errorf("agent: %w", err)
		}

		serverAddress := c.String("server-address")
		collectorEndpoint := c.String("collector-endpoint")

		ops := opserver.New(true)
		publisher := publish.New(collectorEndpoint, 10*time.Second)

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		supervisors := make([]*supervisor.Supervisor, 0, len(chains))
		for _, chainCfg := range chains {
			agents := make([]supervisor.AgentSpec, 0, len(chainCfg.Agents))
			for _, agentCfg := range chainCfg.Agents {
				agentSigner, err := signer.FromHex(agentCfg.SignerKey)
				if err != nil {
					return fmt.Errorf("agent: %s: load signer_key for %s: %w", chainCfg.Key(), agentCfg.Kind, err)
				}
				agents = append(agents, supervisor.AgentSpec{
					Kind:    agentCfg.Kind,
					Signer:  agentSigner,
					Trigger: agentCfg.Trigger,
				})
			}

			rpc := rpcclient.New(chainCfg.JSONRPCURL, 10*time.Second)
			pendingRPC := rpc
			if chainCfg.PendingBlockDataSource != nil && chainCfg.PendingBlockDataSource.URL != chainCfg.JSONRPCURL {
				pendingRPC = rpcclient.New(chainCfg.PendingBlockDataSource.URL, 10*time.Second)
			}

			sup, err := supervisor.New(
				ctx,
				chainCfg.Key(),
				rpc,
				pendingRPC,
				chainCfg.PendingBlockDataSource,
				agents,
				chainCfg.InFlightCap,
				publisher,
				ops,
			)
			if err != nil {
				return fmt.Errorf("agent: %w", err)
			}
			supervisors = append(supervisors, sup)
		}

		go func() {
			srv := &http.Server{Addr: serverAddress, Handler: ops.Handler()}
			log.Default().Info("operational server listening", "address", serverAddress)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Default().Error("operational server failed", "err", err)
			}
		}()

		errCh := make(chan error, len(supervisors))
		for _, sup := range supervisors {
			sup := sup
			go func() { errCh <- sup.Run(ctx) }()
		}

		select {
		case <-ctx.Done():
			log.Default().Info("shutdown signal received")
			return nil
		case err := <-errCh:
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("agent: supervisor stopped: %w", err)
		}
	},
}

var generateKeysCommand = &cli.Command{
	Name:  "generate-keys",
	Usage: "generate a new secp256k1 signing key and print it hex-encoded",
	Action: func(c *cli.Context) error {
		s, err := signer.GenerateKey()
		if err != nil {
			return fmt.Errorf("agent: %w", err)
		}
		addr := s.Address()
		fmt.Printf("address:     0x%x\n", addr)
		fmt.Printf("private key: %s\n", s.ExportHex())
		return nil
	},
}

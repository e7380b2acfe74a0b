package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/calehh/capsule-app/api"
	"github.com/calehh/capsule-app/app"
	"github.com/calehh/capsule-app/config"
	cmtconfig "github.com/cometbft/cometbft/config"
	cmtflags "github.com/cometbft/cometbft/libs/cli/flags"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	nm "github.com/cometbft/cometbft/node"
	"github.com/cometbft/cometbft/p2p"
	"github.com/cometbft/cometbft/privval"
	"github.com/cometbft/cometbft/proxy"
	"github.com/spf13/cobra"
)

var homeDir string

var clCmd = &cobra.Command{
	Use:   "capsuled",
	Short: "capsuled runs the capsule ledger",
	Long: `A ledger for agent memory capsules: agent registry, capsule
marketplace, staking and query earnings.`,
	Run: func(cmd *cobra.Command, args []string) {
		run(cmd, args)
	},
}

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Run the node",
	Args:  cobra.NoArgs,
	Run:   run,
}

func init() {
	clCmd.PersistentFlags().StringVarP(&homeDir, "homedir", "d", "", "home directory")
}

func run(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(homeDir)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	pv := privval.LoadFilePV(
		cfg.PrivValidatorKeyFile(),
		cfg.PrivValidatorStateFile(),
	)

	nodeKey, err := p2p.LoadNodeKey(cfg.NodeKeyFile())
	if err != nil {
		log.Fatalf("failed to load node's key: %v", err)
	}

	logger := cmtlog.NewTMLogger(cmtlog.NewSyncWriter(os.Stdout))
	logger, err = cmtflags.ParseLogLevel(cfg.LogLevel, logger, cmtconfig.DefaultLogLevel)
	if err != nil {
		log.Fatalf("failed to parse log level: %v", err)
	}

	capsuleApp, err := app.NewCapsuleApp(cfg, logger)
	if err != nil {
		log.Fatalf("new App err:%v", err)
	}

	node, err := nm.NewNode(
		cfg.Config,
		pv,
		nodeKey,
		proxy.NewLocalClientCreator(capsuleApp),
		nm.DefaultGenesisDocProviderFunc(cfg.Config),
		cmtconfig.DefaultDBProvider,
		nm.DefaultMetricsProvider(cfg.Instrumentation),
		logger,
	)
	if err != nil {
		log.Fatalf("Creating node: %v", err)
	}

	err = node.Start()
	if err != nil {
		log.Fatalf("start comet node err %s", err.Error())
	}

	var svc *api.Service
	if cfg.App.APIEnable {
		svc = api.NewService(cfg.App.APIListenAddr, capsuleApp.DB(), logger)
		svc.Start()
	}

	defer func() {
		log.Println("shut down...")
		done := make(chan struct{})
		go func() {
			defer close(done)
			if svc != nil {
				ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
				defer cancel()
				if err := svc.Stop(ctx); err != nil {
					log.Printf("stop api err %v", err)
				}
			}
			if err := node.Stop(); err != nil {
				log.Printf("stop comet node err %s", err.Error())
			}
			node.Wait()
			capsuleApp.Stop()
		}()
		timer := time.NewTimer(time.Second * 10)
		select {
		case <-timer.C:
			os.Exit(1)
		case <-done:
			return
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c
}

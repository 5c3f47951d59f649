// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/meterio/skillme/api"
	"github.com/meterio/skillme/auction"
	"github.com/meterio/skillme/chain"
	"github.com/meterio/skillme/co"
	"github.com/meterio/skillme/genesis"
	"github.com/meterio/skillme/ledger"
	"github.com/meterio/skillme/logdb"
	"github.com/meterio/skillme/lvldb"
	"github.com/meterio/skillme/skillme"
	"github.com/meterio/skillme/state"
	cli "gopkg.in/urfave/cli.v1"
)

var (
	version   string
	gitCommit string
	log       = slog.With("pkg", "main")
)

func fullVersion() string {
	if gitCommit == "" {
		return version + "-dev"
	}
	return fmt.Sprintf("%s-%s", version, gitCommit)
}

func main() {
	app := cli.App{
		Version:   fullVersion(),
		Name:      "SkillMe",
		Usage:     "Token ledger and auction service",
		Copyright: "2020 The Meter.io developers",
		Flags: []cli.Flag{
			dataDirFlag,
			genesisFlag,
			apiAddrFlag,
			apiCorsFlag,
			blockIntervalFlag,
			verbosityFlag,
		},
		Action: defaultAction,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func selectGenesis(ctx *cli.Context) (*genesis.Genesis, error) {
	if path := ctx.String(genesisFlag.Name); path != "" {
		return genesis.FromYAML(path)
	}
	return genesis.Default(), nil
}

func defaultAction(ctx *cli.Context) error {
	exitSignal := handleExitSignal()
	defer func() { log.Info("exited") }()

	initLogger(ctx)
	go checkClockOffset()

	gene, err := selectGenesis(ctx)
	if err != nil {
		return err
	}

	dataDir, err := makeDataDir(ctx)
	if err != nil {
		return err
	}

	mainDB, err := lvldb.New(filepath.Join(dataDir, "main.db"), lvldb.Options{
		CacheSize:              128,
		OpenFilesCacheCapacity: 512,
	})
	if err != nil {
		return err
	}
	defer func() { log.Info("closing main database..."); mainDB.Close() }()

	logDB, err := logdb.New(filepath.Join(dataDir, "records.db"))
	if err != nil {
		return err
	}
	defer func() { log.Info("closing record database..."); logDB.Close() }()

	ch, err := chain.New(mainDB)
	if err != nil {
		return err
	}

	st := state.New(mainDB)
	l := ledger.New(skillme.LedgerAddr, st)
	if err := gene.Build(st, l); err != nil {
		return err
	}

	factory, err := auction.NewFactory(l, ch, st, logDB)
	if err != nil {
		return err
	}

	apiHandler, apiCloser := api.New(ch, st, l, factory, logDB, logDB, ctx.String(apiCorsFlag.Name))
	defer func() { log.Info("closing API..."); apiCloser() }()

	apiURL, srvCloser, err := startAPIServer(ctx, apiHandler)
	if err != nil {
		return err
	}
	defer func() { log.Info("stopping API server..."); srvCloser() }()

	log.Info("service started",
		"version", fullVersion(),
		"dataDir", dataDir,
		"apiURL", apiURL,
		"bestHeight", ch.BestNumber(),
	)

	var goes co.Goes
	interval := time.Duration(ctx.Int(blockIntervalFlag.Name)) * time.Second
	goes.Go(func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-exitSignal.Done():
				return
			case <-ticker.C:
				if _, err := ch.NextBlock(); err != nil {
					log.Error("failed to advance height", "err", err)
				}
			}
		}
	})

	<-exitSignal.Done()
	goes.Wait()
	return nil
}

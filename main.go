package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/punchclock/terminal/buzzer"
	"github.com/punchclock/terminal/config"
	"github.com/punchclock/terminal/diag"
	"github.com/punchclock/terminal/provider"
	"github.com/punchclock/terminal/rfid"
	"github.com/punchclock/terminal/routes"
	"github.com/punchclock/terminal/terminal"
	"github.com/punchclock/terminal/utils"
)

func main() {
	diagnose := flag.Bool("diagnose", false, "run the hardware and backend self test, then exit")
	hashPIN := flag.String("hash-pin", "", "print the bcrypt hash for an admin PIN and exit")
	flag.Parse()

	if *hashPIN != "" {
		hash, err := utils.HashPIN(*hashPIN)
		if err != nil {
			fmt.Fprintf(os.Stderr, "hash pin: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(hash)
		return
	}

	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	if *diagnose {
		os.Exit(diag.Run(cfg, os.Stdout))
	}

	var dp provider.DataProvider
	if cfg.DemoMode {
		utils.Sugar.Info("running in DEMO MODE against an in-memory backend")
		dp = provider.NewMock()
	} else {
		dp = provider.NewClient(cfg.BackendHost, cfg.BackendPort, cfg.TerminalID, cfg.APIKey, cfg.RequestTimeout)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
	if dp.Health(ctx) {
		utils.Sugar.Info("backend connection successful")
	} else {
		utils.Sugar.Warn("backend not reachable, continuing anyway")
	}
	cancel()

	reader := rfid.Open(cfg.SPIDevice, cfg.PinReset, cfg.PinIRQ)
	bz := buzzer.New(cfg.BuzzerPin, cfg.BuzzerEnabled)
	bz.Success() // startup beep

	term := terminal.New(cfg, dp, reader, bz)
	term.Start()

	r := routes.SetupRouter(term)

	utils.Sugar.Infof("terminal %s serving kiosk UI on port %s (graceful)", cfg.TerminalID, cfg.ListenPort)
	if err := utils.GraceServer(":"+cfg.ListenPort, r, term.Stop); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}

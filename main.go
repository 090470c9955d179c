// piactl manages Private Internet Access VPN connections through
// NetworkManager: first-time setup, latency probing, and connection
// switching.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dagrha/piactl/catalog"
	"github.com/dagrha/piactl/cli"
	"github.com/dagrha/piactl/common"
	"github.com/dagrha/piactl/config"
)

const version = "1.0.0"

func main() {
	var (
		initFlag       = flag.Bool("init", false, "Run first-time setup (requires root)")
		pingFlag       = flag.Bool("ping", false, "Probe servers and print a latency table")
		fastestFlag    = flag.Bool("fastest", false, "Connect to the lowest-latency server")
		shuffleFlag    = flag.Bool("shuffle", false, "Connect to a random server")
		chooseFlag     = flag.Bool("choose", false, "Pick a server interactively from probe results")
		disconnectFlag = flag.Bool("disconnect", false, "Disconnect all active PIA connections")
		statusFlag     = flag.Bool("status", false, "Show active PIA connections")
		historyFlag    = flag.Bool("history", false, "Show recent probe results")
		bestFlag       = flag.Bool("best", false, "With -history, show the best latency per server")
		forgetFlag     = flag.Bool("forget", false, "Remove stored PIA credentials")
		regionFlag     = flag.String("region", "us", "Region filter: us, all, or int")
		limitFlag      = flag.Int("limit", 25, "Maximum history rows to show")
		verboseFlag    = flag.Bool("verbose", false, "Enable debug logging")
		versionFlag    = flag.Bool("version", false, "Print version and exit")
	)
	flag.Usage = printUsage
	flag.Parse()

	if *versionFlag {
		fmt.Printf("%s %s\n", common.AppName, version)
		return
	}

	level := common.LevelInfo
	if *verboseFlag {
		level = common.LevelDebug
	}
	if err := common.InitLogger(common.LogConfig{Level: level, EnableFile: true}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: file logging unavailable: %v\n", err)
	}
	defer common.CloseLogger()

	filter, err := catalog.ParseRegion(*regionFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := cli.NewApp(cfg)

	switch {
	case *initFlag:
		err = app.Init(ctx)
	case *pingFlag:
		err = app.Ping(ctx, filter)
	case *fastestFlag:
		err = app.Fastest(ctx, filter)
	case *shuffleFlag:
		err = app.Shuffle(ctx, filter)
	case *chooseFlag:
		err = app.Choose(ctx, filter)
	case *disconnectFlag:
		err = app.Disconnect(ctx)
	case *statusFlag:
		err = app.Status(ctx)
	case *historyFlag:
		err = app.History(ctx, *limitFlag, *bestFlag)
	case *forgetFlag:
		err = app.ForgetCredentials()
	default:
		printUsage()
		os.Exit(2)
	}

	if err != nil {
		if errors.Is(err, common.ErrNotConnected) {
			return
		}
		common.LogError("%v", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `%s %s - PIA VPN manager for NetworkManager

Usage:
  piactl -init                     First-time setup (requires root)
  piactl -ping [-region us|all|int]    Probe servers, print latency table
  piactl -fastest [-region ...]    Connect to the lowest-latency server
  piactl -shuffle [-region ...]    Connect to a random server
  piactl -choose [-region ...]     Pick a server interactively
  piactl -disconnect               Disconnect all PIA connections
  piactl -status                   Show active PIA connections
  piactl -history [-limit N]       Show recent probe results
  piactl -history -best            Show the best latency per server
  piactl -forget                   Remove stored PIA credentials

Options:
`, common.AppName, version)
	flag.PrintDefaults()
}

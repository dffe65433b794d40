package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/sowonglabs/swap-sdk/internal/config"
	"github.com/sowonglabs/swap-sdk/internal/frame"
	"github.com/sowonglabs/swap-sdk/internal/services/alert"
	"github.com/sowonglabs/swap-sdk/internal/services/walletprovider"
	"github.com/sowonglabs/swap-sdk/pkg/router"
	"github.com/sowonglabs/swap-sdk/pkg/swap"
)

func main() {
	log.Default().Println("launching relay...")

	env := flag.String("env", "", "path to .env file")

	port := flag.Int("port", 3000, "port to listen on")

	ws := flag.Bool("ws", false, "use the websocket wallet endpoint")

	flag.Parse()

	ctx := context.Background()

	conf, err := config.New(ctx, *env)
	if err != nil {
		log.Fatal(err)
	}

	notify := false
	if conf.SentryURL != "" && conf.SentryURL != "x" {
		err = sentry.Init(sentry.ClientOptions{
			Dsn: conf.SentryURL,
			// Set TracesSampleRate to 1.0 to capture 100%
			// of transactions for performance monitoring.
			// We recommend adjusting this value in production,
			TracesSampleRate: 1.0,
		})
		if err != nil {
			log.Fatalf("sentry.Init: %s", err)
		}
		// Flush buffered events before the program terminates.
		defer sentry.Flush(2 * time.Second)

		notify = true
	}

	src, err := frame.SrcURL(conf.FrameURL, conf.Token, conf.ChainID)
	if err != nil {
		log.Fatal(err)
	}

	log.Default().Println("serving swap frame: ", src)

	rpcUrl := conf.RPCURL
	if *ws {
		log.Default().Println("using websocket wallet endpoint...")
		rpcUrl = conf.RPCWSURL
	} else {
		log.Default().Println("using standard http wallet endpoint...")
	}

	// the wallet provider is dialed lazily, on the first request that
	// needs it; absence is reported over RPC, not fatal here
	provider := func(ctx context.Context) (swap.WalletProvider, error) {
		return walletprovider.NewEthProvider(ctx, rpcUrl)
	}

	messager := alert.NewMessager("relay", notify)

	quitAck := make(chan error)

	log.Default().Println("starting relay service...")

	api := router.NewServer(conf.FrameURL, conf.Token, conf.Production, conf.ChunkLimit, provider, messager)

	go func() {
		quitAck <- api.Start(*port)
	}()

	log.Default().Println("listening on port: ", *port)

	for err := range quitAck {
		if err != nil {
			log.Fatal(err)
		}
	}
}

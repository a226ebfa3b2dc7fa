// Command auction-server exposes the auction factory over HTTP with a
// WebSocket event feed. It runs against the in-memory reference ledger and
// asset registry, seeded through faucet and mint endpoints.
package main

import (
	"log"
	"log/slog"
	"net/http"
	"os"

	"github.com/DrakeEvans/auction-playground/auction"
	"github.com/DrakeEvans/auction-playground/ledger"
)

const (
	defaultListenAddr   = ":8080"
	defaultTokenSymbol  = "WETH"
	defaultRegistryName = "NFT"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	listenAddr := getEnv("LISTEN_ADDR", defaultListenAddr)
	tokenSymbol := getEnv("PAYMENT_TOKEN", defaultTokenSymbol)
	registryName := getEnv("ASSET_REGISTRY", defaultRegistryName)

	dir := ledger.NewDirectory()
	dir.AddToken(ledger.NewTokenLedger(tokenSymbol))
	dir.AddRegistry(ledger.NewAssetRegistry(registryName))

	events := newFeed[auction.Event]()
	factory := auction.NewFactory(dir, dir, feedSink{feed: events})

	srv := newServer(factory, dir, events, logger)

	logger.Info("auction server listening",
		"addr", listenAddr,
		"payment_token", tokenSymbol,
		"asset_registry", registryName,
		"factory_identity", factory.Identity(),
	)
	if err := http.ListenAndServe(listenAddr, srv.routes()); err != nil {
		log.Fatal(err)
	}
}

// feedSink bridges the factory's event sink to the listener feed.
type feedSink struct {
	feed *feed[auction.Event]
}

func (s feedSink) Publish(e auction.Event) {
	s.feed.Post(e)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

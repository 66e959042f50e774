package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	conf "github.com/bartek5186/feedsync/internal/config"
	"github.com/bartek5186/feedsync/internal/db"
	logs "github.com/bartek5186/feedsync/internal/logs"
	"github.com/bartek5186/feedsync/internal/metrics"
	syncer "github.com/bartek5186/feedsync/internal/syncer"
)

// wersję możesz nadpisać przez: -ldflags "-X 'main.ver=1.0.1'"
var ver = "1.0.0"

var (
	cfgPath    = flag.String("config", "", "Ścieżka config.json (domyślnie w katalogu aplikacji)")
	topN       = flag.Int("n", 0, "Ile najdroższych pozycji na oddział (0 = z configu)")
	branches   = flag.String("branches", "", "Oddziały oddzielone przecinkiem, np. MM,RHSM (puste = z configu)")
	fromRow    = flag.Int("from", 0, "Kursor startowy uploadu (wiersze <= from są pomijane)")
	toRow      = flag.Int("to", -1, "Kursor końcowy uploadu (-1 = cały katalog)")
	resume     = flag.Bool("resume", false, "Startuj od kursora zapisanego po ostatnim runie")
	metricsOut = flag.String("metrics-out", "", "Zapisz metryki do pliku .prom po runie")
	console    = flag.Bool("console", true, "Loguj też na konsolę")
)

func main() {
	flag.Parse()

	appDir := mustAppDataDir("feedsync")
	log := logs.New(filepath.Join(appDir, "app.log"), *console)
	log.Info().Str("version", ver).Msg("feedsync start")

	path := *cfgPath
	if path == "" {
		path = filepath.Join(appDir, "config.json")
	}
	cfg, firstRun, err := conf.LoadOrCreate(path)
	if err != nil {
		log.Fatal().Err(err).Msg("config error")
	}
	if firstRun {
		log.Info().Msgf("Utworzono domyślną konfigurację: %s", path)
	}

	dbh, err := db.Open(cfg.Storage.Driver, cfg.Storage.DSN, appDir)
	if err != nil {
		log.Fatal().Err(err).Msg("DB open error")
	}
	if err := dbh.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("DB migrate error")
	}
	defer dbh.Close()
	log.Info().Str("driver", dbh.Driver).Str("db", dbh.Path).Msg("DB ready")

	// CTRL+C przerywa tylko bieżące żądanie; wysłane wiersze zostają po stronie API
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	s := syncer.New(log, cfg, dbh)
	sum, err := s.Run(ctx, syncer.Params{
		TopN:     *topN,
		Branches: splitList(*branches),
		From:     *fromRow,
		To:       *toRow,
		Resume:   *resume,
	})

	if *metricsOut != "" {
		if err := metrics.WriteTextfile(*metricsOut); err != nil {
			log.Error().Err(err).Str("path", *metricsOut).Msg("zapis metryk nieudany")
		}
	}

	if err != nil {
		log.Error().Err(err).Msg("run nieudany")
		dbh.Close()
		os.Exit(1)
	}

	fmt.Println("Katalog:", sum.StorePath, "pozycji:", sum.Stats.Entries)
	exit := 0
	for name, out := range sum.Outcomes {
		fmt.Printf("%s: remaining=%d failed=%d %v\n", name, out.Remaining, len(out.FailedSKUs), out.FailedSKUs)
		if len(out.FailedSKUs) > 0 {
			exit = 2
		}
	}
	for name, e := range sum.Errors {
		fmt.Printf("%s: błąd: %v\n", name, e)
		exit = 1
	}
	if exit != 0 {
		dbh.Close()
		os.Exit(exit)
	}
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func mustAppDataDir(name string) string {
	base, err := os.UserConfigDir()
	if err != nil {
		panic(err)
	}
	p := filepath.Join(base, name)
	_ = os.MkdirAll(p, 0o755)
	return p
}

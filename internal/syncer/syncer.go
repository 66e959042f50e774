// internal/syncer/syncer.go
package syncer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/bartek5186/feedsync/internal/catalog"
	conf "github.com/bartek5186/feedsync/internal/config"
	"github.com/bartek5186/feedsync/internal/db"
	"github.com/bartek5186/feedsync/internal/feed"
	"github.com/bartek5186/feedsync/internal/integrations"
	_ "github.com/bartek5186/feedsync/internal/integrations/catalogapi" // rejestracja
	"github.com/bartek5186/feedsync/internal/metrics"
	"github.com/bartek5186/feedsync/internal/storefile"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Params – parametry jednego runu (z CLI); zera = wartości z configu
type Params struct {
	TopN     int
	Branches []string
	From     int
	To       int  // < 0 = cały katalog
	Resume   bool // From z kursora w bazie
}

// Summary – wynik runu
type Summary struct {
	RunKey    string // wspólny dla wszystkich integracji runu, trafia do ledgera
	Stats     catalog.Stats
	StorePath string
	Outcomes  map[string]integrations.Outcome
	Errors    map[string]error
}

// wrapper na zbudowaną integrację
type runningInt struct {
	Name string
	Inst integrations.Publisher
}

type Syncer struct {
	log zerolog.Logger // logowanie
	db  *db.Handle     // ledger uploadów, może być nil
	cfg *conf.Config   // aktualna konfiguracja
}

func New(log zerolog.Logger, cfg *conf.Config, h *db.Handle) *Syncer {
	return &Syncer{log: log, cfg: cfg, db: h}
}

// Run: feedy → katalog → store_products → publishery. Wszystko po kolei.
func (s *Syncer) Run(ctx context.Context, p Params) (Summary, error) {
	cfg := s.cfg
	if err := cfg.Validate(); err != nil {
		return Summary{}, err
	}
	opt := catalog.Options{
		Branches:       cfg.Pipeline.Branches,
		TopN:           cfg.Pipeline.TopN,
		CategorySep:    cfg.Pipeline.CategorySep,
		DedupeProducts: cfg.Pipeline.DedupeProducts,
	}
	if p.TopN > 0 {
		opt.TopN = p.TopN
	}
	if len(p.Branches) > 0 {
		opt.Branches = p.Branches
	}

	// 1) feedy – bez nich nic nie zapisujemy
	timeout := time.Duration(cfg.Feeds.TimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	loader := feed.NewLoader(&http.Client{Timeout: timeout}, cfg.Feeds.Charset)

	prices, skipped, err := loader.LoadPrices(ctx, cfg.Feeds.PricesURL)
	if err != nil {
		return Summary{}, fmt.Errorf("prices: %w", err)
	}
	if skipped > 0 {
		s.log.Warn().Int("skipped", skipped).Msg("prices: pominięte niepełne wiersze")
	}
	products, err := loader.LoadProducts(ctx, cfg.Feeds.ProductsURL)
	if err != nil {
		return Summary{}, fmt.Errorf("products: %w", err)
	}

	// 2) pipeline
	entries, st := catalog.Build(prices, products, opt)
	metrics.CatalogEntries.Set(float64(len(entries)))
	s.log.Info().
		Int("prices_in", st.PricesIn).
		Int("after_branch", st.AfterBranch).
		Int("after_stock", st.AfterStock).
		Int("after_top_n", st.AfterTopN).
		Int("sku_groups", st.SKUGroups).
		Int("products_in", st.ProductsIn).
		Int("entries", st.Entries).
		Msg("catalog built")
	if len(entries) == 0 {
		s.log.Warn().Msg("brak wspólnych SKU między feedami – katalog pusty")
	}

	sum := Summary{
		RunKey:   uuid.NewString(),
		Stats:    st,
		Outcomes: map[string]integrations.Outcome{},
		Errors:   map[string]error{},
	}

	// 3) store_products
	path, err := storefile.Write(cfg.Storage.OutputDir, storefile.Name, entries)
	if err != nil {
		return sum, fmt.Errorf("store file: %w", err)
	}
	sum.StorePath = path
	s.log.Info().Str("path", path).Msg("katalog zapisany")

	// 4) publishery
	to := p.To
	if to < 0 {
		to = len(entries)
	}
	pubs, initErrs := s.buildPublishers(cfg)
	for name, err := range initErrs {
		sum.Errors[name] = err
	}
	for _, ri := range pubs {
		from := p.From
		if p.Resume && s.db != nil {
			next, ok, err := s.db.NextFrom(ri.Name)
			if err != nil {
				s.log.Error().Err(err).Str("integration", ri.Name).Msg("odczyt kursora nieudany")
			} else if ok {
				from = next
			}
		}

		lg := s.log.With().Str("run", sum.RunKey).Str("integration", ri.Name).Int("from", from).Int("to", to).Logger()
		lg.Info().Msg("publish start")

		run := &db.UploadRun{RunKey: sum.RunKey, Integration: ri.Name, FromRow: from, ToRow: to, Entries: len(entries)}
		out, err := ri.Inst.Publish(ctx, integrations.Batch{Entries: entries, From: from, To: to})
		if err != nil {
			lg.Error().Err(err).Msg("publish nieudany")
			sum.Errors[ri.Name] = err
			if s.db != nil {
				if rerr := s.db.RecordFailedRun(run, err); rerr != nil {
					lg.Error().Err(rerr).Msg("zapis runu nieudany")
				}
			}
			continue
		}
		sum.Outcomes[ri.Name] = out
		lg.Info().
			Int("remaining", out.Remaining).
			Int("failed", len(out.FailedSKUs)).
			Strs("failed_skus", out.FailedSKUs).
			Msg("publish done")

		if s.db != nil {
			if err := s.db.RecordRun(run, out); err != nil {
				lg.Error().Err(err).Msg("zapis runu nieudany")
			}
		}
	}
	return sum, nil
}

func (s *Syncer) buildPublishers(cfg *conf.Config) ([]runningInt, map[string]error) {
	var out []runningInt
	errs := map[string]error{}
	if len(cfg.Integrations) == 0 {
		s.log.Warn().Msg("Integrations: brak lub puste (sprawdź config.json)")
		return out, errs
	}
	names := make([]string, 0, len(cfg.Integrations))
	for name := range cfg.Integrations {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		f, ok := integrations.Get(name)
		if !ok {
			s.log.Warn().Str("integration", name).Msg("brak fabryki – pomijam")
			continue
		}
		inst, err := f(s.log.With().Str("integration", name).Logger(), json.RawMessage(cfg.Integrations[name]))
		if err != nil {
			s.log.Error().Err(err).Str("integration", name).Msg("błąd inicjalizacji")
			errs[name] = err
			continue
		}
		out = append(out, runningInt{Name: name, Inst: inst})
	}
	s.log.Info().Int("built", len(out)).Msg("Integrations built")
	return out, errs
}

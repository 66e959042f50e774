// internal/config/config.go
package conf

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bartek5186/feedsync/internal/integrations/catalogapi"
	"github.com/joho/godotenv"
)

// ErrInvalid – config wczytany, ale nie nadaje się do uruchomienia
var ErrInvalid = errors.New("niepoprawna konfiguracja")

// Główny config aplikacji
type Config struct {
	Feeds        FeedsConfig                `json:"feeds"`
	Pipeline     PipelineConfig             `json:"pipeline"`
	Storage      StorageConfig              `json:"storage"`
	Integrations map[string]json.RawMessage `json:"integrations"` // nazwa -> surowy JSON integracji
}

type FeedsConfig struct {
	PricesURL   string `json:"prices_url"`   // URL albo ścieżka pliku
	ProductsURL string `json:"products_url"` // jw.
	Charset     string `json:"charset"`
	TimeoutSec  int    `json:"timeout_sec"`
}

type PipelineConfig struct {
	TopN           int      `json:"top_n"`
	Branches       []string `json:"branches"`
	CategorySep    string   `json:"category_separator"`
	DedupeProducts bool     `json:"dedupe_products"`
}

type StorageConfig struct {
	Driver    string `json:"driver"` // sqlite | sqlite3 | mysql | postgres
	DSN       string `json:"dsn"`    // puste dla sqlite = plik w katalogu aplikacji
	OutputDir string `json:"output_dir"`
}

// Defaults – config zapisywany przy pierwszym uruchomieniu
func Defaults() *Config {
	api := catalogapi.Config{
		BaseURL:              "https://catalog.example.com",
		ClientID:             "client_id",
		ClientSecret:         "client_secret",
		GrantType:            "client_credentials",
		MerchantName:         "Richard's",
		ObsoleteMerchantName: "Beauty",
		TimeoutSec:           20,
	}
	rawAPI, _ := json.Marshal(api)

	return &Config{
		Feeds: FeedsConfig{
			PricesURL:   "https://cornershop-scrapers-evaluation.s3.amazonaws.com/public/PRICES-STOCK.csv",
			ProductsURL: "https://cornershop-scrapers-evaluation.s3.amazonaws.com/public/PRODUCTS.csv",
			Charset:     "utf-8",
			TimeoutSec:  120,
		},
		Pipeline: PipelineConfig{
			TopN:        100,
			Branches:    []string{"MM", "RHSM"},
			CategorySep: "|",
		},
		Storage: StorageConfig{
			Driver:    "sqlite",
			OutputDir: "./data",
		},
		Integrations: map[string]json.RawMessage{
			"catalogapi": rawAPI,
		},
	}
}

// LoadOrCreate czyta config; jeśli pliku nie ma – zapisuje domyślny (firstRun=true).
// Wcześniej ładuje .env (jeśli jest), żeby sekrety z env nadpisały te z pliku.
func LoadOrCreate(path string) (*Config, bool, error) {
	_ = godotenv.Load()

	// upewnij się, że katalog istnieje
	_ = os.MkdirAll(filepath.Dir(path), 0o755)

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := Defaults()
			if err := Save(path, cfg); err != nil {
				return nil, false, fmt.Errorf("błąd zapisu domyślnego configa: %w", err)
			}
			return cfg, true, nil
		}
		return nil, false, fmt.Errorf("błąd otwierania configa: %w", err)
	}
	defer f.Close()

	var cfg Config
	if err := json.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, false, fmt.Errorf("błąd parsowania configa: %w", err)
	}
	if cfg.Integrations == nil {
		cfg.Integrations = map[string]json.RawMessage{}
	}
	if cfg.Pipeline.CategorySep == "" {
		cfg.Pipeline.CategorySep = "|"
	}
	if cfg.Storage.OutputDir == "" {
		cfg.Storage.OutputDir = "./data"
	}
	return &cfg, false, nil
}

func Save(path string, cfg *Config) error {
	_ = os.MkdirAll(filepath.Dir(path), 0o755)
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(cfg)
}

// Validate sprawdza to, bez czego run nie ma sensu.
func (c *Config) Validate() error {
	switch {
	case c.Feeds.PricesURL == "":
		return fmt.Errorf("%w: feeds.prices_url jest puste", ErrInvalid)
	case c.Feeds.ProductsURL == "":
		return fmt.Errorf("%w: feeds.products_url jest puste", ErrInvalid)
	case len(c.Pipeline.Branches) == 0:
		return fmt.Errorf("%w: pipeline.branches jest puste", ErrInvalid)
	}
	return nil
}

// Helper do odczytu konkretnej integracji do struktury docelowej
func (c *Config) UnmarshalIntegration(name string, v any) error {
	raw, ok := c.Integrations[name]
	if !ok {
		return fmt.Errorf("brak integracji %q w configu", name)
	}
	return json.Unmarshal(raw, v)
}

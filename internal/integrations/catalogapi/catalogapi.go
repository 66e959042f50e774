// internal/integrations/catalogapi/catalogapi.go
package catalogapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/bartek5186/feedsync/internal/integrations"
	"github.com/rs/zerolog"
)

// Config – sekcja "catalogapi" w config.json.
// Sekrety można nadpisać zmiennymi CATALOGAPI_BASE_URL, CATALOGAPI_CLIENT_ID, CATALOGAPI_CLIENT_SECRET.
type Config struct {
	BaseURL              string `json:"base_url"`
	ClientID             string `json:"client_id"`
	ClientSecret         string `json:"client_secret"`
	GrantType            string `json:"grant_type"`
	MerchantName         string `json:"merchant_name"`          // merchant, do którego wysyłamy
	ObsoleteMerchantName string `json:"obsolete_merchant_name"` // merchant do usunięcia, opcjonalnie
	TimeoutSec           int    `json:"timeout_sec"`
}

func (c *Config) applyEnv() {
	if v := os.Getenv("CATALOGAPI_BASE_URL"); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv("CATALOGAPI_CLIENT_ID"); v != "" {
		c.ClientID = v
	}
	if v := os.Getenv("CATALOGAPI_CLIENT_SECRET"); v != "" {
		c.ClientSecret = v
	}
}

func (c Config) validate() error {
	switch {
	case c.BaseURL == "":
		return errors.New("catalogapi: base_url is empty")
	case c.MerchantName == "":
		return errors.New("catalogapi: merchant_name is empty")
	}
	return nil
}

func (c Config) timeout() time.Duration {
	if c.TimeoutSec <= 0 {
		return 20 * time.Second
	}
	return time.Duration(c.TimeoutSec) * time.Second
}

type Publisher struct {
	log  zerolog.Logger
	cfg  Config
	auth AuthProvider
	http *http.Client
}

func (p *Publisher) Name() string { return "catalogapi" }

// Publish: token → merchanci → upload partii.
func (p *Publisher) Publish(ctx context.Context, b integrations.Batch) (integrations.Outcome, error) {
	sess, err := p.auth.Session(ctx)
	if err != nil {
		return integrations.Outcome{}, err
	}
	up := NewUploader(p.log, NewClient(sess, p.http))

	rep := up.PrepareMerchants(ctx, p.cfg.MerchantName, p.cfg.ObsoleteMerchantName)
	p.log.Info().
		Int("list_status", rep.ListStatus).
		Bool("target_found", rep.TargetFound).
		Str("merchant_id", rep.TargetID).
		Bool("updated", rep.Updated).
		Int("update_status", rep.UpdateStatus).
		Str("obsolete_id", rep.ObsoleteID).
		Bool("deleted", rep.Deleted).
		Int("delete_status", rep.DeleteStatus).
		Msg("merchants prepared")

	res := up.Upload(ctx, rep.TargetID, b.Entries, b.From, b.To)

	out := integrations.Outcome{
		MerchantID: rep.TargetID,
		Remaining:  res.Remaining,
		FailedSKUs: res.FailedSKUs,
		Items:      make([]integrations.Item, 0, len(res.Items)),
	}
	for _, it := range res.Items {
		out.Items = append(out.Items, integrations.Item{SKU: it.SKU, Status: it.Status, OK: it.OK})
	}
	return out, nil
}

// New buduje publishera z gotowym AuthProviderem (nil = ClientCredentials z configu).
func New(log zerolog.Logger, cfg Config, auth AuthProvider) (*Publisher, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	client := &http.Client{Timeout: cfg.timeout()}
	if auth == nil {
		auth = ClientCredentials{
			BaseURL:      cfg.BaseURL,
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			GrantType:    cfg.GrantType,
			HTTP:         client,
		}
	}
	return &Publisher{log: log, cfg: cfg, auth: auth, http: client}, nil
}

func factory(log zerolog.Logger, raw json.RawMessage) (integrations.Publisher, error) {
	var cfg Config
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, err
	}
	cfg.applyEnv()
	return New(log, cfg, nil)
}

func init() {
	integrations.Register("catalogapi", factory)
}

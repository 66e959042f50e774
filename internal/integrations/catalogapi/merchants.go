// internal/integrations/catalogapi/merchants.go
package catalogapi

import (
	"context"
	"errors"
	"strings"

	"github.com/bartek5186/feedsync/internal/metrics"
)

// MerchantUpdate – body PUT /api/merchants/{id}; tylko przez NewMerchantUpdate
type MerchantUpdate struct {
	Merchant
}

// NewMerchantUpdate aktywuje merchanta pod podaną nazwą.
// Format id należy do API, sprawdzamy tylko czy id i nazwa są niepuste.
func NewMerchantUpdate(id, name string) (MerchantUpdate, error) {
	if strings.TrimSpace(id) == "" {
		return MerchantUpdate{}, errors.New("merchant id is empty")
	}
	if strings.TrimSpace(name) == "" {
		return MerchantUpdate{}, errors.New("merchant name is empty")
	}
	return MerchantUpdate{Merchant{
		ID:           id,
		Name:         name,
		IsActive:     true,
		CanBeUpdated: true,
		CanBeDeleted: false,
	}}, nil
}

// MerchantID szuka id po nazwie wyświetlanej.
func MerchantID(list MerchantList, name string) (string, bool) {
	for _, m := range list.Merchants {
		if m.Name == name {
			return m.ID, true
		}
	}
	return "", false
}

// MerchantReport – co się stało z merchantami przed uploadem.
// Status 0 = operacji nie było albo padł transport.
type MerchantReport struct {
	ListStatus   int
	TargetFound  bool
	TargetID     string
	Updated      bool
	UpdateStatus int
	ObsoleteID   string
	Deleted      bool
	DeleteStatus int
}

// PrepareMerchants: lista → update docelowego → delete starego.
// Nic tu nie przerywa uploadu: nieudana lista, brak merchanta, odrzucony
// update/delete lądują w raporcie. Bez TargetID upload idzie z pustym id.
func (u *Uploader) PrepareMerchants(ctx context.Context, target, obsolete string) MerchantReport {
	var rep MerchantReport

	res, err := u.api.ListMerchants(ctx)
	if err != nil {
		metrics.MerchantOpsTotal.WithLabelValues("list", "error").Inc()
		u.log.Error().Err(err).Msg("lista merchantów nieudana")
		return rep
	}
	rep.ListStatus = res.Status()
	list, ok := res.Payload()
	if !ok {
		metrics.MerchantOpsTotal.WithLabelValues("list", "failed").Inc()
		u.log.Warn().Int("status", res.Status()).Msg("lista merchantów odrzucona")
		return rep
	}
	metrics.MerchantOpsTotal.WithLabelValues("list", "ok").Inc()

	if id, ok := MerchantID(list, target); ok {
		rep.TargetFound, rep.TargetID = true, id
		upd, err := NewMerchantUpdate(id, target)
		if err != nil {
			u.log.Error().Err(err).Str("merchant", target).Msg("niepoprawne dane merchanta, pomijam update")
		} else {
			rep.Updated, rep.UpdateStatus = u.updateMerchant(ctx, upd)
		}
	} else {
		u.log.Warn().Str("merchant", target).Msg("merchant docelowy nie istnieje")
	}

	if obsolete == "" {
		return rep
	}
	oldID, ok := MerchantID(list, obsolete)
	if !ok {
		u.log.Warn().Str("merchant", obsolete).Msg("merchant do usunięcia nie istnieje")
		return rep
	}
	rep.ObsoleteID = oldID
	rep.Deleted, rep.DeleteStatus = u.deleteMerchant(ctx, oldID)
	return rep
}

func (u *Uploader) updateMerchant(ctx context.Context, upd MerchantUpdate) (bool, int) {
	res, err := u.api.UpdateMerchant(ctx, upd)
	if err != nil {
		metrics.MerchantOpsTotal.WithLabelValues("update", "error").Inc()
		u.log.Error().Err(err).Str("merchant_id", upd.ID).Msg("update merchanta nieudany")
		return false, 0
	}
	if !res.OK() {
		metrics.MerchantOpsTotal.WithLabelValues("update", "failed").Inc()
		u.log.Warn().Int("status", res.Status()).Str("merchant_id", upd.ID).Msg("update merchanta odrzucony")
		return false, res.Status()
	}
	metrics.MerchantOpsTotal.WithLabelValues("update", "ok").Inc()
	u.log.Info().Str("merchant_id", upd.ID).Str("name", upd.Name).Msg("merchant aktywny")
	return true, res.Status()
}

func (u *Uploader) deleteMerchant(ctx context.Context, id string) (bool, int) {
	res, err := u.api.DeleteMerchant(ctx, id)
	if err != nil {
		metrics.MerchantOpsTotal.WithLabelValues("delete", "error").Inc()
		u.log.Error().Err(err).Str("merchant_id", id).Msg("delete merchanta nieudany")
		return false, 0
	}
	if !res.OK() {
		metrics.MerchantOpsTotal.WithLabelValues("delete", "failed").Inc()
		u.log.Warn().Int("status", res.Status()).Str("merchant_id", id).Msg("delete merchanta odrzucony")
		return false, res.Status()
	}
	metrics.MerchantOpsTotal.WithLabelValues("delete", "ok").Inc()
	u.log.Info().Str("merchant_id", id).Msg("merchant usunięty")
	return true, res.Status()
}

// internal/db/ledger.go
package db

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/bartek5186/feedsync/internal/integrations"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func cursorKey(integration string) string { return "cursor." + integration }

// RecordRun zapisuje run, jego błędy, statusy SKU i kursor – w jednej transakcji.
// Kursor = to (wiersze <= to zostały przejrzane), od niego startuje -resume.
func (h *Handle) RecordRun(run *UploadRun, out integrations.Outcome) error {
	now := time.Now()
	run.MerchantID = out.MerchantID
	run.Sent = len(out.Items)
	run.Failed = len(out.FailedSKUs)
	run.Remaining = out.Remaining
	run.FinishedAt = &now

	return h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(run).Error; err != nil {
			return fmt.Errorf("insert upload_run: %w", err)
		}

		failures := make([]UploadFailure, 0, len(out.FailedSKUs))
		statuses := make([]ProductStatus, 0, len(out.Items))
		for _, it := range out.Items {
			ps := ProductStatus{
				SKU:        it.SKU,
				MerchantID: out.MerchantID,
				LastStatus: it.Status,
				LastRunID:  run.RunID,
			}
			if it.OK {
				ps.UploadedAt = &now
			} else {
				failures = append(failures, UploadFailure{RunID: run.RunID, SKU: it.SKU, Status: it.Status})
			}
			statuses = append(statuses, ps)
		}

		if len(failures) > 0 {
			if err := tx.CreateInBatches(&failures, 500).Error; err != nil {
				return fmt.Errorf("insert upload_failures: %w", err)
			}
		}

		// ten sam SKU może wystąpić kilka razy w partii (duplikaty w feedzie) – wygrywa ostatni
		statuses = lastBySKU(statuses)
		if len(statuses) > 0 {
			cols := []string{"merchant_id", "last_status", "last_run_id", "updated_at"}
			for _, ps := range statuses {
				c := cols
				if ps.UploadedAt != nil {
					c = append(append([]string{}, cols...), "uploaded_at")
				}
				if err := tx.Clauses(clause.OnConflict{
					Columns:   []clause.Column{{Name: "sku"}},
					DoUpdates: clause.AssignmentColumns(c),
				}).Create(&ps).Error; err != nil {
					return fmt.Errorf("upsert product_status %s: %w", ps.SKU, err)
				}
			}
		}

		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "k"}},
			DoUpdates: clause.AssignmentColumns([]string{"v"}),
		}).Create(&KV{K: cursorKey(run.Integration), V: strconv.Itoa(run.ToRow)}).Error
	})
}

// RecordFailedRun zapisuje run, który padł przed uploadem (np. auth).
// Kursor zostaje bez zmian – żaden wiersz nie został przejrzany.
func (h *Handle) RecordFailedRun(run *UploadRun, cause error) error {
	now := time.Now()
	run.LastError = cause.Error()
	run.FinishedAt = &now
	if err := h.DB.Create(run).Error; err != nil {
		return fmt.Errorf("insert upload_run: %w", err)
	}
	return nil
}

// NextFrom – kursor zapisany przez ostatni run; ok=false gdy brak.
func (h *Handle) NextFrom(integration string) (int, bool, error) {
	var kv KV
	err := h.DB.Where("k = ?", cursorKey(integration)).Take(&kv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	v, err := strconv.Atoi(kv.V)
	if err != nil {
		return 0, false, fmt.Errorf("kursor %q: %w", kv.V, err)
	}
	return v, true, nil
}

// Failures – odrzucone SKU runu w kolejności zapisu
func (h *Handle) Failures(runID uint) ([]UploadFailure, error) {
	var out []UploadFailure
	err := h.DB.Where("run_id = ?", runID).Order("id").Find(&out).Error
	return out, err
}

func lastBySKU(in []ProductStatus) []ProductStatus {
	pos := make(map[string]int, len(in))
	out := make([]ProductStatus, 0, len(in))
	for _, ps := range in {
		if i, ok := pos[ps.SKU]; ok {
			out[i] = ps
			continue
		}
		pos[ps.SKU] = len(out)
		out = append(out, ps)
	}
	return out
}

// internal/db/models.go
package db

import "time"

// upload_runs – jedno wywołanie Publish
type UploadRun struct {
	RunID       uint   `gorm:"primaryKey;column:run_id"`
	RunKey      string `gorm:"size:36;index"` // uuid runu syncera, wspólny dla integracji
	Integration string `gorm:"index"`
	MerchantID  string `gorm:"index"`
	FromRow     int
	ToRow       int
	Entries     int // rozmiar katalogu w chwili uploadu
	Sent        int
	Failed      int
	Remaining   int
	LastError   string    `gorm:"type:text"` // Publish nie doszedł do uploadu
	StartedAt   time.Time `gorm:"autoCreateTime"`
	FinishedAt  *time.Time
}

// upload_failures – odrzucone SKU danego runu (w kolejności wysyłki)
type UploadFailure struct {
	ID     uint   `gorm:"primaryKey"`
	RunID  uint   `gorm:"index"`
	SKU    string `gorm:"index"`
	Status int    // 0 = transport
}

// product_statuses – ostatni znany stan SKU po stronie API
type ProductStatus struct {
	SKU        string `gorm:"primaryKey"`
	MerchantID string `gorm:"index"`
	LastStatus int
	LastRunID  uint
	UploadedAt *time.Time // ostatni sukces
	UpdatedAt  time.Time
}

type KV struct {
	K string `gorm:"primaryKey"`
	V string
}

package models

import (
	"time"

	"github.com/bomin1134/gb-ud-portal/internal/attachments"
)

// FieldReport is one geotagged accessibility-defect measurement.
// Measurements are keyed by the field names of the catalog item, with the
// values as the surveyor typed them.
type FieldReport struct {
	ID           int64             `json:"id"`
	UserID       string            `json:"userId"`
	BranchID     int               `json:"branchId"`
	Category     string            `json:"category"`
	ItemName     string            `json:"itemName"`
	Latitude     float64           `json:"latitude"`
	Longitude    float64           `json:"longitude"`
	Address      string            `json:"address"`
	Measurements map[string]string `json:"measurements"`
	Memo         string            `json:"memo"`
	Photos       []attachments.Ref `json:"photos"`
	CreatedAt    time.Time         `json:"createdAt"`
}

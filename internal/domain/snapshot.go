package domain

import (
	"encoding/json"
	"time"
)

// ReportSnapshot guarda o resultado serializado de uma execução de relatório
type ReportSnapshot struct {
	ID              string          `json:"id"`
	Report          string          `json:"report"`
	DataFingerprint string          `json:"data_fingerprint"`
	Payload         json.RawMessage `json:"payload"`
	CreatedAt       time.Time       `json:"created_at"`
}

package domain

import "time"

// Модели, для которых поддерживается двухфазное удаление.
const (
	DeletionTargetSection = "section"
	DeletionTargetLine    = "line"
)

// DeletionRequest — запрошенное, но еще не подтвержденное удаление.
type DeletionRequest struct {
	Target      string    `json:"target"`
	TargetID    int64     `json:"target_id"`
	Message     string    `json:"message"`
	RequestedAt time.Time `json:"requested_at"`
}

package domain

import "time"

// ContractContent — неизменяемая ревизия текста пункта.
// Редактирование содержимого всегда создает новую ревизию.
type ContractContent struct {
	ID        int64     `json:"id" db:"id"`
	Content   string    `json:"content" db:"content"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

package events

import (
	"encoding/json"
	"time"

	"github.com/dpaiva/storemanager/pkg/messaging"
	"github.com/google/uuid"
)

// SaleItem is a line item carried by a sale event.
type SaleItem struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int32     `json:"quantity"`
}

// SaleCreatedEvent is published after a sale has been durably created and its
// stock decremented.
type SaleCreatedEvent struct {
	SaleID    uuid.UUID  `json:"sale_id"`
	Items     []SaleItem `json:"items"`
	CreatedAt time.Time  `json:"created_at"`
}

func (s SaleCreatedEvent) Subject() string {
	return messaging.SalesCreatedSubject
}

func (s SaleCreatedEvent) Payload() ([]byte, error) {
	return json.Marshal(s)
}

package funding

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ConfirmRequest carries the amount typed into the amount entry.
type ConfirmRequest struct {
	Amount AmountInput `json:"amount"`
}

// AmountInput is the raw amount as entered. It accepts a JSON string or a
// JSON number so both text and numeric inputs reach ParseAmount unchanged.
type AmountInput string

// UnmarshalJSON implements json.Unmarshaler.
func (a *AmountInput) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*a = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = AmountInput(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("amount must be a string or a number: %w", err)
	}
	*a = AmountInput(n.String())
	return nil
}

// SnapshotResponse is the JSON projection of a funding Snapshot.
type SnapshotResponse struct {
	State       string `json:"state"`
	Status      string `json:"status"`
	Message     string `json:"message"`
	ModalOpen   bool   `json:"modal_open"`
	AmountInput string `json:"amount_input"`
	Reference   string `json:"checkout_reference,omitempty"`
}

// ToResponse renders a snapshot for HTTP clients.
func ToResponse(s Snapshot) SnapshotResponse {
	return SnapshotResponse{
		State:       string(s.State),
		Status:      string(s.Status),
		Message:     s.Message,
		ModalOpen:   s.ModalOpen,
		AmountInput: s.AmountInput,
		Reference:   s.Reference,
	}
}

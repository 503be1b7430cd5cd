package models

import (
	"encoding/json"
	"testing"
)

func TestPlaceBetRequestAmountAcceptsNumberOrString(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"json number", `{"event_id":1,"side":"YES","amount":20.5,"type":"BUY"}`, "20.5"},
		{"numeric string", `{"event_id":1,"side":"YES","amount":"20.5","type":"BUY"}`, "20.5"},
		{"integer number", `{"event_id":1,"side":"NO","amount":300,"type":"SELL"}`, "300"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req PlaceBetRequest
			if err := json.Unmarshal([]byte(tt.body), &req); err != nil {
				t.Fatalf("unmarshal failed: %v", err)
			}
			if string(req.Amount) != tt.want {
				t.Errorf("amount = %q, want %q", req.Amount, tt.want)
			}
		})
	}
}

package gpt

import "testing"

func TestNewClient_Validation(t *testing.T) {
	tests := []struct {
		name    string
		apiKey  string
		model   string
		wantErr bool
	}{
		{name: "missing key", apiKey: "", model: "gpt-4o-mini", wantErr: true},
		{name: "missing model", apiKey: "sk-test", model: "", wantErr: true},
		{name: "valid", apiKey: "sk-test", model: "gpt-4o-mini", wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(tt.apiKey, tt.model)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewClient() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && client.ModelID != tt.model {
				t.Errorf("expected model %s, got %s", tt.model, client.ModelID)
			}
		})
	}
}

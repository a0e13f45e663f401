package errors

import "testing"

func TestValidateEnum(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		allowed []string
		wantErr bool
	}{
		{name: "member", value: "force", allowed: []string{"force", "stub"}, wantErr: false},
		{name: "non-member", value: "spiral", allowed: []string{"force", "stub"}, wantErr: true},
		{name: "empty value", value: "", allowed: []string{"force"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEnum(ErrCodeInvalidMode, "mode", tt.value, tt.allowed...)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateEnum() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidMode) {
				t.Errorf("GetCode() = %v, want %v", GetCode(err), ErrCodeInvalidMode)
			}
		})
	}
}

func TestValidateRange(t *testing.T) {
	tests := []struct {
		name    string
		value   float64
		wantErr bool
	}{
		{name: "in range", value: 0.5, wantErr: false},
		{name: "lower bound", value: 0, wantErr: false},
		{name: "upper bound", value: 1, wantErr: false},
		{name: "below", value: -0.1, wantErr: true},
		{name: "above", value: 1.1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRange(ErrCodeInvalidConfig, "compatibility_threshold", tt.value, 0, 1)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateRange() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidatePositive(t *testing.T) {
	if err := ValidatePositive(ErrCodeInvalidConfig, "cell_size", 20); err != nil {
		t.Errorf("ValidatePositive(20) = %v, want nil", err)
	}
	if err := ValidatePositive(ErrCodeInvalidConfig, "cell_size", 0); err == nil {
		t.Error("ValidatePositive(0) = nil, want error")
	}
}

package cache

import "testing"

func TestGenerateCacheKey(t *testing.T) {
	tests := []struct {
		name        string
		objectType  string
		identifier  string
		paramsKey   []string
		expectedKey string
	}{
		{
			name:        "without paramsKey",
			objectType:  "answers",
			identifier:  "abc123",
			paramsKey:   nil,
			expectedKey: "surveyresponder:answers:abc123",
		},
		{
			name:        "with empty paramsKey",
			objectType:  "answers",
			identifier:  "abc123",
			paramsKey:   []string{},
			expectedKey: "surveyresponder:answers:abc123",
		},
		{
			name:        "with one paramsKey",
			objectType:  "answers",
			identifier:  "abc123",
			paramsKey:   []string{"v1"},
			expectedKey: "surveyresponder:answers:abc123:v1",
		},
		{
			name:        "with multiple paramsKey",
			objectType:  "run",
			identifier:  "xyz",
			paramsKey:   []string{"param1", "param2", "param3"},
			expectedKey: "surveyresponder:run:xyz:param1_param2_param3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actualKey := GenerateCacheKey(tt.objectType, tt.identifier, tt.paramsKey...)
			if actualKey != tt.expectedKey {
				t.Errorf("GenerateCacheKey() = %v, want %v", actualKey, tt.expectedKey)
			}
		})
	}
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint("ab", "c")
	b := Fingerprint("a", "bc")
	if a == b {
		t.Errorf("Fingerprint must separate part boundaries, both gave %s", a)
	}
	if Fingerprint("x", "y") != Fingerprint("x", "y") {
		t.Error("Fingerprint must be deterministic")
	}
	if len(a) != 64 {
		t.Errorf("Fingerprint length = %d, want 64", len(a))
	}
}

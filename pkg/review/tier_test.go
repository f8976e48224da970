package review

import "testing"

func fp(v float64) *float64 { return &v }

func TestClassify(t *testing.T) {
	tests := []struct {
		name         string
		blocking     int
		warnings     int
		coverage     *float64
		filesChecked int
		want         Tier
	}{
		{"blocking always unrated", 1, 0, fp(100), 10, TierUnrated},
		{"blocking beats coverage", 3, 5, fp(95), 10, TierUnrated},
		{"no coverage no files", 0, 0, nil, 0, TierUnrated},
		{"no coverage with files", 0, 0, nil, 5, TierBronze},
		{"platinum at 90 exactly", 0, 0, fp(90), 10, TierPlatinum},
		{"platinum full coverage", 0, 0, fp(100), 10, TierPlatinum},
		{"warnings demote platinum to gold", 0, 1, fp(95), 10, TierGold},
		{"gold at 80 exactly", 0, 0, fp(80), 10, TierGold},
		{"gold below platinum cut", 0, 0, fp(89.9), 10, TierGold},
		{"silver at 60 exactly", 0, 2, fp(60), 10, TierSilver},
		{"silver below gold cut", 0, 0, fp(79.9), 10, TierSilver},
		{"bronze below silver cut", 0, 0, fp(59.9), 10, TierBronze},
		{"bronze at 55", 0, 0, fp(55), 10, TierBronze},
		{"bronze at zero coverage", 0, 10, fp(0), 10, TierBronze},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.blocking, tt.warnings, tt.coverage, tt.filesChecked)
			if got != tt.want {
				t.Errorf("Classify(%d, %d, %v, %d) = %s, want %s",
					tt.blocking, tt.warnings, tt.coverage, tt.filesChecked, got, tt.want)
			}
		})
	}
}

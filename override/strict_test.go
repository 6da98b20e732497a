package override

import "testing"

func TestIsCompatibleExtension(t *testing.T) {
	tests := []struct {
		old, new, suffix string
		preserve         bool
		want             bool
	}{
		{"1.2.0", "1.2.0", "", false, true},
		{"1.2", "1.2.0.redhat-1", "redhat", false, true},
		{"1.2.0", "1.2.1", "", false, false},
		{"1.2.0", "1.2.1.redhat-1", "redhat", false, false},
		{"1.2.0.Final", "1.2.0.Final-redhat-3", "redhat", false, true},
		{"1.2.0.Final", "1.2.0.Finalize", "", false, false},
		{"1.2.0.redhat-1", "1.2.0.redhat-3", "redhat", false, true},
		{"1.2.0", "1.2.0.jboss-1", "redhat", false, false},
		{"1.2.0", "1.2.0.jboss-1", "", false, true},
		{"1.2.0.GA", "1.2.0", "redhat", false, false},
		{"1.2.0-SNAPSHOT", "1.2.0.redhat-1", "redhat", false, true},
		{"1.2.0-SNAPSHOT", "1.2.0.redhat-1", "redhat", true, false},
		{"1.2.0-SNAPSHOT", "1.2.0.redhat-1-SNAPSHOT", "redhat", true, true},
		{"${v}", "1.2.0", "", false, false},
	}
	for _, tt := range tests {
		got := IsCompatibleExtension(tt.old, tt.new, tt.suffix, tt.preserve)
		if got != tt.want {
			t.Errorf("IsCompatibleExtension(%q, %q, %q, %v) = %v, want %v",
				tt.old, tt.new, tt.suffix, tt.preserve, got, tt.want)
		}
	}
}

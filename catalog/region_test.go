package catalog

import "testing"

func TestParseRegion(t *testing.T) {
	tests := []struct {
		input   string
		want    RegionFilter
		wantErr bool
	}{
		{"us", RegionUS, false},
		{"all", RegionAll, false},
		{"int", RegionInternational, false},
		{"US", RegionUS, false},
		{" all ", RegionAll, false},
		{"", RegionUS, false},
		{"europe", RegionUS, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseRegion(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseRegion(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseRegion(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestRegionFilter_Matches(t *testing.T) {
	tests := []struct {
		filter RegionFilter
		name   string
		want   bool
	}{
		{RegionUS, "PIA - US East", true},
		{RegionUS, "PIA - US West", true},
		{RegionUS, "PIA - Germany", false},
		{RegionUS, "Work VPN", false},

		{RegionAll, "PIA - US East", true},
		{RegionAll, "PIA - Germany", true},
		{RegionAll, "Work VPN", false},

		{RegionInternational, "PIA - Germany", true},
		{RegionInternational, "PIA - US East", false},
		{RegionInternational, "Work VPN", false},
	}

	for _, tt := range tests {
		t.Run(tt.filter.String()+"/"+tt.name, func(t *testing.T) {
			if got := tt.filter.Matches(tt.name); got != tt.want {
				t.Errorf("%v.Matches(%q) = %v, want %v", tt.filter, tt.name, got, tt.want)
			}
		})
	}
}

// The international filter is a plain substring test: any profile whose
// name contains "US" anywhere is excluded, even when the server is not in
// the US. This is established behavior, not an accident.
func TestRegionFilter_InternationalSubstringAmbiguity(t *testing.T) {
	configured := []string{"PIA - US East", "PIA - Germany", "PIA - USA-South"}

	var kept []string
	for _, name := range configured {
		if RegionInternational.Matches(name) {
			kept = append(kept, name)
		}
	}

	if len(kept) != 1 || kept[0] != "PIA - Germany" {
		t.Errorf("international filter kept %v, want only [PIA - Germany]", kept)
	}
}

func TestRegionFilter_String(t *testing.T) {
	tests := []struct {
		filter   RegionFilter
		expected string
	}{
		{RegionUS, "us"},
		{RegionAll, "all"},
		{RegionInternational, "int"},
		{RegionFilter(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.filter.String(); got != tt.expected {
			t.Errorf("RegionFilter.String() = %v, want %v", got, tt.expected)
		}
	}
}

package cli

import (
	"testing"
)

func TestSortEntries(t *testing.T) {
	tests := []struct {
		name  string
		order SortOrder
		want  []string
	}{
		{
			name:  "site order",
			order: SortBySite,
			want:  []string{"Sanlam Cape Town Marathon", "The Gun Run", "Absa Cape Epic"},
		},
		{
			name:  "by date, undated last",
			order: SortByDate,
			want:  []string{"Absa Cape Epic", "Sanlam Cape Town Marathon", "The Gun Run"},
		},
		{
			name:  "by name",
			order: SortByName,
			want:  []string{"Absa Cape Epic", "Sanlam Cape Town Marathon", "The Gun Run"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := sampleReport()
			got := sortEntries(report.Events, tt.order)

			for i, name := range tt.want {
				if got[i].Name != name {
					t.Errorf("sortEntries()[%d] = %q, want %q", i, got[i].Name, name)
				}
			}
			if report.Events[0].Name != "Sanlam Cape Town Marathon" {
				t.Error("sortEntries() should not reorder its input")
			}
		})
	}
}

func TestParseSortOrder(t *testing.T) {
	for _, in := range []string{"site", "Date", " name "} {
		if _, err := ParseSortOrder(in); err != nil {
			t.Errorf("ParseSortOrder(%q) error = %v", in, err)
		}
	}
	if _, err := ParseSortOrder("state"); err == nil {
		t.Error("ParseSortOrder(\"state\") expected error")
	}
}

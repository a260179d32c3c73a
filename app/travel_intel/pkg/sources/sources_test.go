package sources

import (
	"reflect"
	"testing"
)

func TestRegistry_Local(t *testing.T) {
	r := NewRegistry(nil, map[string][]string{"Atlantis": {"atlantis.news"}})

	tests := []struct {
		country string
		want    []string
	}{
		{"Laos", []string{"laotiantimes.com", "vientianetimes.org.la"}},
		{"  LAOS ", []string{"laotiantimes.com", "vientianetimes.org.la"}},
		{"atlantis", []string{"atlantis.news"}},
		{"Narnia", nil},
	}
	for _, tt := range tests {
		if got := r.Local(tt.country); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Local(%q) = %v, want %v", tt.country, got, tt.want)
		}
	}
}

func TestRegistry_Lists(t *testing.T) {
	r := NewRegistry([]string{"region.example"}, nil)
	lists := r.Lists("Vietnam", []string{"travel.state.gov"})

	if !reflect.DeepEqual(lists.Official, []string{"travel.state.gov"}) {
		t.Errorf("Official = %v", lists.Official)
	}
	if !reflect.DeepEqual(lists.Regional, []string{"region.example"}) {
		t.Errorf("Regional = %v", lists.Regional)
	}
	if len(lists.Local) == 0 {
		t.Errorf("Local for Vietnam should not be empty")
	}
}

package settings

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
)

func TestStaticStore(t *testing.T) {
	s, err := NewStaticStore([]string{" travel.state.gov ", "", "smartraveller.gov.au"}).Get(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"travel.state.gov", "smartraveller.gov.au"}
	if !reflect.DeepEqual(s.OfficialSources, want) {
		t.Errorf("OfficialSources = %v, want %v", s.OfficialSources, want)
	}
}

func TestSQLiteStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "settings.db")

	store, err := OpenSQLite(path, nil)
	if err != nil {
		t.Fatalf("OpenSQLite() error = %v", err)
	}

	s, err := store.Get(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(s.OfficialSources) != 0 {
		t.Errorf("fresh store OfficialSources = %v", s.OfficialSources)
	}
	if _, ok := s.Raw[KeyOfficialSources]; !ok {
		t.Error("official_sources not seeded")
	}

	if err := store.SetSetting(ctx, KeyOfficialSources, "travel.state.gov,gov.uk"); err != nil {
		t.Fatalf("SetSetting() error = %v", err)
	}
	if err := store.SetSetting(ctx, "theme", "dark"); !errors.Is(err, ErrUnknownKey) {
		t.Errorf("SetSetting(theme) error = %v, want ErrUnknownKey", err)
	}
	store.Close()

	// 重新打开后仍然保留，配置中的默认值不会覆盖
	store, err = OpenSQLite(path, []string{"smartraveller.gov.au"})
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	v, err := store.GetSetting(ctx, KeyOfficialSources)
	if err != nil || v != "travel.state.gov,gov.uk" {
		t.Errorf("GetSetting() = %q, %v", v, err)
	}
	s, err = store.Get(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"travel.state.gov", "gov.uk"}; !reflect.DeepEqual(s.OfficialSources, want) {
		t.Errorf("OfficialSources = %v, want %v", s.OfficialSources, want)
	}
}

func TestSQLiteStore_SeedsFromConfig(t *testing.T) {
	ctx := context.Background()
	store, err := OpenSQLite(filepath.Join(t.TempDir(), "settings.db"), []string{"travel.state.gov", "gov.uk"})
	if err != nil {
		t.Fatalf("OpenSQLite() error = %v", err)
	}
	defer store.Close()

	s, err := store.Get(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"travel.state.gov", "gov.uk"}; !reflect.DeepEqual(s.OfficialSources, want) {
		t.Errorf("OfficialSources = %v, want %v", s.OfficialSources, want)
	}
}

package all

import (
	"reflect"
	"testing"

	"hpmigrate/internal/storage"
)

func TestAllBackendsRegistered(t *testing.T) {
	t.Parallel()

	want := []string{"mssql", "mysql", "postgres", "sqlite"}
	if got := storage.ListKinds(); !reflect.DeepEqual(got, want) {
		t.Fatalf("ListKinds() = %v, want %v", got, want)
	}
	for _, k := range want {
		if _, err := storage.LookupDDL(k); err != nil {
			t.Errorf("LookupDDL(%q): %v", k, err)
		}
	}
}

package bot

import (
	"path/filepath"
	"testing"

	"go.uber.org/zap"
)

func TestVacancyStorePersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vacancies.json")

	store := OpenVacancyStore(path, zap.NewNop())
	added := store.Add("Backend разработчик", "Ищем Go разработчика")
	if added.ID == "" {
		t.Fatalf("expected generated vacancy id")
	}

	reopened := OpenVacancyStore(path, zap.NewNop())
	got, ok := reopened.Get(added.ID)
	if !ok {
		t.Fatalf("vacancy must survive a reopen")
	}
	if got.Title != "Backend разработчик" || got.Text != "Ищем Go разработчика" {
		t.Fatalf("unexpected vacancy after reopen: %+v", got)
	}

	if !reopened.Delete(added.ID) {
		t.Fatalf("delete must succeed")
	}
	if OpenVacancyStore(path, zap.NewNop()).Len() != 0 {
		t.Fatalf("deletion must persist")
	}
}

func TestVacancyStoreListOrdered(t *testing.T) {
	store := OpenVacancyStore("", zap.NewNop())
	store.Add("Б вакансия", "текст")
	store.Add("А вакансия", "текст")

	list := store.List()
	if len(list) != 2 || list[0].Title != "А вакансия" {
		t.Fatalf("list must be ordered by title, got %+v", list)
	}
}

func TestVacancyStoreDeleteUnknown(t *testing.T) {
	store := OpenVacancyStore("", zap.NewNop())
	if store.Delete("no-such-id") {
		t.Fatalf("deleting an unknown id must report false")
	}
}

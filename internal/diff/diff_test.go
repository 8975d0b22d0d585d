package diff

import (
	"math/rand"
	"testing"

	"github.com/victoravtr/LEC-Ditto/internal/domain"
)

func rel(id, username string) domain.FollowRelation {
	return domain.FollowRelation{ID: id, Username: username, Name: username}
}

func ids(rels []domain.FollowRelation) map[string]bool {
	out := make(map[string]bool, len(rels))
	for _, r := range rels {
		out[r.ID] = true
	}
	return out
}

func TestComputeExampleScenario(t *testing.T) {
	old := []domain.FollowRelation{rel("1", "a"), rel("2", "b")}
	new := []domain.FollowRelation{rel("2", "b"), rel("3", "c")}

	delta := Compute(old, new)

	if len(delta.Added) != 1 || delta.Added[0].ID != "3" {
		t.Fatalf("expected added=[3], got %#v", delta.Added)
	}
	if len(delta.Removed) != 1 || delta.Removed[0].ID != "1" {
		t.Fatalf("expected removed=[1], got %#v", delta.Removed)
	}
	if len(delta.Unchanged) != 1 || delta.Unchanged[0].ID != "2" {
		t.Fatalf("expected unchanged=[2], got %#v", delta.Unchanged)
	}
}

func TestComputeOrderIndependent(t *testing.T) {
	old := []domain.FollowRelation{rel("1", "a"), rel("2", "b"), rel("3", "c"), rel("4", "d")}
	new := []domain.FollowRelation{rel("2", "b"), rel("3", "c"), rel("5", "e")}

	want := Compute(old, new)

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 20; i++ {
		shuffledOld := append([]domain.FollowRelation(nil), old...)
		shuffledNew := append([]domain.FollowRelation(nil), new...)
		rng.Shuffle(len(shuffledOld), func(a, b int) {
			shuffledOld[a], shuffledOld[b] = shuffledOld[b], shuffledOld[a]
		})
		rng.Shuffle(len(shuffledNew), func(a, b int) {
			shuffledNew[a], shuffledNew[b] = shuffledNew[b], shuffledNew[a]
		})

		got := Compute(shuffledOld, shuffledNew)
		for name, pair := range map[string][2][]domain.FollowRelation{
			"added":     {want.Added, got.Added},
			"removed":   {want.Removed, got.Removed},
			"unchanged": {want.Unchanged, got.Unchanged},
		} {
			wantIDs, gotIDs := ids(pair[0]), ids(pair[1])
			if len(wantIDs) != len(gotIDs) {
				t.Fatalf("%s changed under permutation: want %v got %v", name, wantIDs, gotIDs)
			}
			for id := range wantIDs {
				if !gotIDs[id] {
					t.Fatalf("%s changed under permutation: want %v got %v", name, wantIDs, gotIDs)
				}
			}
		}
	}
}

func TestComputeRenameIsNotAnEvent(t *testing.T) {
	old := []domain.FollowRelation{{ID: "1", Username: "old_handle", Name: "Old"}}
	new := []domain.FollowRelation{{ID: "1", Username: "new_handle", Name: "New"}}

	delta := Compute(old, new)

	if len(delta.Added) != 0 || len(delta.Removed) != 0 {
		t.Fatalf("rename must not produce follow events: %#v", delta)
	}
	if len(delta.Unchanged) != 1 || delta.Unchanged[0].Username != "new_handle" {
		t.Fatalf("expected renamed relation in unchanged with new payload: %#v", delta.Unchanged)
	}
}

func TestComputeRemovedCarriesOldPayload(t *testing.T) {
	old := []domain.FollowRelation{{ID: "1", Username: "last_known", Name: "Last Known"}}

	delta := Compute(old, nil)

	if len(delta.Removed) != 1 || delta.Removed[0].Username != "last_known" {
		t.Fatalf("removed must carry the old copy: %#v", delta.Removed)
	}
}

func TestComputeEmptyOld(t *testing.T) {
	new := []domain.FollowRelation{rel("1", "a"), rel("2", "b")}

	delta := Compute(nil, new)

	if len(delta.Removed) != 0 {
		t.Fatalf("empty old must not remove anything: %#v", delta.Removed)
	}
	if len(delta.Added) != 2 {
		t.Fatalf("empty old must add everything: %#v", delta.Added)
	}
}

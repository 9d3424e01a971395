package repo_test

import (
	"context"
	"sync"
	"testing"

	"lostfound-api/internal/core/database/databasetest"
	"lostfound-api/internal/domain"
	"lostfound-api/internal/repo"
)

func seedUser(t *testing.T, r *repo.UserRepo, email, phone string) *domain.User {
	t.Helper()
	u := &domain.User{Name: email, Email: email, Phone: phone, PasswordHash: "x", Role: domain.RoleUser}
	if err := r.Create(context.Background(), u); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func strp(s string) *string { return &s }

func TestUserRepoLookupsAndList(t *testing.T) {
	db := databasetest.Open(t)
	users := repo.NewUserRepo(db)
	ctx := context.Background()

	a := seedUser(t, users, "ann@x.io", "100")
	seedUser(t, users, "bob@x.io", "200")

	got, err := users.FindByEmail(ctx, "ann@x.io")
	if err != nil || got == nil || got.ID != a.ID {
		t.Fatalf("FindByEmail = %v, %v", got, err)
	}
	missing, err := users.FindByID(ctx, 999)
	if err != nil || missing != nil {
		t.Fatalf("FindByID(missing) = %v, %v", missing, err)
	}
	if taken, _ := users.PhoneTaken(ctx, "200"); !taken {
		t.Fatal("phone 200 is taken")
	}
	if taken, _ := users.EmailTaken(ctx, "nobody@x.io"); taken {
		t.Fatal("unknown email reported taken")
	}

	list, total, err := users.List(ctx, domain.UserQuery{Q: "bob"})
	if err != nil || total != 1 || len(list) != 1 || list[0].Email != "bob@x.io" {
		t.Fatalf("List(q=bob) = %v %d %v", list, total, err)
	}
	list, total, _ = users.List(ctx, domain.UserQuery{Limit: 1})
	if total != 2 || len(list) != 1 {
		t.Fatalf("paged list = %d/%d", len(list), total)
	}

	ok, err := users.UpdateRole(ctx, a.ID, domain.RoleAdmin)
	if err != nil || !ok {
		t.Fatalf("UpdateRole = %v %v", ok, err)
	}
	if ok, _ := users.UpdateRole(ctx, 999, domain.RoleAdmin); ok {
		t.Fatal("UpdateRole on missing user")
	}
	admins, _, _ := users.List(ctx, domain.UserQuery{Role: domain.RoleAdmin})
	if len(admins) != 1 || admins[0].ID != a.ID {
		t.Fatalf("admins = %v", admins)
	}
}

func TestUserDeleteCascadesItems(t *testing.T) {
	db := databasetest.Open(t)
	users, items := repo.NewUserRepo(db), repo.NewItemRepo(db)
	ctx := context.Background()

	owner := seedUser(t, users, "o@x.io", "1")
	other := seedUser(t, users, "p@x.io", "2")
	for _, uid := range []uint{owner.ID, owner.ID, other.ID} {
		if err := items.Create(ctx, &domain.Item{Title: "keys", UserID: uid}); err != nil {
			t.Fatal(err)
		}
	}

	ok, err := users.Delete(ctx, owner.ID)
	if err != nil || !ok {
		t.Fatalf("Delete = %v %v", ok, err)
	}
	left, _ := items.List(ctx)
	if len(left) != 1 || left[0].UserID != other.ID {
		t.Fatalf("items left = %+v", left)
	}
	if ok, _ := users.Delete(ctx, owner.ID); ok {
		t.Fatal("second delete should report nothing deleted")
	}
}

func TestItemRepoOwnerJoin(t *testing.T) {
	db := databasetest.Open(t)
	users, items := repo.NewUserRepo(db), repo.NewItemRepo(db)
	ctx := context.Background()
	u := seedUser(t, users, "o@x.io", "555")

	it := &domain.Item{Title: "wallet", Phone: strp("777"), UserID: u.ID}
	if err := items.Create(ctx, it); err != nil {
		t.Fatal(err)
	}
	if it.Owner == nil || it.Owner.Email != "o@x.io" || it.Owner.PasswordHash != "" {
		t.Fatalf("owner after create = %+v", it.Owner)
	}

	got, err := items.FindByID(ctx, it.ID)
	if err != nil || got == nil || got.Owner == nil || got.Owner.Phone != "555" {
		t.Fatalf("FindByID = %+v, %v", got, err)
	}
	if got.IsTaken {
		t.Fatal("new items are not taken")
	}
}

func TestItemRepoOwnerScopedWrites(t *testing.T) {
	db := databasetest.Open(t)
	users, items := repo.NewUserRepo(db), repo.NewItemRepo(db)
	ctx := context.Background()
	u := seedUser(t, users, "o@x.io", "1")
	it := &domain.Item{Title: "bag", UserID: u.ID}
	_ = items.Create(ctx, it)

	if err := items.Update(ctx, it.ID, u.ID+1, map[string]any{"title": "stolen"}); err != nil {
		t.Fatal(err)
	}
	got, _ := items.FindByID(ctx, it.ID)
	if got.Title != "bag" {
		t.Fatal("update with the wrong owner must not apply")
	}
	if ok, _ := items.Delete(ctx, it.ID, u.ID+1); ok {
		t.Fatal("delete with the wrong owner must not apply")
	}
	if ok, _ := items.Delete(ctx, it.ID, u.ID); !ok {
		t.Fatal("owner delete failed")
	}
}

func TestItemRepoMarkTakenOnce(t *testing.T) {
	db := databasetest.Open(t)
	users, items := repo.NewUserRepo(db), repo.NewItemRepo(db)
	ctx := context.Background()
	u := seedUser(t, users, "o@x.io", "1")
	it := &domain.Item{Title: "phone", UserID: u.ID}
	_ = items.Create(ctx, it)

	const n = 16
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := items.MarkTaken(ctx, it.ID)
			if err != nil {
				t.Errorf("MarkTaken: %v", err)
				return
			}
			if ok {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if wins != 1 {
		t.Fatalf("%d callers performed the transition", wins)
	}
	if ok, _ := items.MarkTaken(ctx, 12345); ok {
		t.Fatal("missing item cannot be taken")
	}
}

func TestFeedbackRepoOrdering(t *testing.T) {
	db := databasetest.Open(t)
	fb := repo.NewFeedbackRepo(db)
	ctx := context.Background()
	for _, m := range []string{"first", "second", "third"} {
		if err := fb.Create(ctx, &domain.Feedback{Message: m, Rating: 3}); err != nil {
			t.Fatal(err)
		}
	}
	list, err := fb.List(ctx)
	if err != nil || len(list) != 3 {
		t.Fatalf("List = %v %v", list, err)
	}
	if list[0].Message != "third" || list[2].Message != "first" {
		t.Fatalf("order = %s, %s, %s", list[0].Message, list[1].Message, list[2].Message)
	}

	ok, err := fb.Update(ctx, list[0].ID, map[string]any{"rating": 5})
	if err != nil || !ok {
		t.Fatalf("Update = %v %v", ok, err)
	}
	if ok, _ := fb.Update(ctx, 999, map[string]any{"rating": 5}); ok {
		t.Fatal("update of missing row")
	}
	if ok, _ := fb.Delete(ctx, list[0].ID); !ok {
		t.Fatal("delete failed")
	}
}

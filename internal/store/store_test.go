package store

import (
	"context"
	"errors"
	"testing"

	"github.com/zarlcorp/zacct/internal/account"
)

// fakeAPI implements API with overridable behavior per operation.
type fakeAPI struct {
	listFn   func(ctx context.Context) ([]account.Account, error)
	createFn func(ctx context.Context, a account.Account) (account.Account, error)
	updateFn func(ctx context.Context, a account.Account) (account.Account, error)
	deleteFn func(ctx context.Context, id string) error

	calls []string
}

func (f *fakeAPI) List(ctx context.Context) ([]account.Account, error) {
	f.calls = append(f.calls, "list")
	if f.listFn != nil {
		return f.listFn(ctx)
	}
	return nil, nil
}

func (f *fakeAPI) Create(ctx context.Context, a account.Account) (account.Account, error) {
	f.calls = append(f.calls, "create")
	if f.createFn != nil {
		return f.createFn(ctx, a)
	}
	return a, nil
}

func (f *fakeAPI) Update(ctx context.Context, a account.Account) (account.Account, error) {
	f.calls = append(f.calls, "update")
	if f.updateFn != nil {
		return f.updateFn(ctx, a)
	}
	return a, nil
}

func (f *fakeAPI) Delete(ctx context.Context, id string) error {
	f.calls = append(f.calls, "delete")
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}
	return nil
}

func seeded(t *testing.T, api *fakeAPI, accounts []account.Account) (*Store, *[]Notice) {
	t.Helper()

	var notices []Notice
	s := New(api, WithNotify(func(n Notice) { notices = append(notices, n) }))

	if accounts != nil {
		api.listFn = func(context.Context) ([]account.Account, error) { return accounts, nil }
		if err := s.Load(context.Background()); err != nil {
			t.Fatalf("seed load: %v", err)
		}
	}

	return s, &notices
}

func TestLoadReplacesList(t *testing.T) {
	api := &fakeAPI{}
	s, _ := seeded(t, api, []account.Account{
		{ID: "1", Login: "alice"},
		{ID: "2", Login: "bob"},
	})

	got := s.Accounts()
	if len(got) != 2 || got[0].Login != "alice" {
		t.Errorf("accounts = %+v", got)
	}
}

func TestLoadFailureKeepsPriorState(t *testing.T) {
	api := &fakeAPI{}
	s, notices := seeded(t, api, []account.Account{{ID: "1", Login: "alice"}})

	api.listFn = func(context.Context) ([]account.Account, error) {
		return nil, errors.New("server down")
	}

	if err := s.Load(context.Background()); err == nil {
		t.Fatal("expected load error")
	}

	if got := s.Accounts(); len(got) != 1 || got[0].Login != "alice" {
		t.Errorf("prior state lost: %+v", got)
	}

	last := (*notices)[len(*notices)-1]
	if last.Level != LevelError {
		t.Error("load failure should emit an error notice")
	}
}

func TestAddAppendsServerRecord(t *testing.T) {
	api := &fakeAPI{
		createFn: func(_ context.Context, a account.Account) (account.Account, error) {
			a.ID = "42" // server assigns the id
			return a, nil
		},
	}
	s, notices := seeded(t, api, nil)

	created, err := s.Add(context.Background(), account.Account{Type: account.TypeLocal, Login: "alice"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if created == nil || created.ID != "42" {
		t.Fatalf("created = %+v, want id 42", created)
	}

	got := s.Accounts()
	if len(got) != 1 || got[0].ID != "42" {
		t.Errorf("accounts = %+v", got)
	}
	if len(*notices) == 0 || (*notices)[0].Level != LevelSuccess {
		t.Error("add should emit a success notice")
	}
}

func TestAddFailureReturnsNilAndLeavesListUnchanged(t *testing.T) {
	api := &fakeAPI{}
	s, notices := seeded(t, api, []account.Account{{ID: "1", Login: "alice"}})

	api.createFn = func(context.Context, account.Account) (account.Account, error) {
		return account.Account{}, errors.New("conflict")
	}

	created, err := s.Add(context.Background(), account.Account{Login: "bob"})
	if err == nil {
		t.Fatal("expected add error")
	}
	if created != nil {
		t.Errorf("created = %+v, want nil", created)
	}

	got := s.Accounts()
	if len(got) != 1 || got[0].Login != "alice" {
		t.Errorf("list changed: %+v", got)
	}

	last := (*notices)[len(*notices)-1]
	if last.Level != LevelError {
		t.Error("add failure should emit an error notice")
	}
}

func TestUpdateReplacesMatchingEntry(t *testing.T) {
	api := &fakeAPI{}
	s, _ := seeded(t, api, []account.Account{
		{ID: "5", Login: "old"},
		{ID: "6", Login: "other"},
	})

	if err := s.Update(context.Background(), account.Account{ID: "5", Type: account.TypeLDAP, Login: "new"}); err != nil {
		t.Fatalf("update: %v", err)
	}

	got := s.Accounts()
	if got[0].Login != "new" {
		t.Errorf("entry not replaced: %+v", got[0])
	}
	if got[1].Login != "other" {
		t.Errorf("unrelated entry touched: %+v", got[1])
	}
}

func TestUpdateUnknownIDLeavesListAlone(t *testing.T) {
	api := &fakeAPI{}
	s, _ := seeded(t, api, []account.Account{{ID: "1", Login: "alice"}})

	// the API reports success, but no cache entry matches
	if err := s.Update(context.Background(), account.Account{ID: "99", Login: "ghost"}); err != nil {
		t.Fatalf("update: %v", err)
	}

	got := s.Accounts()
	if len(got) != 1 || got[0].Login != "alice" {
		t.Errorf("list changed: %+v", got)
	}
}

func TestUpdateFailureLeavesStateStale(t *testing.T) {
	api := &fakeAPI{}
	s, _ := seeded(t, api, []account.Account{{ID: "5", Login: "old"}})

	api.updateFn = func(context.Context, account.Account) (account.Account, error) {
		return account.Account{}, errors.New("timeout")
	}

	if err := s.Update(context.Background(), account.Account{ID: "5", Login: "new"}); err == nil {
		t.Fatal("expected update error")
	}

	// no rollback, no re-fetch: the cache keeps the pre-update entry
	if got := s.Accounts(); got[0].Login != "old" {
		t.Errorf("cache entry = %+v", got[0])
	}
}

func TestRemoveFiltersEntry(t *testing.T) {
	api := &fakeAPI{}
	s, _ := seeded(t, api, []account.Account{
		{ID: "7", Login: "alice"},
		{ID: "8", Login: "bob"},
	})

	if err := s.Remove(context.Background(), "7"); err != nil {
		t.Fatalf("remove: %v", err)
	}

	got := s.Accounts()
	if len(got) != 1 || got[0].ID != "8" {
		t.Errorf("accounts = %+v", got)
	}
}

func TestRemoveFailureLeavesListUnchanged(t *testing.T) {
	api := &fakeAPI{}
	s, _ := seeded(t, api, []account.Account{{ID: "7", Login: "alice"}})

	api.deleteFn = func(context.Context, string) error {
		return errors.New("forbidden")
	}

	if err := s.Remove(context.Background(), "7"); err == nil {
		t.Fatal("expected remove error")
	}
	if got := s.Accounts(); len(got) != 1 {
		t.Errorf("accounts = %+v", got)
	}
}

func TestAccountsReturnsCopy(t *testing.T) {
	api := &fakeAPI{}
	s, _ := seeded(t, api, []account.Account{{ID: "1", Login: "alice"}})

	got := s.Accounts()
	got[0].Login = "mutated"

	if s.Accounts()[0].Login != "alice" {
		t.Error("external mutation reached the cache")
	}
}

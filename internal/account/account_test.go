package account

import (
	"reflect"
	"testing"
)

func TestParseLabelsSplitsAndDropsEmpty(t *testing.T) {
	got := ParseLabels("WORK;ADMIN;;MAIL;")
	want := []Label{{Text: "WORK"}, {Text: "ADMIN"}, {Text: "MAIL"}}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseLabels = %v, want %v", got, want)
	}
}

func TestParseLabelsTrimsWhitespace(t *testing.T) {
	got := ParseLabels(" WORK ; ADMIN ")
	want := []Label{{Text: "WORK"}, {Text: "ADMIN"}}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseLabels = %v, want %v", got, want)
	}
}

func TestParseLabelsEmptyString(t *testing.T) {
	if got := ParseLabels(""); got != nil {
		t.Errorf("ParseLabels(\"\") = %v, want nil", got)
	}
}

func TestJoinLabels(t *testing.T) {
	got := JoinLabels([]Label{{Text: "WORK"}, {Text: "ADMIN"}})
	if got != "WORK;ADMIN" {
		t.Errorf("JoinLabels = %q, want %q", got, "WORK;ADMIN")
	}
}

func TestLabelsRoundTrip(t *testing.T) {
	orig := []Label{{Text: "A"}, {Text: "B"}, {Text: "C"}}

	got := ParseLabels(JoinLabels(orig))
	if !reflect.DeepEqual(got, orig) {
		t.Errorf("round trip = %v, want %v", got, orig)
	}
}

func TestNormalizeNullsLDAPPassword(t *testing.T) {
	pw := "secret"
	a := Normalize(Account{Type: TypeLDAP, Login: "bob", Password: &pw})

	if a.Password != nil {
		t.Errorf("ldap password = %q, want nil", *a.Password)
	}
}

func TestNormalizeKeepsLocalPassword(t *testing.T) {
	pw := "secret"
	a := Normalize(Account{Type: TypeLocal, Login: "alice", Password: &pw})

	if a.Password == nil || *a.Password != "secret" {
		t.Error("local password should be kept")
	}
}

func TestTypeValid(t *testing.T) {
	if !TypeLocal.Valid() || !TypeLDAP.Valid() {
		t.Error("known types should be valid")
	}
	if Type("admin").Valid() {
		t.Error("unknown type should be invalid")
	}
}

func TestPersisted(t *testing.T) {
	if (Account{}).Persisted() {
		t.Error("account without id should not be persisted")
	}
	if !(Account{ID: "5"}).Persisted() {
		t.Error("account with id should be persisted")
	}
}

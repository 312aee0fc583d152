// Package account defines the account record managed by zacct and the
// conversions between its wire form and the editable form used in the UI.
package account

import "strings"

// Type discriminates how an account authenticates.
type Type string

const (
	// TypeLocal accounts carry their own password.
	TypeLocal Type = "local"
	// TypeLDAP accounts defer to the directory; their password is always null.
	TypeLDAP Type = "ldap"
)

// Valid reports whether t is one of the two known types.
func (t Type) Valid() bool {
	return t == TypeLocal || t == TypeLDAP
}

// Label is a short tag attached to an account.
type Label struct {
	Text string `json:"text"`
}

// Account is a credential record on the directory server. ID is empty
// until the server has persisted the record.
type Account struct {
	ID       string  `json:"id,omitempty"`
	Type     Type    `json:"type"`
	Login    string  `json:"login"`
	Password *string `json:"password"`
	Labels   []Label `json:"labels"`
}

// Persisted reports whether the account has been saved to the server.
func (a Account) Persisted() bool {
	return a.ID != ""
}

// labelSep separates labels in the editable string form.
const labelSep = ";"

// ParseLabels converts the editable `;`-separated form into a label
// list. Empty and whitespace-only segments are dropped.
func ParseLabels(s string) []Label {
	var labels []Label
	for _, part := range strings.Split(s, labelSep) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		labels = append(labels, Label{Text: part})
	}
	return labels
}

// JoinLabels converts a label list back to the editable string form.
func JoinLabels(labels []Label) string {
	texts := make([]string, len(labels))
	for i, l := range labels {
		texts[i] = l.Text
	}
	return strings.Join(texts, labelSep)
}

// Normalize enforces the password nullability rule: an ldap account
// never carries a password, whatever the form held.
func Normalize(a Account) Account {
	if a.Type == TypeLDAP {
		a.Password = nil
	}
	return a
}

// PasswordValue returns the password or "" when it is null.
func (a Account) PasswordValue() string {
	if a.Password == nil {
		return ""
	}
	return *a.Password
}

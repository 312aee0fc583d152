package account

import "strings"

const (
	maxLoginLen    = 100
	maxPasswordLen = 100
	maxLabelsLen   = 50
)

// FormInput is one editable row as the user typed it: labels still in
// their `;`-separated form, password as a plain string.
type FormInput struct {
	Login    string
	Password string
	Labels   string
	Type     Type
}

// FieldErrors holds one message per invalid field. The zero value
// means the row passed validation.
type FieldErrors struct {
	Login    string
	Password string
	Labels   string
	Type     string
}

// OK reports whether no field failed.
func (e FieldErrors) OK() bool {
	return e == FieldErrors{}
}

// Validate checks a whole row against the form schema. Validation is
// per row: a save is attempted only when every field passes.
func Validate(in FormInput) FieldErrors {
	var errs FieldErrors

	if strings.TrimSpace(in.Login) == "" {
		errs.Login = "login is required"
	} else if len(in.Login) > maxLoginLen {
		errs.Login = "login must be at most 100 characters"
	}

	if len(in.Password) > maxPasswordLen {
		errs.Password = "password must be at most 100 characters"
	} else if in.Type == TypeLocal && strings.TrimSpace(in.Password) == "" {
		errs.Password = "password is required for local accounts"
	}

	// the raw string is limited before splitting
	if len(in.Labels) > maxLabelsLen {
		errs.Labels = "labels must be at most 50 characters"
	}

	if !in.Type.Valid() {
		errs.Type = "type must be local or ldap"
	}

	return errs
}

// FromForm normalizes a validated row into an account record: labels
// split into list form, password nulled for ldap accounts.
func FromForm(id string, in FormInput) Account {
	a := Account{
		ID:     id,
		Type:   in.Type,
		Login:  in.Login,
		Labels: ParseLabels(in.Labels),
	}
	if in.Type == TypeLocal {
		pw := in.Password
		a.Password = &pw
	}
	return Normalize(a)
}

// ToForm converts a stored account back into its editable row form.
func ToForm(a Account) FormInput {
	return FormInput{
		Login:    a.Login,
		Password: a.PasswordValue(),
		Labels:   JoinLabels(a.Labels),
		Type:     a.Type,
	}
}

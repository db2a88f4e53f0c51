package userprofile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

const (
	FieldName     = "name"
	FieldTelphone = "telphone"
	FieldEmail    = "email"
	FieldPassword = "password"
	FieldAddress  = "address"
)

const (
	MsgRequired     = "This field is required."
	MsgNull         = "This field may not be null."
	MsgNotString    = "Not a valid string."
	MsgBlank        = "This field may not be blank."
	MsgInvalidEmail = "Enter a valid email address."
	MsgEmailTaken   = "user profile with this email already exists."
	MsgNullChars    = "Null characters are not allowed."
)

func MsgMaxLength(n int) string {
	return fmt.Sprintf("Ensure this field has no more than %d characters.", n)
}

var validate = validator.New()

// Field is one submitted value. The zero value means the key was absent.
type Field struct {
	Present bool
	Null    bool
	// Invalid is set for JSON values that cannot be read as text
	// (objects, arrays, booleans).
	Invalid bool
	Value   string
}

func Text(v string) Field {
	return Field{Present: true, Value: v}
}

func (f *Field) UnmarshalJSON(data []byte) error {
	*f = Field{Present: true}
	raw := bytes.TrimSpace(data)
	if len(raw) == 0 {
		f.Invalid = true
		return nil
	}

	switch c := raw[0]; {
	case bytes.Equal(raw, []byte("null")):
		f.Null = true
	case c == '"':
		if err := json.Unmarshal(raw, &f.Value); err != nil {
			f.Invalid = true
		}
	case c == '-' || (c >= '0' && c <= '9'):
		f.Value = string(raw)
	default:
		f.Invalid = true
	}
	return nil
}

type Submission struct {
	Name     Field `json:"name"`
	Telphone Field `json:"telphone"`
	Email    Field `json:"email"`
	Password Field `json:"password"`
	Address  Field `json:"address"`
}

// SubmissionFromForm reads a form-encoded body. A key that is present with
// an empty value counts as present.
func SubmissionFromForm(form url.Values) Submission {
	get := func(key string) Field {
		vals, ok := form[key]
		if !ok || len(vals) == 0 {
			return Field{}
		}
		return Text(vals[0])
	}
	return Submission{
		Name:     get(FieldName),
		Telphone: get(FieldTelphone),
		Email:    get(FieldEmail),
		Password: get(FieldPassword),
		Address:  get(FieldAddress),
	}
}

// FieldErrors maps a field name to the reasons it was rejected.
type FieldErrors map[string][]string

func (fe FieldErrors) Add(field string, msgs ...string) {
	if len(msgs) == 0 {
		return
	}
	fe[field] = append(fe[field], msgs...)
}

func (fe FieldErrors) Empty() bool {
	return len(fe) == 0
}

// Validate checks every field and returns all violations at once.
func (s Submission) Validate() FieldErrors {
	errs := FieldErrors{}
	errs.Add(FieldName, checkText(s.Name, MaxNameLength)...)
	errs.Add(FieldTelphone, checkText(s.Telphone, MaxTelphoneLength)...)
	errs.Add(FieldEmail, checkEmail(s.Email)...)
	errs.Add(FieldPassword, checkText(s.Password, MaxPasswordLength)...)
	errs.Add(FieldAddress, checkOptionalText(s.Address)...)
	return errs
}

// AddressValue is nil when the address was omitted or null.
func (s Submission) AddressValue() *string {
	if !s.Address.Present || s.Address.Null || s.Address.Invalid {
		return nil
	}
	v := s.Address.Value
	return &v
}

func checkPresence(f Field) (string, bool) {
	switch {
	case !f.Present:
		return MsgRequired, false
	case f.Null:
		return MsgNull, false
	case f.Invalid:
		return MsgNotString, false
	case strings.TrimSpace(f.Value) == "":
		return MsgBlank, false
	case hasNullChar(f.Value):
		return MsgNullChars, false
	}
	return "", true
}

// PostgreSQL text columns cannot store U+0000.
func hasNullChar(v string) bool {
	return strings.ContainsRune(v, 0)
}

func checkText(f Field, max int) []string {
	if msg, ok := checkPresence(f); !ok {
		return []string{msg}
	}
	if utf8.RuneCountInString(f.Value) > max {
		return []string{MsgMaxLength(max)}
	}
	return nil
}

func checkEmail(f Field) []string {
	if msg, ok := checkPresence(f); !ok {
		return []string{msg}
	}
	var msgs []string
	if utf8.RuneCountInString(f.Value) > MaxEmailLength {
		msgs = append(msgs, MsgMaxLength(MaxEmailLength))
	}
	if err := validate.Var(f.Value, "email"); err != nil {
		msgs = append(msgs, MsgInvalidEmail)
	}
	return msgs
}

func checkOptionalText(f Field) []string {
	switch {
	case !f.Present || f.Null:
		return nil
	case f.Invalid:
		return []string{MsgNotString}
	case hasNullChar(f.Value):
		return []string{MsgNullChars}
	}
	return nil
}

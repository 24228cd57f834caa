package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
	"unicode/utf8"
)

// Kind identifies the type of a record's body.
type Kind string

const (
	KindLogin        Kind = "Login"
	KindEnvironment  Kind = "Environment"
	KindUnstructured Kind = "Unstructured"
)

// Fields is implemented by the kind-specific field sets.
type Fields interface {
	Kind() Kind
	values() map[string]string
}

// Login holds website or service credentials.
type Login struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (Login) Kind() Kind { return KindLogin }

func (l Login) values() map[string]string {
	return map[string]string{"username": l.Username, "password": l.Password}
}

// Environment holds a single environment variable.
type Environment struct {
	Variable string `json:"variable"`
	Value    string `json:"value"`
}

func (Environment) Kind() Kind { return KindEnvironment }

func (e Environment) values() map[string]string {
	return map[string]string{"variable": e.Variable, "value": e.Value}
}

// Unstructured holds free-form contents.
type Unstructured struct {
	Contents string `json:"contents"`
}

func (Unstructured) Kind() Kind { return KindUnstructured }

func (u Unstructured) values() map[string]string {
	return map[string]string{"contents": u.Contents}
}

// Body is the kind-tagged payload of a record.
type Body struct {
	Fields Fields
}

// Record is a single labeled secret.
type Record struct {
	Timestamp int64  `json:"timestamp"`
	Label     string `json:"label"`
	Body      Body   `json:"body"`
}

// New creates a record with the current timestamp.
func New(label string, fields Fields) *Record {
	return &Record{
		Timestamp: time.Now().Unix(),
		Label:     label,
		Body:      Body{Fields: fields},
	}
}

func NewLogin(label, username, password string) *Record {
	return New(label, Login{Username: username, Password: password})
}

func NewEnvironment(label, variable, value string) *Record {
	return New(label, Environment{Variable: variable, Value: value})
}

func NewUnstructured(label, contents string) *Record {
	return New(label, Unstructured{Contents: contents})
}

// Kind returns the kind of the record's body, or "" if it has none.
func (r *Record) Kind() Kind {
	if r.Body.Fields == nil {
		return ""
	}
	return r.Body.Fields.Kind()
}

// Equal reports whether two records have the same timestamp, label, and fields.
func (r *Record) Equal(other *Record) bool {
	if r == nil || other == nil {
		return r == other
	}
	return r.Timestamp == other.Timestamp &&
		r.Label == other.Label &&
		r.Body.Fields == other.Body.Fields
}

// Validate checks that the record has a label and a body, and that every
// string in it is valid UTF-8. JSON cannot carry other bytes unchanged.
func (r *Record) Validate() error {
	if r.Label == "" {
		return fmt.Errorf("record has no label")
	}
	if !utf8.ValidString(r.Label) {
		return fmt.Errorf("record label is not valid UTF-8")
	}
	if r.Body.Fields == nil {
		return fmt.Errorf("record body has no fields")
	}
	for name, value := range r.Body.Fields.values() {
		if !utf8.ValidString(value) {
			return fmt.Errorf("record field %q is not valid UTF-8", name)
		}
	}
	return nil
}

// Marshal returns the canonical serialized form of the record.
func (r *Record) Marshal() ([]byte, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(r)
}

// Unmarshal parses the canonical serialized form of a record.
func Unmarshal(data []byte) (*Record, error) {
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("record is not valid UTF-8")
	}

	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	if r.Label == "" {
		return nil, fmt.Errorf("record has no label")
	}
	return &r, nil
}

type taggedBody struct {
	Kind   Kind            `json:"kind"`
	Fields json.RawMessage `json:"fields"`
}

// MarshalJSON encodes the body as {"kind": ..., "fields": {...}}.
func (b Body) MarshalJSON() ([]byte, error) {
	if b.Fields == nil {
		return nil, fmt.Errorf("record body has no fields")
	}

	fields, err := json.Marshal(b.Fields)
	if err != nil {
		return nil, err
	}
	return json.Marshal(taggedBody{Kind: b.Fields.Kind(), Fields: fields})
}

// UnmarshalJSON decodes a kind-tagged body, rejecting unknown kinds and fields.
func (b *Body) UnmarshalJSON(data []byte) error {
	var tagged taggedBody
	if err := json.Unmarshal(data, &tagged); err != nil {
		return err
	}

	var err error
	switch tagged.Kind {
	case KindLogin:
		var f Login
		err = decodeFields(tagged.Fields, &f)
		b.Fields = f
	case KindEnvironment:
		var f Environment
		err = decodeFields(tagged.Fields, &f)
		b.Fields = f
	case KindUnstructured:
		var f Unstructured
		err = decodeFields(tagged.Fields, &f)
		b.Fields = f
	default:
		return fmt.Errorf("unknown record kind %q", tagged.Kind)
	}
	return err
}

func decodeFields(raw json.RawMessage, dst any) error {
	if len(raw) == 0 {
		return fmt.Errorf("record body has no fields")
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

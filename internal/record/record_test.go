package record

import (
	"strings"
	"testing"
)

func TestMarshalCanonicalForm(t *testing.T) {
	r := &Record{
		Timestamp: 1700000000,
		Label:     "github",
		Body:      Body{Fields: Login{Username: "octocat", Password: "hunter2"}},
	}

	data, err := r.Marshal()
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	expected := `{"timestamp":1700000000,"label":"github","body":{"kind":"Login","fields":{"username":"octocat","password":"hunter2"}}}`
	if string(data) != expected {
		t.Errorf("Expected %s, got %s", expected, data)
	}
}

func TestUnmarshalEachKind(t *testing.T) {
	records := []*Record{
		NewLogin("github", "octocat", "hunter2"),
		NewEnvironment("aws", "AWS_SECRET_ACCESS_KEY", "abc123"),
		NewUnstructured("notes", "line one\nline two"),
	}

	for _, r := range records {
		t.Run(string(r.Kind()), func(t *testing.T) {
			data, err := r.Marshal()
			if err != nil {
				t.Fatalf("Marshal failed: %v", err)
			}

			decoded, err := Unmarshal(data)
			if err != nil {
				t.Fatalf("Unmarshal failed: %v", err)
			}
			if !decoded.Equal(r) {
				t.Errorf("Expected %+v, got %+v", r, decoded)
			}
		})
	}
}

func TestUnmarshalRejectsInvalid(t *testing.T) {
	testCases := []struct {
		name string
		data string
	}{
		{"NotJSON", "not json"},
		{"UnknownKind", `{"timestamp":1,"label":"x","body":{"kind":"Card","fields":{}}}`},
		{"MissingFields", `{"timestamp":1,"label":"x","body":{"kind":"Login"}}`},
		{"MissingLabel", `{"timestamp":1,"body":{"kind":"Unstructured","fields":{"contents":"c"}}}`},
		{"WrongFieldType", `{"timestamp":1,"label":"x","body":{"kind":"Login","fields":{"username":5}}}`},
		{"UnknownField", `{"timestamp":1,"label":"x","body":{"kind":"Login","fields":{"username":"u","pin":"1234"}}}`},
		{"InvalidUTF8", "{\"timestamp\":1,\"label\":\"x\",\"body\":{\"kind\":\"Unstructured\",\"fields\":{\"contents\":\"\xff\"}}}"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Unmarshal([]byte(tc.data)); err == nil {
				t.Error("Expected error, got nil")
			}
		})
	}
}

func TestEqual(t *testing.T) {
	a := NewLogin("github", "octocat", "hunter2")
	b := *a

	if !a.Equal(&b) {
		t.Error("Expected copies to be equal")
	}

	b.Body = Body{Fields: Login{Username: "octocat", Password: "different"}}
	if a.Equal(&b) {
		t.Error("Expected records with different passwords to differ")
	}

	c := NewUnstructured("github", "hunter2")
	c.Timestamp = a.Timestamp
	if a.Equal(c) {
		t.Error("Expected records of different kinds to differ")
	}

	var nilRecord *Record
	if nilRecord.Equal(a) || !nilRecord.Equal(nil) {
		t.Error("Unexpected nil comparison result")
	}
}

func TestMarshalRequiresLabelAndBody(t *testing.T) {
	if _, err := (&Record{Body: Body{Fields: Unstructured{}}}).Marshal(); err == nil {
		t.Error("Expected error for missing label")
	}

	_, err := (&Record{Label: "x"}).Marshal()
	if err == nil || !strings.Contains(err.Error(), "no fields") {
		t.Errorf("Expected missing fields error, got: %v", err)
	}
}

func TestMarshalRejectsInvalidUTF8(t *testing.T) {
	records := map[string]*Record{
		"Label":       NewUnstructured("bad\xff", "contents"),
		"Contents":    NewUnstructured("bin", "\xff\xfea\x80"),
		"Password":    NewLogin("github", "octocat", "hunter\x80"),
		"Environment": NewEnvironment("aws", "KEY\xc3", "value"),
	}

	for name, r := range records {
		t.Run(name, func(t *testing.T) {
			data, err := r.Marshal()
			if err == nil {
				t.Fatalf("Expected error, got %q", data)
			}
			if !strings.Contains(err.Error(), "UTF-8") {
				t.Errorf("Expected a UTF-8 error, got: %v", err)
			}
		})
	}
}

func TestMarshalKeepsMultibyteText(t *testing.T) {
	r := NewUnstructured("notes", "caf\u00e9 \u6f22\u5b57 \U0001F511")

	data, err := r.Marshal()
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	decoded, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if !decoded.Equal(r) {
		t.Errorf("Expected %+v, got %+v", r, decoded)
	}
}

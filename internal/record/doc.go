// Package record defines the secret records kbs encrypts.
//
// A Record has a stable label, a creation timestamp, and a Body whose
// fields depend on its kind:
//
//   - Login: a username and password
//   - Environment: an environment variable name and value
//   - Unstructured: arbitrary contents
//
// Records serialize to a canonical JSON form that is the plaintext of every
// encrypted envelope:
//
//	{"timestamp":1700000000,"label":"github","body":{"kind":"Login","fields":{"username":"u","password":"p"}}}
package record

package code

import "encoding/base64"

// Encode converts program text into the transport encoding Judge0 expects
// when base64_encoded=true is set on a request.
func Encode(text string) string {
	return base64.StdEncoding.EncodeToString([]byte(text))
}

// Decode reverses Encode. Malformed input yields a *DecodeError.
func Decode(s string) (string, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return "", &DecodeError{Err: err}
	}
	return string(b), nil
}

// decodeField decodes an optional response field, tagging any error with
// the field name. A nil input stays nil.
func decodeField(name string, raw *string) (*string, error) {
	if raw == nil {
		return nil, nil
	}
	b, err := base64.StdEncoding.DecodeString(*raw)
	if err != nil {
		return nil, &DecodeError{Field: name, Err: err}
	}
	s := string(b)
	return &s, nil
}

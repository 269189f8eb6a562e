package domain

import "encoding/json"

// FlexString is a scalar that may arrive as a JSON string, number, or null.
// Embedded page blobs are inconsistent about quoting numeric fields, so this
// type absorbs the difference and always presents a string.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*f = FlexString(n.String())
		return nil
	}
	// Booleans and other scalars are not expected here, but keep the value
	// rather than failing the whole record decode.
	*f = FlexString(data)
	return nil
}

func (f FlexString) String() string {
	return string(f)
}

// Or returns the value, or fallback when empty.
func (f FlexString) Or(fallback string) string {
	if f == "" {
		return fallback
	}
	return string(f)
}

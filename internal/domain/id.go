package domain

import "encoding/json"

// ID is an opaque identifier. The API serializes ids either as strings or as
// numbers; both decode to the same textual form.
type ID string

func (id ID) String() string { return string(id) }

// UnmarshalJSON accepts string and numeric ids.
func (id *ID) UnmarshalJSON(data []byte) error {
	s, err := flexibleID(data)
	if err != nil {
		return err
	}
	*id = ID(s)
	return nil
}

// MarshalJSON always writes the id as a JSON string.
func (id ID) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(id))
}

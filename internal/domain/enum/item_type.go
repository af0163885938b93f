package enum

import (
	"encoding/json"
)

// ItemType distinguishes priced rows from text separators inside a line item list.
type ItemType int

const (
	ItemTypeService ItemType = 0
	ItemTypeText    ItemType = 1
)

func (t ItemType) String() string {
	if t == ItemTypeText {
		return "text"
	}
	return "service"
}

func (t ItemType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON treats anything other than "text" as a priced service row.
func (t *ItemType) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*t = ItemType(i)
		return nil
	}
	if str == "text" {
		*t = ItemTypeText
	} else {
		*t = ItemTypeService
	}
	return nil
}

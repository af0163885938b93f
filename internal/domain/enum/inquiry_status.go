package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// InquiryStatus is the Kanban column of an inquiry. Any status may follow any other.
type InquiryStatus int

const (
	InquiryStatusNew         InquiryStatus = 0
	InquiryStatusContacted   InquiryStatus = 1
	InquiryStatusNegotiating InquiryStatus = 2
	InquiryStatusClosed      InquiryStatus = 3
)

var inquiryStatusNames = [...]string{"new", "contacted", "negotiating", "closed"}

func (s InquiryStatus) String() string {
	if int(s) < 0 || int(s) >= len(inquiryStatusNames) {
		return "new"
	}
	return inquiryStatusNames[s]
}

// Valid reports whether s is one of the known statuses.
func (s InquiryStatus) Valid() bool {
	return int(s) >= 0 && int(s) < len(inquiryStatusNames)
}

// ParseInquiryStatus maps a status name to its value.
func ParseInquiryStatus(name string) (InquiryStatus, error) {
	for i, n := range inquiryStatusNames {
		if n == name {
			return InquiryStatus(i), nil
		}
	}
	return InquiryStatusNew, fmt.Errorf("unknown inquiry status %q", name)
}

func (s InquiryStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *InquiryStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		if !InquiryStatus(i).Valid() {
			return fmt.Errorf("unknown inquiry status %d", i)
		}
		*s = InquiryStatus(i)
		return nil
	}
	parsed, err := ParseInquiryStatus(str)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (s InquiryStatus) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *InquiryStatus) Scan(value interface{}) error {
	if value == nil {
		*s = InquiryStatusNew
		return nil
	}
	switch v := value.(type) {
	case int64:
		*s = InquiryStatus(v)
	case int:
		*s = InquiryStatus(v)
	}
	return nil
}

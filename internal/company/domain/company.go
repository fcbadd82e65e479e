package domain

import (
	"strings"
	"time"
)

// Company is a business entity identified by its tax identifier (stir).
// Phone is optional; OTPs can only be issued when it is set.
type Company struct {
	ID        int64
	Name      string
	Stir      string
	Phone     string
	Status    string
	Region    string
	District  string
	CreatedAt time.Time
}

// HasPhone reports whether the company has a phone number on file.
func (c *Company) HasPhone() bool {
	return c != nil && strings.TrimSpace(c.Phone) != ""
}

// Summary is the public view of a company returned to clients.
type Summary struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Stir        string  `json:"stir"`
	Status      string  `json:"status"`
	Region      string  `json:"region"`
	District    string  `json:"district"`
	PhoneNumber *string `json:"phone_number"`
}

// Summary returns the public view of c. A missing phone is rendered as null.
func (c *Company) Summary() Summary {
	s := Summary{
		ID: c.ID, Name: c.Name, Stir: c.Stir, Status: c.Status,
		Region: c.Region, District: c.District,
	}
	if c.HasPhone() {
		p := c.Phone
		s.PhoneNumber = &p
	}
	return s
}

// NormalizePhone strips whitespace so "+998 90 111 11 11" matches "+998901111111".
func NormalizePhone(phone string) string {
	return strings.Join(strings.Fields(phone), "")
}

package model

import "strings"

// Client is the CRM customer a work item or notification refers to
type Client struct {
	ID          ClientID
	ContactName string
	Phone       string
	WhatsApp    string
}

// ContactPhone returns the WhatsApp number if set, otherwise the phone
// number, reduced to digits.
func (c *Client) ContactPhone() string {
	if p := DigitsOnly(c.WhatsApp); p != "" {
		return p
	}
	return DigitsOnly(c.Phone)
}

// DigitsOnly strips everything but ASCII digits from a phone number
func DigitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

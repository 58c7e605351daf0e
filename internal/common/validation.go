package common

import (
	"fmt"
	"slices"
	"strings"

	"jobassist/internal/errors"
	"jobassist/internal/types"

	"github.com/tidwall/gjson"
)

// ValidateOutputFormat validates format against configured supported formats
func ValidateOutputFormat(format string, supportedFormats []string) error {
	if len(supportedFormats) == 0 {
		return nil // No restrictions configured
	}

	if slices.Contains(supportedFormats, format) {
		return nil
	}

	return fmt.Errorf("unsupported output format '%s'. Supported formats: %v",
		format, supportedFormats)
}

// ParseContacts reads a contact list. The document is either an array or an
// object with a "contacts" array; each entry is an object or a bare name.
func ParseContacts(raw string) ([]types.Contact, error) {
	if !gjson.Valid(raw) {
		return nil, errors.NewValidationError(errors.ErrCodeInvalidRequest, "Contacts must be valid JSON", nil)
	}

	doc := gjson.Parse(raw)
	if doc.IsObject() {
		doc = doc.Get("contacts")
	}
	if !doc.IsArray() {
		return nil, errors.NewValidationError(errors.ErrCodeInvalidRequest,
			"Contacts must be an array or an object with a 'contacts' array", nil)
	}

	contacts := []types.Contact{}
	for i, entry := range doc.Array() {
		var c types.Contact
		switch {
		case entry.Type == gjson.String:
			c.Name = strings.TrimSpace(entry.Str)
		case entry.IsObject():
			c = types.Contact{
				Name:    strings.TrimSpace(entry.Get("name").String()),
				Role:    strings.TrimSpace(entry.Get("role").String()),
				Company: strings.TrimSpace(entry.Get("company").String()),
				Note:    strings.TrimSpace(entry.Get("note").String()),
			}
		}
		if c.Name == "" {
			return nil, errors.NewValidationError(errors.ErrCodeInvalidRequest,
				fmt.Sprintf("Contact %d has no name", i+1), nil)
		}
		contacts = append(contacts, c)
	}
	return contacts, nil
}

package content

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Maximum lengths, in characters, after trimming.
const (
	MaxGreetingMessage    = 100
	MaxMainMessage        = 200
	MaxSubMessage         = 300
	MaxAboutTitle         = 100
	MaxAboutDescription   = 500
	MaxSectionTitle       = 100
	MaxSectionDescription = 500
)

func checkLen(field, v string, max int) error {
	if utf8.RuneCountInString(v) > max {
		return Invalid(field, fmt.Sprintf("must be at most %d characters", max))
	}
	return nil
}

func required(field, v string, max int) error {
	if v == "" {
		return Invalid(field, "is required")
	}
	return checkLen(field, v, max)
}

// Normalize trims every field and validates the result. All three are required.
func (in HomeInput) Normalize() (HomeInput, error) {
	out := HomeInput{
		GreetingMessage: strings.TrimSpace(in.GreetingMessage),
		MainMessage:     strings.TrimSpace(in.MainMessage),
		SubMessage:      strings.TrimSpace(in.SubMessage),
	}
	if err := required("greetingMessage", out.GreetingMessage, MaxGreetingMessage); err != nil {
		return out, err
	}
	if err := required("mainMessage", out.MainMessage, MaxMainMessage); err != nil {
		return out, err
	}
	if err := required("subMessage", out.SubMessage, MaxSubMessage); err != nil {
		return out, err
	}
	return out, nil
}

// Normalize trims the supplied fields. A supplied field must not be blank,
// since the stored document requires both.
func (in AboutTextInput) Normalize() (AboutTextInput, error) {
	var out AboutTextInput
	if in.Title != nil {
		t := strings.TrimSpace(*in.Title)
		if err := required("title", t, MaxAboutTitle); err != nil {
			return out, err
		}
		out.Title = &t
	}
	if in.Description != nil {
		d := strings.TrimSpace(*in.Description)
		if err := required("description", d, MaxAboutDescription); err != nil {
			return out, err
		}
		out.Description = &d
	}
	return out, nil
}

// ValidSectionID reports whether id names one of the fixed service sections.
func ValidSectionID(id int) bool {
	return id >= 0 && id < ServiceSectionCount
}

// NormalizeSections validates a whole batch before anything is written.
// An empty batch is valid and writes nothing.
func NormalizeSections(in []ServiceSectionInput) ([]ServiceSectionInput, error) {
	if len(in) == 0 {
		return nil, nil
	}
	if len(in) > ServiceSectionCount {
		return nil, Invalid("sections", fmt.Sprintf("must contain at most %d entries", ServiceSectionCount))
	}
	seen := make(map[int]bool, len(in))
	out := make([]ServiceSectionInput, 0, len(in))
	for i, s := range in {
		if s.ID == nil {
			return nil, Invalid(fmt.Sprintf("sections[%d].id", i), "is required")
		}
		id := *s.ID
		if !ValidSectionID(id) {
			return nil, Invalid(fmt.Sprintf("sections[%d].id", i), fmt.Sprintf("must be between 0 and %d", ServiceSectionCount-1))
		}
		if seen[id] {
			return nil, Invalid(fmt.Sprintf("sections[%d].id", i), "is duplicated")
		}
		seen[id] = true
		n := ServiceSectionInput{ID: &id, Title: strings.TrimSpace(s.Title), Description: strings.TrimSpace(s.Description)}
		if err := checkLen(fmt.Sprintf("sections[%d].title", i), n.Title, MaxSectionTitle); err != nil {
			return nil, err
		}
		if err := checkLen(fmt.Sprintf("sections[%d].description", i), n.Description, MaxSectionDescription); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRedactEmail(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"jane.doe@example.com", "ja***@example.com"},
		{"ab@example.com", "***@example.com"},
		{"a@example.com", "***@example.com"},
		{"not-an-email", "***@***"},
		{"two@at@signs", "***@***"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, RedactEmail(tc.in), tc.in)
	}
}

func TestRedactValueMatchesEmailKeys(t *testing.T) {
	assert.Equal(t, "jo***@corp.io", redactValue("lead_email", "john@corp.io"))
	assert.Equal(t, "jo***@corp.io", redactValue("contact", "john@corp.io"))
	assert.Equal(t, "reached jo***@corp.io today", redactValue("note", "reached john@corp.io today"))
	assert.Equal(t, "plain text", redactValue("note", "plain text"))
}

package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		input string
		want  CommandType
		args  []string
	}{
		{"stock rc", CommandStock, []string{"rc"}},
		{"/DUE Ravi Kumar", CommandDue, []string{"Ravi", "Kumar"}},
		{"pending vendors", CommandPending, []string{"vendors"}},
		{"help", CommandHelp, nil},
		{"   ", CommandUnknown, nil},
		{"eggs 12", CommandUnknown, []string{"12"}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			cmd := ParseCommand(tt.input)
			assert.Equal(t, tt.want, cmd.Type)
			assert.Equal(t, tt.args, cmd.Args)
		})
	}
}

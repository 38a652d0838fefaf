package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanText(t *testing.T) {
	cases := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{
			name:  "trims lines and drops blanks",
			input: "  Senior Golang Engineer  \n\n   \n5 years building backend services\n",
			want:  "Senior Golang Engineer\n5 years building backend services",
		},
		{
			name:    "empty input",
			input:   "",
			wantErr: ErrTextUnreadable,
		},
		{
			name:    "whitespace only",
			input:   "   \n\t\n  ",
			wantErr: ErrTextUnreadable,
		},
		{
			name:    "too short after cleaning",
			input:   "java dev\n",
			wantErr: ErrTextTooShort,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := CleanText(tc.input)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				assert.Empty(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

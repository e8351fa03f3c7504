package flatfile

import (
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeRecord(t *testing.T) {
	tests := []struct {
		name   string
		fields []string
		want   string
	}{
		{name: "plain", fields: []string{"C1", "Intro", "2"}, want: "C1,Intro,2"},
		{name: "empty fields", fields: []string{"C1", "", ""}, want: "C1,,"},
		{name: "comma", fields: []string{"C1", "Intro, part 1"}, want: `C1,"Intro, part 1"`},
		{name: "double quote", fields: []string{`say "hi"`}, want: `"say ""hi"""`},
		{name: "newline", fields: []string{"a\nb", "c"}, want: "\"a\nb\",c"},
		{name: "semicolon list", fields: []string{"1;2;3"}, want: "1;2;3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EncodeRecord(tt.fields))
		})
	}
}

func TestDecodeRecord(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		columns int
		want    []string
		wantErr error
	}{
		{name: "exact", line: "1,Jane,jane,pwd", columns: 4, want: []string{"1", "Jane", "jane", "pwd"}},
		{name: "padded", line: "C1,Intro,2", columns: 5, want: []string{"C1", "Intro", "2", "", ""}},
		{name: "empty line", line: "", columns: 3, want: []string{"", "", ""}},
		{name: "quoted", line: `C1,"Intro, ""the"" course",2`, columns: 3, want: []string{"C1", `Intro, "the" course`, "2"}},
		{name: "too many fields", line: "a,b,c", columns: 2, wantErr: ErrArity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeRecord(tt.line, tt.columns)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "DecodeRecord() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestQuotingRoundTrip(t *testing.T) {
	originals := [][]string{
		{"C1", `Algebra, "Advanced"`, "30"},
		{"x", "multi\nline", `"`},
		{"", ",", `""`},
	}
	for _, fields := range originals {
		got, err := DecodeRecord(EncodeRecord(fields), len(fields))
		require.NoError(t, err)
		assert.Equal(t, fields, got)
	}
}

func Test_readRecords(t *testing.T) {
	in := strings.Join([]string{
		"A1,1,90",
		"",
		`A2,"two` + "\n" + `lines",3`,
		`A3,x"y,2`,
		"A4,3,70",
	}, "\n")

	records, bad, err := readRecords(strings.NewReader(in))
	require.NoError(t, err)
	assert.Len(t, bad, 1)
	assert.Equal(t, [][]string{
		{"A1", "1", "90"},
		{"A2", "two\nlines", "3"},
		{"A4", "3", "70"},
	}, records)
}

func Test_splitList(t *testing.T) {
	assert.Nil(t, splitList(""))
	assert.Nil(t, splitList("  "))
	assert.Equal(t, []string{"1", "2"}, splitList("1;;2; "))
	assert.Equal(t, "1;2", joinList([]string{"1", "2"}))
}

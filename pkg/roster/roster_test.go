package roster

import (
	"bytes"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// workbookBytes builds an in-memory xlsx with the given rows on the first
// sheet.
func workbookBytes(t *testing.T, rows [][]any) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		require.NoError(t, f.SetSheetRow("Sheet1", fmt.Sprintf("A%d", i+1), &row))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestLoadParsesHeadersAndRows(t *testing.T) {
	data := workbookBytes(t, [][]any{
		{" Name ", "Student ID", "Email"},
		{"John Doe", "301112345", "john.doe@example.com"},
		{"Mary Smith", "301254876", "mary.smith@example.com"},
	})

	ro, err := Load(bytes.NewReader(data))
	require.NoError(t, err)

	assert.Equal(t, []string{"Name", "Student ID", "Email"}, ro.Headers)
	require.Len(t, ro.Rows, 2)
	assert.Equal(t, "John Doe", ro.Rows[0][0])
}

func TestLoadRejectsNonWorkbook(t *testing.T) {
	_, err := Load(bytes.NewReader([]byte("definitely not a zip")))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open workbook")
}

func TestLoadEmptySheetFails(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	_, err = Load(bytes.NewReader(buf.Bytes()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no header row")
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.xlsx"))
	require.Error(t, err)
}

func TestRecipientsSkipEmptyRowsAndPadShortOnes(t *testing.T) {
	data := workbookBytes(t, [][]any{
		{"name", "id", "email"},
		{"John Doe", "301112345", "john.doe@example.com"},
		{"", "", ""},
		{"Mary Smith"},
	})

	ro, err := Load(bytes.NewReader(data))
	require.NoError(t, err)

	recipients := ro.Recipients()
	require.Len(t, recipients, 2)

	assert.Equal(t, "John Doe", recipients[0]["name"])
	assert.Equal(t, "301112345", recipients[0]["id"])

	// A short row still yields every header key.
	assert.Equal(t, "Mary Smith", recipients[1]["name"])
	assert.Equal(t, "", recipients[1]["id"])
	assert.Equal(t, "", recipients[1]["email"])
}

func TestRecipientsDropBlankHeaders(t *testing.T) {
	ro := &Roster{
		Headers: []string{"name", "", "email"},
		Rows:    [][]string{{"John Doe", "stray", "john@example.com"}},
	}

	recipients := ro.Recipients()
	require.Len(t, recipients, 1)
	assert.Len(t, recipients[0], 2)
	assert.NotContains(t, recipients[0], "")
}

func TestDetectColumns(t *testing.T) {
	cases := []struct {
		name    string
		headers []string
		idIdx   int
		mailIdx int
	}{
		{"english", []string{"Name", "Student ID", "E-mail"}, 1, 2},
		{"arabic", []string{"الاسم", "رقم الهوية", "البريد الإلكتروني"}, 1, 2},
		{"uppercase", []string{"NUMBER", "MAIL"}, 0, 1},
		{"first match wins", []string{"id", "national id", "email", "backup mail"}, 0, 2},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			idIdx, mailIdx, err := DetectColumns(tc.headers)
			require.NoError(t, err)
			assert.Equal(t, tc.idIdx, idIdx)
			assert.Equal(t, tc.mailIdx, mailIdx)
		})
	}
}

func TestDetectColumnsMisses(t *testing.T) {
	_, _, err := DetectColumns([]string{"Name", "Email"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no identifier column")
	assert.Contains(t, err.Error(), "Name, Email")

	_, _, err = DetectColumns([]string{"Name", "Student ID"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no email column")
}

func TestNormalizeIdentifier(t *testing.T) {
	cases := []struct{ in, want string }{
		{"301112345", "301112345"},
		{"301-112-345", "301112345"},
		{" 301112345 ", "301112345"},
		{"ID: 301112345", "301112345"},
		{"abc", ""},
		{"", ""},
		// Only ASCII digits count; Arabic-Indic digits are stripped like
		// any other rune.
		{"٣٠١١١٢٣٤٥", ""},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, NormalizeIdentifier(tc.in), "input %q", tc.in)
	}
}

func TestWriteDemoRosterRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "students.xlsx")
	require.NoError(t, WriteDemoRoster(path))

	ro, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "id", "email"}, ro.Headers)

	idIdx, mailIdx, err := DetectColumns(ro.Headers)
	require.NoError(t, err)
	assert.Equal(t, 1, idIdx)
	assert.Equal(t, 2, mailIdx)

	recipients := ro.Recipients()
	require.Len(t, recipients, 3)
	assert.Equal(t, "John Doe", recipients[0]["name"])
	assert.Equal(t, "301112345", recipients[0]["id"])
}

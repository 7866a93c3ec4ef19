package deck_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/flashdeck/internal/deck"
	"github.com/xuri/excelize/v2"
)

func TestReadSpreadsheet(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	rows := [][]string{
		{"Question", "Answer"},
		{"dog", " chien "},
		{"", "orphan"},
		{"cat", "chat"},
		{"dog", "toutou"},
		{"bird"},
	}
	for i, row := range rows {
		for j, v := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue("Sheet1", cell, v))
		}
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	cards, err := deck.ReadSpreadsheet(buf, deck.SheetOptions{SkipHeader: true})
	require.NoError(t, err)

	assert.Equal(t, []deck.Card{
		{Question: "dog", Answer: "toutou"},
		{Question: "cat", Answer: "chat"},
		{Question: "bird", Answer: ""},
	}, cards)
}

func TestReadSpreadsheet_UnknownSheet(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	_, err = deck.ReadSpreadsheet(buf, deck.SheetOptions{Sheet: "Missing"})
	assert.Error(t, err)
}

func TestReadCSV(t *testing.T) {
	in := "question,answer\ndog,chien\n\"a, b\",c - d\n"

	cards, err := deck.ReadCSV(strings.NewReader(in), true)
	require.NoError(t, err)
	assert.Equal(t, []deck.Card{
		{Question: "dog", Answer: "chien"},
		{Question: "a, b", Answer: "c - d"},
	}, cards)
}

func TestReadCardsFile_Text(t *testing.T) {
	path := filepath.Join(t.TempDir(), "animals.txt")
	require.NoError(t, os.WriteFile(path, []byte("dog - chien\ncat - chat"), 0o644))

	cards, err := deck.ReadCardsFile(path, deck.SheetOptions{})
	require.NoError(t, err)
	assert.Equal(t, deck.Parse("dog - chien\ncat - chat"), cards)
}

func TestReadCardsFile_Missing(t *testing.T) {
	_, err := deck.ReadCardsFile(filepath.Join(t.TempDir(), "nope.txt"), deck.SheetOptions{})
	assert.Error(t, err)
}

func TestReadCards_PicksFormatByName(t *testing.T) {
	cards, err := deck.ReadCards(strings.NewReader("dog,chien"), "upload.CSV", deck.SheetOptions{})
	require.NoError(t, err)
	assert.Equal(t, []deck.Card{{Question: "dog", Answer: "chien"}}, cards)

	cards, err = deck.ReadCards(strings.NewReader("dog,chien"), "notes", deck.SheetOptions{})
	require.NoError(t, err)
	assert.Empty(t, cards, "plain text needs a dash")
}

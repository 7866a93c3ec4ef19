package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/flashdeck/internal/deck"
	"github.com/vytor/flashdeck/internal/quiz"
)

func session(t *testing.T, text string, mode quiz.Mode) *quiz.Session {
	t.Helper()
	d, err := deck.FromText("animals", text)
	require.NoError(t, err)
	s, err := quiz.Start(d, mode, quiz.WithSeed(1))
	require.NoError(t, err)
	return s
}

func TestRunQuiz_Typed(t *testing.T) {
	s := session(t, "dog - chien", quiz.ModeTyped)
	var out bytes.Buffer

	err := runQuiz(s, strings.NewReader("chat\n CHIEN \n"), &out)
	require.NoError(t, err)

	assert.Equal(t, quiz.Complete, s.State())
	assert.Contains(t, out.String(), `incorrect, the answer is "chien"`)
	assert.Contains(t, out.String(), "correct\n")
	assert.Contains(t, out.String(), "done, score 1/1")
}

func TestRunQuiz_Reveal(t *testing.T) {
	s := session(t, "dog - chien", quiz.ModeReveal)
	var out bytes.Buffer

	err := runQuiz(s, strings.NewReader("\nn\n\ny\n"), &out)
	require.NoError(t, err)

	assert.Equal(t, quiz.Complete, s.State())
	assert.Equal(t, 2, strings.Count(out.String(), "answer: chien"))
	assert.Contains(t, out.String(), "done, score 1/1")
}

func TestRunQuiz_Quit(t *testing.T) {
	s := session(t, "dog - chien\ncat - chat", quiz.ModeTyped)
	var out bytes.Buffer

	err := runQuiz(s, strings.NewReader(":q\n"), &out)
	require.NoError(t, err)

	assert.NotEqual(t, quiz.Complete, s.State())
	assert.Contains(t, out.String(), "stopped with score 0/2")
}

func TestRunQuiz_Restart(t *testing.T) {
	s := session(t, "dog - chien\ncat - chat", quiz.ModeReveal)
	var out bytes.Buffer

	err := runQuiz(s, strings.NewReader("\ny\n:r\n"), &out)
	require.NoError(t, err)

	assert.Contains(t, out.String(), "restarted")
	assert.Equal(t, 0, s.Score())
	assert.Contains(t, out.String(), "[0/2]")
}

func TestRunQuiz_EndOfInput(t *testing.T) {
	s := session(t, "dog - chien", quiz.ModeTyped)

	err := runQuiz(s, strings.NewReader(""), &bytes.Buffer{})
	assert.NoError(t, err)
	assert.Equal(t, 0, s.Score())
}

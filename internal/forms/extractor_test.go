package forms

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractFormsFindsCSRFForm(t *testing.T) {
	html := `<html><body>
		<form action="/login" method="post">
			<input type="hidden" name="csrf_token" value="abc">
			<input type="text" name="username">
			<input type="password" name="password">
		</form>
	</body></html>`

	e := New()
	forms := e.ExtractForms(html)
	require.Len(t, forms, 1)
	assert.True(t, forms[0].HasCSRFToken)
	assert.True(t, forms[0].HasSensitiveField)
	assert.Equal(t, "POST", forms[0].Method)
	assert.Contains(t, forms[0].Fields, "password")
}

func TestExtractFormsSkipsFormsWithoutAction(t *testing.T) {
	html := `<form><input name="q"></form>`
	e := New()
	assert.Empty(t, e.ExtractForms(html))
}

func TestExtractFormsSkipsBenignForms(t *testing.T) {
	html := `<form action="/search" method="get"><input name="q" type="text"></form>`
	e := New()
	assert.Empty(t, e.ExtractForms(html))
}

func TestExtractFormsDetectsSensitiveFieldByType(t *testing.T) {
	html := `<form action="/signup" method="post"><input type="email" name="contact"></form>`
	e := New()
	forms := e.ExtractForms(html)
	require.Len(t, forms, 1)
	assert.True(t, forms[0].HasSensitiveField)
}

func TestExtractFormsIDIsStableForSameActionAndMethod(t *testing.T) {
	html1 := `<form action="/login" method="post"><input type="password" name="password"></form>`
	html2 := `<form action="/login" method="post"><input type="hidden" name="extra"><input type="password" name="password"></form>`
	e := New()
	f1 := e.ExtractForms(html1)
	f2 := e.ExtractForms(html2)
	require.Len(t, f1, 1)
	require.Len(t, f2, 1)
	assert.Equal(t, f1[0].ID, f2[0].ID)
}

package i18n

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLocales = fstest.MapFS{
	"locales/en-us.json": {Data: []byte(`{
  "hello": "Hello {{.Name}}",
  "files": {"one": "{{.Count}} file", "other": "{{.Count}} files"}
}`)},
	"locales/ko-kr.json": {Data: []byte(`{"hello": "안녕하세요 {{.Name}}"}`)},
}

func TestT(t *testing.T) {
	require.NoError(t, Init(testLocales, "en-US"))
	assert.Equal(t, "Hello Dev", T("hello", map[string]interface{}{"Name": "Dev"}))
	assert.Equal(t, "2 files", T("files", map[string]interface{}{"Count": 2}, 2))
	assert.Equal(t, "missing.id", T("missing.id", nil))

	SetLocale("ko-KR")
	assert.Equal(t, "안녕하세요 Dev", T("hello", map[string]interface{}{"Name": "Dev"}))
	// falls back to English when the Korean catalog lacks the message
	assert.Equal(t, "1 file", T("files", map[string]interface{}{"Count": 1}, 1))
}

func TestResolve_ExplicitLocale(t *testing.T) {
	assert.Equal(t, "ko-KR", Resolve("ko-KR"))
	assert.NotEmpty(t, Resolve("auto"))
}

package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextOrList_MarshalPreservesShape(t *testing.T) {
	list := ListValue([]string{"a", "b"})
	data, err := json.Marshal(list)
	require.NoError(t, err)
	assert.JSONEq(t, `["a","b"]`, string(data))

	text := TextValue("hola")
	data, err = json.Marshal(text)
	require.NoError(t, err)
	assert.JSONEq(t, `"hola"`, string(data))
}

func TestTextOrList_Unmarshal(t *testing.T) {
	var v TextOrList
	require.NoError(t, json.Unmarshal([]byte(`"texto"`), &v))
	assert.False(t, v.IsList())
	assert.Equal(t, "texto", v.Text)

	require.NoError(t, json.Unmarshal([]byte(`["uno","dos"]`), &v))
	assert.True(t, v.IsList())
	assert.Equal(t, []string{"uno", "dos"}, v.Items)

	assert.Error(t, json.Unmarshal([]byte(`42`), &v))
}

func TestTextOrList_IsEmpty(t *testing.T) {
	assert.True(t, TextValue("").IsEmpty())
	assert.True(t, TextValue("   ").IsEmpty())
	assert.False(t, TextValue("x").IsEmpty())
	assert.True(t, ListValue(nil).IsEmpty())
	assert.True(t, ListValue([]string{}).IsEmpty())
	assert.False(t, ListValue([]string{"x"}).IsEmpty())
}

func TestTextOrList_Flatten(t *testing.T) {
	assert.Equal(t, "a b", ListValue([]string{"a", "b"}).Flatten())
	assert.Equal(t, "texto", TextValue("texto").Flatten())
}

func TestDomainError(t *testing.T) {
	inner := ExtractionError("failed to open PDF", nil)
	assert.Equal(t, "[extraction] failed to open PDF", inner.Error())
	assert.True(t, IsErrorType(inner, ErrorTypeExtraction))
	assert.False(t, IsErrorType(inner, ErrorTypeStorage))

	wrapped := StorageError("S3 download failed", inner)
	assert.Contains(t, wrapped.Error(), "[storage]")
	assert.Contains(t, wrapped.Error(), "failed to open PDF")
	assert.Equal(t, inner, wrapped.Unwrap())
}

func TestJobOutputs_WireFormat(t *testing.T) {
	out := JobOutputs{
		SummaryURL:   "s",
		DocumentURL:  "d",
		FlashcardURL: "a",
		TotalSlides:  5,
	}
	data, err := json.Marshal(out)
	require.NoError(t, err)
	assert.JSONEq(t, `{"summary_json_url":"s","docx_url":"d","anki_url":"a","total_slides":5}`, string(data))
}

package matching

import (
	"bytes"
	"mime/multipart"
	"net/textproto"
	"testing"

	"github.com/getmockd/httpmock/pkg/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type formFile struct {
	field, filename, contentType, content string
}

func multipartBody(t *testing.T, fields map[string]string, files ...formFile) (string, []byte) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for _, f := range files {
		h := textproto.MIMEHeader{}
		h.Set("Content-Disposition", `form-data; name="`+f.field+`"; filename="`+f.filename+`"`)
		ct := f.contentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write([]byte(f.content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return w.FormDataContentType(), buf.Bytes()
}

func TestMatchMultipart(t *testing.T) {
	contentType, body := multipartBody(t,
		map[string]string{"field": "value"},
		formFile{field: "name", filename: "file_name", content: "File content"},
	)
	r := &mock.Request{Header: map[string][]string{"Content-Type": {contentType}}, Body: body}

	tests := []struct {
		name  string
		data  map[string]string
		files map[string]mock.File
		want  bool
	}{
		{
			name:  "fields and files",
			data:  map[string]string{"field": "value"},
			files: map[string]mock.File{"name": {Filename: "file_name", Content: []byte("File content")}},
			want:  true,
		},
		{
			name:  "content type when given",
			data:  map[string]string{"field": "value"},
			files: map[string]mock.File{"name": {Filename: "file_name", Content: []byte("File content"), ContentType: "application/octet-stream"}},
			want:  true,
		},
		{
			name:  "wrong content type",
			data:  map[string]string{"field": "value"},
			files: map[string]mock.File{"name": {Filename: "file_name", Content: []byte("File content"), ContentType: "text/plain"}},
			want:  false,
		},
		{
			name:  "unexpected form field",
			files: map[string]mock.File{"name": {Filename: "file_name", Content: []byte("File content")}},
			want:  false,
		},
		{
			name:  "wrong file name",
			data:  map[string]string{"field": "value"},
			files: map[string]mock.File{"name": {Filename: "file_name2", Content: []byte("File content")}},
			want:  false,
		},
		{
			name:  "wrong field name",
			data:  map[string]string{"field": "value"},
			files: map[string]mock.File{"name2": {Filename: "file_name", Content: []byte("File content")}},
			want:  false,
		},
		{
			name:  "wrong content",
			data:  map[string]string{"field": "value"},
			files: map[string]mock.File{"name": {Filename: "file_name", Content: []byte("File content2")}},
			want:  false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchMultipart(tt.data, tt.files, r.Header, r.Body))
		})
	}
}

func TestMatchMultipart_NotMultipart(t *testing.T) {
	header := map[string][]string{"Content-Type": {"application/json"}}
	assert.False(t, MatchMultipart(nil, map[string]mock.File{"a": {Filename: "a"}}, header, []byte(`{}`)))
	assert.False(t, MatchMultipart(nil, map[string]mock.File{"a": {Filename: "a"}}, nil, []byte(`{}`)))
}

func TestParseMultipart(t *testing.T) {
	contentType, body := multipartBody(t, nil,
		formFile{field: "doc", filename: "a.txt", contentType: "text/plain", content: "hello"},
	)
	form, err := ParseMultipart(map[string][]string{"Content-Type": {contentType}}, body)
	require.NoError(t, err)
	assert.Empty(t, form.Fields)
	assert.Equal(t, mock.File{Filename: "a.txt", Content: []byte("hello"), ContentType: "text/plain"}, form.Files["doc"])
}

func TestMatchContent(t *testing.T) {
	assert.True(t, MatchContent([]byte("a"), []byte("a")))
	assert.False(t, MatchContent([]byte("a"), []byte("A")))
	assert.True(t, MatchContent([]byte{}, nil))
}

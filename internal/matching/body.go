package matching

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"reflect"
	"strings"

	"github.com/getmockd/httpmock/pkg/mock"
)

// MatchContent checks the body byte for byte.
func MatchContent(expected, body []byte) bool {
	return bytes.Equal(expected, body)
}

// MatchJSON checks that body decodes to a JSON value structurally equal to
// expected. mock.Any matches any value at its position. A body that is not
// valid JSON never matches.
func MatchJSON(expected any, body []byte) bool {
	var actual any
	if err := json.Unmarshal(body, &actual); err != nil {
		return false
	}
	normalized, err := normalizeJSON(expected)
	if err != nil {
		return false
	}
	return jsonEqual(normalized, actual)
}

// normalizeJSON converts expected into the shape encoding/json decodes to
// (map[string]any, []any, float64, ...) while keeping mock.Any in place.
func normalizeJSON(v any) (any, error) {
	if v == nil || mock.IsAny(v) {
		return v, nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			break
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			n, err := normalizeJSON(iter.Value().Interface())
			if err != nil {
				return nil, err
			}
			out[iter.Key().String()] = n
		}
		return out, nil
	case reflect.Slice, reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			break
		}
		out := make([]any, rv.Len())
		for i := range rv.Len() {
			n, err := normalizeJSON(rv.Index(i).Interface())
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func jsonEqual(expected, actual any) bool {
	if mock.IsAny(expected) {
		return true
	}
	switch exp := expected.(type) {
	case map[string]any:
		act, ok := actual.(map[string]any)
		if !ok || len(act) != len(exp) {
			return false
		}
		for k, ev := range exp {
			av, ok := act[k]
			if !ok || !jsonEqual(ev, av) {
				return false
			}
		}
		return true
	case []any:
		act, ok := actual.([]any)
		if !ok || len(act) != len(exp) {
			return false
		}
		for i := range exp {
			if !jsonEqual(exp[i], act[i]) {
				return false
			}
		}
		return true
	default:
		return reflect.DeepEqual(expected, actual)
	}
}

// MultipartForm is a decoded multipart/form-data body.
type MultipartForm struct {
	Fields map[string]string
	Files  map[string]mock.File
}

var errNotMultipart = errors.New("request is not multipart")

// ParseMultipart decodes body according to the multipart boundary declared
// in the Content-Type header.
func ParseMultipart(header http.Header, body []byte) (*MultipartForm, error) {
	mediaType, params, err := mime.ParseMediaType(header.Get("Content-Type"))
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(mediaType, "multipart/") || params["boundary"] == "" {
		return nil, errNotMultipart
	}

	form := &MultipartForm{
		Fields: map[string]string{},
		Files:  map[string]mock.File{},
	}
	reader := multipart.NewReader(bytes.NewReader(body), params["boundary"])
	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			return form, nil
		}
		if err != nil {
			return nil, err
		}
		content, err := io.ReadAll(part)
		if err != nil {
			return nil, err
		}
		if part.FileName() != "" {
			form.Files[part.FormName()] = mock.File{
				Filename:    part.FileName(),
				Content:     content,
				ContentType: part.Header.Get("Content-Type"),
			}
		} else {
			form.Fields[part.FormName()] = string(content)
		}
	}
}

// MatchMultipart checks the decoded form fields against data and the file
// parts against files. A file content type is only compared when the
// expected one is set.
func MatchMultipart(data map[string]string, files map[string]mock.File, header http.Header, body []byte) bool {
	form, err := ParseMultipart(header, body)
	if err != nil {
		return false
	}
	if len(form.Fields) != len(data) {
		return false
	}
	for k, v := range data {
		if actual, ok := form.Fields[k]; !ok || actual != v {
			return false
		}
	}
	if len(form.Files) != len(files) {
		return false
	}
	for name, exp := range files {
		act, ok := form.Files[name]
		if !ok || act.Filename != exp.Filename || !bytes.Equal(act.Content, exp.Content) {
			return false
		}
		if exp.ContentType != "" && act.ContentType != exp.ContentType {
			return false
		}
	}
	return true
}

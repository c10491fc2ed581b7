package httphandler

import (
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/ericfisherdev/reviewhub/internal/application"
	"github.com/ericfisherdev/reviewhub/internal/domain/model"
)

const (
	maxBodyBytes    = 1 << 20
	extraDataPrefix = "extra_data."
	fieldRequired   = "This field is required."
)

// requestFields holds the fields of a request body, one value per name.
// Form bodies and JSON objects are both accepted. Nested JSON extra_data
// objects are flattened to "extra_data.<key>" names.
type requestFields map[string]string

// parseFields reads the request body as a form or JSON object.
func parseFields(w http.ResponseWriter, r *http.Request) (requestFields, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/json":
		return parseJSONFields(r)
	case "multipart/form-data":
		if err := r.ParseMultipartForm(maxBodyBytes); err != nil {
			return nil, fmt.Errorf("parse multipart form: %w", err)
		}
	default:
		if err := r.ParseForm(); err != nil {
			return nil, fmt.Errorf("parse form: %w", err)
		}
	}

	fields := requestFields{}
	for name, values := range r.PostForm {
		if len(values) > 0 {
			fields[name] = values[0]
		}
	}
	return fields, nil
}

func parseJSONFields(r *http.Request) (requestFields, error) {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode JSON body: %w", err)
	}

	fields := requestFields{}
	for name, value := range body {
		if nested, ok := value.(map[string]any); ok && name == "extra_data" {
			for key, v := range nested {
				fields[extraDataPrefix+key] = jsonFieldString(v)
			}
			continue
		}
		fields[name] = jsonFieldString(value)
	}
	return fields, nil
}

func jsonFieldString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		data, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(data)
	}
}

// optional returns a pointer to the field value, or nil when absent.
func (f requestFields) optional(name string) *string {
	v, ok := f[name]
	if !ok {
		return nil
	}
	return &v
}

// extraData collects the extra_data.<key> fields. Private keys starting
// with "__" cannot be set through the API and are skipped.
func (f requestFields) extraData() map[string]string {
	out := map[string]string{}
	for name, value := range f {
		key, ok := strings.CutPrefix(name, extraDataPrefix)
		if !ok || key == "" || strings.HasPrefix(key, "__") {
			continue
		}
		out[key] = value
	}
	return out
}

// commentFields validates the mutable comment fields shared by create and
// update, recording problems on formErr.
func (f requestFields) commentFields(formErr *application.FormError) application.CommentFields {
	fields := application.CommentFields{
		Text:      f.optional("text"),
		ExtraData: f.extraData(),
	}

	if raw := f.optional("text_type"); raw != nil {
		textType, ok := parseStoredTextType(*raw)
		if !ok {
			formErr.Add("text_type", fmt.Sprintf("%q is not a valid text type", *raw))
		} else {
			fields.TextType = &textType
		}
	}

	return fields
}

// parseStoredTextType accepts the text types a comment can be saved in.
// An empty value means plain text.
func parseStoredTextType(s string) (model.TextType, bool) {
	switch model.TextType(s) {
	case "", model.TextTypePlain:
		return model.TextTypePlain, true
	case model.TextTypeMarkdown:
		return model.TextTypeMarkdown, true
	}
	return "", false
}

// parseForceTextType accepts the text types a response can be rendered in.
// An empty value means no conversion.
func parseForceTextType(s string) (model.TextType, bool) {
	switch model.TextType(s) {
	case "", model.TextTypePlain, model.TextTypeMarkdown, model.TextTypeHTML:
		return model.TextType(s), true
	}
	return "", false
}

// forceTextType reads force_text_type from fields, falling back to the
// query string, and records an invalid value on formErr.
func forceTextType(r *http.Request, fields requestFields, formErr *application.FormError) model.TextType {
	raw, ok := fields["force_text_type"]
	if !ok {
		raw = r.URL.Query().Get("force_text_type")
	}
	textType, valid := parseForceTextType(raw)
	if !valid {
		formErr.Add("force_text_type", fmt.Sprintf("%q is not a valid text type", raw))
	}
	return textType
}

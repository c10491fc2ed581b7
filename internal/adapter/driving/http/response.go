package httphandler

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/ericfisherdev/reviewhub/internal/application"
	"github.com/ericfisherdev/reviewhub/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"stat":"fail","err":{"code":1,"msg":"An internal error occurred"}}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeOK writes a successful response holding payload under key.
func writeOK(w http.ResponseWriter, status int, key string, payload any) {
	writeJSON(w, status, map[string]any{
		"stat": "ok",
		key:    payload,
	})
}

// writeAPIError writes a failure response for apiErr. fields, when set,
// carries per-field form errors.
func writeAPIError(w http.ResponseWriter, apiErr apiError, fields map[string][]string) {
	resp := errorResponse{
		Stat: "fail",
		Err:  errorBody{Code: apiErr.Code, Msg: apiErr.Msg},
	}
	if len(fields) > 0 {
		resp.Fields = fields
	}
	if apiErr.Status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", `Basic realm="Web API"`)
	}
	writeJSON(w, apiErr.Status, resp)
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Stat   string              `json:"stat"`
	Err    errorBody           `json:"err"`
	Fields map[string][]string `json:"fields,omitempty"`
}

type errorBody struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

// LinkResponse is a hyperlink to a related resource.
type LinkResponse struct {
	Method string `json:"method"`
	Href   string `json:"href"`
}

// ScreenshotCommentResponse is the JSON representation of a reply to a
// screenshot comment.
type ScreenshotCommentResponse struct {
	ID          int64                   `json:"id"`
	Text        string                  `json:"text"`
	TextType    string                  `json:"text_type"`
	RichText    bool                    `json:"rich_text"`
	Timestamp   string                  `json:"timestamp"`
	Public      bool                    `json:"public"`
	IssueOpened bool                    `json:"issue_opened"`
	IssueStatus string                  `json:"issue_status"`
	X           int                     `json:"x"`
	Y           int                     `json:"y"`
	W           int                     `json:"w"`
	H           int                     `json:"h"`
	ExtraData   map[string]any          `json:"extra_data"`
	Links       map[string]LinkResponse `json:"links"`
}

// BugResponse is the JSON representation of a bug looked up in a bug tracker.
type BugResponse struct {
	ID          string `json:"id"`
	Summary     string `json:"summary"`
	Description string `json:"description"`
	Status      string `json:"status"`
	URL         string `json:"url"`
}

// HealthResponse is the JSON representation of the health check endpoint.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// toScreenshotCommentResponse converts a reply comment to its JSON
// representation, rendering the text as forceType when one is given.
// base is the absolute URL of the API root for the request's local site.
func toScreenshotCommentResponse(
	c model.ScreenshotComment,
	reply model.Review,
	path application.ReplyPath,
	base string,
	forceType model.TextType,
) ScreenshotCommentResponse {
	text, textType := renderText(c.Text, c.TextType(), forceType)

	self := base + replyCommentsURL(path) + itoa(c.ID) + "/"
	links := map[string]LinkResponse{
		"self": {Method: http.MethodGet, Href: self},
		"screenshot": {
			Method: http.MethodGet,
			Href:   base + "/api/review-requests/" + itoa(path.ReviewRequestID) + "/screenshots/" + itoa(c.ScreenshotID) + "/",
		},
		"user": {Method: http.MethodGet, Href: base + "/api/users/" + itoa(reply.UserID) + "/"},
	}
	if !reply.Public {
		links["update"] = LinkResponse{Method: http.MethodPut, Href: self}
		links["delete"] = LinkResponse{Method: http.MethodDelete, Href: self}
	}
	if c.ReplyToID != nil {
		links["reply_to"] = LinkResponse{
			Method: http.MethodGet,
			Href: base + "/api/review-requests/" + itoa(path.ReviewRequestID) +
				"/reviews/" + itoa(path.ReviewID) + "/screenshot-comments/" + itoa(*c.ReplyToID) + "/",
		}
	}

	return ScreenshotCommentResponse{
		ID:          c.ID,
		Text:        text,
		TextType:    string(textType),
		RichText:    c.RichText,
		Timestamp:   c.Timestamp.UTC().Format(time.RFC3339),
		Public:      reply.Public,
		IssueOpened: false,
		IssueStatus: string(c.IssueStatus),
		X:           c.X,
		Y:           c.Y,
		W:           c.W,
		H:           c.H,
		ExtraData:   publicExtraData(c.ExtraData),
		Links:       links,
	}
}

// toBugResponse converts a bug lookup to its JSON representation.
func toBugResponse(b application.BugLookup) BugResponse {
	return BugResponse{
		ID:          b.ID,
		Summary:     b.Summary,
		Description: b.Description,
		Status:      b.Status,
		URL:         b.URL,
	}
}

// publicExtraData returns the extra data without private keys, which start
// with "__".
func publicExtraData(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		if strings.HasPrefix(k, "__") {
			continue
		}
		out[k] = v
	}
	return out
}

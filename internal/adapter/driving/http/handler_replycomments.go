package httphandler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/ericfisherdev/reviewhub/internal/application"
)

const (
	defaultMaxResults = 25
	maxMaxResults     = 200

	replyCommentKey  = "review_reply_screenshot_comment"
	replyCommentsKey = "review_reply_screenshot_comments"
)

// ListReplyComments returns a page of the screenshot comments on a reply.
func (h *Handler) ListReplyComments(w http.ResponseWriter, r *http.Request) {
	path, ok := replyPathFromRequest(r)
	if !ok {
		writeAPIError(w, errDoesNotExist, nil)
		return
	}

	query := r.URL.Query()
	user := UserFromContext(r.Context())

	if isTruthy(query.Get("counts-only")) {
		count, err := h.comments.Count(r.Context(), user, path)
		if err != nil {
			h.handleServiceError(w, r, err, "failed to count reply comments")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"stat": "ok", "count": count})
		return
	}

	formErr := &application.FormError{}
	forceType := forceTextType(r, nil, formErr)
	if formErr.HasErrors() {
		writeAPIError(w, errInvalidFormData, formErr.Fields)
		return
	}

	start := nonNegativeInt(query.Get("start"), 0)
	maxResults := nonNegativeInt(query.Get("max-results"), defaultMaxResults)
	if maxResults == 0 {
		maxResults = defaultMaxResults
	}
	maxResults = min(maxResults, maxMaxResults)

	page, err := h.comments.List(r.Context(), user, path, start, maxResults)
	if err != nil {
		h.handleServiceError(w, r, err, "failed to list reply comments")
		return
	}

	base := h.apiBase(path.LocalSite)
	items := make([]ScreenshotCommentResponse, 0, len(page.Comments))
	for _, c := range page.Comments {
		items = append(items, toScreenshotCommentResponse(c, page.Reply, path, base, forceType))
	}

	listURL := base + replyCommentsURL(path)
	links := map[string]LinkResponse{
		"self": {Method: http.MethodGet, Href: pageURL(listURL, start, maxResults)},
	}
	if start+maxResults < page.Total {
		links["next"] = LinkResponse{Method: http.MethodGet, Href: pageURL(listURL, start+maxResults, maxResults)}
	}
	if start > 0 {
		links["prev"] = LinkResponse{Method: http.MethodGet, Href: pageURL(listURL, max(start-maxResults, 0), maxResults)}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"stat":           "ok",
		replyCommentsKey: items,
		"total_results":  page.Total,
		"links":          links,
	})
}

// GetReplyComment returns a single screenshot comment on a reply.
func (h *Handler) GetReplyComment(w http.ResponseWriter, r *http.Request) {
	path, commentID, ok := commentPathFromRequest(r)
	if !ok {
		writeAPIError(w, errDoesNotExist, nil)
		return
	}

	formErr := &application.FormError{}
	forceType := forceTextType(r, nil, formErr)
	if formErr.HasErrors() {
		writeAPIError(w, errInvalidFormData, formErr.Fields)
		return
	}

	comment, err := h.comments.Get(r.Context(), UserFromContext(r.Context()), path, commentID)
	if err != nil {
		h.handleServiceError(w, r, err, "failed to get reply comment")
		return
	}

	writeOK(w, http.StatusOK, replyCommentKey,
		toScreenshotCommentResponse(comment.ScreenshotComment, comment.Reply, path, h.apiBase(path.LocalSite), forceType))
}

// CreateReplyComment replies to a screenshot comment of the base review. If
// the reply already answers that comment, the existing comment is updated
// and 303 See Other points at it instead of 201.
func (h *Handler) CreateReplyComment(w http.ResponseWriter, r *http.Request) {
	path, ok := replyPathFromRequest(r)
	if !ok {
		writeAPIError(w, errDoesNotExist, nil)
		return
	}

	user := UserFromContext(r.Context())
	if user == nil {
		writeAPIError(w, errNotLoggedIn, nil)
		return
	}

	fields, err := parseFields(w, r)
	if err != nil {
		writeAPIError(w, errInvalidFormData, map[string][]string{"__all__": {err.Error()}})
		return
	}

	formErr := &application.FormError{}

	var replyToID int64
	if raw, present := fields["reply_to_id"]; !present || raw == "" {
		formErr.Add("reply_to_id", fieldRequired)
	} else if replyToID, err = strconv.ParseInt(raw, 10, 64); err != nil {
		formErr.Add("reply_to_id", fmt.Sprintf("%q is not an integer", raw))
	}
	if _, present := fields["text"]; !present {
		formErr.Add("text", fieldRequired)
	}

	commentFields := fields.commentFields(formErr)
	forceType := forceTextType(r, fields, formErr)
	if formErr.HasErrors() {
		writeAPIError(w, errInvalidFormData, formErr.Fields)
		return
	}

	comment, created, err := h.comments.Create(r.Context(), user, path, replyToID, commentFields)
	if err != nil {
		h.handleServiceError(w, r, err, "failed to create reply comment")
		return
	}

	resp := toScreenshotCommentResponse(comment.ScreenshotComment, comment.Reply, path, h.apiBase(path.LocalSite), forceType)
	w.Header().Set("Location", resp.Links["self"].Href)

	status := http.StatusSeeOther
	if created {
		status = http.StatusCreated
	}
	writeOK(w, status, replyCommentKey, resp)
}

// UpdateReplyComment changes the text, text type, or extra data of a
// comment on a draft reply.
func (h *Handler) UpdateReplyComment(w http.ResponseWriter, r *http.Request) {
	path, commentID, ok := commentPathFromRequest(r)
	if !ok {
		writeAPIError(w, errDoesNotExist, nil)
		return
	}

	user := UserFromContext(r.Context())
	if user == nil {
		writeAPIError(w, errNotLoggedIn, nil)
		return
	}

	fields, err := parseFields(w, r)
	if err != nil {
		writeAPIError(w, errInvalidFormData, map[string][]string{"__all__": {err.Error()}})
		return
	}

	formErr := &application.FormError{}
	commentFields := fields.commentFields(formErr)
	forceType := forceTextType(r, fields, formErr)
	if formErr.HasErrors() {
		writeAPIError(w, errInvalidFormData, formErr.Fields)
		return
	}

	comment, err := h.comments.Update(r.Context(), user, path, commentID, commentFields)
	if err != nil {
		h.handleServiceError(w, r, err, "failed to update reply comment")
		return
	}

	writeOK(w, http.StatusOK, replyCommentKey,
		toScreenshotCommentResponse(comment.ScreenshotComment, comment.Reply, path, h.apiBase(path.LocalSite), forceType))
}

// DeleteReplyComment removes a comment from a draft reply.
func (h *Handler) DeleteReplyComment(w http.ResponseWriter, r *http.Request) {
	path, commentID, ok := commentPathFromRequest(r)
	if !ok {
		writeAPIError(w, errDoesNotExist, nil)
		return
	}

	user := UserFromContext(r.Context())
	if user == nil {
		writeAPIError(w, errNotLoggedIn, nil)
		return
	}

	if err := h.comments.Delete(r.Context(), user, path, commentID); err != nil {
		h.handleServiceError(w, r, err, "failed to delete reply comment")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// replyPathFromRequest reads the reply address from the URL. ok is false if
// an ID is not a number, which the API reports as a missing object.
func replyPathFromRequest(r *http.Request) (application.ReplyPath, bool) {
	rrID, err1 := strconv.ParseInt(r.PathValue("review_request_id"), 10, 64)
	reviewID, err2 := strconv.ParseInt(r.PathValue("review_id"), 10, 64)
	replyID, err3 := strconv.ParseInt(r.PathValue("reply_id"), 10, 64)
	if err1 != nil || err2 != nil || err3 != nil {
		return application.ReplyPath{}, false
	}

	return application.ReplyPath{
		LocalSite:       r.PathValue("local_site"),
		ReviewRequestID: rrID,
		ReviewID:        reviewID,
		ReplyID:         replyID,
	}, true
}

func commentPathFromRequest(r *http.Request) (application.ReplyPath, int64, bool) {
	path, ok := replyPathFromRequest(r)
	if !ok {
		return application.ReplyPath{}, 0, false
	}
	commentID, err := strconv.ParseInt(r.PathValue("comment_id"), 10, 64)
	if err != nil {
		return application.ReplyPath{}, 0, false
	}
	return path, commentID, true
}

// apiBase returns the absolute URL prefix for a local site, or the site root
// for the global site.
func (h *Handler) apiBase(localSite string) string {
	if localSite == "" {
		return h.siteURL
	}
	return h.siteURL + "/s/" + localSite
}

func replyCommentsURL(path application.ReplyPath) string {
	return "/api/review-requests/" + itoa(path.ReviewRequestID) +
		"/reviews/" + itoa(path.ReviewID) +
		"/replies/" + itoa(path.ReplyID) +
		"/screenshot-comments/"
}

func pageURL(listURL string, start, maxResults int) string {
	return fmt.Sprintf("%s?start=%d&max-results=%d", listURL, start, maxResults)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

func nonNegativeInt(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return def
	}
	return n
}

func isTruthy(s string) bool {
	switch s {
	case "1", "true", "True":
		return true
	}
	return false
}

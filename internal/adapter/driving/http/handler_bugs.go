package httphandler

import (
	"net/http"
	"strconv"
)

// GetBug looks up a bug in the bug tracker linked to a repository. A tracker
// that cannot be reached yields a bug with empty fields, not an error.
func (h *Handler) GetBug(w http.ResponseWriter, r *http.Request) {
	repositoryID, err := strconv.ParseInt(r.PathValue("repository_id"), 10, 64)
	if err != nil {
		writeAPIError(w, errDoesNotExist, nil)
		return
	}

	lookup, err := h.bugs.GetBugInfo(r.Context(), repositoryID, r.PathValue("bug_id"))
	if err != nil {
		h.handleServiceError(w, r, err, "failed to look up bug")
		return
	}

	writeOK(w, http.StatusOK, "bug", toBugResponse(lookup))
}

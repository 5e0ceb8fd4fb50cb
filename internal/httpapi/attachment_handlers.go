package httpapi

import (
	"io"
	"log"
	"net/http"

	"github.com/gorilla/mux"
)

// handleDownloadAttachment streams a stored file. The route is public:
// attachment URLs are embedded in message payloads and fetched by
// plain <img>/<a> elements that carry no auth header.
func (s *Server) handleDownloadAttachment(w http.ResponseWriter, r *http.Request) {
	storageRef := mux.Vars(r)["storageRef"]

	stream, filename, mimeType, err := s.storage.Open(r.Context(), storageRef)
	if err != nil {
		writeError(w, err)
		return
	}
	defer stream.Close()

	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", mimeType)
	if filename != "" {
		w.Header().Set("Content-Disposition", `inline; filename="`+filename+`"`)
	}
	if _, err := io.Copy(w, stream); err != nil {
		log.Printf("attachment stream interrupted for %s: %v", storageRef, err)
	}
}

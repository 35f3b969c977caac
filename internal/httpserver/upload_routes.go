package httpserver

import (
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"concord/internal/config"
)

// UploadRoutes returns the attachment sub-router mounted at /api/uploads.
// A stored file is referenced by the file_url it returns, which message
// creation accepts as-is; uploads are local-disk only.
func UploadRoutes(cfg *config.Config) chi.Router {
	r := chi.NewRouter()

	maxBytes := int64(cfg.MaxUploadMB) << 20

	r.Post("/", func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
		if err := r.ParseMultipartForm(maxBytes); err != nil {
			http.Error(w, "failed to parse multipart form", http.StatusBadRequest)
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			http.Error(w, "missing file", http.StatusBadRequest)
			return
		}
		defer file.Close()

		ext := filepath.Ext(header.Filename)
		if ext == "" {
			http.Error(w, "file must have an extension", http.StatusBadRequest)
			return
		}

		if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
			http.Error(w, "could not store file", http.StatusInternalServerError)
			return
		}

		filename := uuid.NewString() + ext
		out, err := os.Create(filepath.Join(cfg.UploadDir, filename))
		if err != nil {
			http.Error(w, "could not store file", http.StatusInternalServerError)
			return
		}
		defer out.Close()

		if _, err := io.Copy(out, file); err != nil {
			http.Error(w, "could not store file", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusCreated, map[string]any{
			"file_url": "/api/uploads/" + filename,
			"filename": header.Filename,
		})
	})

	r.Get("/{filename}", func(w http.ResponseWriter, r *http.Request) {
		filename := chi.URLParam(r, "filename")
		// Reject anything that is not a bare filename.
		if filename == "" || filepath.Base(filename) != filename {
			http.Error(w, "invalid filename", http.StatusBadRequest)
			return
		}
		http.ServeFile(w, r, filepath.Join(cfg.UploadDir, filename))
	})

	return r
}

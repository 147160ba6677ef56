package handlers

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/MrSnakeDoc/bookhub/internal/analytics"
	"github.com/MrSnakeDoc/bookhub/internal/apperror"
	"github.com/MrSnakeDoc/bookhub/internal/domain"
	"github.com/MrSnakeDoc/bookhub/internal/exporter"
	"github.com/MrSnakeDoc/bookhub/internal/httpserver/deps"
	"github.com/MrSnakeDoc/bookhub/internal/service"
	"github.com/MrSnakeDoc/bookhub/internal/upload"
)

const (
	maxImportSize  = 10 << 20
	multipartSlack = 1 << 20
)

// Analytics aggregates every bookmark of the caller. Nothing is stored.
func Analytics(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bookmarks, err := d.Bookmarks.List(r.Context(), ownerID(r), domain.BookmarkFilter{})
		if err != nil {
			writeError(d, w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, analytics.Summarize(bookmarks, d.Now()))
	}
}

// Import reads the multipart "file" field. ?preview=true parses without
// writing. skipDuplicates defaults to true.
func Import(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxImportSize+multipartSlack)
		data, name, err := formFile(r, "file", maxImportSize)
		if err != nil {
			writeError(d, w, r, err)
			return
		}

		opts := service.ImportOptions{
			SkipDuplicates: true,
			DefaultFolder:  r.FormValue("defaultFolder"),
		}
		if raw := r.FormValue("skipDuplicates"); raw != "" {
			v, err := strconv.ParseBool(raw)
			if err != nil {
				writeError(d, w, r, apperror.ValidationFailed("skipDuplicates", "skipDuplicates must be true or false"))
				return
			}
			opts.SkipDuplicates = v
		}

		preview, err := queryBool(r, "preview")
		if err != nil {
			writeError(d, w, r, err)
			return
		}
		if preview != nil && *preview {
			p, err := d.Imports.Preview(r.Context(), ownerID(r), name, data, opts)
			if err != nil {
				writeError(d, w, r, err)
				return
			}
			writeJSON(w, http.StatusOK, p)
			return
		}

		report, err := d.Imports.Commit(r.Context(), ownerID(r), name, data, opts)
		if err != nil {
			writeError(d, w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, report)
	}
}

// Export serves ?format=csv|json|html with optional ?folders, ?from and ?to
// filters as an attachment.
func Export(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := r.URL.Query().Get("format")
		if raw == "" {
			raw = string(exporter.FormatJSON)
		}
		format, err := exporter.ParseFormat(raw)
		if err != nil {
			writeError(d, w, r, apperror.ValidationFailed("format", "format must be one of csv, json, html"))
			return
		}

		opts := exporter.Options{FolderIDs: queryList(r, "folders")}
		if opts.From, err = queryDate(r, "from", false); err != nil {
			writeError(d, w, r, err)
			return
		}
		if opts.To, err = queryDate(r, "to", true); err != nil {
			writeError(d, w, r, err)
			return
		}

		bookmarks, err := d.Bookmarks.List(r.Context(), ownerID(r), domain.BookmarkFilter{})
		if err != nil {
			writeError(d, w, r, err)
			return
		}

		now := d.Now()
		var buf bytes.Buffer
		if err := exporter.Write(&buf, format, exporter.Filter(bookmarks, opts), now); err != nil {
			writeError(d, w, r, err)
			return
		}

		w.Header().Set("Content-Type", exporter.ContentType(format))
		w.Header().Set("Content-Disposition", `attachment; filename="`+exporter.Filename(format, now)+`"`)
		w.WriteHeader(http.StatusOK)
		_, _ = buf.WriteTo(w)
	}
}

// Upload stores an image from the multipart "file" field.
func Upload(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.Uploader == nil {
			writeError(d, w, r, apperror.Unavailable("file uploads are not configured"))
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, upload.MaxSize+multipartSlack)
		data, name, err := formFile(r, "file", upload.MaxSize+1)
		if err != nil {
			writeError(d, w, r, err)
			return
		}
		res, err := d.Uploader.Upload(r.Context(), ownerID(r), upload.Input{
			Bucket:   r.FormValue("bucket"),
			Path:     r.FormValue("path"),
			Filename: name,
			Body:     bytes.NewReader(data),
		})
		if err != nil {
			writeError(d, w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

// formFile reads at most limit bytes of the named multipart field.
func formFile(r *http.Request, field string, limit int64) ([]byte, string, error) {
	if err := r.ParseMultipartForm(limit); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return nil, "", apperror.ValidationFailed(field, "file is too large")
		}
		return nil, "", apperror.ValidationFailed(field, "expected a multipart form with a file")
	}
	f, header, err := r.FormFile(field)
	if err != nil {
		return nil, "", apperror.ValidationFailed(field, "no file provided")
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, limit))
	if err != nil {
		return nil, "", err
	}
	return data, header.Filename, nil
}

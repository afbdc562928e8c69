package handler

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/xilidan/meetnotes/pkg/logger"
	"github.com/xilidan/meetnotes/services/meeting/consts"
	"github.com/xilidan/meetnotes/services/meeting/entity"
)

// parseUpload streams the multipart body once. The returned request is never
// nil so the caller can always defer Cleanup. Parsing stops at the first file
// part that already fails the type or size check.
func (h *Handler) parseUpload(r *http.Request) (*entity.UploadRequest, error) {
	req := &entity.UploadRequest{}
	log := logger.FromContext(r.Context())

	mr, err := r.MultipartReader()
	if err != nil {
		return req, entity.WrapError(entity.CodeInvalidForm, "Invalid multipart form", err)
	}

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return req, h.bodyError(req, err)
		}

		stop, err := h.readPart(req, part)
		part.Close()
		if err != nil {
			var appErr *entity.Error
			if !errors.As(err, &appErr) {
				err = h.bodyError(req, err)
			}
			return req, err
		}
		if stop {
			log.Debug("stopped reading form early", slog.String("file", req.File.Name))
			break
		}
	}

	return req, nil
}

func (h *Handler) readPart(req *entity.UploadRequest, part *multipart.Part) (bool, error) {
	switch part.FormName() {
	case consts.FieldFile:
		if part.FileName() == "" || req.File != nil {
			return false, discard(part)
		}
		return h.stageFile(req, part)
	case consts.FieldTitle:
		return false, readField(&req.Title, part)
	case consts.FieldParticipants:
		return false, readField(&req.ParticipantsRaw, part)
	case consts.FieldBusinessDescription:
		return false, readField(&req.BusinessDescription, part)
	default:
		return false, discard(part)
	}
}

// stageFile copies at most MaxFileSize+1 bytes into <TempDir>/<uuid><ext>.
// A file with a disallowed extension is probed for emptiness and not staged.
func (h *Handler) stageFile(req *entity.UploadRequest, part *multipart.Part) (bool, error) {
	file := &entity.AudioFile{Name: filepath.Base(part.FileName())}
	req.File = file

	if !h.opts.Policy.Allows(file.Name) {
		n, err := io.Copy(io.Discard, io.LimitReader(part, 1))
		if err != nil {
			return false, err
		}
		file.Size = n
		return n > 0, nil
	}

	path := filepath.Join(h.opts.TempDir, h.opts.Names.FileName(entity.Extension(file.Name)))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return false, entity.WrapError(entity.CodeInternal, "Failed to stage upload", err)
	}
	file.Path = path

	n, err := io.Copy(f, io.LimitReader(part, h.opts.Policy.MaxFileSize+1))
	if cerr := f.Close(); err == nil && cerr != nil {
		return false, entity.WrapError(entity.CodeInternal, "Failed to stage upload", cerr)
	}
	file.Size = n
	if err != nil {
		return false, err
	}

	return n > h.opts.Policy.MaxFileSize, nil
}

// bodyError classifies a raw failure while reading the body. Hitting the body
// cap blames the file only when the file itself is at fault; otherwise the
// form as a whole was too large.
func (h *Handler) bodyError(req *entity.UploadRequest, err error) error {
	var maxErr *http.MaxBytesError
	if !errors.As(err, &maxErr) {
		return entity.WrapError(entity.CodeInvalidForm, "Invalid multipart form", err)
	}

	file := req.File
	switch {
	case file != nil && file.Size > 0 && !h.opts.Policy.Allows(file.Name):
		return entity.NewError(entity.CodeUnsupportedFileType, "Unsupported file type")
	case file != nil && file.Size > h.opts.Policy.MaxFileSize:
		return entity.FileTooLargeError(h.opts.Policy.MaxFileSize)
	default:
		return entity.WrapError(entity.CodeInvalidForm, "Request body too large", err)
	}
}

func readField(dst *string, part *multipart.Part) error {
	if *dst != "" {
		return discard(part)
	}
	b, err := io.ReadAll(io.LimitReader(part, consts.MaxFieldSize+1))
	if err != nil {
		return err
	}
	if len(b) > consts.MaxFieldSize {
		return entity.NewFieldError(entity.CodeInvalidForm, part.FormName(),
			fmt.Sprintf("Field %s exceeds %d bytes", part.FormName(), consts.MaxFieldSize))
	}
	*dst = string(b)
	return nil
}

func discard(part *multipart.Part) error {
	_, err := io.Copy(io.Discard, part)
	return err
}

// drain consumes what is left of the capped body before a response is
// written, so the client sees the response instead of a reset connection.
func drain(r *http.Request) {
	io.Copy(io.Discard, r.Body)
}

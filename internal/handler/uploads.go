// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/dizistars/dizistars/internal/middleware"
	"github.com/dizistars/dizistars/internal/upload"
)

// multipartOverhead is the room left for form fields around the file.
const multipartOverhead = 1 << 20

// receiveUpload stores the image posted in field into bucket, replacing
// previous. On failure it returns the message to show the user.
func receiveUpload(w http.ResponseWriter, r *http.Request, up *upload.Uploader, demo middleware.Demo, field, bucket, previous string) (*upload.Result, string) {
	if demo.UploadTooLarge(r) {
		return nil, middleware.DemoModeMessageDetailed(middleware.RestrictionLargeUpload)
	}

	r.Body = http.MaxBytesReader(w, r.Body, up.MaxBytes()+multipartOverhead)
	req, closeFile, err := upload.FormFile(r, field, bucket)
	defer closeFile()
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.Is(err, upload.ErrNoFile):
			return nil, "Choose an image to upload."
		case errors.As(err, &tooLarge):
			return nil, fmt.Sprintf("File is too large. Maximum size is %d MB.", up.MaxBytes()>>20)
		default:
			slog.Error("reading upload failed", "field", field, "error", err)
			return nil, "The upload could not be read."
		}
	}
	req.PreviousURL = previous

	var msg string
	res, err := up.Upload(r.Context(), req, func(m string) { msg = m })
	if err != nil {
		if msg == "" {
			slog.Error("upload failed", "bucket", bucket, "error", err)
			msg = "Upload failed. Please try again."
		}
		return nil, msg
	}
	return res, ""
}

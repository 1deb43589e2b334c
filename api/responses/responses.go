// Package responses renders the JSON envelopes shared by every handler.
package responses

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/types"
)

const contentTypeJSON = "application/json"

var encodeFailureBody = mustEncode(types.NewError(
	string(pkgerrors.CodeInternal),
	pkgerrors.MetadataFor(pkgerrors.CodeInternal).PublicMessage,
	nil,
))

func WriteSuccess(w http.ResponseWriter, data any) {
	WriteSuccessStatus(w, http.StatusOK, data)
}

func WriteSuccessStatus(w http.ResponseWriter, status int, data any) {
	write(w, status, types.NewSuccess(data))
}

// WriteError renders err as the public error envelope. Untyped errors become
// INTERNAL_ERROR. Client errors log at warn and the rest at error.
func WriteError(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error) {
	if err == nil {
		err = errors.New("unknown error")
	}
	typed := classify(err)
	status := pkgerrors.MetadataFor(typed.Code()).HTTPStatus

	if logg != nil {
		fields := pkgerrors.Dump(err).Fields()
		fields["status"] = status
		ctx = logg.WithFields(ctx, fields)
		if status >= http.StatusInternalServerError {
			logg.Error(ctx, "request.error", err)
		} else {
			logg.Warn(ctx, "request.rejected")
		}
	}

	write(w, status, types.NewError(string(typed.Code()), typed.PublicMessage(), typed.PublicDetails()))
}

func classify(err error) *pkgerrors.Error {
	if typed := pkgerrors.As(err); typed != nil {
		return typed
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unexpected error")
}

// write encodes before touching the header so a payload that cannot be
// marshalled still produces a well-formed 500.
func write(w http.ResponseWriter, status int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		status, body = http.StatusInternalServerError, encodeFailureBody
	} else {
		body = append(body, '\n')
	}
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func mustEncode(v any) []byte {
	body, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return append(body, '\n')
}

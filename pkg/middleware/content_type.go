package middleware

import (
	"mime"
	"net/http"

	apperrors "rentabook/pkg/errors"
	httputil "rentabook/pkg/http"
	"rentabook/pkg/logger"
)

const jsonMediaType = "application/json"

// ContentTypeValidation rejects write requests whose body is not JSON. Bodyless
// actions such as confirm or complete may omit the header.
func ContentTypeValidation(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if hasBody(r) {
				if mediaType := mediaTypeOf(r); mediaType != jsonMediaType {
					log.Warn("Invalid Content-Type header",
						"request_id", RequestIDFromContext(r.Context()),
						"content_type", mediaType,
						"path", r.URL.Path,
						"method", r.Method,
					)
					_ = httputil.WriteError(w, apperrors.New(apperrors.CodeInvalidInput,
						"Content-Type must be application/json", http.StatusUnsupportedMediaType).
						WithDetails(map[string]any{"content_type": mediaType}))
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

func hasBody(r *http.Request) bool {
	switch r.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return r.ContentLength != 0
	}
	return false
}

// mediaTypeOf returns the lowercased media type without parameters, or the raw
// header when it does not parse.
func mediaTypeOf(r *http.Request) string {
	header := r.Header.Get("Content-Type")
	mediaType, _, err := mime.ParseMediaType(header)
	if err != nil {
		return header
	}
	return mediaType
}

package http

import (
	"net/http"
	"strconv"
	"time"

	"rentabook/pkg/config"
	apperrors "rentabook/pkg/errors"
	"rentabook/pkg/model"
)

func ExtractLimitOffset(r *http.Request) (int, int64, error) {
	query := r.URL.Query()

	limit := 0
	if s := query.Get("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, 0, apperrors.InvalidInput("invalid limit parameter: " + s)
		}
		limit = v
	}

	var offset int64 = 0
	if s := query.Get("offset"); s != "" {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, 0, apperrors.InvalidInput("invalid offset parameter: " + s)
		}
		offset = v
	}

	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	return limit, offset, nil
}

// ExtractDate parses a YYYY-MM-DD query parameter. Missing optional parameters return the zero time.
func ExtractDate(r *http.Request, name string, required bool) (time.Time, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		if required {
			return time.Time{}, apperrors.InvalidInput("missing required query parameter: " + name)
		}
		return time.Time{}, nil
	}

	d, err := model.ParseDay(s)
	if err != nil {
		return time.Time{}, apperrors.InvalidInput("invalid " + name + " parameter, expected YYYY-MM-DD: " + s)
	}
	return d, nil
}

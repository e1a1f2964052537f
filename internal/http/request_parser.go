package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"budget/internal/core"

	"github.com/shopspring/decimal"
)

type (
	registerRequest struct {
		Username string          `json:"username"`
		Email    string          `json:"email"`
		Password string          `json:"password"`
		Salary   decimal.Decimal `json:"salary"`
	}

	loginRequest struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	updateUserRequest struct {
		Username *string          `json:"username"`
		Email    *string          `json:"email"`
		Password *string          `json:"password"`
		Salary   *decimal.Decimal `json:"salary"`
	}

	createExpenseRequest struct {
		UserID   int64           `json:"user_id"`
		Name     string          `json:"name"`
		Amount   decimal.Decimal `json:"amount"`
		Category string          `json:"category"`
	}

	updateExpenseRequest struct {
		Name     *string          `json:"name"`
		Amount   *decimal.Decimal `json:"amount"`
		Category *string          `json:"category"`
	}
)

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

// parsePathID reads a numeric path segment such as {user_id}.
func parsePathID(r *http.Request, name string) (int64, error) {
	raw := r.PathValue(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q is not a number", core.ErrInvalidValue, name, raw)
	}
	return id, nil
}

// parseWindowParams reads the day/week/month/year query parameters. Values
// are only parsed here; range checks and exclusivity live in the resolver.
func parseWindowParams(q url.Values) (core.WindowParams, error) {
	var p core.WindowParams

	if raw := q.Get("day"); raw != "" {
		day, err := time.ParseInLocation("2006-01-02", raw, time.UTC)
		if err != nil {
			return p, fmt.Errorf("%w: day %q is not a valid date (expected YYYY-MM-DD)", core.ErrInvalidValue, raw)
		}
		p.Day = &day
	}

	for _, f := range []struct {
		name string
		dst  **int
	}{
		{"week", &p.Week},
		{"month", &p.Month},
		{"year", &p.Year},
	} {
		raw := q.Get(f.name)
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			return p, fmt.Errorf("%w: %s %q is not a number", core.ErrInvalidValue, f.name, raw)
		}
		*f.dst = &v
	}

	return p, nil
}

// parseCategoryParam reads the optional category filter. Matching is
// case-sensitive against the fixed category set.
func parseCategoryParam(q url.Values) (*core.Category, error) {
	raw := q.Get("category")
	if raw == "" {
		return nil, nil
	}
	c, err := core.ParseCategory(raw)
	if err != nil {
		return nil, fmt.Errorf("%w (expected one of %v)", err, core.Categories())
	}
	return &c, nil
}

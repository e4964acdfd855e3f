package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"userhub/internal/domainerr"
	"userhub/internal/validation"

	"github.com/gin-gonic/gin"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// respondError writes err as a domain error response. Anything that is not
// a domain error is reported as Internal.
func respondError(c *gin.Context, err error) {
	de, ok := domainerr.From(err)
	if !ok {
		de = domainerr.Wrap(domainerr.KindInternal, "unexpected error", err)
	}
	_ = c.Error(err)
	c.JSON(de.Status(), de)
}

// decodeStrict decodes the body into dst rejecting unknown fields. The
// structural walker, unknown fields and the request rules in check are all
// collected into one Validation error so a caller sees every violation at once.
func decodeStrict(c *gin.Context, walker *validation.Walker, dst any, check func() error) error {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return domainerr.New(domainerr.KindPayloadTooLarge, "request body too large")
		}
		return domainerr.Wrap(domainerr.KindBadRequest, "failed to read request body", err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return domainerr.New(domainerr.KindBadRequest, "request body is required")
	}

	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		return domainerr.Wrap(domainerr.KindBadRequest, "request body is not valid JSON", err)
	}
	if _, isObject := raw.(map[string]any); !isObject {
		return domainerr.New(domainerr.KindBadRequest, "request body must be a JSON object")
	}

	vc := validation.NewCollector()
	vc.Add(walker.Validate(raw))

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		field, ok := unknownField(err)
		if !ok {
			return domainerr.Wrap(domainerr.KindBadRequest, "invalid request body: "+err.Error(), err)
		}
		vc.AddField(field, "unexpected field "+strconv.Quote(field))
		// known fields still go through the request rules
		if err := json.Unmarshal(body, dst); err != nil {
			return domainerr.Wrap(domainerr.KindBadRequest, "invalid request body: "+err.Error(), err)
		}
	}

	if check != nil {
		vc.Add(check())
	}
	return vc.Err()
}

func unknownField(err error) (string, bool) {
	const prefix = "json: unknown field "
	msg := err.Error()
	if !strings.HasPrefix(msg, prefix) {
		return "", false
	}
	field, uerr := strconv.Unquote(strings.TrimPrefix(msg, prefix))
	if uerr != nil {
		return "", false
	}
	return field, true
}

func pageParam(c *gin.Context) (int, error) {
	raw := strings.TrimSpace(c.DefaultQuery("page", "1"))
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return 0, domainerr.WithFields(domainerr.KindValidation, "invalid page",
			map[string][]string{"page": {"page " + strconv.Quote(raw) + " must be a positive integer"}})
	}
	return page, nil
}

package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	skemac "github.com/reoring/skemac"
	"github.com/reoring/skemac/registry"
)

// Validated is a request document that passed its schema.
type Validated struct {
	Schema *registry.Entry
	Value  any
}

type ctxKeyValidated struct{}

// ContextWithValidated attaches a Validated document to the context.
func ContextWithValidated(ctx context.Context, v Validated) context.Context {
	return context.WithValue(ctx, ctxKeyValidated{}, v)
}

// ValidatedFromContext retrieves the document stored by ValidateJSON.
func ValidatedFromContext(ctx context.Context) (Validated, bool) {
	v, ok := ctx.Value(ctxKeyValidated{}).(Validated)
	return v, ok
}

// DefaultParseOpt returns a recommended default for HTTP JSON boundaries.
// - Duplicate keys are errors
// - Bodies are capped at 1 MiB
func DefaultParseOpt() skemac.ParseOpt {
	return skemac.ParseOpt{
		Strictness: skemac.Strictness{OnDuplicateKey: skemac.Error},
		MaxBytes:   1 << 20,
	}
}

// ValidateJSON resolves the schema named by the {name} route variable, decodes
// the request body and validates it. Valid documents are stored in the request
// context for next; otherwise the issues are written as the response.
//
// The mode query parameter selects collect (every violation) or failfast.
func ValidateJSON(reg *registry.Registry, opt skemac.ParseOpt) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			entry, err := reg.Get(ctx, mux.Vars(r)["name"])
			if err != nil {
				writeError(w, schemaStatus(err), err)
				return
			}
			w.Header().Set("ETag", `"`+entry.DigestHex()+`"`)

			o := opt
			switch r.URL.Query().Get("mode") {
			case "collect":
				o.CollectAll, o.FailFast = true, false
			case "failfast":
				o.FailFast, o.CollectAll = true, false
			}
			v, err := skemac.StreamDecode(r.Body, o)
			if err != nil {
				iss, ok := skemac.AsIssues(err)
				if !ok {
					writeError(w, http.StatusBadRequest, err)
					return
				}
				status := http.StatusBadRequest
				if len(iss) > 0 && iss[0].Code == skemac.CodeTruncated {
					status = http.StatusRequestEntityTooLarge
				}
				writeJSON(w, status, ErrorPayload(iss))
				return
			}

			res := entry.Validator.Check(skemac.ContextWithOpt(ctx, o), v)
			if !res.Valid {
				writeJSON(w, http.StatusUnprocessableEntity, ErrorPayload(res.Errors))
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithValidated(ctx, Validated{Schema: entry, Value: v})))
		})
	}
}

func schemaStatus(err error) int {
	if errors.Is(err, registry.ErrNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

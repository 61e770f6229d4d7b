package main

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/schema"

	"streamflix/proj/internal/views"
)

func (app *Application) extractIDParam(r *http.Request) string {
	return chi.URLParam(r, "id")
}

// readPage returns the requested list page. Anything unparsable is page 1; the upper
// bound is clamped once the collection size is known.
func readPage(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// decodePostForm fills dst from the request body. Values that cannot be converted to
// the field type come back as field errors; any other failure is returned as error.
func (app *Application) decodePostForm(r *http.Request, dst any) (map[string]string, error) {
	if err := r.ParseForm(); err != nil {
		return nil, err
	}
	err := app.formDecoder.Decode(dst, r.PostForm)
	if err == nil {
		return nil, nil
	}
	var multi schema.MultiError
	if !errors.As(err, &multi) {
		return nil, err
	}
	fieldErrs := make(map[string]string, len(multi))
	for key, fieldErr := range multi {
		var conversionErr schema.ConversionError
		if !errors.As(fieldErr, &conversionErr) {
			return nil, err
		}
		fieldErrs[key] = "Enter a valid number"
	}
	return fieldErrs, nil
}

// newTemplateData fills in the parts every page shares, consuming the session's
// pending notices.
func (app *Application) newTemplateData(r *http.Request) *views.TemplateData {
	sess := contextGetSession(r)
	data := &views.TemplateData{
		User:            sess.User(),
		IsAuthenticated: sess.IsAuthenticated(),
	}
	notices, err := app.sessions.PopNotices(r, sess)
	if err != nil {
		app.Http.setupLogPerReq(r).Error("Error reading session notices", "errMsg", err.Error())
	}
	data.AddNotices(notices...)
	return data
}

func mergeErrors(dst, src map[string]string) map[string]string {
	if len(src) == 0 {
		return dst
	}
	if dst == nil {
		dst = make(map[string]string, len(src))
	}
	for k, v := range src {
		if _, ok := dst[k]; !ok {
			dst[k] = v
		}
	}
	return dst
}

package handler

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// errBadInput - ошибка разбора ввода оператора.
var errBadInput = errors.New("bad input")

// input - поля формы или JSON-тела, приведенные к строкам.
type input map[string]string

// readInput принимает и JSON, и обычную HTML-форму.
func readInput(r *http.Request) (input, error) {
	in := input{}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		var raw map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			return nil, fmt.Errorf("%w: invalid json body: %v", errBadInput, err)
		}
		for k, v := range raw {
			if v == nil {
				continue
			}
			in[k] = fmt.Sprint(v)
		}
		return in, nil
	}

	if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("%w: invalid form: %v", errBadInput, err)
	}
	for k := range r.Form {
		in[k] = r.Form.Get(k)
	}
	return in, nil
}

func (in input) text(name string) string {
	return strings.TrimSpace(in[name])
}

// integer приводит поле к числу. JSON-числа приходят как "12" или "1.2e+01".
func (in input) integer(name string) (int64, error) {
	raw := in.text(name)
	if raw == "" {
		return 0, fmt.Errorf("%w: %s is required", errBadInput, name)
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f != float64(int64(f)) {
		return 0, fmt.Errorf("%w: %s must be an integer, got %q", errBadInput, name, raw)
	}
	return int64(f), nil
}

func (in input) decimal(name string) (float64, error) {
	raw := in.text(name)
	if raw == "" {
		return 0, fmt.Errorf("%w: %s is required", errBadInput, name)
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a number, got %q", errBadInput, name, raw)
	}
	return f, nil
}

// flag - отсутствующий чекбокс означает false.
func (in input) flag(name string) bool {
	switch strings.ToLower(in.text(name)) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}

func pathID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer, got %q", errBadInput, name, raw)
	}
	return n, nil
}

package server

import (
	"net/url"
	"strconv"

	"github.com/matzehuels/kinreport/pkg/errors"
	"github.com/matzehuels/kinreport/pkg/pipeline"
)

// optionsFromQuery reads GET /v1/render/{dni} parameters. Unknown
// parameters are ignored.
func optionsFromQuery(dni string, q url.Values) (pipeline.Options, error) {
	opts := pipeline.Options{
		DNI:    dni,
		Kind:   q.Get("kind"),
		Format: q.Get("format"),
		Source: q.Get("source"),
	}
	if v := q.Get("scale"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return opts, errors.New(errors.ErrCodeInvalidInput, "scale must be a number, got %q", v)
		}
		opts.Scale = f
	}

	flags := []struct {
		name string
		dst  *bool
	}{
		{"detailed", &opts.Detailed},
		{"unclassified", &opts.Unclassified},
		{"auto_width", &opts.AutoWidth},
		{"no_tree", &opts.NoTree},
		{"refresh", &opts.Refresh},
	}
	for _, f := range flags {
		b, err := queryBool(q, f.name)
		if err != nil {
			return opts, err
		}
		*f.dst = b
	}
	return opts, nil
}

// queryBool parses a boolean parameter; absent means false.
func queryBool(q url.Values, name string) (bool, error) {
	v := q.Get(name)
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, errors.New(errors.ErrCodeInvalidInput, "%s must be a boolean, got %q", name, v)
	}
	return b, nil
}

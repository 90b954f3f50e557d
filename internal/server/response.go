package server

import (
	"encoding/json"
	"net/http"

	"github.com/matzehuels/kinreport/pkg/errors"
	"github.com/matzehuels/kinreport/pkg/group"
	"github.com/matzehuels/kinreport/pkg/kin"
	"github.com/matzehuels/kinreport/pkg/pipeline"
	"github.com/matzehuels/kinreport/pkg/relation"
	"github.com/matzehuels/kinreport/pkg/stats"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

// writeError answers with the status mapped from err's code. Uncoded errors
// become INTERNAL_ERROR without leaking their text.
func writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	msg := errors.UserMessage(err)
	if code == "" {
		code = errors.ErrCodeInternal
		msg = "internal error"
	}
	writeJSON(w, errors.HTTPStatus(err), errorBody{Error: errorDetail{Code: string(code), Message: msg}})
}

type layerResponse struct {
	Name   string       `json:"name"`
	Color  string       `json:"color"`
	People []kin.Person `json:"people"`
}

type inspectionResponse struct {
	Principal kin.Person      `json:"principal"`
	Quantity  int             `json:"quantity"`
	Layers    []layerResponse `json:"layers"`
	Dropped   []kin.Person    `json:"dropped"`
	Branches  map[string]int  `json:"branches"`
	Stats     stats.Snapshot  `json:"stats"`
	Height    float64         `json:"canvas_height"`
}

func newInspectionResponse(in pipeline.Inspection) inspectionResponse {
	resp := inspectionResponse{
		Principal: in.Lookup.Principal,
		Quantity:  in.Lookup.Quantity,
		Layers:    make([]layerResponse, 0, len(in.Layers)),
		Dropped:   in.Dropped,
		Branches:  branchCounts(in.Branches),
		Stats:     in.Stats,
		Height:    in.Height,
	}
	if resp.Dropped == nil {
		resp.Dropped = []kin.Person{}
	}
	for _, l := range in.Layers {
		resp.Layers = append(resp.Layers, layerResponse{Name: l.Name(), Color: l.Category.Color(), People: l.People})
	}
	return resp
}

func branchCounts(b group.Branches) map[string]int {
	counts := b.Counts()
	out := make(map[string]int, relation.NumBranches)
	for _, br := range relation.Branches() {
		out[br.String()] = counts[br]
	}
	return out
}

// SPDX-License-Identifier: MIT

package wire

import (
	"encoding/json"
	"errors"
	"io"

	"github.com/katalvlaran/linsolve/linsolve"
	"github.com/katalvlaran/linsolve/matrix"
)

// StatusError is the status of every error response.
const StatusError = "error"

// Response is the rendered outcome of one solve call. Only the fields of
// the variant named by Status are set.
type Response struct {
	Status             string         `json:"status"`
	Method             string         `json:"method,omitempty"`
	Rank               *int           `json:"rank,omitempty"`
	AugmentedRank      *int           `json:"augmented_rank,omitempty"`
	Solution           [][]float64    `json:"solution,omitempty"`
	ParticularSolution [][]float64    `json:"particular_solution,omitempty"`
	NullSpaceBasis     [][]float64    `json:"null_space_basis,omitempty"`
	FreeColumns        []int          `json:"free_columns,omitempty"`
	Kind               string         `json:"kind,omitempty"`
	Message            string         `json:"message,omitempty"`
	Steps              []Step         `json:"intermediate_steps,omitempty"`
	Decomposition      *Decomposition `json:"decomposition,omitempty"`
	RequestID          string         `json:"request_id,omitempty"`
}

// Step is one entry of the step log.
type Step struct {
	Kind    string      `json:"kind"`
	Message string      `json:"message"`
	Matrix  [][]float64 `json:"matrix,omitempty"`
}

// LUStage is one unpivoted Doolittle snapshot.
type LUStage struct {
	Stage int         `json:"stage"`
	L     [][]float64 `json:"L"`
	U     [][]float64 `json:"U"`
}

// Decomposition carries the factors of the LU and Cholesky methods.
type Decomposition struct {
	P              []int       `json:"P,omitempty"`
	L              [][]float64 `json:"L,omitempty"`
	U              [][]float64 `json:"U,omitempty"`
	Ut             [][]float64 `json:"Ut,omitempty"`
	M              [][]float64 `json:"M,omitempty"`
	D              [][]float64 `json:"d,omitempty"`
	Y              [][]float64 `json:"y,omitempty"`
	Transformation string      `json:"transformation,omitempty"`
	LUSteps        []LUStage   `json:"lu_steps,omitempty"`
}

// IsError reports whether r is an error response.
func (r Response) IsError() bool { return r.Status == StatusError }

// FromResult renders a successful solve.
func FromResult(res *linsolve.Result) Response {
	rank := res.Rank
	out := Response{
		Status: res.Status().String(),
		Method: string(res.Method),
		Rank:   &rank,
	}
	switch o := res.Outcome.(type) {
	case *linsolve.NoSolution:
		ar := o.AugmentedRank
		out.AugmentedRank = &ar
	case *linsolve.UniqueSolution:
		out.Solution = o.X.ToRows()
	case *linsolve.InfiniteSolutions:
		out.ParticularSolution = o.Particular.ToRows()
		out.NullSpaceBasis = o.Basis()
		out.FreeColumns = append([]int(nil), o.FreeColumns...)
	}
	for _, s := range res.Steps {
		out.Steps = append(out.Steps, Step{Kind: s.Kind.String(), Message: s.Message, Matrix: s.Snapshot})
	}
	out.Decomposition = decomposition(res.Factorization)

	return out
}

// FromError renders err as an error response. Errors that did not come from
// linsolve are reported with kind INVALID_INPUT when they are request
// decoding failures and UNKNOWN otherwise.
func FromError(err error) Response {
	kind := linsolve.KindOf(err)
	if kind == linsolve.KindUnknown && (errors.Is(err, ErrMalformedRequest) || errors.Is(err, ErrMissingMatrix)) {
		kind = linsolve.KindInvalidInput
	}

	return Response{Status: StatusError, Kind: kind.String(), Message: err.Error()}
}

// Encode writes r as a single JSON document followed by a newline.
func Encode(w io.Writer, r Response) error {
	return json.NewEncoder(w).Encode(r)
}

func decomposition(f linsolve.Factorization) *Decomposition {
	switch v := f.(type) {
	case *linsolve.LUFactors:
		d := &Decomposition{
			P: append([]int(nil), v.P...),
			L: rows(v.L),
			U: rows(v.U),
			Y: rows(v.Y),
		}
		for _, s := range v.Doolittle {
			d.LUSteps = append(d.LUSteps, LUStage{Stage: s.Stage, L: s.L, U: s.U})
		}

		return d
	case *linsolve.CholeskyFactors:
		return &Decomposition{
			Transformation: v.Transformation,
			M:              rows(v.M),
			D:              rows(v.D),
			U:              rows(v.U),
			Ut:             rows(v.Ut),
			Y:              rows(v.Y),
		}
	default:
		return nil
	}
}

func rows(m *matrix.Dense) [][]float64 {
	if m == nil {
		return nil
	}

	return m.ToRows()
}

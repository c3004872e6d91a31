package optim

import (
	"context"
	"errors"
	"fmt"
	"math"
)

var (
	ErrNoCandidates = errors.New("optim: no valid grid point")
	ErrInvalidGrid  = errors.New("optim: invalid grid")
)

// Objective scores one grid point; lower is better.
type Objective func(params map[string]float64) (float64, error)

type Evaluation struct {
	Params map[string]float64
	Value  float64
}

type Result struct {
	Best        map[string]float64
	Value       float64
	Evaluations []Evaluation
}

// GridSearch scans the cartesian product of per-parameter ranges. Points are
// visited in lexicographic order of the ranges as given, and the first point
// reaching the minimum wins ties.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) (*GridSearch, error) {
	if len(params) == 0 || len(params) != len(ranges) {
		return nil, fmt.Errorf("%w: %d names for %d ranges", ErrInvalidGrid, len(params), len(ranges))
	}
	for i, r := range ranges {
		if len(r) == 0 {
			return nil, fmt.Errorf("%w: empty range for %q", ErrInvalidGrid, params[i])
		}
	}
	return &GridSearch{paramNames: params, ranges: ranges}, nil
}

// Size is the number of grid points.
func (g *GridSearch) Size() int {
	n := 1
	for _, r := range g.ranges {
		n *= len(r)
	}
	return n
}

// Search evaluates every grid point. NaN scores are recorded but never
// selected; an objective error aborts the search.
func (g *GridSearch) Search(ctx context.Context, objective Objective) (*Result, error) {
	res := &Result{
		Value:       math.Inf(1),
		Evaluations: make([]Evaluation, 0, g.Size()),
	}

	if err := g.searchRecursive(ctx, 0, make(map[string]float64), objective, res); err != nil {
		return nil, err
	}
	if res.Best == nil {
		return nil, ErrNoCandidates
	}
	return res, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	objective Objective,
	res *Result,
) error {
	if depth == len(g.paramNames) {
		if err := ctx.Err(); err != nil {
			return err
		}

		val, err := objective(current)
		if err != nil {
			return fmt.Errorf("optim: objective at %v: %w", current, err)
		}

		res.Evaluations = append(res.Evaluations, Evaluation{Params: current, Value: val})
		if val < res.Value || (res.Best == nil && math.IsInf(val, 1)) {
			res.Value = val
			res.Best = current
		}
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64, len(current)+1)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, objective, res); err != nil {
			return err
		}
	}
	return nil
}

// Values extracts one parameter and the score of every evaluation, in visit order.
func (r *Result) Values(name string) (params, values []float64) {
	params = make([]float64, len(r.Evaluations))
	values = make([]float64, len(r.Evaluations))
	for i, e := range r.Evaluations {
		params[i] = e.Params[name]
		values[i] = e.Value
	}
	return params, values
}

package fuzzy

import (
	"fmt"
	"math"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const DefaultResolution = 200

type Variable struct {
	Name    string    `yaml:"name"`
	Range   []float64 `yaml:"range"`
	Default float64   `yaml:"default"`
	Terms   []Term    `yaml:"terms"`
}

func (v Variable) min() float64 { return v.Range[0] }
func (v Variable) max() float64 { return v.Range[1] }

type Clause struct {
	Var string `yaml:"var"`
	Is  string `yaml:"is"`
	Not bool   `yaml:"not,omitempty"`
}

// Rule is "if all If clauses then every Then clause". Antecedents are
// combined with min; Weight scales the activation (default 1).
type Rule struct {
	If     []Clause `yaml:"if"`
	Then   []Clause `yaml:"then"`
	Weight float64  `yaml:"weight,omitempty"`
}

// Definition is the YAML form of a Mamdani inference system.
type Definition struct {
	Name       string     `yaml:"name"`
	Inputs     []Variable `yaml:"inputs"`
	Outputs    []Variable `yaml:"outputs"`
	Rules      []Rule     `yaml:"rules"`
	Resolution int        `yaml:"resolution,omitempty"`
}

type termRef struct {
	variable int
	term     int
	not      bool
}

type compiledRule struct {
	antecedents []termRef
	consequents []termRef
	weight      float64
}

// Engine evaluates a Definition: min implication, max aggregation and
// centroid defuzzification. It is not safe for concurrent use.
type Engine struct {
	def     Definition
	rules   []compiledRule
	inputs  []float64
	outputs []float64
}

func Load(path string) (*Engine, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	e, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return e, nil
}

func Parse(data []byte) (*Engine, error) {
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotReady, err)
	}
	return New(def)
}

// New validates def and builds an engine. Every problem found is listed
// in the returned error.
func New(def Definition) (*Engine, error) {
	if def.Resolution == 0 {
		def.Resolution = DefaultResolution
	}

	var problems []string
	if len(def.Inputs) == 0 {
		problems = append(problems, "no input variables")
	}
	if len(def.Outputs) == 0 {
		problems = append(problems, "no output variables")
	}
	if len(def.Rules) == 0 {
		problems = append(problems, "no rules")
	}
	if def.Resolution < 10 {
		problems = append(problems, fmt.Sprintf("resolution %d below 10", def.Resolution))
	}

	problems = append(problems, checkVariables("input", def.Inputs)...)
	problems = append(problems, checkVariables("output", def.Outputs)...)

	e := &Engine{
		def:     def,
		inputs:  make([]float64, len(def.Inputs)),
		outputs: make([]float64, len(def.Outputs)),
	}

	for i, r := range def.Rules {
		cr := compiledRule{weight: r.Weight}
		if cr.weight == 0 {
			cr.weight = 1
		}
		if len(r.If) == 0 || len(r.Then) == 0 {
			problems = append(problems, fmt.Sprintf("rule %d: needs if and then clauses", i))
		}
		for _, c := range r.If {
			ref, err := resolve(def.Inputs, c)
			if err != nil {
				problems = append(problems, fmt.Sprintf("rule %d: %v", i, err))
				continue
			}
			cr.antecedents = append(cr.antecedents, ref)
		}
		for _, c := range r.Then {
			ref, err := resolve(def.Outputs, c)
			if err != nil {
				problems = append(problems, fmt.Sprintf("rule %d: %v", i, err))
				continue
			}
			cr.consequents = append(cr.consequents, ref)
		}
		e.rules = append(e.rules, cr)
	}

	if len(problems) > 0 {
		return nil, fmt.Errorf("%w, the following errors were encountered:\n%s", ErrNotReady, strings.Join(problems, "\n"))
	}

	for i, v := range def.Outputs {
		e.outputs[i] = v.Default
	}
	return e, nil
}

// checkVariables validates one side of the definition. Inputs and outputs
// are resolved separately, so a name may appear once on each side.
func checkVariables(kind string, vars []Variable) []string {
	var problems []string
	seen := make(map[string]bool)
	for _, v := range vars {
		if v.Name == "" {
			problems = append(problems, kind+" variable without a name")
			continue
		}
		if seen[v.Name] {
			problems = append(problems, fmt.Sprintf("duplicate %s variable %q", kind, v.Name))
		}
		seen[v.Name] = true
		problems = append(problems, checkVariable(v)...)
	}
	return problems
}

func checkVariable(v Variable) []string {
	var problems []string
	if len(v.Range) != 2 || !(v.Range[0] < v.Range[1]) {
		problems = append(problems, fmt.Sprintf("variable %q: range must be [min, max] with min < max", v.Name))
	}
	if len(v.Terms) == 0 {
		problems = append(problems, fmt.Sprintf("variable %q: no terms", v.Name))
	}
	for _, t := range v.Terms {
		if err := t.validate(); err != nil {
			problems = append(problems, fmt.Sprintf("variable %q: %v", v.Name, err))
		}
	}
	return problems
}

func resolve(vars []Variable, c Clause) (termRef, error) {
	for vi, v := range vars {
		if v.Name != c.Var {
			continue
		}
		for ti, t := range v.Terms {
			if t.Name == c.Is {
				return termRef{variable: vi, term: ti, not: c.Not}, nil
			}
		}
		return termRef{}, fmt.Errorf("variable %q has no term %q", c.Var, c.Is)
	}
	return termRef{}, fmt.Errorf("unknown variable %q", c.Var)
}

func (e *Engine) Name() string    { return e.def.Name }
func (e *Engine) NumInputs() int  { return len(e.def.Inputs) }
func (e *Engine) NumOutputs() int { return len(e.def.Outputs) }

func (e *Engine) InputName(i int) string  { return e.def.Inputs[i].Name }
func (e *Engine) OutputName(i int) string { return e.def.Outputs[i].Name }

// SetInput sets input i, clamped to the variable range.
func (e *Engine) SetInput(i int, value float64) {
	v := e.def.Inputs[i]
	e.inputs[i] = math.Max(v.min(), math.Min(value, v.max()))
}

func (e *Engine) Input(i int) float64  { return e.inputs[i] }
func (e *Engine) Output(i int) float64 { return e.outputs[i] }

// Process runs inference on the current inputs. Outputs no rule fires
// for take their default value.
func (e *Engine) Process() {
	activations := make([]float64, len(e.rules))
	for ri, r := range e.rules {
		a := 1.0
		for _, ref := range r.antecedents {
			term := e.def.Inputs[ref.variable].Terms[ref.term]
			mu := term.Membership(e.inputs[ref.variable])
			if ref.not {
				mu = 1 - mu
			}
			a = math.Min(a, mu)
		}
		activations[ri] = a * r.weight
	}

	n := e.def.Resolution
	for oi, out := range e.def.Outputs {
		step := (out.max() - out.min()) / float64(n-1)
		var num, den float64
		for s := 0; s < n; s++ {
			x := out.min() + float64(s)*step
			mu := 0.0
			for ri, r := range e.rules {
				if activations[ri] == 0 {
					continue
				}
				for _, ref := range r.consequents {
					if ref.variable != oi {
						continue
					}
					m := out.Terms[ref.term].Membership(x)
					if ref.not {
						m = 1 - m
					}
					mu = math.Max(mu, math.Min(activations[ri], m))
				}
			}
			num += x * mu
			den += mu
		}
		if den == 0 {
			e.outputs[oi] = out.Default
			continue
		}
		e.outputs[oi] = num / den
	}
}

// Package config parses the YAML description of a coupling's mappings,
// following the teacher's InputParameters.Parse/Print pattern.
package config

import (
	"fmt"

	"github.com/ghodss/yaml"

	"github.com/arnegrim/meshmap/basis"
	"github.com/arnegrim/meshmap/mapping"
	"github.com/arnegrim/meshmap/mapping/nn"
	"github.com/arnegrim/meshmap/mapping/rbf"
)

// Mapping describes one mapping's YAML configuration.
type Mapping struct {
	Name          string  `yaml:"Name"`
	Family        string  `yaml:"Family"`    // "nearest-neighbor", "rbf-direct", "rbf-pgreedy"
	Constraint    string  `yaml:"Constraint"` // "consistent", "conservative", "scaled-consistent"
	Kernel        string  `yaml:"Kernel"`     // basis function name; RBF families only
	Epsilon       float64 `yaml:"Epsilon"`
	SupportRadius float64 `yaml:"SupportRadius"`
	Polynomial    string  `yaml:"Polynomial"` // "off", "separate", "on"; Direct only
	ActiveAxes    [3]bool `yaml:"ActiveAxes"`
	MaxIterations int     `yaml:"MaxIterations"` // PGreedy only
	Tolerance     float64 `yaml:"Tolerance"`     // PGreedy only
}

// Coupling is the top-level coupling configuration: its mapping list and
// the rank count each participant's mesh is distributed across.
type Coupling struct {
	Title      string    `yaml:"Title"`
	Dimensions int       `yaml:"Dimensions"`
	Ranks      int       `yaml:"Ranks"`
	Mappings   []Mapping `yaml:"Mappings"`
}

// Parse unmarshals a coupling configuration from YAML.
func (c *Coupling) Parse(data []byte) error {
	return yaml.Unmarshal(data, c)
}

// Print writes a human-readable rendering of the configuration, in the
// teacher's InputParameters.Print style.
func (c *Coupling) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", c.Title)
	fmt.Printf("%d\t\t\t= Dimensions\n", c.Dimensions)
	fmt.Printf("%d\t\t\t= Ranks\n", c.Ranks)
	for i, m := range c.Mappings {
		fmt.Printf("Mappings[%d] (%s) = %s %s/%s\n", i, m.Name, m.Family, m.Constraint, m.Kernel)
	}
}

func parseConstraint(s string) (mapping.Constraint, error) {
	switch s {
	case "consistent":
		return mapping.Consistent, nil
	case "conservative":
		return mapping.Conservative, nil
	case "scaled-consistent":
		return mapping.ScaledConsistent, nil
	default:
		return 0, fmt.Errorf("config: unknown constraint %q", s)
	}
}

func parseBasis(m Mapping) (basis.Function, error) {
	switch m.Kernel {
	case "thin-plate-splines":
		return basis.ThinPlateSplines{}, nil
	case "multiquadrics":
		return basis.Multiquadrics{C: m.Epsilon}, nil
	case "inverse-multiquadrics":
		return basis.InverseMultiquadrics{C: m.Epsilon}, nil
	case "volume-splines":
		return basis.VolumeSplines{}, nil
	case "gaussian":
		return basis.Gaussian{Epsilon: m.Epsilon}, nil
	case "compact-thin-plate-splines-c2":
		return basis.CompactThinPlateSplinesC2{R: m.SupportRadius}, nil
	case "compact-polynomial-c0":
		return basis.CompactPolynomialC0{R: m.SupportRadius}, nil
	case "compact-polynomial-c6":
		return basis.CompactPolynomialC6{R: m.SupportRadius}, nil
	default:
		return nil, fmt.Errorf("config: unknown kernel %q", m.Kernel)
	}
}

func parsePolynomial(s string) (rbf.Polynomial, error) {
	switch s {
	case "", "off":
		return rbf.PolynomialOff, nil
	case "separate":
		return rbf.PolynomialSeparate, nil
	case "on":
		return rbf.PolynomialOn, nil
	default:
		return 0, fmt.Errorf("config: unknown polynomial mode %q", s)
	}
}

// BuildMapping constructs a mapping.Mapping from its YAML configuration.
// dimensions is the coupling's spatial dimensionality (2 or 3).
func BuildMapping(m Mapping, dimensions int) (mapping.Mapping, error) {
	constraint, err := parseConstraint(m.Constraint)
	if err != nil {
		return nil, err
	}

	axes := m.ActiveAxes
	if axes == [3]bool{} {
		axes = [3]bool{true, true, true}
	}

	innerConstraint := constraint
	if constraint == mapping.ScaledConsistent {
		innerConstraint = mapping.Consistent
	}

	var inner mapping.Mapping
	switch m.Family {
	case "nearest-neighbor":
		inner = nn.New(innerConstraint, dimensions)
	case "rbf-direct":
		fn, err := parseBasis(m)
		if err != nil {
			return nil, err
		}
		poly, err := parsePolynomial(m.Polynomial)
		if err != nil {
			return nil, err
		}
		inner = rbf.NewDirect(innerConstraint, dimensions, fn, axes, poly)
	case "rbf-pgreedy":
		fn, err := parseBasis(m)
		if err != nil {
			return nil, err
		}
		g := rbf.NewPGreedy(innerConstraint, fn, axes)
		if m.MaxIterations > 0 {
			g.MaxIter = m.MaxIterations
		}
		if m.Tolerance > 0 {
			g.Tolerance = m.Tolerance
		}
		inner = g
	default:
		return nil, fmt.Errorf("config: unknown mapping family %q", m.Family)
	}

	if constraint == mapping.ScaledConsistent {
		return mapping.NewScaledConsistent(inner, nil), nil
	}
	return inner, nil
}

// Package config loads builder-protocol definitions from YAML. A protocol
// file declares the builder types available to @builder attributes, the
// free functions statement expressions may call, and the availability
// target version.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vela-lang/vela/internal/types"
)

// Config is one parsed protocol file.
type Config struct {
	// Target is the platform version availability conditions are checked
	// against; empty leaves them as runtime checks.
	Target string
	// Builders maps builder type name to its declared operations.
	Builders map[string]*types.BuilderType
	// Functions are the free functions visible to statement expressions.
	Functions map[string]types.FuncSig
}

type fileYAML struct {
	Target   string        `yaml:"target"`
	Builders []builderYAML `yaml:"builders"`
	Funcs    []funcYAML    `yaml:"functions"`
}

type builderYAML struct {
	Name       string               `yaml:"name"`
	Operations map[string][]sigYAML `yaml:"operations"`
}

type sigYAML struct {
	Params []paramYAML `yaml:"params"`
	Result string      `yaml:"result"`
}

type paramYAML struct {
	Label    string `yaml:"label"`
	Type     string `yaml:"type"`
	Variadic bool   `yaml:"variadic"`
}

type funcYAML struct {
	Name   string   `yaml:"name"`
	Params []string `yaml:"params"`
	Result string   `yaml:"result"`
}

// Load reads and parses one protocol file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading protocol file: %w", err)
	}
	return Parse(data)
}

// Parse parses protocol YAML.
func Parse(data []byte) (*Config, error) {
	var raw fileYAML
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing protocol file: %w", err)
	}

	cfg := &Config{
		Target:    raw.Target,
		Builders:  make(map[string]*types.BuilderType),
		Functions: make(map[string]types.FuncSig),
	}

	for _, b := range raw.Builders {
		if b.Name == "" {
			return nil, fmt.Errorf("builder type without a name")
		}
		bt := &types.BuilderType{Name: b.Name, Ops: make(map[string][]types.Signature)}
		for op, sigs := range b.Operations {
			for _, s := range sigs {
				sig, err := parseSig(s)
				if err != nil {
					return nil, fmt.Errorf("builder %s, operation %s: %w", b.Name, op, err)
				}
				bt.Ops[op] = append(bt.Ops[op], sig)
			}
		}
		cfg.Builders[b.Name] = bt
	}

	for _, f := range raw.Funcs {
		if f.Name == "" {
			return nil, fmt.Errorf("function without a name")
		}
		sig := types.FuncSig{}
		for _, ps := range f.Params {
			pt, err := ParseType(ps)
			if err != nil {
				return nil, fmt.Errorf("function %s: %w", f.Name, err)
			}
			sig.Params = append(sig.Params, pt)
		}
		rt, err := ParseType(f.Result)
		if err != nil {
			return nil, fmt.Errorf("function %s: %w", f.Name, err)
		}
		sig.Result = rt
		cfg.Functions[f.Name] = sig
	}

	return cfg, nil
}

func parseSig(s sigYAML) (types.Signature, error) {
	sig := types.Signature{}
	for i, p := range s.Params {
		pt, err := ParseType(p.Type)
		if err != nil {
			return sig, err
		}
		if p.Variadic && i != len(s.Params)-1 {
			return sig, fmt.Errorf("only the last parameter may be variadic")
		}
		sig.Params = append(sig.Params, types.Param{Label: p.Label, Type: pt, Variadic: p.Variadic})
	}
	rt, err := ParseType(s.Result)
	if err != nil {
		return sig, err
	}
	sig.Result = rt
	return sig, nil
}

// ParseType parses the textual type syntax used in protocol files:
// Name, Name?, [Name], and nestings thereof. Void and the predeclared
// scalar names map to their canonical types.
func ParseType(s string) (types.Type, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return types.Void, nil
	}
	if strings.HasSuffix(s, "?") {
		elem, err := ParseType(s[:len(s)-1])
		if err != nil {
			return nil, err
		}
		return &types.Optional{Elem: elem}, nil
	}
	if strings.HasPrefix(s, "[") {
		if !strings.HasSuffix(s, "]") {
			return nil, fmt.Errorf("malformed array type %q", s)
		}
		elem, err := ParseType(s[1 : len(s)-1])
		if err != nil {
			return nil, err
		}
		return &types.Array{Elem: elem}, nil
	}
	switch s {
	case "Int":
		return types.Int, nil
	case "Float":
		return types.Float, nil
	case "String":
		return types.String, nil
	case "Bool":
		return types.Bool, nil
	case "Void":
		return types.Void, nil
	default:
		for _, r := range s {
			if !isTypeNameRune(r) {
				return nil, fmt.Errorf("malformed type name %q", s)
			}
		}
		return &types.Named{Name: s}, nil
	}
}

func isTypeNameRune(r rune) bool {
	return r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9'
}

package fsplan

import (
	"fmt"
	"io/fs"
	"strconv"

	"github.com/gammazero/toposort"
	"gopkg.in/yaml.v3"

	"github.com/fsplan/fsplan/pkg/fsplan/execution"
	"github.com/fsplan/fsplan/pkg/fsplan/operations"
)

// Plan is a serializable description of an operation sequence. Steps run in
// declaration order unless depends_on constraints reorder them.
type Plan struct {
	Description string     `yaml:"description,omitempty"`
	Version     string     `yaml:"version,omitempty"`
	Steps       []PlanStep `yaml:"steps"`
}

// PlanStep describes one operation in a plan file.
type PlanStep struct {
	// ID names the step so other steps can depend on it. Optional.
	ID string `yaml:"id,omitempty"`
	// Type is one of copy, create_file, create_directory, delete, move,
	// symlink.
	Type    string      `yaml:"type"`
	Source  string      `yaml:"source,omitempty"`
	Target  string      `yaml:"target"`
	Content string      `yaml:"content,omitempty"`
	Options StepOptions `yaml:"options,omitempty"`
	// DependsOn lists step IDs that must run before this one.
	DependsOn []string `yaml:"depends_on,omitempty"`
}

// StepOptions holds the per-variant flags. Unrecognized combinations are
// ignored by variants that do not use them.
type StepOptions struct {
	Overwrite          bool `yaml:"overwrite,omitempty"`
	CreateParents      bool `yaml:"create_parents,omitempty"`
	NoParents          bool `yaml:"no_parents,omitempty"`
	PreserveAttributes bool `yaml:"preserve_attributes,omitempty"`
	Exclusive          bool `yaml:"exclusive,omitempty"`
	Recursive          bool `yaml:"recursive,omitempty"`
	// Mode is an octal file mode string such as "0644".
	Mode string `yaml:"mode,omitempty"`
}

// LoadPlan parses a YAML plan document.
func LoadPlan(data []byte) (*Plan, error) {
	var plan Plan
	if err := yaml.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("failed to parse plan: %w", err)
	}
	for i, step := range plan.Steps {
		if step.Type == "" {
			return nil, fmt.Errorf("step %d: missing type", i)
		}
		if step.Target == "" {
			return nil, fmt.Errorf("step %d: missing target", i)
		}
	}
	return &plan, nil
}

// Marshal serializes the plan to YAML.
func (p *Plan) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal plan: %w", err)
	}
	return data, nil
}

// Queue materializes the plan's steps into an operation queue, in
// dependency-resolved order. Steps without constraints keep their
// declaration order relative to each other. Unknown dependency references
// and dependency cycles are errors.
func (p *Plan) Queue() (*execution.Queue, error) {
	ordered, err := p.ordered()
	if err != nil {
		return nil, err
	}
	queue := execution.NewQueue()
	for i, step := range ordered {
		op, err := step.operation()
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
		queue.Enqueue(op)
	}
	return queue, nil
}

// ordered applies depends_on constraints via topological sort. Constrained
// steps come out in dependency order; the rest follow in declaration order.
func (p *Plan) ordered() ([]PlanStep, error) {
	index := make(map[string]int, len(p.Steps))
	for i, step := range p.Steps {
		if step.ID == "" {
			continue
		}
		if _, exists := index[step.ID]; exists {
			return nil, fmt.Errorf("duplicate step id %q", step.ID)
		}
		index[step.ID] = i
	}

	var edges []toposort.Edge
	for i, step := range p.Steps {
		for _, dep := range step.DependsOn {
			if _, exists := index[dep]; !exists {
				return nil, fmt.Errorf("step %d depends on unknown step %q", i, dep)
			}
			if step.ID == "" {
				return nil, fmt.Errorf("step %d has dependencies but no id", i)
			}
			edges = append(edges, toposort.Edge{dep, step.ID})
		}
	}
	if len(edges) == 0 {
		return p.Steps, nil
	}

	sorted, err := toposort.Toposort(edges)
	if err != nil {
		return nil, fmt.Errorf("dependency cycle in plan: %w", err)
	}

	ordered := make([]PlanStep, 0, len(p.Steps))
	placed := make(map[int]bool, len(p.Steps))
	for _, node := range sorted {
		id, ok := node.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected node type in dependency sort: %T", node)
		}
		if i, exists := index[id]; exists && !placed[i] {
			ordered = append(ordered, p.Steps[i])
			placed[i] = true
		}
	}
	for i, step := range p.Steps {
		if !placed[i] {
			ordered = append(ordered, step)
		}
	}
	return ordered, nil
}

// operation builds the operation a step describes.
func (s PlanStep) operation() (operations.Operation, error) {
	mode, err := s.Options.mode()
	if err != nil {
		return nil, err
	}
	switch operations.Type(s.Type) {
	case operations.TypeCopy:
		if s.Source == "" {
			return nil, fmt.Errorf("copy requires a source")
		}
		return operations.NewCopy(s.Source, s.Target, operations.CopyOptions{
			Overwrite:          s.Options.Overwrite,
			CreateParents:      s.Options.CreateParents,
			PreserveAttributes: s.Options.PreserveAttributes,
		}), nil
	case operations.TypeCreateFile:
		return operations.NewCreateFile(s.Target, []byte(s.Content), operations.CreateFileOptions{
			CreateParents: s.Options.CreateParents,
			Mode:          mode,
		}), nil
	case operations.TypeCreateDirectory:
		return operations.NewCreateDirectory(s.Target, operations.CreateDirectoryOptions{
			Exclusive: s.Options.Exclusive,
			Mode:      mode,
			NoParents: s.Options.NoParents,
		}), nil
	case operations.TypeDelete:
		return operations.NewDelete(s.Target, operations.DeleteOptions{
			Recursive: s.Options.Recursive,
		}), nil
	case operations.TypeMove:
		if s.Source == "" {
			return nil, fmt.Errorf("move requires a source")
		}
		return operations.NewMove(s.Source, s.Target, operations.MoveOptions{
			Overwrite:     s.Options.Overwrite,
			CreateParents: s.Options.CreateParents,
		}), nil
	case operations.TypeSymlink:
		if s.Source == "" {
			return nil, fmt.Errorf("symlink requires a source (the link target string)")
		}
		return operations.NewSymlink(s.Source, s.Target, operations.SymlinkOptions{
			Overwrite:     s.Options.Overwrite,
			CreateParents: s.Options.CreateParents,
		}), nil
	default:
		return nil, fmt.Errorf("unknown operation type %q", s.Type)
	}
}

func (o StepOptions) mode() (fs.FileMode, error) {
	if o.Mode == "" {
		return 0, nil
	}
	parsed, err := strconv.ParseUint(o.Mode, 8, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid mode %q: %w", o.Mode, err)
	}
	return fs.FileMode(parsed), nil
}

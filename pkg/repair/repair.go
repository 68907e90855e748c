// Package repair normalizes untrusted workflow JSON into a structurally valid n8n document.
//
// Repair never rejects its input. Missing or malformed fields are replaced with
// defaults, dangling connection fragments are pruned, and input that cannot be
// salvaged at all is replaced by a minimal synthetic document. Every change is
// recorded as an Issue so callers can surface what was altered.
package repair

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"github.com/dukex/n8ngen/pkg/ids"
	"github.com/dukex/n8ngen/pkg/log"
	"github.com/dukex/n8ngen/pkg/models"
)

var (
	// ErrNotObject is reported when the top-level value is not a JSON object.
	ErrNotObject = errors.New("workflow is not a JSON object")

	// ErrNodeNotObject is reported when an entry of "nodes" is not a JSON object.
	ErrNodeNotObject = errors.New("node is not a JSON object")
)

// Issue describes one default applied or fragment pruned during repair.
type Issue struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

func (i Issue) String() string {
	return i.Path + ": " + i.Message
}

// Result is the outcome of a repair.
type Result struct {
	Workflow *models.Workflow
	Issues   []Issue

	// Err is set when the input could not be salvaged and Workflow is the synthetic document.
	Err error
}

// Engine repairs workflow documents. It holds no per-request state and is safe for concurrent use.
type Engine struct {
	logger       *slog.Logger
	newID        func() string
	now          func() string
	fallbackName string
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger that receives repair diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithIDGenerator replaces the UUID generator.
func WithIDGenerator(newID func() string) Option {
	return func(e *Engine) {
		e.newID = newID
	}
}

// WithClock replaces the timestamp source.
func WithClock(now func() string) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithFallbackName sets the name used for unnamed and synthetic documents.
func WithFallbackName(name string) Option {
	return func(e *Engine) {
		e.fallbackName = name
	}
}

// New creates a repair engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		logger:       log.WithModule("repair"),
		newID:        ids.NewID,
		now:          ids.Now,
		fallbackName: models.DefaultWorkflowName,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Repair normalizes raw, a decoded JSON value, into a valid workflow document.
func (e *Engine) Repair(raw any) *Result {
	r := &run{engine: e}

	doc, ok := raw.(map[string]any)
	if !ok {
		return e.finish(r, e.synthetic(), fmt.Errorf("%w (got %s)", ErrNotObject, kindOf(raw)))
	}

	workflow := &models.Workflow{}

	r.scalars(doc, workflow)

	if err := r.nodes(doc, workflow); err != nil {
		return e.finish(r, e.synthetic(), err)
	}

	r.connections(doc, workflow)

	workflow.Extra = extraFields(doc, models.WorkflowFields)

	return e.finish(r, workflow, nil)
}

func (e *Engine) finish(r *run, workflow *models.Workflow, err error) *Result {
	for _, issue := range r.issues {
		e.logger.Warn(issue.Message, "path", issue.Path)
	}

	if err != nil {
		e.logger.Warn("Workflow could not be salvaged, using synthetic document", "error", err)
	}

	return &Result{Workflow: workflow, Issues: r.issues, Err: err}
}

// synthetic builds the minimal document used when the input cannot be salvaged.
func (e *Engine) synthetic() *models.Workflow {
	now := e.now()

	return &models.Workflow{
		Name:        e.fallbackName,
		Nodes:       []*models.Node{models.NewStartNode(e.newID())},
		Connections: models.Connections{},
		Settings:    map[string]any{},
		VersionID:   e.newID(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

type run struct {
	engine *Engine
	issues []Issue
}

func (r *run) report(path, format string, args ...any) {
	r.issues = append(r.issues, Issue{Path: path, Message: fmt.Sprintf(format, args...)})
}

func (r *run) scalars(doc map[string]any, w *models.Workflow) {
	if name, ok := nonBlank(doc["name"]); ok {
		w.Name = name
	} else {
		w.Name = r.engine.fallbackName
		r.report("name", "missing or blank, defaulting to %q", w.Name)
	}

	if active, ok := doc["active"].(bool); ok {
		w.Active = active
	} else if _, present := doc["active"]; present {
		r.report("active", "not a boolean, defaulting to false")
	}

	if settings, ok := doc["settings"].(map[string]any); ok {
		w.Settings = settings
	} else {
		w.Settings = map[string]any{}
		if _, present := doc["settings"]; present {
			r.report("settings", "not an object, defaulting to {}")
		}
	}

	if id, ok := r.id(doc["versionId"], "versionId"); ok {
		w.VersionID = id
	} else {
		w.VersionID = r.engine.newID()
		r.report("versionId", "missing or not a UUID, regenerated")
	}

	w.CreatedAt = r.timestamp(doc, "createdAt")
	w.UpdatedAt = r.timestamp(doc, "updatedAt")
}

// id accepts any UUID spelling and returns its canonical form.
func (r *run) id(value any, path string) (string, bool) {
	raw, ok := value.(string)
	if !ok {
		return "", false
	}

	id, ok := ids.Canonical(raw)
	if ok && id != raw {
		r.report(path, "UUID rewritten in canonical form")
	}

	return id, ok
}

func (r *run) timestamp(doc map[string]any, field string) string {
	if ts, ok := doc[field].(string); ok && ids.IsTimestamp(ts) {
		return ts
	}

	r.report(field, "missing or not an ISO-8601 timestamp, set to now")

	return r.engine.now()
}

func (r *run) nodes(doc map[string]any, w *models.Workflow) error {
	rawNodes, ok := doc["nodes"].([]any)
	if !ok || len(rawNodes) == 0 {
		w.Nodes = []*models.Node{models.NewStartNode(r.engine.newID())}
		r.report("nodes", "missing or empty, created a default %q node", models.StartNodeName)

		return nil
	}

	assigned := make(map[string]struct{}, len(rawNodes))
	w.Nodes = make([]*models.Node, 0, len(rawNodes))

	for i, rawNode := range rawNodes {
		fields, ok := rawNode.(map[string]any)
		if !ok {
			return fmt.Errorf("node at index %d: %w (got %s)", i, ErrNodeNotObject, kindOf(rawNode))
		}

		w.Nodes = append(w.Nodes, r.node(i, fields, assigned))
	}

	return nil
}

func (r *run) node(i int, fields map[string]any, assigned map[string]struct{}) *models.Node {
	path := fmt.Sprintf("nodes[%d]", i)
	node := &models.Node{}

	if id, ok := r.id(fields["id"], path+".id"); ok {
		node.ID = id
	} else {
		node.ID = r.engine.newID()
		r.report(path+".id", "missing or not a UUID, regenerated")
	}

	name, ok := nonBlank(fields["name"])
	if !ok {
		name = fmt.Sprintf("Unnamed Node %d", i+1)
		r.report(path+".name", "missing or blank, defaulting to %q", name)
	}

	node.Name = uniqueName(name, assigned)
	if node.Name != name {
		r.report(path+".name", "duplicate name %q renamed to %q", name, node.Name)
	}

	assigned[node.Name] = struct{}{}

	typeDefaulted := false

	if nodeType, ok := nonBlank(fields["type"]); ok {
		node.Type = nodeType
	} else {
		node.Type = models.NodeTypeStickyNote
		typeDefaulted = true

		r.report(path+".type", "missing or blank, defaulting to %q", node.Type)
	}

	if version, ok := asInt(fields["typeVersion"]); ok {
		node.TypeVersion = version
	} else {
		node.TypeVersion = 1
		r.report(path+".typeVersion", "missing or not an integer, defaulting to 1")
	}

	if position, ok := asPosition(fields["position"]); ok {
		node.Position = position
	} else {
		node.Position = models.DefaultPosition(i)
		r.report(path+".position", "missing or not an [x, y] pair, defaulting to %v", node.Position)
	}

	if parameters, ok := fields["parameters"].(map[string]any); ok {
		node.Parameters = parameters
	} else {
		node.Parameters = map[string]any{}
		if _, present := fields["parameters"]; present {
			r.report(path+".parameters", "not an object, defaulting to {}")
		}
	}

	if typeDefaulted {
		if _, ok := node.Parameters["message"]; !ok {
			node.Parameters = maps.Clone(node.Parameters)
			node.Parameters["message"] = models.MissingTypeMessage
		}
	}

	node.Extra = extraFields(fields, models.NodeFields)

	return node
}

// uniqueName appends _1, _2, ... to name until it is not in assigned.
func uniqueName(name string, assigned map[string]struct{}) string {
	candidate := name
	for counter := 1; ; counter++ {
		if _, taken := assigned[candidate]; !taken {
			return candidate
		}

		candidate = fmt.Sprintf("%s_%d", name, counter)
	}
}

func (r *run) connections(doc map[string]any, w *models.Workflow) {
	w.Connections = models.Connections{}

	rawConnections, ok := doc["connections"].(map[string]any)
	if !ok {
		if _, present := doc["connections"]; present {
			r.report("connections", "not an object, defaulting to {}")
		}

		return
	}

	names := w.NodeNames()

	for _, source := range slices.Sorted(maps.Keys(rawConnections)) {
		path := fmt.Sprintf("connections[%q]", source)

		if _, ok := names[source]; !ok {
			r.report(path, "source node not found, removing connection")

			continue
		}

		rawPorts, ok := rawConnections[source].(map[string]any)
		if !ok {
			r.report(path, "output ports are not an object, removing connection")

			continue
		}

		ports := models.OutputPortMap{}

		for _, port := range slices.Sorted(maps.Keys(rawPorts)) {
			if groups := r.port(path+"."+port, rawPorts[port], names); len(groups) > 0 {
				ports[port] = groups
			}
		}

		if len(ports) == 0 {
			r.report(path, "no valid ports left, removing connection")

			continue
		}

		w.Connections[source] = ports
	}
}

func (r *run) port(path string, value any, names map[string]struct{}) models.TargetGroupList {
	rawGroups, ok := value.([]any)
	if !ok {
		r.report(path, "targets are not a list, removing port")

		return nil
	}

	var groups models.TargetGroupList

	for gi, rawGroup := range rawGroups {
		groupPath := fmt.Sprintf("%s[%d]", path, gi)

		items, ok := rawGroup.([]any)
		if !ok {
			r.report(groupPath, "target group is not a list, skipping group")

			continue
		}

		var group models.TargetGroup

		for ti, item := range items {
			if target, ok := r.target(fmt.Sprintf("%s[%d]", groupPath, ti), item, names); ok {
				group = append(group, target)
			}
		}

		if len(group) > 0 {
			groups = append(groups, group)
		}
	}

	if len(groups) == 0 {
		r.report(path, "no valid targets left, removing port")
	}

	return groups
}

func (r *run) target(path string, value any, names map[string]struct{}) (models.Target, bool) {
	fields, ok := value.(map[string]any)
	if !ok {
		r.report(path, "target is not an object, skipping target")

		return models.Target{}, false
	}

	node, _ := fields["node"].(string)
	if _, ok := names[node]; !ok {
		r.report(path, "target node %v not found, skipping target", fields["node"])

		return models.Target{}, false
	}

	targetType, ok := nonBlank(fields["type"])
	if !ok {
		r.report(path, "target type for %q is invalid, skipping target", node)

		return models.Target{}, false
	}

	index, ok := asInt(fields["index"])
	if !ok {
		r.report(path, "target index for %q is not an integer, skipping target", node)

		return models.Target{}, false
	}

	return models.Target{Node: node, Type: targetType, Index: index}, true
}

func extraFields(fields map[string]any, known []string) map[string]any {
	var extra map[string]any

	for key, value := range fields {
		if slices.Contains(known, key) {
			continue
		}

		if extra == nil {
			extra = make(map[string]any)
		}

		extra[key] = value
	}

	return extra
}

func nonBlank(value any) (string, bool) {
	s, ok := value.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "", false
	}

	return s, true
}

func kindOf(value any) string {
	switch value.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case bool:
		return "boolean"
	default:
		if _, ok := asFloat(value); ok {
			return "number"
		}

		return fmt.Sprintf("%T", value)
	}
}
